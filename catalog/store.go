package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/shoptalk-ai/shoptalk/assistant/contract"
)

var ErrOrderNotFound = errors.New("order not found")

// lookupLimit caps every product lookup. It is a fixed property of the
// gateway, not a per-call knob.
const lookupLimit = 5

const defaultQueryTimeout = 5 * time.Second

var _ contractx.Catalog = (*Store)(nil)

// Store is the read-only gateway over the product/order relations. Queries
// are bounded in both rows and time; the store never retries.
type Store struct {
	db      *bun.DB
	timeout time.Duration
}

func NewStore(db *bun.DB, timeout time.Duration) (*Store, error) {
	if db == nil {
		return nil, errors.New("catalog db is required")
	}
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &Store{db: db, timeout: timeout}, nil
}

// Lookup builds a conjunctive predicate from the present filter fields: each
// present field narrows the result, each absent one imposes no constraint.
// Results come back in primary-key order so runs are reproducible, truncated
// to the first 5 matches. No match is an empty slice, not an error.
func (s *Store) Lookup(ctx context.Context, filter contractx.ProductFilter) ([]contractx.CatalogRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var products []Product
	q := s.db.NewSelect().Model(&products)
	if filter.Category != nil {
		q = q.Where("category = ?", *filter.Category)
	}
	if filter.Department != nil {
		q = q.Where("department = ?", *filter.Department)
	}
	if filter.Brand != nil {
		q = q.Where("brand = ?", *filter.Brand)
	}
	if filter.MaxPrice != nil {
		q = q.Where("retail_price <= ?", *filter.MaxPrice)
	}

	if err := q.OrderExpr("id ASC").Limit(lookupLimit).Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrLookup, err)
	}

	records := make([]contractx.CatalogRecord, 0, len(products))
	for _, p := range products {
		records = append(records, contractx.CatalogRecord{
			ID:          p.ID,
			Name:        p.Name,
			Category:    p.Category,
			Brand:       p.Brand,
			Department:  p.Department,
			RetailPrice: p.RetailPrice,
		})
	}
	return records, nil
}

// OrderDetails returns one line per item of the order, joined to the item's
// product.
func (s *Store) OrderDetails(ctx context.Context, orderID int64) ([]OrderLine, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var lines []OrderLine
	err := s.db.NewSelect().
		TableExpr("orders AS o").
		ColumnExpr("o.order_id").
		ColumnExpr("o.status").
		ColumnExpr("o.created_at").
		ColumnExpr("o.delivered_at").
		ColumnExpr("oi.product_id").
		ColumnExpr("p.name AS product_name").
		ColumnExpr("p.retail_price").
		ColumnExpr("oi.sale_price").
		ColumnExpr("oi.quantity").
		Join("JOIN order_items AS oi ON oi.order_id = o.order_id").
		Join("JOIN products AS p ON p.id = oi.product_id").
		Where("o.order_id = ?", orderID).
		OrderExpr("oi.id ASC").
		Scan(ctx, &lines)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("%w: %v", contractx.ErrLookup, err)
	}
	if len(lines) == 0 {
		return nil, ErrOrderNotFound
	}
	return lines, nil
}
