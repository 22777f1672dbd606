package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

const insertBatchSize = 500

// ResetSchema drops and recreates the catalog tables. Meant for the bulk
// loader only; the API server never writes these relations.
func ResetSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*OrderItem)(nil),
		(*Order)(nil),
		(*Product)(nil),
		(*User)(nil),
		(*DistributionCenter)(nil),
	}
	for _, model := range models {
		if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("drop table for %T: %w", model, err)
		}
	}
	// Create in reverse (dependency) order.
	for i := len(models) - 1; i >= 0; i-- {
		if _, err := db.NewCreateTable().Model(models[i]).Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", models[i], err)
		}
	}
	return nil
}

// LoadDistributionCenters ingests distribution_centers.csv.
func LoadDistributionCenters(ctx context.Context, db bun.IDB, r io.Reader) (int, error) {
	rows, err := readCSV(r)
	if err != nil {
		return 0, err
	}

	centers := make([]DistributionCenter, 0, len(rows))
	for _, row := range rows {
		centers = append(centers, DistributionCenter{
			ID:        row.int64("id"),
			Name:      row.str("name"),
			Latitude:  row.float("latitude"),
			Longitude: row.float("longitude"),
		})
	}
	return insertBatched(ctx, db, centers)
}

// LoadUsers ingests users.csv.
func LoadUsers(ctx context.Context, db bun.IDB, r io.Reader) (int, error) {
	rows, err := readCSV(r)
	if err != nil {
		return 0, err
	}

	users := make([]User, 0, len(rows))
	for _, row := range rows {
		u := User{
			ID:            row.int64("id"),
			FirstName:     row.str("first_name"),
			LastName:      row.str("last_name"),
			Email:         row.str("email"),
			Age:           int(row.int64("age")),
			Gender:        row.str("gender"),
			State:         row.str("state"),
			StreetAddress: row.str("street_address"),
			PostalCode:    row.str("postal_code"),
			City:          row.str("city"),
			Country:       row.str("country"),
			Latitude:      row.float("latitude"),
			Longitude:     row.float("longitude"),
			TrafficSource: row.str("traffic_source"),
		}
		if ts := row.time("created_at"); ts != nil {
			u.CreatedAt = *ts
		}
		users = append(users, u)
	}
	return insertBatched(ctx, db, users)
}

// LoadProducts ingests products.csv. A negative retail price violates the
// catalog contract and aborts the load.
func LoadProducts(ctx context.Context, db bun.IDB, r io.Reader) (int, error) {
	rows, err := readCSV(r)
	if err != nil {
		return 0, err
	}

	products := make([]Product, 0, len(rows))
	for i, row := range rows {
		p := Product{
			ID:                   row.int64("id"),
			Cost:                 row.float("cost"),
			Category:             row.str("category"),
			Name:                 row.str("name"),
			Brand:                row.str("brand"),
			RetailPrice:          row.float("retail_price"),
			Department:           row.str("department"),
			SKU:                  row.str("sku"),
			DistributionCenterID: row.int64("distribution_center_id"),
		}
		if p.RetailPrice < 0 {
			return 0, fmt.Errorf("products row %d: negative retail_price %v", i+1, p.RetailPrice)
		}
		products = append(products, p)
	}
	return insertBatched(ctx, db, products)
}

// LoadOrders ingests orders.csv. The returned/shipped/delivered timestamps
// are nullable.
func LoadOrders(ctx context.Context, db bun.IDB, r io.Reader) (int, error) {
	rows, err := readCSV(r)
	if err != nil {
		return 0, err
	}

	orders := make([]Order, 0, len(rows))
	for _, row := range rows {
		o := Order{
			OrderID:     row.int64("order_id"),
			UserID:      row.int64("user_id"),
			Status:      row.str("status"),
			Gender:      row.str("gender"),
			ReturnedAt:  row.time("returned_at"),
			ShippedAt:   row.time("shipped_at"),
			DeliveredAt: row.time("delivered_at"),
			NumOfItem:   int(row.int64("num_of_item")),
		}
		if ts := row.time("created_at"); ts != nil {
			o.CreatedAt = *ts
		}
		orders = append(orders, o)
	}
	return insertBatched(ctx, db, orders)
}

// LoadOrderItems ingests order_items.csv. Quantity defaults to 1 when the
// dataset does not carry it.
func LoadOrderItems(ctx context.Context, db bun.IDB, r io.Reader) (int, error) {
	rows, err := readCSV(r)
	if err != nil {
		return 0, err
	}

	items := make([]OrderItem, 0, len(rows))
	for _, row := range rows {
		item := OrderItem{
			OrderID:   row.int64("order_id"),
			ProductID: row.int64("product_id"),
			Quantity:  1,
			SalePrice: row.float("sale_price"),
		}
		if qty := row.int64("quantity"); qty > 0 {
			item.Quantity = int(qty)
		}
		items = append(items, item)
	}
	return insertBatched(ctx, db, items)
}

func insertBatched[T any](ctx context.Context, db bun.IDB, rows []T) (int, error) {
	for start := 0; start < len(rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]
		if _, err := db.NewInsert().Model(&batch).Exec(ctx); err != nil {
			return start, fmt.Errorf("insert rows %d..%d: %w", start, end, err)
		}
	}
	return len(rows), nil
}

type csvRow struct {
	index  map[string]int
	fields []string
}

func (r csvRow) str(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r csvRow) int64(column string) int64 {
	v, err := strconv.ParseInt(r.str(column), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func (r csvRow) float(column string) float64 {
	v, err := strconv.ParseFloat(r.str(column), 64)
	if err != nil {
		return 0
	}
	return v
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (r csvRow) time(column string) *time.Time {
	raw := r.str(column)
	if raw == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			utc := ts.UTC()
			return &utc
		}
	}
	return nil
}

func readCSV(r io.Reader) ([]csvRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.ToLower(name))] = i
	}

	var rows []csvRow
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, csvRow{index: index, fields: fields})
	}
	return rows, nil
}
