package catalog

import (
	"time"

	"github.com/uptrace/bun"
)

type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID                   int64   `bun:"id,pk" json:"id"`
	Cost                 float64 `bun:"cost" json:"cost"`
	Category             string  `bun:"category" json:"category"`
	Name                 string  `bun:"name" json:"name"`
	Brand                string  `bun:"brand" json:"brand"`
	RetailPrice          float64 `bun:"retail_price" json:"retail_price"`
	Department           string  `bun:"department" json:"department"`
	SKU                  string  `bun:"sku" json:"sku"`
	DistributionCenterID int64   `bun:"distribution_center_id" json:"distribution_center_id"`
}

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID            int64     `bun:"id,pk" json:"id"`
	FirstName     string    `bun:"first_name" json:"first_name"`
	LastName      string    `bun:"last_name" json:"last_name"`
	Email         string    `bun:"email" json:"email"`
	Age           int       `bun:"age" json:"age"`
	Gender        string    `bun:"gender" json:"gender"`
	State         string    `bun:"state" json:"state"`
	StreetAddress string    `bun:"street_address" json:"street_address"`
	PostalCode    string    `bun:"postal_code" json:"postal_code"`
	City          string    `bun:"city" json:"city"`
	Country       string    `bun:"country" json:"country"`
	Latitude      float64   `bun:"latitude" json:"latitude"`
	Longitude     float64   `bun:"longitude" json:"longitude"`
	TrafficSource string    `bun:"traffic_source" json:"traffic_source"`
	CreatedAt     time.Time `bun:"created_at,nullzero" json:"created_at"`
}

type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	OrderID     int64      `bun:"order_id,pk" json:"order_id"`
	UserID      int64      `bun:"user_id" json:"user_id"`
	Status      string     `bun:"status" json:"status"`
	Gender      string     `bun:"gender" json:"gender"`
	CreatedAt   time.Time  `bun:"created_at,nullzero" json:"created_at"`
	ReturnedAt  *time.Time `bun:"returned_at" json:"returned_at,omitempty"`
	ShippedAt   *time.Time `bun:"shipped_at" json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `bun:"delivered_at" json:"delivered_at,omitempty"`
	NumOfItem   int        `bun:"num_of_item" json:"num_of_item"`
}

type OrderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`

	ID        int64   `bun:"id,pk,autoincrement" json:"id"`
	OrderID   int64   `bun:"order_id" json:"order_id"`
	ProductID int64   `bun:"product_id" json:"product_id"`
	Quantity  int     `bun:"quantity" json:"quantity"`
	SalePrice float64 `bun:"sale_price" json:"sale_price"`
}

type DistributionCenter struct {
	bun.BaseModel `bun:"table:distribution_centers,alias:dc"`

	ID        int64   `bun:"id,pk" json:"id"`
	Name      string  `bun:"name" json:"name"`
	Latitude  float64 `bun:"latitude" json:"latitude"`
	Longitude float64 `bun:"longitude" json:"longitude"`
}

// OrderLine is one row of the order-detail join: the order joined to each of
// its items and the item's product.
type OrderLine struct {
	OrderID     int64      `bun:"order_id" json:"order_id"`
	Status      string     `bun:"status" json:"status"`
	CreatedAt   time.Time  `bun:"created_at" json:"created_at"`
	DeliveredAt *time.Time `bun:"delivered_at" json:"delivered_at,omitempty"`
	ProductID   int64      `bun:"product_id" json:"product_id"`
	ProductName string     `bun:"product_name" json:"product_name"`
	RetailPrice float64    `bun:"retail_price" json:"retail_price"`
	SalePrice   float64    `bun:"sale_price" json:"sale_price"`
	Quantity    int        `bun:"quantity" json:"quantity"`
}
