package catalog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProducts(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)

	csvData := strings.Join([]string{
		"id,cost,category,name,brand,retail_price,department,sku,distribution_center_id",
		"1,40.5,Shoes,Air Max 90,Nike,89.99,Men,SKU-1,1",
		"2,5.0,Accessories,Crew Socks,Hanes,12.00,Men,SKU-2,2",
	}, "\n")

	mock.ExpectExec(`INSERT INTO "products"`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := LoadProducts(context.Background(), db, strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadProductsNegativePriceAborts(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)

	csvData := strings.Join([]string{
		"id,cost,category,name,brand,retail_price,department,sku,distribution_center_id",
		"1,40.5,Shoes,Air Max 90,Nike,-1,Men,SKU-1,1",
	}, "\n")

	n, err := LoadProducts(context.Background(), db, strings.NewReader(csvData))
	require.Error(t, err)
	assert.Zero(t, n)
	assert.Contains(t, err.Error(), "retail_price")

	// Nothing may reach the database.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadOrderItemsQuantityDefaultsToOne(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)

	// The theLook dataset carries no quantity column.
	csvData := strings.Join([]string{
		"id,order_id,user_id,product_id,sale_price",
		"10,42,7,1,79.99",
	}, "\n")

	mock.ExpectExec(`INSERT INTO "order_items" \("id", "order_id", "product_id", "quantity", "sale_price"\) VALUES \(DEFAULT, 42, 1, 1, 79\.99\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := LoadOrderItems(context.Background(), db, strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadDistributionCenters(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)

	csvData := strings.Join([]string{
		"id,name,latitude,longitude",
		"1,Memphis TN,35.1174,-89.9711",
	}, "\n")

	mock.ExpectExec(`INSERT INTO "distribution_centers"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := LoadDistributionCenters(context.Background(), db, strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLoadOrders(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)

	csvData := strings.Join([]string{
		"order_id,user_id,status,gender,created_at,returned_at,shipped_at,delivered_at,num_of_item",
		"42,7,Complete,M,2024-03-01 10:00:00,,2024-03-02 08:00:00,2024-03-04 12:00:00,2",
		"43,8,Cancelled,F,2024-03-05,,,0",
	}, "\n")

	mock.ExpectExec(`INSERT INTO "orders"`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := LoadOrders(context.Background(), db, strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestInsertBatched(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)

	rows := make([]DistributionCenter, 1001)
	for i := range rows {
		rows[i] = DistributionCenter{ID: int64(i + 1), Name: "DC"}
	}

	// 1001 rows at a batch size of 500 means three statements.
	for i := 0; i < 3; i++ {
		mock.ExpectExec(`INSERT INTO "distribution_centers"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	n, err := insertBatched(context.Background(), db, rows)
	require.NoError(t, err)
	assert.Equal(t, 1001, n)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReadCSV(t *testing.T) {
	t.Parallel()

	rows, err := readCSV(strings.NewReader(strings.Join([]string{
		"ID, Name ,price,created_at",
		"1,Widget,9.99,2024-03-01 10:00:00",
		"oops,Gadget,not-a-number,",
	}, "\n")))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Header names are matched case-insensitively and trimmed.
	assert.Equal(t, int64(1), rows[0].int64("id"))
	assert.Equal(t, "Widget", rows[0].str("name"))
	assert.Equal(t, 9.99, rows[0].float("price"))

	ts := rows[0].time("created_at")
	require.NotNil(t, ts)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), *ts)

	// Unparseable values degrade to zero values, empty timestamps to nil.
	assert.Equal(t, int64(0), rows[1].int64("id"))
	assert.Equal(t, 0.0, rows[1].float("price"))
	assert.Nil(t, rows[1].time("created_at"))

	// Unknown columns read as empty.
	assert.Equal(t, "", rows[0].str("missing"))
}

func TestReadCSVRejectsMissingHeader(t *testing.T) {
	t.Parallel()

	_, err := readCSV(strings.NewReader(""))
	require.Error(t, err)
}
