package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/openmarket-labs/vendorflow-backend/pkg/db/models"
	"github.com/openmarket-labs/vendorflow-backend/pkg/enums"
	pkgerrors "github.com/openmarket-labs/vendorflow-backend/pkg/errors"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  subtotal_cents INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	itemsTable := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  vendor_id TEXT NOT NULL,
  name TEXT NOT NULL,
  category TEXT NOT NULL DEFAULT 'other',
  qty INTEGER NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  weight_grams INTEGER NOT NULL DEFAULT 0,
  length_mm INTEGER NOT NULL DEFAULT 0,
  width_mm INTEGER NOT NULL DEFAULT 0,
  height_mm INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ordersTable).Error)
	require.NoError(t, db.Exec(itemsTable).Error)
	return db
}

func TestFindOrderPreloadsItems(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := models.Order{
		ID:            uuid.New(),
		CustomerID:    uuid.New(),
		Currency:      enums.CurrencyUSD,
		SubtotalCents: 1500,
		TotalCents:    1700,
	}
	require.NoError(t, db.Create(&order).Error)

	items := []models.OrderItem{
		{
			ID:             uuid.New(),
			OrderID:        order.ID,
			ProductID:      uuid.New(),
			VendorID:       uuid.New(),
			Name:           "widget",
			Category:       enums.ProductCategoryHome,
			Qty:            1,
			UnitPriceCents: 500,
		},
		{
			ID:             uuid.New(),
			OrderID:        order.ID,
			ProductID:      uuid.New(),
			VendorID:       uuid.New(),
			Name:           "gizmo",
			Category:       enums.ProductCategoryElectronics,
			Qty:            2,
			UnitPriceCents: 500,
		},
	}
	require.NoError(t, db.Create(&items).Error)

	found, err := repo.FindOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	assert.Equal(t, 1500, found.SubtotalCents)
	assert.Len(t, found.Items, 2)
}

func TestFindOrderNotFound(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindOrder(context.Background(), uuid.New())
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}
