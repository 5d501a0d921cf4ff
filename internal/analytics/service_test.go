package analytics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/webmarket/pkg/db/models"
	"github.com/angelmondragon/webmarket/pkg/enums"
	pkgerrors "github.com/angelmondragon/webmarket/pkg/errors"
	"github.com/angelmondragon/webmarket/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func day(d int) time.Time { return time.Date(2025, 3, d, 12, 0, 0, 0, time.UTC) }

func item(name string, qty int, price string) models.OrderItem {
	return models.OrderItem{Name: name, Quantity: qty, Price: dec(price)}
}

func sampleOrders() []models.Order {
	return []models.Order{
		{ID: 1, TotalAmount: dec("1200"), Status: enums.OrderStatusDelivered, PaymentMethod: enums.PaymentMethodUPI, CreatedAt: day(2),
			Items: []models.OrderItem{item("Headphones", 2, "500"), item("Cable", 1, "200")}},
		{ID: 2, TotalAmount: dec("300.50"), Status: enums.OrderStatusDelivered, PaymentMethod: enums.PaymentMethodCard, CreatedAt: day(1),
			Items: []models.OrderItem{item("Mystery Box", 1, "300.50")}},
		{ID: 3, TotalAmount: dec("999"), Status: enums.OrderStatusCancelled, PaymentMethod: enums.PaymentMethodCard, CreatedAt: day(2),
			Items: []models.OrderItem{item("Laptop", 1, "999")}},
		{ID: 4, TotalAmount: dec("100"), Status: enums.OrderStatusPending, CreatedAt: day(3),
			Items: []models.OrderItem{item("Cable", 5, "20")}},
		{ID: 5, TotalAmount: dec("400"), Status: enums.OrderStatusDelivered, PaymentMethod: enums.PaymentMethodUPI, CreatedAt: day(2),
			Items: []models.OrderItem{item("Cable", 1, "200"), item("Adapter", 1, "200")}},
	}
}

func sampleProducts() []models.Product {
	return []models.Product{
		{Name: "Headphones", Category: enums.ProductCategoryAudio},
		{Name: "Cable", Category: enums.ProductCategoryAccessories},
		{Name: "Adapter", Category: enums.ProductCategoryAccessories},
		{Name: "Laptop", Category: enums.ProductCategoryComputers},
	}
}

func TestComputeTotals(t *testing.T) {
	d := Compute(sampleOrders(), sampleProducts())

	assert.Equal(t, 5, d.TotalOrders)
	assert.Equal(t, 3, d.DeliveredCount)
	assert.Equal(t, 1, d.CancelledCount)
	assert.True(t, d.TotalRevenue.Equal(dec("1900.50")), d.TotalRevenue.String())
	assert.True(t, d.TotalRevenueAll.Equal(dec("2999.50")), d.TotalRevenueAll.String())
	assert.True(t, d.TotalProfit.Equal(dec("570.15")), d.TotalProfit.String())
	assert.True(t, d.SuccessRate.Equal(dec("60")), d.SuccessRate.String())
	assert.True(t, d.AvgOrderValue.Equal(dec("633.5")), d.AvgOrderValue.String())
	assert.Equal(t, 6, d.ItemsSold)
}

func TestComputeTopProductsTieBreaksByName(t *testing.T) {
	d := Compute(sampleOrders(), sampleProducts())

	require.Len(t, d.TopProducts, 3)
	assert.Equal(t, ProductSales{Name: "Cable", Quantity: 2}, d.TopProducts[0])
	assert.Equal(t, ProductSales{Name: "Headphones", Quantity: 2}, d.TopProducts[1])
	assert.Equal(t, ProductSales{Name: "Adapter", Quantity: 1}, d.TopProducts[2])
}

func TestComputeDailyAndCategories(t *testing.T) {
	d := Compute(sampleOrders(), sampleProducts())

	require.Len(t, d.Daily, 2)
	assert.Equal(t, "2025-03-01", d.Daily[0].Date)
	assert.True(t, d.Daily[0].Revenue.Equal(dec("300.5")))
	assert.True(t, d.Daily[0].Profit.Equal(dec("90.15")))
	assert.Equal(t, 1, d.Daily[0].Orders)
	assert.Equal(t, "2025-03-02", d.Daily[1].Date)
	assert.True(t, d.Daily[1].Revenue.Equal(dec("1600")))
	assert.Equal(t, 2, d.Daily[1].Orders)

	require.Len(t, d.CategoryRevenue, 3)
	assert.Equal(t, "Accessories", d.CategoryRevenue[0].Category)
	assert.True(t, d.CategoryRevenue[0].Revenue.Equal(dec("600")))
	assert.Equal(t, "Audio", d.CategoryRevenue[1].Category)
	assert.True(t, d.CategoryRevenue[1].Revenue.Equal(dec("1000")))
	assert.Equal(t, "Other", d.CategoryRevenue[2].Category)
	assert.True(t, d.CategoryRevenue[2].Revenue.Equal(dec("300.5")))
}

func TestComputePaymentMethodsDefaultToUPI(t *testing.T) {
	d := Compute(sampleOrders(), nil)

	assert.Equal(t, []PaymentCount{{Method: "CARD", Count: 2}, {Method: "UPI", Count: 3}}, d.PaymentMethods)
}

func TestComputeEmpty(t *testing.T) {
	d := Compute(nil, nil)

	assert.Zero(t, d.TotalOrders)
	assert.True(t, d.SuccessRate.IsZero())
	assert.True(t, d.AvgOrderValue.IsZero())
	assert.Empty(t, d.TopProducts)
	assert.Empty(t, d.Daily)
	assert.Empty(t, d.CategoryRevenue)
	assert.Empty(t, d.PaymentMethods)
}

func TestComputeUnknownDate(t *testing.T) {
	orders := []models.Order{{TotalAmount: dec("10"), Status: enums.OrderStatusDelivered}}
	d := Compute(orders, nil)
	require.Len(t, d.Daily, 1)
	assert.Equal(t, UnknownDate, d.Daily[0].Date)
}

type fakeSource struct {
	orders   []models.Order
	products []models.Product
	err      error
}

func (f fakeSource) Orders(context.Context) ([]models.Order, error)     { return f.orders, f.err }
func (f fakeSource) Products(context.Context) ([]models.Product, error) { return f.products, nil }

func TestServiceDashboard(t *testing.T) {
	svc, err := NewService(fakeSource{orders: sampleOrders(), products: sampleProducts()}, logger.Nop())
	require.NoError(t, err)

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, d.TotalOrders)

	failing, err := NewService(fakeSource{err: errors.New("db down")}, logger.Nop())
	require.NoError(t, err)
	_, err = failing.Dashboard(context.Background())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	_, err = NewService(nil, logger.Nop())
	assert.Error(t, err)
	_, err = NewService(fakeSource{}, nil)
	assert.Error(t, err)
}

func TestRepositoryLoadsOrdersWithItems(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.OrderItem{}))

	require.NoError(t, conn.Create(&models.Product{Name: "Cable", Price: dec("200"), Category: enums.ProductCategoryAccessories}).Error)
	for _, o := range sampleOrders() {
		o := o
		o.ID = 0
		require.NoError(t, conn.Omit("User").Create(&o).Error)
	}

	svc, err := NewService(NewRepository(conn), logger.Nop())
	require.NoError(t, err)
	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, d.TotalOrders)
	assert.Equal(t, 6, d.ItemsSold)
	assert.True(t, d.TotalRevenue.Equal(dec("1900.5")), d.TotalRevenue.String())
}
