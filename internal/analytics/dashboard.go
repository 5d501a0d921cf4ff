package analytics

import (
	"sort"

	"github.com/angelmondragon/webmarket/pkg/db/models"
	"github.com/angelmondragon/webmarket/pkg/enums"
	"github.com/shopspring/decimal"
)

// ProfitMargin is the flat margin applied to delivered revenue.
var ProfitMargin = decimal.RequireFromString("0.3")

const (
	topProductsLimit = 3
	defaultCategory  = string(enums.ProductCategoryOther)
)

// Dashboard is the admin KPI snapshot.
type Dashboard struct {
	TotalRevenue    decimal.Decimal   `json:"totalRevenue"`
	TotalRevenueAll decimal.Decimal   `json:"totalRevenueAll"`
	TotalProfit     decimal.Decimal   `json:"totalProfit"`
	TotalOrders     int               `json:"totalOrders"`
	DeliveredCount  int               `json:"deliveredCount"`
	CancelledCount  int               `json:"cancelledCount"`
	SuccessRate     decimal.Decimal   `json:"successRate"`
	ItemsSold       int               `json:"itemsSold"`
	AvgOrderValue   decimal.Decimal   `json:"avgOrderValue"`
	TopProducts     []ProductSales    `json:"topProducts"`
	Daily           []DailyStat       `json:"daily"`
	CategoryRevenue []CategoryRevenue `json:"categoryRevenue"`
	PaymentMethods  []PaymentCount    `json:"paymentMethods"`
}

type ProductSales struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type DailyStat struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
	Orders  int             `json:"orders"`
}

type CategoryRevenue struct {
	Category string          `json:"category"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type PaymentCount struct {
	Method string `json:"method"`
	Count  int    `json:"count"`
}

// Compute derives the dashboard from every order and the catalog.
// Item categories are resolved by product name, matching how order lines snapshot the name.
func Compute(orders []models.Order, products []models.Product) Dashboard {
	categoryByName := make(map[string]string, len(products))
	for _, p := range products {
		if p.Category != "" {
			categoryByName[p.Name] = string(p.Category)
		}
	}

	var (
		d          Dashboard
		qtyByName  = map[string]int{}
		daily      = map[string]*DailyStat{}
		byCategory = map[string]decimal.Decimal{}
		byMethod   = map[string]int{}
	)
	d.TotalOrders = len(orders)

	for _, o := range orders {
		d.TotalRevenueAll = d.TotalRevenueAll.Add(o.TotalAmount)

		method := enums.PaymentMethodUPI.Label()
		if o.PaymentMethod != "" {
			method = o.PaymentMethod.Label()
		}
		byMethod[method]++

		switch o.Status {
		case enums.OrderStatusCancelled:
			d.CancelledCount++
			continue
		case enums.OrderStatusDelivered:
		default:
			continue
		}

		d.DeliveredCount++
		d.TotalRevenue = d.TotalRevenue.Add(o.TotalAmount)

		key := DateKey(o.CreatedAt)
		stat, ok := daily[key]
		if !ok {
			stat = &DailyStat{Date: key}
			daily[key] = stat
		}
		stat.Revenue = stat.Revenue.Add(o.TotalAmount)
		stat.Profit = stat.Profit.Add(o.TotalAmount.Mul(ProfitMargin))
		stat.Orders++

		for _, item := range o.Items {
			qtyByName[item.Name] += item.Quantity
			d.ItemsSold += item.Quantity

			category, ok := categoryByName[item.Name]
			if !ok {
				category = defaultCategory
			}
			line := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			byCategory[category] = byCategory[category].Add(line)
		}
	}

	d.TotalProfit = d.TotalRevenue.Mul(ProfitMargin).Round(2)
	d.TotalRevenue = d.TotalRevenue.Round(2)
	d.TotalRevenueAll = d.TotalRevenueAll.Round(2)
	if d.TotalOrders > 0 {
		d.SuccessRate = decimal.NewFromInt(int64(d.DeliveredCount)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(d.TotalOrders))).
			Round(2)
	}
	if d.DeliveredCount > 0 {
		d.AvgOrderValue = d.TotalRevenue.Div(decimal.NewFromInt(int64(d.DeliveredCount))).Round(2)
	}

	d.TopProducts = topProducts(qtyByName, topProductsLimit)

	d.Daily = make([]DailyStat, 0, len(daily))
	for _, stat := range daily {
		stat.Revenue = stat.Revenue.Round(2)
		stat.Profit = stat.Profit.Round(2)
		d.Daily = append(d.Daily, *stat)
	}
	sort.Slice(d.Daily, func(i, j int) bool { return d.Daily[i].Date < d.Daily[j].Date })

	d.CategoryRevenue = make([]CategoryRevenue, 0, len(byCategory))
	for category, revenue := range byCategory {
		d.CategoryRevenue = append(d.CategoryRevenue, CategoryRevenue{Category: category, Revenue: revenue.Round(2)})
	}
	sort.Slice(d.CategoryRevenue, func(i, j int) bool { return d.CategoryRevenue[i].Category < d.CategoryRevenue[j].Category })

	d.PaymentMethods = make([]PaymentCount, 0, len(byMethod))
	for method, count := range byMethod {
		d.PaymentMethods = append(d.PaymentMethods, PaymentCount{Method: method, Count: count})
	}
	sort.Slice(d.PaymentMethods, func(i, j int) bool { return d.PaymentMethods[i].Method < d.PaymentMethods[j].Method })

	return d
}

func topProducts(qtyByName map[string]int, limit int) []ProductSales {
	out := make([]ProductSales, 0, len(qtyByName))
	for name, qty := range qtyByName {
		out = append(out, ProductSales{Name: name, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
