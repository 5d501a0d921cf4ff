package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/webmarket/internal/analytics"
	"github.com/angelmondragon/webmarket/internal/apiclient"
	"github.com/angelmondragon/webmarket/internal/products"
	"github.com/angelmondragon/webmarket/pkg/enums"
	pkgerrors "github.com/angelmondragon/webmarket/pkg/errors"
	"github.com/angelmondragon/webmarket/pkg/format"
)

func (c *cli) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin console: orders, dashboard and catalog management",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.setup(cmd.Context()); err != nil {
				return err
			}
			user, ok := c.app.Session.CurrentUser(cmd.Context())
			if !ok {
				return pkgerrors.New(pkgerrors.CodeUnauthorized, "Please login as an admin")
			}
			if !user.IsAdmin() {
				return pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
			}
			return nil
		},
	}
	cmd.AddCommand(c.adminOrdersCmd(), c.adminStatusCmd(), c.adminDashboardCmd(), c.adminProductsCmd())
	return cmd
}

func (c *cli) adminOrdersCmd() *cobra.Command {
	var q apiclient.OrderQuery
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List orders across all customers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := c.app.Orders.GetAllOrders(cmd.Context(), q)
			if err != nil {
				return err
			}
			printOrders(cmd, page.Orders, true)
			if page.NextCursor != "" {
				cmd.Printf("\nMore results: --cursor %s\n", page.NextCursor)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&q.Status, "status", "", "filter by status (all, Pending, Shipped, ...)")
	cmd.Flags().UintVar(&q.UserID, "user", 0, "filter by customer id")
	cmd.Flags().StringVar(&q.Search, "search", "", "match a substring of the order id")
	cmd.Flags().IntVar(&q.Limit, "limit", 0, "page size (1-100)")
	cmd.Flags().StringVar(&q.Cursor, "cursor", "", "cursor from a previous page")
	return cmd
}

func (c *cli) adminStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <order-id> <status>",
		Short: "Change an order's status",
		Long:  fmt.Sprintf("Valid statuses: %s", strings.Join(statusNames(), ", ")),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			resp, err := c.app.Orders.UpdateOrderStatus(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			cmd.Println(resp.Message)
			return nil
		},
	}
}

func (c *cli) adminDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show sales analytics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.app.Analytics.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			printDashboard(cmd, d)
			return nil
		},
	}
}

func (c *cli) adminProductsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage the catalog",
	}

	var createIn productFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := createIn.input()
			if err != nil {
				return err
			}
			res, err := c.app.Products.CreateProduct(cmd.Context(), input)
			if err != nil {
				return err
			}
			cmd.Printf("%s (#%d)\n", res.Message, res.ID)
			return nil
		},
	}
	createIn.bind(create)

	var updateIn productFlags
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a product's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			input, err := updateIn.input()
			if err != nil {
				return err
			}
			res, err := c.app.Products.UpdateProduct(cmd.Context(), id, input)
			if err != nil {
				return err
			}
			cmd.Println(res.Message)
			return nil
		},
	}
	updateIn.bind(update)

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := c.app.Products.DeleteProduct(cmd.Context(), id)
			if err != nil {
				return err
			}
			cmd.Println(res.Message)
			return nil
		},
	}

	cmd.AddCommand(create, update, del)
	return cmd
}

type productFlags struct {
	name        string
	price       string
	image       string
	description string
	category    string
	images      []string
	features    []string
	specs       map[string]string
}

func (f *productFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "product name")
	cmd.Flags().StringVar(&f.price, "price", "", "unit price")
	cmd.Flags().StringVar(&f.image, "image", "", "main image URL")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	cmd.Flags().StringVar(&f.category, "category", "", "category (Audio, Electronics, Accessories, Computers, Gaming, Other)")
	cmd.Flags().StringSliceVar(&f.images, "images", nil, "gallery image URLs")
	cmd.Flags().StringArrayVar(&f.features, "feature", nil, "feature bullet, repeatable")
	cmd.Flags().StringToStringVar(&f.specs, "spec", nil, "specification key=value, repeatable")
}

func (f *productFlags) input() (products.ProductInput, error) {
	if f.name == "" || f.category == "" || f.price == "" {
		return products.ProductInput{}, pkgerrors.New(pkgerrors.CodeValidation, "--name, --price and --category are required")
	}
	price, err := decimal.NewFromString(f.price)
	if err != nil {
		return products.ProductInput{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid price %q", f.price))
	}
	return products.ProductInput{
		Name:           f.name,
		Price:          price,
		ImageMain:      f.image,
		Description:    f.description,
		Category:       f.category,
		Images:         f.images,
		Features:       f.features,
		Specifications: f.specs,
	}, nil
}

func printDashboard(cmd *cobra.Command, d *analytics.Dashboard) {
	cmd.Printf("Revenue (delivered): %s\n", format.Money(d.TotalRevenue))
	cmd.Printf("Revenue (all):       %s\n", format.Money(d.TotalRevenueAll))
	cmd.Printf("Profit:              %s\n", format.Money(d.TotalProfit))
	cmd.Printf("Orders:              %s (%s delivered, %s cancelled)\n", format.Count(d.TotalOrders), format.Count(d.DeliveredCount), format.Count(d.CancelledCount))
	cmd.Printf("Success rate:        %s%%\n", format.Number(d.SuccessRate))
	cmd.Printf("Items sold:          %s\n", format.Count(d.ItemsSold))
	cmd.Printf("Avg order value:     %s\n", format.Money(d.AvgOrderValue))

	if len(d.TopProducts) > 0 {
		cmd.Println("\nTop products:")
		for i, p := range d.TopProducts {
			cmd.Printf("  %d. %s (%s sold)\n", i+1, p.Name, format.Count(p.Quantity))
		}
	}
	if len(d.Daily) > 0 {
		cmd.Println("\nLast 7 days:")
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  DATE\tORDERS\tREVENUE\tPROFIT")
		for _, day := range d.Daily {
			fmt.Fprintf(tw, "  %s\t%d\t%s\t%s\n", day.Date, day.Orders, format.Money(day.Revenue), format.Money(day.Profit))
		}
		_ = tw.Flush()
	}
	if len(d.CategoryRevenue) > 0 {
		cmd.Println("\nRevenue by category:")
		for _, cat := range d.CategoryRevenue {
			cmd.Printf("  %s: %s\n", cat.Category, format.Money(cat.Revenue))
		}
	}
	if len(d.PaymentMethods) > 0 {
		cmd.Println("\nPayment methods:")
		for _, pm := range d.PaymentMethods {
			cmd.Printf("  %s: %s\n", pm.Method, format.Count(pm.Count))
		}
	}
}

func statusNames() []string {
	all := enums.OrderStatuses()
	names := make([]string, 0, len(all))
	for _, s := range all {
		names = append(names, s.String())
	}
	return names
}

func paymentLabel(method string) string {
	m, err := enums.ParsePaymentMethod(method)
	if err != nil {
		return strings.ToUpper(method)
	}
	return m.Label()
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
