package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/webmarket/internal/auth"
	"github.com/angelmondragon/webmarket/internal/orders"
	"github.com/angelmondragon/webmarket/internal/storefront"
	pkgerrors "github.com/angelmondragon/webmarket/pkg/errors"
	"github.com/angelmondragon/webmarket/pkg/format"
)

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "--email and --password are required")
			}
			user, err := c.app.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			cmd.Printf("Welcome back, %s\n", displayName(user))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var req auth.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a shopper account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Name == "" || req.Email == "" || req.Password == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "--name, --email and --password are required")
			}
			user, err := c.app.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			cmd.Printf("Account created. Welcome, %s\n", displayName(user))
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the remembered session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Logout(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("Logged out")
			return nil
		},
	}
}

func (c *cli) ordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Show your order history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := c.app.MyOrders(cmd.Context())
			if err != nil {
				return err
			}
			printOrders(cmd, list, false)
			return nil
		},
	}

	invoice := &cobra.Command{
		Use:   "invoice <order-id>",
		Short: "Print the invoice for one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			order, err := c.app.Orders.GetOrder(cmd.Context(), id)
			if err != nil {
				return err
			}
			printInvoice(cmd, order)
			return nil
		},
	}
	cmd.AddCommand(invoice)
	return cmd
}

func displayName(u storefront.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

func printOrders(cmd *cobra.Command, list []orders.OrderView, withUser bool) {
	if len(list) == 0 {
		cmd.Println("No orders found")
		return
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	if withUser {
		fmt.Fprintln(tw, "ORDER\tDATE\tCUSTOMER\tITEMS\tPAYMENT\tTOTAL\tSTATUS")
	} else {
		fmt.Fprintln(tw, "ORDER\tDATE\tITEMS\tPAYMENT\tTOTAL\tSTATUS")
	}
	for _, o := range list {
		items := 0
		for _, item := range o.Items {
			items += item.Quantity
		}
		date := o.Date.Local().Format("02 Jan 2006")
		payment := paymentLabel(o.PaymentMethod)
		if withUser {
			customer := "-"
			if o.User != nil {
				customer = o.User.Name
			}
			fmt.Fprintf(tw, "#%d\t%s\t%s\t%d\t%s\t%s\t%s\n", o.ID, date, customer, items, payment, format.Money(o.Total), o.Status)
			continue
		}
		fmt.Fprintf(tw, "#%d\t%s\t%d\t%s\t%s\t%s\n", o.ID, date, items, payment, format.Money(o.Total), o.Status)
	}
	_ = tw.Flush()
}

func printInvoice(cmd *cobra.Command, o *orders.OrderView) {
	cmd.Printf("INVOICE #%d\n", o.ID)
	cmd.Printf("Date:    %s\n", o.Date.Local().Format("02 Jan 2006 15:04"))
	if o.User != nil {
		cmd.Printf("Bill to: %s <%s>\n", o.User.Name, o.User.Email)
	}
	cmd.Printf("Payment: %s\n", paymentLabel(o.PaymentMethod))
	cmd.Printf("Status:  %s\n\n", o.Status)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tQTY\tPRICE\tAMOUNT")
	for _, item := range o.Items {
		amount := item.Price.Mul(decimalFromInt(item.Quantity))
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", item.Name, item.Quantity, format.Money(item.Price), format.Money(amount))
	}
	_ = tw.Flush()

	tax, grand := storefront.InvoiceTotals(o.Total)
	cmd.Printf("\nSubtotal:   %s\n", format.Money(o.Total))
	cmd.Printf("GST (18%%):  %s\n", format.Money(tax))
	cmd.Printf("Grand total: %s\n", format.Money(grand))
}
