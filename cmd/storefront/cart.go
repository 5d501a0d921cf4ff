package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/webmarket/internal/cart"
	pkgerrors "github.com/angelmondragon/webmarket/pkg/errors"
	"github.com/angelmondragon/webmarket/pkg/format"
)

func (c *cli) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shopping cart",
	}

	var addQty int
	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if addQty < 1 {
				return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
			}
			if err := c.app.AddProduct(cmd.Context(), id, addQty); err != nil {
				return err
			}
			cmd.Printf("Added to cart. %s item(s) in cart\n", format.Count(c.app.Cart.ItemCount()))
			return nil
		},
	}
	add.Flags().IntVarP(&addQty, "quantity", "q", 1, "quantity to add")

	remove := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c.app.Cart.RemoveFromCart(cmd.Context(), id)
			printCart(cmd, c.app.Cart.Snapshot())
			return nil
		},
	}

	update := &cobra.Command{
		Use:   "update <product-id> <quantity>",
		Short: "Set the quantity of a cart line; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid quantity %q", args[1]))
			}
			c.app.Cart.UpdateQuantity(cmd.Context(), id, qty)
			printCart(cmd, c.app.Cart.Snapshot())
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.app.Cart.ClearCart(cmd.Context())
			cmd.Println("Cart cleared")
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the cart lines and total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printCart(cmd, c.app.Cart.Snapshot())
			return nil
		},
	}

	cmd.AddCommand(add, remove, update, clearCmd, show)
	return cmd
}

func printCart(cmd *cobra.Command, state cart.State) {
	if state.IsEmpty() {
		cmd.Println("Your cart is empty")
		return
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, line := range state.Lines {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", line.ProductID, line.Name, line.Quantity, format.Money(line.UnitPrice), format.Money(line.Subtotal()))
	}
	_ = tw.Flush()
	cmd.Printf("Items: %s\n", format.Count(state.ItemCount()))
	cmd.Printf("Total: %s\n", format.Money(state.Total()))
}
