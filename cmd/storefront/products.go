package main

import (
	"fmt"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/webmarket/internal/products"
	pkgerrors "github.com/angelmondragon/webmarket/pkg/errors"
	"github.com/angelmondragon/webmarket/pkg/format"
)

func (c *cli) productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the catalog",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := c.app.Products.GetProducts(cmd.Context())
			if err != nil {
				return err
			}
			printProducts(cmd, items)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one product with its gallery, features and specifications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			product, err := c.app.Products.GetProduct(cmd.Context(), id)
			if err != nil {
				return err
			}
			printProduct(cmd, product)
			return nil
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

func printProducts(cmd *cobra.Command, items []products.ProductSummary) {
	if len(items) == 0 {
		cmd.Println("No products found")
		return
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE")
	for _, p := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, format.Money(p.Price))
	}
	_ = tw.Flush()
}

func printProduct(cmd *cobra.Command, p *products.ProductDetail) {
	cmd.Printf("%s (#%d)\n", p.Name, p.ID)
	cmd.Printf("Category: %s\n", p.Category)
	cmd.Printf("Price:    %s\n", format.Money(p.Price))
	if p.Rating != nil {
		reviews := 0
		if p.Reviews != nil {
			reviews = *p.Reviews
		}
		cmd.Printf("Rating:   %s (%s reviews)\n", p.Rating.StringFixed(1), format.Count(reviews))
	}
	if p.Description != "" {
		cmd.Printf("\n%s\n", p.Description)
	}
	if len(p.Features) > 0 {
		cmd.Println("\nFeatures:")
		for _, f := range p.Features {
			cmd.Printf("  - %s\n", f)
		}
	}
	if len(p.Specifications) > 0 {
		cmd.Println("\nSpecifications:")
		keys := make([]string, 0, len(p.Specifications))
		for k := range p.Specifications {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			cmd.Printf("  %s: %s\n", k, p.Specifications[k])
		}
	}
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid id %q", raw))
	}
	return uint(id), nil
}
