package main

import (
	"github.com/spf13/cobra"

	"github.com/angelmondragon/webmarket/internal/checkout"
	"github.com/angelmondragon/webmarket/pkg/enums"
	pkgerrors "github.com/angelmondragon/webmarket/pkg/errors"
	"github.com/angelmondragon/webmarket/pkg/format"
)

type checkoutFlags struct {
	method     string
	upiRef     string
	cardNumber string
	cardExpiry string
	cardCVV    string
}

// details builds the popup input for the chosen method. Flags of the other method are rejected.
func (f checkoutFlags) details() (checkout.Details, error) {
	method, err := enums.ParsePaymentMethod(f.method)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "--method must be upi or card")
	}
	switch method {
	case enums.PaymentMethodUPI:
		if f.cardNumber != "" || f.cardExpiry != "" || f.cardCVV != "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "card flags cannot be used with --method upi")
		}
		return checkout.UPIDetails{Reference: f.upiRef}, nil
	default:
		if f.upiRef != "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "--upi-ref cannot be used with --method card")
		}
		return checkout.CardDetails{Number: f.cardNumber, Expiry: f.cardExpiry, CVV: f.cardCVV}, nil
	}
}

func (c *cli) checkoutCmd() *cobra.Command {
	var flags checkoutFlags
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Pay for the cart and place the order",
		Long: `Runs the payment popup: choose a method, enter details, then Pay Now.

Payment details are collected for display only and are never sent to the server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := flags.details()
			if err != nil {
				return err
			}
			total := c.app.Cart.Total()
			cmd.Printf("Processing payment of %s via %s...\n", format.Money(total), details.Method().Label())

			confirmation, err := c.app.Checkout(cmd.Context(), details)
			if err != nil {
				return err
			}
			cmd.Printf("Order #%d placed\n", confirmation.OrderID)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.method, "method", "upi", "payment method: upi or card")
	cmd.Flags().StringVar(&flags.upiRef, "upi-ref", "", "UPI reference")
	cmd.Flags().StringVar(&flags.cardNumber, "card-number", "", "card number")
	cmd.Flags().StringVar(&flags.cardExpiry, "card-expiry", "", "card expiry (MM/YY)")
	cmd.Flags().StringVar(&flags.cardCVV, "card-cvv", "", "card CVV")
	return cmd
}
