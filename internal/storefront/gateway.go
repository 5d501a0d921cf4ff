package storefront

import (
	"context"
	"fmt"
	"io"

	"github.com/angelmondragon/webmarket/internal/apiclient"
	"github.com/angelmondragon/webmarket/internal/checkout"
	"github.com/angelmondragon/webmarket/internal/orders"
	pkgerrors "github.com/angelmondragon/webmarket/pkg/errors"
)

// orderGateway adapts the REST order client to the checkout flow.
type orderGateway struct {
	client *apiclient.OrderClient
}

func (g orderGateway) CreateOrder(ctx context.Context, req checkout.OrderRequest, idempotencyKey string) (checkout.OrderConfirmation, error) {
	items := make([]orders.CreateOrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		items = append(items, orders.CreateOrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.UnitPrice,
			Image:     line.ImageRef,
			Quantity:  line.Quantity,
		})
	}
	resp, err := g.client.CreateOrder(ctx, orders.CreateOrderRequest{
		UserID:        req.UserID,
		Total:         req.Total,
		Items:         items,
		PaymentMethod: req.PaymentMethod.String(),
	}, idempotencyKey)
	if err != nil {
		return checkout.OrderConfirmation{}, err
	}
	if !resp.Success {
		return checkout.OrderConfirmation{}, pkgerrors.New(pkgerrors.CodeStateConflict, "order was not accepted")
	}
	return checkout.OrderConfirmation{OrderID: resp.OrderID}, nil
}

// consoleNotifier prints checkout messages, like the toast in a browser.
type consoleNotifier struct {
	out io.Writer
}

func (n consoleNotifier) Success(_ context.Context, message string) {
	fmt.Fprintln(n.out, message)
}

func (n consoleNotifier) Failure(_ context.Context, message string, err error) {
	if typed := pkgerrors.As(err); typed != nil && typed.Message() != "" {
		fmt.Fprintf(n.out, "%s: %s\n", message, typed.Message())
		return
	}
	fmt.Fprintln(n.out, message)
}

// consoleNavigator remembers the last redirect so the CLI can report where the buyer landed.
type consoleNavigator struct {
	out  io.Writer
	last string
}

func (n *consoleNavigator) Redirect(_ context.Context, path string) {
	n.last = path
	fmt.Fprintf(n.out, "Returning to %s\n", path)
}
