package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/angelmondragon/webmarket/internal/orders"
)

type OrderClient struct{ c *Client }

func NewOrderClient(c *Client) *OrderClient { return &OrderClient{c: c} }

// CreateOrder places an order. A non-empty idempotencyKey is sent as the Idempotency-Key header.
// The client timeout does not apply: a slow order must not be reported as failed while the
// API may still create it.
func (oc *OrderClient) CreateOrder(ctx context.Context, req orders.CreateOrderRequest, idempotencyKey string) (*orders.CreateOrderResponse, error) {
	var headers http.Header
	if idempotencyKey != "" {
		headers = http.Header{headerIdempotency: []string{idempotencyKey}}
	}
	var out orders.CreateOrderResponse
	if err := oc.c.send(ctx, http.MethodPost, "/orders", nil, req, headers, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// OrderQuery narrows the admin order list. Empty fields are not sent.
type OrderQuery struct {
	Status string
	UserID uint
	Search string
	Limit  int
	Cursor string
}

func (q OrderQuery) values() url.Values {
	v := url.Values{}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.UserID != 0 {
		v.Set("userId", strconv.FormatUint(uint64(q.UserID), 10))
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Cursor != "" {
		v.Set("cursor", q.Cursor)
	}
	return v
}

func (oc *OrderClient) GetAllOrders(ctx context.Context, q OrderQuery) (*orders.OrderList, error) {
	var out orders.OrderList
	if err := oc.c.do(ctx, http.MethodGet, "/orders", q.values(), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (oc *OrderClient) GetUserOrders(ctx context.Context, userID uint) ([]orders.OrderView, error) {
	var out []orders.OrderView
	if err := oc.c.do(ctx, http.MethodGet, "/orders/user/"+strconv.FormatUint(uint64(userID), 10), nil, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (oc *OrderClient) GetOrder(ctx context.Context, orderID uint) (*orders.OrderView, error) {
	var out orders.OrderView
	if err := oc.c.do(ctx, http.MethodGet, "/orders/"+strconv.FormatUint(uint64(orderID), 10), nil, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (oc *OrderClient) UpdateOrderStatus(ctx context.Context, orderID uint, status string) (*orders.UpdateStatusResponse, error) {
	var out orders.UpdateStatusResponse
	path := "/orders/" + strconv.FormatUint(uint64(orderID), 10) + "/status"
	if err := oc.c.do(ctx, http.MethodPut, path, nil, orders.UpdateStatusRequest{Status: status}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
