package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/webmarket/internal/analytics"
	"github.com/angelmondragon/webmarket/internal/checkout"
	"github.com/angelmondragon/webmarket/internal/products"
	"github.com/angelmondragon/webmarket/internal/storefront"
	"github.com/angelmondragon/webmarket/internal/users"
	"github.com/angelmondragon/webmarket/pkg/config"
	"github.com/angelmondragon/webmarket/pkg/enums"
	pkgerrors "github.com/angelmondragon/webmarket/pkg/errors"
	"github.com/angelmondragon/webmarket/pkg/localstore"
	"github.com/angelmondragon/webmarket/pkg/logger"
	"github.com/angelmondragon/webmarket/pkg/types"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type harness struct {
	srv   *httptest.Server
	store localstore.Store
}

func newHarness(t *testing.T, role string) *harness {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/products", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.SuccessEnvelope{Data: []products.ProductSummary{
			{ID: 1, Name: "Studio Headphones", Price: decimal.RequireFromString("129999"), Category: "Audio"},
		}})
	})
	mux.HandleFunc("GET /api/v1/products/1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.SuccessEnvelope{Data: products.ProductDetail{
			ProductSummary: products.ProductSummary{ID: 1, Name: "Studio Headphones", Price: decimal.RequireFromString("1299.50"), Category: "Audio"},
			Specifications: map[string]string{"Weight": "250g", "Battery": "30h"},
		}})
	})
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.SuccessEnvelope{Data: map[string]any{
			"access_token":  "token",
			"refresh_token": "refresh",
			"user":          users.UserDTO{ID: 5, Name: "Ravi", Email: "ravi@example.com", Role: role},
		}})
	})
	mux.HandleFunc("GET /api/v1/admin/analytics", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.SuccessEnvelope{Data: analytics.Dashboard{
			TotalRevenue: decimal.RequireFromString("250000"),
			TotalOrders:  12,
		}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &harness{srv: srv, store: localstore.NewMemory()}
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := &cli{
		out: &out,
		cfg: &config.StorefrontConfig{
			APIURL:     h.srv.URL + "/api/v1",
			APITimeout: time.Second,
			Store:      config.LocalStoreMemory,
		},
		logg: logger.Nop(),
		newApp: func(ctx context.Context, params storefront.AppParams) (*storefront.App, error) {
			params.Store = h.store
			params.HTTPClient = h.srv.Client()
			params.Sleep = func(context.Context, time.Duration) error { return nil }
			return storefront.NewApp(ctx, params)
		},
	}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestProductsListUsesIndianGrouping(t *testing.T) {
	h := newHarness(t, "user")
	out, err := h.run(t, "products", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Studio Headphones")
	assert.Contains(t, out, "₹1,29,999.00")
}

func TestProductsShowSortsSpecifications(t *testing.T) {
	h := newHarness(t, "user")
	out, err := h.run(t, "products", "show", "1")
	require.NoError(t, err)
	assert.Less(t, bytes.Index([]byte(out), []byte("Battery")), bytes.Index([]byte(out), []byte("Weight")))
}

func TestProductsShowRejectsBadID(t *testing.T) {
	h := newHarness(t, "user")
	_, err := h.run(t, "products", "show", "abc")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCartPersistsAcrossInvocations(t *testing.T) {
	h := newHarness(t, "user")
	_, err := h.run(t, "cart", "add", "1", "--quantity", "2")
	require.NoError(t, err)

	out, err := h.run(t, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Items: 2")
	assert.Contains(t, out, "Total: ₹2,599.00")

	_, err = h.run(t, "cart", "update", "1", "0")
	require.NoError(t, err)
	out, err = h.run(t, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty")
}

func TestCheckoutRequiresLogin(t *testing.T) {
	h := newHarness(t, "user")
	_, err := h.run(t, "cart", "add", "1")
	require.NoError(t, err)

	_, err = h.run(t, "checkout", "--method", "upi")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), storefront.MessageLoginRequired)
}

func TestAdminRequiresAdminRole(t *testing.T) {
	h := newHarness(t, "user")
	_, err := h.run(t, "admin", "dashboard")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	_, err = h.run(t, "login", "--email", "ravi@example.com", "--password", "secret")
	require.NoError(t, err)
	_, err = h.run(t, "admin", "dashboard")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestAdminDashboard(t *testing.T) {
	h := newHarness(t, "admin")
	_, err := h.run(t, "login", "--email", "root@example.com", "--password", "secret")
	require.NoError(t, err)

	out, err := h.run(t, "admin", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "₹2,50,000.00")
	assert.Contains(t, out, "Orders:              12")
}

func TestCheckoutFlagsDetails(t *testing.T) {
	cases := []struct {
		name    string
		flags   checkoutFlags
		want    checkout.Details
		wantErr bool
	}{
		{name: "upi", flags: checkoutFlags{method: "upi", upiRef: "ref@bank"}, want: checkout.UPIDetails{Reference: "ref@bank"}},
		{name: "card uppercase", flags: checkoutFlags{method: "CARD", cardNumber: "4111", cardExpiry: "12/30", cardCVV: "123"}, want: checkout.CardDetails{Number: "4111", Expiry: "12/30", CVV: "123"}},
		{name: "unknown method", flags: checkoutFlags{method: "cash"}, wantErr: true},
		{name: "card flags on upi", flags: checkoutFlags{method: "upi", cardNumber: "4111"}, wantErr: true},
		{name: "upi ref on card", flags: checkoutFlags{method: "card", upiRef: "ref"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.flags.details()
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestProductFlagsInput(t *testing.T) {
	f := productFlags{name: "Mouse", price: "499.5", category: "Accessories", specs: map[string]string{"DPI": "1600"}}
	in, err := f.input()
	require.NoError(t, err)
	assert.True(t, in.Price.Equal(decimal.RequireFromString("499.5")))
	assert.Equal(t, "1600", in.Specifications["DPI"])

	f.price = "cheap"
	_, err = f.input()
	require.Error(t, err)

	_, err = (&productFlags{name: "Mouse"}).input()
	require.Error(t, err)
}

func TestPaymentLabel(t *testing.T) {
	assert.Equal(t, enums.PaymentMethodUPI.Label(), paymentLabel("upi"))
	assert.Equal(t, "CARD", paymentLabel("card"))
	assert.Equal(t, "WALLET", paymentLabel("wallet"))
}
