// Package storefront composes the cart, checkout flow, API client and session the
// way a browser storefront would, for use by the storefront CLI.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/webmarket/internal/apiclient"
	"github.com/angelmondragon/webmarket/internal/auth"
	"github.com/angelmondragon/webmarket/internal/cart"
	"github.com/angelmondragon/webmarket/internal/checkout"
	"github.com/angelmondragon/webmarket/internal/orders"
	"github.com/angelmondragon/webmarket/pkg/config"
	"github.com/angelmondragon/webmarket/pkg/enums"
	pkgerrors "github.com/angelmondragon/webmarket/pkg/errors"
	"github.com/angelmondragon/webmarket/pkg/localstore"
	"github.com/angelmondragon/webmarket/pkg/logger"
	"github.com/angelmondragon/webmarket/pkg/metrics"
)

const (
	MessageLoginRequired = "Please login before placing an order"
	// GSTRate is applied on invoices for display only.
	GSTRate = "0.18"
)

// AppParams bundles what NewApp needs. Store and HTTPClient are optional.
type AppParams struct {
	Config     *config.StorefrontConfig
	Store      localstore.Store
	HTTPClient *http.Client
	Out        io.Writer
	Logger     *logger.Logger
	Metrics    *metrics.CheckoutMetrics
	Sleep      checkout.Sleeper
}

// App is one storefront instance: a cart, a checkout flow and the API behind them.
type App struct {
	Cart    *cart.Store
	Flow    *checkout.Flow
	Session *SessionStore

	Products  *apiclient.ProductClient
	Orders    *apiclient.OrderClient
	Auth      *apiclient.AuthClient
	Analytics *apiclient.AnalyticsClient

	client    *apiclient.Client
	store     localstore.Store
	navigator *consoleNavigator
	out       io.Writer
	logg      *logger.Logger
}

func NewApp(ctx context.Context, params AppParams) (*App, error) {
	cfg := params.Config
	if cfg == nil {
		return nil, fmt.Errorf("storefront config required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	out := params.Out
	if out == nil {
		out = os.Stdout
	}

	store := params.Store
	if store == nil {
		opened, err := localstore.Open(ctx, cfg, logg)
		if err != nil {
			return nil, err
		}
		store = opened
	}

	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	client, err := apiclient.NewClient(cfg.APIURL, httpClient, logg)
	if err != nil {
		return nil, err
	}
	client.SetTimeout(cfg.APITimeout)

	cartStore, err := cart.NewStore(ctx, store, logg)
	if err != nil {
		return nil, err
	}
	session, err := NewSessionStore(store, logg)
	if err != nil {
		return nil, err
	}
	if user, ok := session.CurrentUser(ctx); ok {
		client.SetToken(user.AccessToken)
	}

	orderClient := apiclient.NewOrderClient(client)
	navigator := &consoleNavigator{out: out}
	flow, err := checkout.NewFlow(cartStore, orderGateway{client: orderClient}, consoleNotifier{out: out}, navigator, checkout.Options{
		MinProcessing:  cfg.MinProcessing,
		SuccessDisplay: cfg.SuccessDisplay,
		Sleep:          params.Sleep,
		Metrics:        params.Metrics,
		Logger:         logg,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		Cart:      cartStore,
		Flow:      flow,
		Session:   session,
		Products:  apiclient.NewProductClient(client),
		Orders:    orderClient,
		Auth:      apiclient.NewAuthClient(client),
		Analytics: apiclient.NewAnalyticsClient(client),
		client:    client,
		store:     store,
		navigator: navigator,
		out:       out,
		logg:      logg,
	}, nil
}

func (a *App) Close() error {
	return a.store.Close()
}

// LastRedirect is the page the checkout flow last sent the buyer to.
func (a *App) LastRedirect() string {
	return a.navigator.last
}

// AddProduct looks the product up in the catalog and adds it to the cart.
func (a *App) AddProduct(ctx context.Context, productID uint, quantity int) error {
	product, err := a.Products.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	a.Cart.AddToCart(ctx, cart.Product{
		ID:    product.ID,
		Name:  product.Name,
		Price: product.Price,
		Image: product.Image,
	}, quantity)
	return nil
}

func (a *App) Login(ctx context.Context, email, password string) (User, error) {
	resp, err := a.Auth.Login(ctx, email, password)
	if err != nil {
		return User{}, err
	}
	return a.remember(ctx, resp)
}

func (a *App) Register(ctx context.Context, req auth.RegisterRequest) (User, error) {
	resp, err := a.Auth.Register(ctx, req)
	if err != nil {
		return User{}, err
	}
	return a.remember(ctx, resp)
}

func (a *App) remember(ctx context.Context, resp *auth.LoginResponse) (User, error) {
	user := User{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	if resp.User != nil {
		user.ID = resp.User.ID
		user.Name = resp.User.Name
		user.Email = resp.User.Email
		user.Role = enums.UserRole(resp.User.Role)
	}
	if err := a.Session.SaveUser(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Logout revokes the server session when possible and always forgets the local one.
func (a *App) Logout(ctx context.Context) error {
	remoteErr := a.Auth.Logout(ctx)
	if remoteErr != nil {
		a.logg.Warn(a.logg.WithField(ctx, "error", remoteErr.Error()), "session.remote_logout_failed")
	}
	return a.Session.Logout(ctx)
}

// Checkout drives the payment popup from open to pay for the signed-in user.
func (a *App) Checkout(ctx context.Context, details checkout.Details) (checkout.OrderConfirmation, error) {
	user, ok := a.Session.CurrentUser(ctx)
	if !ok {
		return checkout.OrderConfirmation{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, checkout.ErrLoginRequired, MessageLoginRequired)
	}
	if details == nil {
		return checkout.OrderConfirmation{}, checkout.ErrDetailsMismatch
	}

	if err := a.Flow.Open(ctx, user.ID); err != nil {
		return checkout.OrderConfirmation{}, err
	}
	steps := []func() error{
		func() error { return a.Flow.SelectMethod(details.Method()) },
		a.Flow.Continue,
		func() error { return a.Flow.EnterDetails(details) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			if cancelErr := a.Flow.Cancel(ctx); cancelErr != nil && !errors.Is(cancelErr, checkout.ErrInvalidTransition) {
				a.logg.Warn(ctx, "checkout.cancel_failed")
			}
			return checkout.OrderConfirmation{}, err
		}
	}
	return a.Flow.PayNow(ctx)
}

// MyOrders lists the signed-in user's order history.
func (a *App) MyOrders(ctx context.Context) ([]orders.OrderView, error) {
	user, ok := a.Session.CurrentUser(ctx)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Please login to view your orders")
	}
	return a.Orders.GetUserOrders(ctx, user.ID)
}

// InvoiceTotals returns the display tax and grand total for an order total.
func InvoiceTotals(total decimal.Decimal) (tax, grand decimal.Decimal) {
	tax = total.Mul(decimal.RequireFromString(GSTRate)).Round(2)
	return tax, total.Add(tax)
}
