package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/webmarket/internal/cart"
	"github.com/angelmondragon/webmarket/pkg/enums"
	"github.com/angelmondragon/webmarket/pkg/logger"
	"github.com/angelmondragon/webmarket/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMinProcessing  = 1500 * time.Millisecond
	DefaultSuccessDisplay = 2000 * time.Millisecond

	LandingPath = "/"

	MessagePaymentSuccessful = "Payment Successful!"
	MessagePaymentFailed     = "Payment failed"
)

var (
	ErrInvalidTransition = errors.New("checkout: invalid transition")
	ErrEmptyCart         = errors.New("checkout: cart is empty")
	ErrLoginRequired     = errors.New("checkout: login required")
	ErrInvalidMethod     = errors.New("checkout: invalid payment method")
	ErrDetailsMismatch   = errors.New("checkout: details do not match payment method")
)

// OrderRequest is what the order service receives for one Pay Now.
type OrderRequest struct {
	UserID        uint
	Total         decimal.Decimal
	Items         []cart.Line
	PaymentMethod enums.PaymentMethod
}

// OrderConfirmation is the order service's answer to a successful create.
type OrderConfirmation struct {
	OrderID uint
}

// OrderCreator creates orders. The idempotency key is stable for a session.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req OrderRequest, idempotencyKey string) (OrderConfirmation, error)
}

// Notifier shows transient messages to the buyer.
type Notifier interface {
	Success(ctx context.Context, message string)
	Failure(ctx context.Context, message string, err error)
}

// Navigator moves the buyer to another page.
type Navigator interface {
	Redirect(ctx context.Context, path string)
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Listener receives every step change. Listeners must not call back into the
// Flow synchronously.
type Listener func(Step)

// Session is the data of one open payment popup.
type Session struct {
	ID             uuid.UUID
	UserID         uint
	IdempotencyKey string
	OpenedAt       time.Time
}

// Options tunes a Flow. Zero values fall back to the defaults.
type Options struct {
	MinProcessing  time.Duration
	SuccessDisplay time.Duration
	Sleep          Sleeper
	Now            func() time.Time
	Metrics        *metrics.CheckoutMetrics
	Logger         *logger.Logger
}

// Flow is the payment popup state machine. At most one session is active at a time.
type Flow struct {
	mu       sync.Mutex
	notifyMu sync.Mutex

	step    Step
	session *Session

	cart      *cart.Store
	orders    OrderCreator
	notifier  Notifier
	navigator Navigator

	minProcessing  time.Duration
	successDisplay time.Duration
	sleep          Sleeper
	now            func() time.Time
	metrics        *metrics.CheckoutMetrics
	logg           *logger.Logger

	subs   []subscription
	nextID int
}

type subscription struct {
	id int
	fn Listener
}

// NewFlow wires a checkout flow. Notifier and navigator may be nil.
func NewFlow(cartStore *cart.Store, orders OrderCreator, notifier Notifier, navigator Navigator, opts Options) (*Flow, error) {
	if cartStore == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order creator required")
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if navigator == nil {
		navigator = nopNavigator{}
	}
	if opts.MinProcessing <= 0 {
		opts.MinProcessing = DefaultMinProcessing
	}
	if opts.SuccessDisplay <= 0 {
		opts.SuccessDisplay = DefaultSuccessDisplay
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Flow{
		step:           ClosedStep{},
		cart:           cartStore,
		orders:         orders,
		notifier:       notifier,
		navigator:      navigator,
		minProcessing:  opts.MinProcessing,
		successDisplay: opts.SuccessDisplay,
		sleep:          opts.Sleep,
		now:            opts.Now,
		metrics:        opts.Metrics,
		logg:           opts.Logger,
	}, nil
}

// Step returns the current step.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Session returns the active session, if any.
func (f *Flow) Session() (Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return Session{}, false
	}
	return *f.session, true
}

// Subscribe registers fn for step changes and returns a function that removes it.
func (f *Flow) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.subs = append(f.subs, subscription{id: id, fn: fn})
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			for i, sub := range f.subs {
				if sub.id == id {
					f.subs = append(f.subs[:i:i], f.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Open starts a session for userID and shows the method picker.
func (f *Flow) Open(ctx context.Context, userID uint) error {
	if userID == 0 {
		return ErrLoginRequired
	}
	f.mu.Lock()
	if _, ok := f.step.(ClosedStep); !ok {
		defer f.mu.Unlock()
		return f.invalid("open")
	}
	if f.cart.Snapshot().IsEmpty() {
		f.mu.Unlock()
		return ErrEmptyCart
	}
	f.session = &Session{
		ID:             uuid.New(),
		UserID:         userID,
		IdempotencyKey: uuid.NewString(),
		OpenedAt:       f.now().UTC(),
	}
	f.logg.Info(f.logg.WithFields(ctx, map[string]any{"session_id": f.session.ID.String(), "user_id": userID}), "checkout.opened")
	f.commit(SelectMethodStep{Method: enums.PaymentMethodUPI})
	return nil
}

// SelectMethod changes the chosen method while the picker is shown.
func (f *Flow) SelectMethod(method enums.PaymentMethod) error {
	if !method.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}
	f.mu.Lock()
	if _, ok := f.step.(SelectMethodStep); !ok {
		defer f.mu.Unlock()
		return f.invalid("select method")
	}
	f.commit(SelectMethodStep{Method: method})
	return nil
}

// Continue confirms the chosen method and shows the details form.
func (f *Flow) Continue() error {
	f.mu.Lock()
	step, ok := f.step.(SelectMethodStep)
	if !ok {
		defer f.mu.Unlock()
		return f.invalid("continue")
	}
	f.commit(EnterDetailsStep{Method: step.Method})
	return nil
}

// EnterDetails records the form input. The details must belong to the chosen method.
func (f *Flow) EnterDetails(details Details) error {
	f.mu.Lock()
	step, ok := f.step.(EnterDetailsStep)
	if !ok {
		defer f.mu.Unlock()
		return f.invalid("enter details")
	}
	if details == nil || details.Method() != step.Method {
		f.mu.Unlock()
		return ErrDetailsMismatch
	}
	step.Details = details
	f.commit(step)
	return nil
}

// Cancel discards the session from the picker or the details form.
func (f *Flow) Cancel(ctx context.Context) error {
	f.mu.Lock()
	switch f.step.(type) {
	case SelectMethodStep, EnterDetailsStep:
	default:
		defer f.mu.Unlock()
		return f.invalid("cancel")
	}
	f.closeLocked(ctx, "cancelled")
	return nil
}

// Back leaves the details form. The session is discarded.
func (f *Flow) Back(ctx context.Context) error {
	f.mu.Lock()
	if _, ok := f.step.(EnterDetailsStep); !ok {
		defer f.mu.Unlock()
		return f.invalid("back")
	}
	f.closeLocked(ctx, "back")
	return nil
}

// PayNow sends the single order request for this session and runs the flow to
// completion. The order call and the minimum processing delay run concurrently;
// neither is cancelled by ctx. On success the cart is cleared, the success step
// is shown for the display delay and the buyer is redirected to the landing page.
// On failure the flow closes with the cart intact.
func (f *Flow) PayNow(ctx context.Context) (OrderConfirmation, error) {
	ctx = context.WithoutCancel(ctx)

	f.mu.Lock()
	step, ok := f.step.(EnterDetailsStep)
	if !ok {
		defer f.mu.Unlock()
		return OrderConfirmation{}, f.invalid("pay now")
	}
	snapshot := f.cart.Snapshot()
	if snapshot.IsEmpty() {
		f.mu.Unlock()
		return OrderConfirmation{}, ErrEmptyCart
	}
	session := *f.session
	req := OrderRequest{
		UserID:        session.UserID,
		Total:         snapshot.Total(),
		Items:         snapshot.Lines,
		PaymentMethod: step.Method,
	}
	started := f.now()
	ctx = f.logg.WithFields(ctx, map[string]any{
		"session_id":     session.ID.String(),
		"user_id":        session.UserID,
		"payment_method": step.Method.String(),
	})
	f.commit(ProcessingStep{Method: step.Method, StartedAt: started})

	var confirmation OrderConfirmation
	var g errgroup.Group
	g.Go(func() error {
		var err error
		confirmation, err = f.orders.CreateOrder(ctx, req, session.IdempotencyKey)
		return err
	})
	g.Go(func() error {
		return f.sleep(ctx, f.minProcessing)
	})
	err := g.Wait()
	elapsed := f.now().Sub(started)

	if err != nil {
		f.metrics.ObserveAttempt(step.Method.String(), metrics.OutcomeFailure, elapsed)
		f.logg.Error(ctx, "checkout.order_failed", err)
		f.mu.Lock()
		f.closeLocked(ctx, "order_failed")
		f.notifier.Failure(ctx, MessagePaymentFailed, err)
		return OrderConfirmation{}, fmt.Errorf("create order: %w", err)
	}

	f.metrics.ObserveAttempt(step.Method.String(), metrics.OutcomeSuccess, elapsed)
	f.logg.Info(f.logg.WithOrderID(ctx, confirmation.OrderID), "checkout.order_created")
	f.cart.ClearCart(ctx)
	f.mu.Lock()
	f.commit(SuccessStep{Method: step.Method, OrderID: confirmation.OrderID})
	f.notifier.Success(ctx, MessagePaymentSuccessful)

	_ = f.sleep(ctx, f.successDisplay)

	f.mu.Lock()
	f.closeLocked(ctx, "completed")
	f.navigator.Redirect(ctx, LandingPath)
	return confirmation, nil
}

// invalid builds the transition error. Callers hold mu.
func (f *Flow) invalid(event string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, event, f.step.Name())
}

// closeLocked discards the session and moves to Closed. Callers hold mu; it is released.
func (f *Flow) closeLocked(ctx context.Context, reason string) {
	if f.session != nil {
		f.logg.Info(f.logg.WithFields(ctx, map[string]any{"session_id": f.session.ID.String(), "reason": reason}), "checkout.closed")
	}
	f.session = nil
	f.commit(ClosedStep{})
}

// commit stores next and notifies listeners in transition order. Callers hold mu;
// it is released before listeners run.
func (f *Flow) commit(next Step) {
	f.step = next
	listeners := make([]Listener, len(f.subs))
	for i, sub := range f.subs {
		listeners[i] = sub.fn
	}

	f.notifyMu.Lock()
	f.mu.Unlock()
	defer f.notifyMu.Unlock()
	for _, fn := range listeners {
		fn(next)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type nopNotifier struct{}

func (nopNotifier) Success(context.Context, string)        {}
func (nopNotifier) Failure(context.Context, string, error) {}

type nopNavigator struct{}

func (nopNavigator) Redirect(context.Context, string) {}
