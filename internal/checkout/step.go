package checkout

import (
	"time"

	"github.com/angelmondragon/webmarket/pkg/enums"
)

// StepName identifies a step of the payment popup.
type StepName string

const (
	StepClosed       StepName = "closed"
	StepSelectMethod StepName = "select_method"
	StepEnterDetails StepName = "enter_details"
	StepProcessing   StepName = "processing"
	StepSuccess      StepName = "success"
)

// Step is the current state of a Flow. Each concrete step carries only the data
// that exists while the flow is in it.
type Step interface {
	Name() StepName
}

// ClosedStep means no popup is shown and no session exists.
type ClosedStep struct{}

// SelectMethodStep is the method picker. Method defaults to UPI.
type SelectMethodStep struct {
	Method enums.PaymentMethod
}

// EnterDetailsStep collects the cosmetic payment details for Method.
type EnterDetailsStep struct {
	Method  enums.PaymentMethod
	Details Details
}

// ProcessingStep exists only while the order call is in flight.
type ProcessingStep struct {
	Method    enums.PaymentMethod
	StartedAt time.Time
}

// SuccessStep is shown after the order was accepted and the cart cleared.
type SuccessStep struct {
	Method  enums.PaymentMethod
	OrderID uint
}

func (ClosedStep) Name() StepName       { return StepClosed }
func (SelectMethodStep) Name() StepName { return StepSelectMethod }
func (EnterDetailsStep) Name() StepName { return StepEnterDetails }
func (ProcessingStep) Name() StepName   { return StepProcessing }
func (SuccessStep) Name() StepName      { return StepSuccess }
