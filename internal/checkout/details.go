package checkout

import (
	"strings"

	"github.com/angelmondragon/webmarket/pkg/enums"
)

// Details is the method-specific payload typed into the payment popup. It is
// never transmitted; no gateway is integrated.
type Details interface {
	Method() enums.PaymentMethod
}

// UPIDetails holds the optional UPI reference the buyer typed.
type UPIDetails struct {
	Reference string
}

func (UPIDetails) Method() enums.PaymentMethod { return enums.PaymentMethodUPI }

// CardDetails holds card form input as plain strings.
type CardDetails struct {
	Number string
	Expiry string
	CVV    string
}

func (CardDetails) Method() enums.PaymentMethod { return enums.PaymentMethodCard }

// String masks everything but the last four digits so details never end up in logs.
func (c CardDetails) String() string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, c.Number)
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return "card ****" + digits
}
