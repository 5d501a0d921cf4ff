package enums

import "testing"

func TestParsePaymentMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    PaymentMethod
		wantErr bool
	}{
		{in: "upi", want: PaymentMethodUPI},
		{in: " CARD ", want: PaymentMethodCard},
		{in: "cash", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePaymentMethod(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %s got %s", tt.want, got)
			}
		})
	}
	if PaymentMethodCard.Label() != "CARD" {
		t.Fatalf("unexpected label %q", PaymentMethodCard.Label())
	}
}

func TestParseOrderStatus(t *testing.T) {
	for _, status := range OrderStatuses() {
		got, err := ParseOrderStatus(string(status))
		if err != nil || got != status {
			t.Fatalf("round trip failed for %q: %v", status, err)
		}
	}
	if _, err := ParseOrderStatus("delivered"); err == nil {
		t.Fatal("status parsing is case-sensitive")
	}
	if OrderStatus("Lost").IsValid() {
		t.Fatal("unknown status should be invalid")
	}
}

func TestParseUserRole(t *testing.T) {
	if got, err := ParseUserRole("Admin"); err != nil || got != UserRoleAdmin {
		t.Fatalf("expected admin, got %q err=%v", got, err)
	}
	if _, err := ParseUserRole("root"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestParseProductCategory(t *testing.T) {
	if got, err := ParseProductCategory("Gaming"); err != nil || got != ProductCategoryGaming {
		t.Fatalf("expected Gaming, got %q err=%v", got, err)
	}
	if _, err := ParseProductCategory("Toys"); err == nil {
		t.Fatal("expected error for unknown category")
	}
	if !ProductCategoryOther.IsValid() {
		t.Fatal("Other must be valid")
	}
}
