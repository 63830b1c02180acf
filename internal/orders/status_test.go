package orders

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusPaid, StatusShipped, true},
		{StatusPaid, StatusCancelled, true},
		{StatusPaid, StatusPending, false},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCanCancel(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusPaid} {
		if !CanCancel(s) {
			t.Errorf("CanCancel(%s) = false, want true", s)
		}
	}
	for _, s := range []Status{StatusShipped, StatusDelivered, StatusCancelled} {
		if CanCancel(s) {
			t.Errorf("CanCancel(%s) = true, want false", s)
		}
	}
}

func TestPaySalesDelta(t *testing.T) {
	tests := []struct {
		name string
		mode AccountingMode
		qty  int
		want int
	}{
		{"creation mode does not recount at payment", AccountingCreation, 3, 0},
		{"legacy mode counts again at payment", AccountingLegacy, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.paySalesDelta(tt.qty); got != tt.want {
				t.Errorf("paySalesDelta(%d) = %d, want %d", tt.qty, got, tt.want)
			}
		})
	}
}

func TestCancelSalesDelta(t *testing.T) {
	tests := []struct {
		name    string
		mode    AccountingMode
		wasPaid bool
		qty     int
		want    int
	}{
		{"creation mode reverses a pending order fully", AccountingCreation, false, 3, 3},
		{"creation mode reverses a paid order fully", AccountingCreation, true, 3, 3},
		{"legacy mode leaves a pending order's count alone", AccountingLegacy, false, 3, 0},
		{"legacy mode reverses only the payment-time increment", AccountingLegacy, true, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.cancelSalesDelta(tt.wasPaid, tt.qty); got != tt.want {
				t.Errorf("cancelSalesDelta(%v, %d) = %d, want %d", tt.wasPaid, tt.qty, got, tt.want)
			}
		})
	}
}

func TestAccountingNetEffect(t *testing.T) {
	// Net sales_count movement across a full lifecycle: creation always
	// adds qty up front, then the mode decides the rest.
	const qty = 2
	for _, tt := range []struct {
		name        string
		mode        AccountingMode
		paid        bool
		wantAtRest  int // after create (+pay when paid)
		wantAfterCx int // after cancellation
	}{
		{"creation, cancel while pending", AccountingCreation, false, qty, 0},
		{"creation, cancel after pay", AccountingCreation, true, qty, 0},
		{"legacy, cancel while pending keeps the creation count", AccountingLegacy, false, qty, qty},
		{"legacy, cancel after pay keeps the creation count", AccountingLegacy, true, 2 * qty, qty},
	} {
		t.Run(tt.name, func(t *testing.T) {
			count := qty // creation-time increment, both modes
			if tt.paid {
				count += tt.mode.paySalesDelta(qty)
			}
			if count != tt.wantAtRest {
				t.Fatalf("count before cancel = %d, want %d", count, tt.wantAtRest)
			}
			count -= tt.mode.cancelSalesDelta(tt.paid, qty)
			if count != tt.wantAfterCx {
				t.Errorf("count after cancel = %d, want %d", count, tt.wantAfterCx)
			}
		})
	}
}

func TestParseAccountingMode(t *testing.T) {
	if ParseAccountingMode("legacy") != AccountingLegacy {
		t.Fatal("legacy not recognized")
	}
	if ParseAccountingMode("creation") != AccountingCreation {
		t.Fatal("creation should map to default")
	}
	if ParseAccountingMode("") != AccountingCreation {
		t.Fatal("empty should map to default")
	}
}
