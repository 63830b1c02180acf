package orders

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusPaid: true, StatusCancelled: true},
	StatusPaid:      {StatusShipped: true, StatusCancelled: true},
	StatusShipped:   {StatusDelivered: true},
	StatusDelivered: {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// CanCancel: cancellation is only allowed before fulfilment starts.
func CanCancel(s Status) bool {
	return s == StatusPending || s == StatusPaid
}

// AccountingMode decides when sales_count moves. The historical behaviour
// ("legacy") counted a sale at creation AND again at payment, and cancelling
// a paid order reversed only the payment-time increment. The default
// ("creation") counts once at creation and reverses fully on any
// cancellation.
type AccountingMode int

const (
	AccountingCreation AccountingMode = iota
	AccountingLegacy
)

func ParseAccountingMode(s string) AccountingMode {
	if s == "legacy" {
		return AccountingLegacy
	}
	return AccountingCreation
}

// paySalesDelta is the per-item sales_count increment applied at payment.
// Creation mode already counted the sale when the order was placed.
func (m AccountingMode) paySalesDelta(qty int) int {
	if m == AccountingLegacy {
		return qty
	}
	return 0
}

// cancelSalesDelta is the per-item sales_count reversal applied at
// cancellation. Legacy mode only ever reversed the payment-time increment,
// so a never-paid order reverses nothing.
func (m AccountingMode) cancelSalesDelta(wasPaid bool, qty int) int {
	if m == AccountingLegacy && !wasPaid {
		return 0
	}
	return qty
}
