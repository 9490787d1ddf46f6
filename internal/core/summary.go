package core

// SummaryTotals holds the precomputed per-window totals the dashboard
// cards display. Read-only from the client's perspective.
type SummaryTotals struct {
	Today     Money `json:"today"`
	Yesterday Money `json:"yesterday"`
	Weekly    Money `json:"weekly"`
	Monthly   Money `json:"monthly"`
	Yearly    Money `json:"yearly"`
	Total     Money `json:"total"`
}

// CategoryTotal is one row of a per-category breakdown.
type CategoryTotal struct {
	Name  string `json:"category__name"`
	Total Money  `json:"total"`
}

// PaymentTotal is one row of a per-payment-mode breakdown.
type PaymentTotal struct {
	Mode  string `json:"payment_mode"`
	Total Money  `json:"total_amount"`
	Count int64  `json:"count"`
}

// WindowedCategories carries category breakdowns per time window; the
// dashboard only renders Overall.
type WindowedCategories struct {
	Today     []CategoryTotal `json:"today"`
	Yesterday []CategoryTotal `json:"yesterday"`
	Weekly    []CategoryTotal `json:"weekly"`
	Monthly   []CategoryTotal `json:"monthly"`
	Yearly    []CategoryTotal `json:"yearly"`
	Overall   []CategoryTotal `json:"overall"`
}

// WindowedPayments carries payment-mode breakdowns per time window.
type WindowedPayments struct {
	Today     []PaymentTotal `json:"today"`
	Yesterday []PaymentTotal `json:"yesterday"`
	Weekly    []PaymentTotal `json:"weekly"`
	Monthly   []PaymentTotal `json:"monthly"`
	Yearly    []PaymentTotal `json:"yearly"`
	Overall   []PaymentTotal `json:"overall"`
}

// SummaryReport is the full dashboard aggregate object.
type SummaryReport struct {
	Summary       SummaryTotals      `json:"summary"`
	ByCategory    WindowedCategories `json:"by_category"`
	ByPaymentMode WindowedPayments   `json:"by_payment_mode"`
}
