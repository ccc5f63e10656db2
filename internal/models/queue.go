package models

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
)

// QueueView is the snapshot rendered on the in-queue screen.
type QueueView struct {
	Position             int           `json:"position"`
	EstimatedWaitMinutes int           `json:"estimated_wait_minutes"`
	TotalWaiting         int           `json:"total_waiting"`
	ServiceName          string        `json:"service_name"`
	PaymentStatus        PaymentStatus `json:"payment_status"`
}

// CanPay reports whether the pay intent is offered.
func (q QueueView) CanPay() bool {
	return q.PaymentStatus == PaymentPending
}
