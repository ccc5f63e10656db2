package controller

import (
	"context"

	"barber-queue/internal/models"
)

// QueueEstimator supplies the numbers shown on the queue screen.
type QueueEstimator interface {
	Estimate(ctx context.Context, st State, service models.Service) (models.QueueView, error)
}

// FixedEstimator returns configured placeholder values; there is no queue
// engine behind it.
type FixedEstimator struct {
	Position     int
	WaitMinutes  int
	TotalWaiting int
}

func (f FixedEstimator) Estimate(_ context.Context, st State, service models.Service) (models.QueueView, error) {
	return models.QueueView{
		Position:             f.Position,
		EstimatedWaitMinutes: f.WaitMinutes,
		TotalWaiting:         f.TotalWaiting,
		ServiceName:          service.Name,
		PaymentStatus:        st.PaymentStatus,
	}, nil
}
