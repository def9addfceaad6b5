package payment

import (
	"context"
	"time"

	"github.com/nanayawb/kentecart/internal/logger"
	"github.com/nanayawb/kentecart/internal/types/order"

	"go.uber.org/zap"
)

// Verifier re-checks a single reference against the gateway.
type Verifier interface {
	Verify(ctx context.Context, reference string) (bool, error)
}

// PendingLister finds orders still waiting on a gateway outcome.
type PendingLister interface {
	ListAwaitingPayment(ctx context.Context) ([]order.Order, error)
}

func workerLoop(ctx context.Context, id int, jobs <-chan string, v Verifier) {
	logger.Log.Info("payment worker started", zap.Int("worker", id))
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("payment worker stopping", zap.Int("worker", id))
			return

		case reference, ok := <-jobs:
			if !ok {
				return
			}
			applied, err := v.Verify(ctx, reference)
			if err != nil {
				logger.Log.Warn("payment verify failed",
					zap.Int("worker", id),
					zap.String("reference", reference),
					zap.Error(err))
				continue
			}
			if applied {
				logger.Log.Info("payment confirmed by reconciler",
					zap.Int("worker", id),
					zap.String("reference", reference))
			}
		}
	}
}

// DispatcherLoop periodically re-verifies orders stuck in pending payment.
// It covers webhooks the service never received: the customer paid, the
// callback was lost, and the synchronous verify was never triggered.
func DispatcherLoop(ctx context.Context, svc *Service, workerCount int, interval time.Duration) {
	jobs := make(chan string, workerCount*3)

	for i := 1; i <= workerCount; i++ {
		go workerLoop(ctx, i, jobs, svc)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			close(jobs)
			return
		case <-ticker.C:
			orders, err := svc.ListAwaitingPayment(ctx)
			if err != nil {
				logger.Log.Error("list awaiting payment", zap.Error(err))
				continue
			}
			for _, o := range orders {
				select {
				case jobs <- o.PaymentReference:
				default:
					// channel full, this reference waits for the next tick
				}
			}
		}
	}
}
