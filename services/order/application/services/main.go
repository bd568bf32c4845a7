package services

import (
	"context"

	"github.com/ghuser/ordermgmt/pkg/app"
	"github.com/ghuser/ordermgmt/pkg/cache"
	"github.com/ghuser/ordermgmt/services/order/infrastructure/persistence/postgres"
)

// IdempotencyStore remembers the outcome of requests carrying an
// Idempotency-Key so retries replay instead of placing a second order.
type IdempotencyStore interface {
	Claim(ctx context.Context, scope, key string) (string, error)
	Complete(ctx context.Context, scope, key, result string) error
	Release(ctx context.Context, scope, key string) error
}

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Order       *OrderService
	Stock       *StockService
	Idempotency IdempotencyStore // nil disables Idempotency-Key handling
}

// New wires all order application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	store := postgres.NewStore(a.Db)
	svcs := &Services{
		Order: NewOrderService(
			store,
			postgres.NewBuyerDirectory(a.Db),
			a.Notifier,
			a.Logger,
		),
		Stock: NewStockService(store, a.Logger),
	}
	if a.Redis != nil {
		svcs.Idempotency = cache.NewIdempotencyStore(a.Redis)
	}
	return svcs
}
