package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/ordermgmt/pkg/logger"
	catalogdomain "github.com/ghuser/ordermgmt/services/catalog/domain"
	ordersvcs "github.com/ghuser/ordermgmt/services/order/application/services"
	orderdomain "github.com/ghuser/ordermgmt/services/order/domain"
	orderrepos "github.com/ghuser/ordermgmt/services/order/domain/repositories"
)

// StockLedger writes stock quantities on the catalog's behalf. The catalog
// never updates quantities itself.
type StockLedger interface {
	// SetStock returns domain.ErrStockNotFound when the product has no
	// stock row and domain.ErrInvalidInput for an out-of-range quantity.
	SetStock(ctx context.Context, productID uuid.UUID, quantity int) error
}

// OrderLedger routes stock counts through the order context's StockService
// and translates its errors into catalog sentinels.
type OrderLedger struct {
	stock *ordersvcs.StockService
}

// NewOrderLedger returns an OrderLedger over the order unit of work uow.
func NewOrderLedger(uow orderrepos.UnitOfWork, log logger.Logger) *OrderLedger {
	return &OrderLedger{stock: ordersvcs.NewStockService(uow, log)}
}

func (l *OrderLedger) SetStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	_, err := l.stock.Set(ctx, productID, quantity)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, orderdomain.ErrProductNotFound):
		return fmt.Errorf("stock %s: %w", productID, catalogdomain.ErrStockNotFound)
	case errors.Is(err, orderdomain.ErrInvalidArgument):
		return fmt.Errorf("%w: %w", catalogdomain.ErrInvalidInput, err)
	default:
		return err
	}
}
