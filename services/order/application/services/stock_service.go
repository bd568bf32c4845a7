package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghuser/ordermgmt/pkg/logger"
	orderdomain "github.com/ghuser/ordermgmt/services/order/domain"
	"github.com/ghuser/ordermgmt/services/order/domain/models"
	"github.com/ghuser/ordermgmt/services/order/domain/repositories"
	domainsvcs "github.com/ghuser/ordermgmt/services/order/domain/services"
)

// StockService applies administrative stock counts. The new quantity is
// written as a delta through the Ledger while the row is locked, so counts
// serialize with reservations on the same product.
type StockService struct {
	uow    repositories.UnitOfWork
	log    logger.Logger
	tracer trace.Tracer
}

// NewStockService returns a StockService.
func NewStockService(uow repositories.UnitOfWork, log logger.Logger) *StockService {
	return &StockService{uow: uow, log: log, tracer: otel.Tracer(tracerName)}
}

// Set makes productID's stock quantity equal to quantity. A product without
// a stock row yields ErrProductNotFound; a quantity outside
// [0, models.MaxQuantity] yields ErrInvalidArgument.
func (s *StockService) Set(ctx context.Context, productID uuid.UUID, quantity int) (*models.Stock, error) {
	ctx, span := s.tracer.Start(ctx, "StockService.Set", trace.WithAttributes(
		attribute.String("product_id", productID.String()),
		attribute.Int("quantity", quantity),
	))
	defer span.End()

	if quantity < 0 || quantity > models.MaxQuantity {
		err := fmt.Errorf("%w: quantity must be within [0, %d], got %d", orderdomain.ErrInvalidArgument, models.MaxQuantity, quantity)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var (
		out  *models.Stock
		prev int
	)
	err := s.uow.Do(ctx, func(r repositories.Repos) error {
		ledger := domainsvcs.NewLedger(r.Stock)
		cur, err := ledger.LockStock(ctx, productID)
		if err != nil {
			return err
		}
		prev = cur.Quantity
		out, err = ledger.ApplyDelta(ctx, cur, quantity-cur.Quantity)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("set stock: %w", err)
	}

	s.log.InfoContext(ctx, "stock set",
		"product_id", productID,
		"previous", prev,
		"quantity", out.Quantity,
	)
	return out, nil
}
