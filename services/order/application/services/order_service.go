package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghuser/ordermgmt/pkg/logger"
	"github.com/ghuser/ordermgmt/pkg/notify"
	orderdomain "github.com/ghuser/ordermgmt/services/order/domain"
	"github.com/ghuser/ordermgmt/services/order/domain/models"
	"github.com/ghuser/ordermgmt/services/order/domain/repositories"
	domainsvcs "github.com/ghuser/ordermgmt/services/order/domain/services"
)

const tracerName = "github.com/ghuser/ordermgmt/services/order"

// UpdateParams lists the changes Update applies. Nil fields are left alone;
// a nil Lines performs a header-only update.
type UpdateParams struct {
	BuyerID   *uuid.UUID
	OrderDate *time.Time
	Lines     []models.LineItem
}

// OrderService orchestrates order placement, update, reorder and removal.
// Every write runs in one unit of work; notifications are sent after commit
// and never affect the outcome.
type OrderService struct {
	uow      repositories.UnitOfWork
	buyers   repositories.BuyerDirectory
	notifier notify.Dispatcher
	log      logger.Logger
	tracer   trace.Tracer
	metrics  *orderMetrics
	now      func() time.Time
}

// NewOrderService returns an OrderService.
func NewOrderService(
	uow repositories.UnitOfWork,
	buyers repositories.BuyerDirectory,
	notifier notify.Dispatcher,
	log logger.Logger,
) *OrderService {
	if notifier == nil {
		notifier = notify.Nop
	}
	return &OrderService{
		uow:      uow,
		buyers:   buyers,
		notifier: notify.Safe(notifier, log, nil),
		log:      log,
		tracer:   otel.Tracer(tracerName),
		metrics:  newOrderMetrics(),
		now:      time.Now,
	}
}

// Create places an order for buyerID: stock for every line is reserved and
// the items are priced at current product prices, all or nothing.
func (s *OrderService) Create(ctx context.Context, buyerID uuid.UUID, lines []models.LineItem) (*models.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Create", trace.WithAttributes(
		attribute.String("buyer_id", buyerID.String()),
		attribute.Int("lines", len(lines)),
	))
	defer span.End()

	if buyerID == uuid.Nil {
		return nil, s.fail(span, fmt.Errorf("%w: buyer id is required", orderdomain.ErrInvalidArgument))
	}
	if err := models.ValidateLines(lines); err != nil {
		return nil, s.fail(span, fmt.Errorf("%w: %w", orderdomain.ErrInvalidArgument, err))
	}

	var order *models.Order
	err := s.uow.Do(ctx, func(r repositories.Repos) error {
		order = models.NewOrder(buyerID, nil, s.now())
		return domainsvcs.NewOrderBuilder(r).Build(ctx, order, lines)
	})
	if err != nil {
		s.countRejection(ctx, err)
		return nil, s.fail(span, fmt.Errorf("create order: %w", err))
	}

	span.SetAttributes(attribute.String("order_id", order.ID.String()))
	s.metrics.created.Add(ctx, 1)
	s.log.InfoContext(ctx, "order created",
		"order_id", order.ID,
		"buyer_id", buyerID,
		"items", len(order.Items),
		"total", order.Total().StringFixed(2),
	)

	s.notifyBuyer(ctx, notify.KindOrderConfirmed, order)
	return order, nil
}

// Update changes an order's header and, when p.Lines is non-nil, replaces its
// items, moving stock by the per-product net difference.
func (s *OrderService) Update(ctx context.Context, orderID uuid.UUID, p UpdateParams) (*models.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Update", trace.WithAttributes(
		attribute.String("order_id", orderID.String()),
		attribute.Bool("replace_items", p.Lines != nil),
	))
	defer span.End()

	if p.BuyerID != nil && *p.BuyerID == uuid.Nil {
		return nil, s.fail(span, fmt.Errorf("%w: buyer id must not be empty", orderdomain.ErrInvalidArgument))
	}
	if p.Lines != nil {
		if err := models.ValidateLines(p.Lines); err != nil {
			return nil, s.fail(span, fmt.Errorf("%w: %w", orderdomain.ErrInvalidArgument, err))
		}
	}

	var (
		order   *models.Order
		skipped []uuid.UUID
	)
	err := s.uow.Do(ctx, func(r repositories.Repos) error {
		var err error
		order, err = r.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if p.BuyerID != nil || p.OrderDate != nil {
			if p.BuyerID != nil {
				order.BuyerID = *p.BuyerID
			}
			if p.OrderDate != nil {
				order.OrderDate = p.OrderDate.UTC()
			}
			if err := r.Orders.UpdateHeader(ctx, order); err != nil {
				return fmt.Errorf("update header: %w", err)
			}
		}

		if p.Lines == nil {
			return nil
		}
		skipped, err = domainsvcs.NewOrderBuilder(r).Replace(ctx, order, p.Lines)
		return err
	})
	if err != nil {
		s.countRejection(ctx, err)
		return nil, s.fail(span, fmt.Errorf("update order: %w", err))
	}

	s.warnSkipped(ctx, order.ID, skipped)
	s.metrics.updated.Add(ctx, 1)
	s.log.InfoContext(ctx, "order updated", "order_id", order.ID, "items", len(order.Items))

	s.notifyBuyer(ctx, notify.KindOrderUpdated, order)
	return order, nil
}

// Reorder places a new order for newBuyerID with the same products and
// quantities as originalID, priced at current prices. Stock is pre-checked
// without locks so an obviously unfillable reorder fails without writing;
// the authoritative check happens again inside Create.
func (s *OrderService) Reorder(ctx context.Context, originalID, newBuyerID uuid.UUID) (*models.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Reorder", trace.WithAttributes(
		attribute.String("original_order_id", originalID.String()),
	))
	defer span.End()

	reader := s.uow.Reader()
	original, err := reader.Orders.Get(ctx, originalID)
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("reorder: %w", err))
	}

	ledger := domainsvcs.NewLedger(reader.Stock)
	wanted := original.Quantities()
	for _, id := range models.SortedProductIDs(wanted) {
		stock, err := ledger.Peek(ctx, id)
		if err != nil {
			return nil, s.fail(span, fmt.Errorf("reorder: %w", err))
		}
		if stock.Quantity < wanted[id] {
			s.metrics.stockRejected.Add(ctx, 1)
			return nil, s.fail(span, fmt.Errorf("reorder: %w", &orderdomain.InsufficientStockError{
				ProductID: id,
				Available: stock.Quantity,
				Requested: wanted[id],
			}))
		}
	}

	return s.Create(ctx, newBuyerID, original.Lines())
}

// Delete removes an order and returns its items to stock.
func (s *OrderService) Delete(ctx context.Context, orderID uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.Delete", trace.WithAttributes(
		attribute.String("order_id", orderID.String()),
	))
	defer span.End()

	var skipped []uuid.UUID
	err := s.uow.Do(ctx, func(r repositories.Repos) error {
		order, err := r.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		skipped, err = domainsvcs.NewOrderBuilder(r).Dismantle(ctx, order)
		return err
	})
	if err != nil {
		return s.fail(span, fmt.Errorf("delete order: %w", err))
	}

	s.warnSkipped(ctx, orderID, skipped)
	s.log.InfoContext(ctx, "order deleted", "order_id", orderID)
	return nil
}

// Get returns an order with its items.
func (s *OrderService) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.uow.Reader().Orders.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// GetForBuyer returns an order only if buyerID placed it. Orders belonging to
// someone else are reported as not found.
func (s *OrderService) GetForBuyer(ctx context.Context, buyerID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, fmt.Errorf("get order: %w", orderdomain.ErrOrderNotFound)
	}
	return order, nil
}

// List returns the buyer's orders newest first plus the total count.
func (s *OrderService) List(ctx context.Context, buyerID uuid.UUID, opts repositories.QueryOpts) ([]*models.Order, int, error) {
	orders, total, err := s.uow.Reader().Orders.ListByBuyer(ctx, buyerID, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

func (s *OrderService) notifyBuyer(ctx context.Context, kind notify.Kind, order *models.Order) {
	email, err := s.buyers.Email(ctx, order.BuyerID)
	if err != nil || email == "" {
		s.log.WarnContext(ctx, "order notification skipped: no buyer email",
			"order_id", order.ID,
			"buyer_id", order.BuyerID,
			"error", err,
		)
		return
	}
	s.notifier.Enqueue(ctx, orderNotification(kind, order, email))
}

func (s *OrderService) warnSkipped(ctx context.Context, orderID uuid.UUID, skipped []uuid.UUID) {
	for _, id := range skipped {
		s.log.WarnContext(ctx, "restock skipped: product has no stock row",
			"order_id", orderID,
			"product_id", id,
		)
	}
}

func (s *OrderService) countRejection(ctx context.Context, err error) {
	if errors.Is(err, orderdomain.ErrInsufficientStock) {
		s.metrics.stockRejected.Add(ctx, 1)
	}
}

func (s *OrderService) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
