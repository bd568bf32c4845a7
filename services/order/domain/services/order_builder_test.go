package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/ordermgmt/services/order/domain"
	"github.com/ghuser/ordermgmt/services/order/domain/models"
	"github.com/ghuser/ordermgmt/services/order/domain/repositories"
	"github.com/ghuser/ordermgmt/services/order/domain/services"
	"github.com/ghuser/ordermgmt/services/order/infrastructure/persistence/memory"
)

var price = decimal.RequireFromString

func build(t *testing.T, store *memory.Store, lines []models.LineItem) (*models.Order, error) {
	t.Helper()
	order := models.NewOrder(uuid.New(), nil, time.Now())
	err := store.Do(context.Background(), func(r repositories.Repos) error {
		return services.NewOrderBuilder(r).Build(context.Background(), order, lines)
	})
	return order, err
}

func replace(t *testing.T, store *memory.Store, order *models.Order, lines []models.LineItem) ([]uuid.UUID, error) {
	t.Helper()
	var skipped []uuid.UUID
	err := store.Do(context.Background(), func(r repositories.Repos) error {
		var err error
		skipped, err = services.NewOrderBuilder(r).Replace(context.Background(), order, lines)
		return err
	})
	return skipped, err
}

func stockOf(t *testing.T, store *memory.Store, id uuid.UUID) int {
	t.Helper()
	q, ok := store.StockOf(id)
	if !ok {
		t.Fatalf("no stock row for %s", id)
	}
	return q
}

func TestLedger_ApplyDelta(t *testing.T) {
	store := memory.NewStore()
	p := uuid.New()
	store.AddProduct(p, price("1.00"), 5)

	err := store.Do(context.Background(), func(r repositories.Repos) error {
		l := services.NewLedger(r.Stock)
		s, err := l.LockStock(context.Background(), p)
		if err != nil {
			return err
		}

		same, err := l.ApplyDelta(context.Background(), s, 0)
		if err != nil || same.Quantity != 5 {
			t.Fatalf("zero delta: got %+v, %v", same, err)
		}

		if _, err := l.ApplyDelta(context.Background(), s, -6); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument for negative result, got %v", err)
		}

		s, err = l.ApplyDelta(context.Background(), s, -5)
		if err != nil || s.Quantity != 0 {
			t.Fatalf("reserve to zero: got %+v, %v", s, err)
		}
		s, err = l.ApplyDelta(context.Background(), s, 3)
		if err != nil || s.Quantity != 3 {
			t.Fatalf("restock: got %+v, %v", s, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got := stockOf(t, store, p); got != 3 {
		t.Fatalf("persisted stock: got %d, want 3", got)
	}
}

func TestLedger_ApplyDeltaRejectsOverflow(t *testing.T) {
	store := memory.NewStore()
	p := uuid.New()
	store.AddProduct(p, price("1.00"), models.MaxQuantity-1)

	err := store.Do(context.Background(), func(r repositories.Repos) error {
		l := services.NewLedger(r.Stock)
		s, err := l.LockStock(context.Background(), p)
		if err != nil {
			return err
		}
		if _, err := l.ApplyDelta(context.Background(), s, 2); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument past max, got %v", err)
		}
		s, err = l.ApplyDelta(context.Background(), s, 1)
		if err != nil || s.Quantity != models.MaxQuantity {
			t.Fatalf("restock to max: got %+v, %v", s, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got := stockOf(t, store, p); got != models.MaxQuantity {
		t.Fatalf("persisted stock: got %d, want %d", got, models.MaxQuantity)
	}
}

func TestLedger_LockStockMissing(t *testing.T) {
	store := memory.NewStore()
	_ = store.Do(context.Background(), func(r repositories.Repos) error {
		_, err := services.NewLedger(r.Stock).LockStock(context.Background(), uuid.New())
		if !errors.Is(err, domain.ErrProductNotFound) {
			t.Fatalf("expected ErrProductNotFound, got %v", err)
		}
		return nil
	})
}

func TestBuild_ReservesAndPrices(t *testing.T) {
	store := memory.NewStore()
	a, b := uuid.New(), uuid.New()
	store.AddProduct(a, price("2.50"), 10)
	store.AddProduct(b, price("7.00"), 3)

	order, err := build(t, store, []models.LineItem{
		{ProductID: b, Quantity: 1},
		{ProductID: a, Quantity: 4},
		{ProductID: a, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got := stockOf(t, store, a); got != 4 {
		t.Errorf("stock a: got %d, want 4", got)
	}
	if got := stockOf(t, store, b); got != 2 {
		t.Errorf("stock b: got %d, want 2", got)
	}

	if len(order.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(order.Items))
	}
	if order.Items[0].ProductID != b || order.Items[1].ProductID != a || order.Items[2].Quantity != 2 {
		t.Errorf("items not in caller order: %+v", order.Items)
	}
	for i, it := range order.Items {
		if it.Position != i || it.OrderID != order.ID {
			t.Errorf("item %d: position %d order %s", i, it.Position, it.OrderID)
		}
	}
	if !order.Items[1].PurchasePrice.Equal(price("2.50")) {
		t.Errorf("purchase price: got %s", order.Items[1].PurchasePrice)
	}
	if !order.Total().Equal(price("22.00")) {
		t.Errorf("total: got %s", order.Total())
	}
}

func TestBuild_InvalidLines(t *testing.T) {
	store := memory.NewStore()
	p := uuid.New()
	store.AddProduct(p, price("1.00"), 10)

	for name, lines := range map[string][]models.LineItem{
		"empty":         nil,
		"zero quantity": {{ProductID: p, Quantity: 0}},
		"nil product":   {{Quantity: 1}},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := build(t, store, lines); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
	if orders, _ := store.Counts(); orders != 0 {
		t.Fatalf("expected no orders, got %d", orders)
	}
}

func TestBuild_AtomicOnSecondOfThreeFailing(t *testing.T) {
	store := memory.NewStore()
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, id := range ids {
		store.AddProduct(id, price("1.00"), 5)
	}
	store.SetStock(ids[1], 1)

	_, err := build(t, store, []models.LineItem{
		{ProductID: ids[0], Quantity: 2},
		{ProductID: ids[1], Quantity: 2},
		{ProductID: ids[2], Quantity: 2},
	})

	var ise *domain.InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if ise.ProductID != ids[1] || ise.Available != 1 || ise.Requested != 2 {
		t.Fatalf("unexpected error fields: %+v", ise)
	}

	orders, items := store.Counts()
	if orders != 0 || items != 0 {
		t.Fatalf("expected nothing persisted, got %d orders %d items", orders, items)
	}
	for i, want := range []int{5, 1, 5} {
		if got := stockOf(t, store, ids[i]); got != want {
			t.Errorf("stock %d: got %d, want %d", i, got, want)
		}
	}
}

func TestBuild_MissingStockRow(t *testing.T) {
	store := memory.NewStore()
	p := uuid.New()
	store.AddProduct(p, price("1.00"), 5)
	store.RemoveStock(p)

	if _, err := build(t, store, []models.LineItem{{ProductID: p, Quantity: 1}}); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestReplace_NetDelta(t *testing.T) {
	store := memory.NewStore()
	a, b := uuid.New(), uuid.New()
	store.AddProduct(a, price("1.00"), 10)
	store.AddProduct(b, price("1.00"), 10)

	order, err := build(t, store, []models.LineItem{{ProductID: a, Quantity: 5}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := stockOf(t, store, a); got != 5 {
		t.Fatalf("after create: got %d, want 5", got)
	}

	if _, err := replace(t, store, order, []models.LineItem{{ProductID: a, Quantity: 3}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if got := stockOf(t, store, a); got != 7 {
		t.Fatalf("(A,5)->(A,3): got %d, want 7", got)
	}

	if _, err := replace(t, store, order, []models.LineItem{{ProductID: b, Quantity: 4}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if got := stockOf(t, store, a); got != 10 {
		t.Errorf("a fully restocked: got %d, want 10", got)
	}
	if got := stockOf(t, store, b); got != 6 {
		t.Errorf("b reserved: got %d, want 6", got)
	}
	if _, items := store.Counts(); items != 1 {
		t.Errorf("expected 1 item after replace, got %d", items)
	}
}

func TestReplace_InsufficientReportsNet(t *testing.T) {
	store := memory.NewStore()
	a := uuid.New()
	store.AddProduct(a, price("1.00"), 6)

	order, err := build(t, store, []models.LineItem{{ProductID: a, Quantity: 4}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	_, err = replace(t, store, order, []models.LineItem{{ProductID: a, Quantity: 7}})
	var ise *domain.InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if ise.Available != 2 || ise.Requested != 3 {
		t.Fatalf("expected available 2 requested 3, got %+v", ise)
	}
	if got := stockOf(t, store, a); got != 2 {
		t.Fatalf("stock must be unchanged after failed replace, got %d", got)
	}
	if _, items := store.Counts(); items != 1 {
		t.Fatalf("old items must survive the rollback, got %d", items)
	}
}

func TestReplace_RestockNotFoundTolerated(t *testing.T) {
	store := memory.NewStore()
	a, b := uuid.New(), uuid.New()
	store.AddProduct(a, price("1.00"), 5)
	store.AddProduct(b, price("1.00"), 5)

	order, err := build(t, store, []models.LineItem{{ProductID: a, Quantity: 2}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	store.RemoveStock(a)

	skipped, err := replace(t, store, order, []models.LineItem{{ProductID: b, Quantity: 1}})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if len(skipped) != 1 || skipped[0] != a {
		t.Fatalf("expected %s skipped, got %v", a, skipped)
	}
	if got := stockOf(t, store, b); got != 4 {
		t.Fatalf("stock b: got %d, want 4", got)
	}
}

func TestReplace_NewProductMissingStock(t *testing.T) {
	store := memory.NewStore()
	a, b := uuid.New(), uuid.New()
	store.AddProduct(a, price("1.00"), 5)
	store.AddProduct(b, price("1.00"), 5)
	store.RemoveStock(b)

	order, err := build(t, store, []models.LineItem{{ProductID: a, Quantity: 1}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := replace(t, store, order, []models.LineItem{{ProductID: b, Quantity: 1}}); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestDismantle_Restocks(t *testing.T) {
	store := memory.NewStore()
	a := uuid.New()
	store.AddProduct(a, price("1.00"), 10)

	order, err := build(t, store, []models.LineItem{{ProductID: a, Quantity: 4}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	err = store.Do(context.Background(), func(r repositories.Repos) error {
		_, err := services.NewOrderBuilder(r).Dismantle(context.Background(), order)
		return err
	})
	if err != nil {
		t.Fatalf("Dismantle: %v", err)
	}
	if got := stockOf(t, store, a); got != 10 {
		t.Fatalf("stock: got %d, want 10", got)
	}
	if orders, items := store.Counts(); orders != 0 || items != 0 {
		t.Fatalf("expected order removed, got %d orders %d items", orders, items)
	}
}
