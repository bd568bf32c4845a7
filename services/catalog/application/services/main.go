package services

import (
	"github.com/ghuser/ordermgmt/pkg/app"
	"github.com/ghuser/ordermgmt/pkg/cache"
	"github.com/ghuser/ordermgmt/services/catalog/infrastructure/persistence/postgres"
	orderpostgres "github.com/ghuser/ordermgmt/services/order/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Catalog *CatalogService
}

// New wires all catalog application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	var productCache ProductCache
	if a.Redis != nil {
		productCache = cache.NewProductCache(a.Redis)
	}
	return &Services{
		Catalog: NewCatalogService(
			postgres.NewSupplierRepository(a.Db),
			postgres.NewCategoryRepository(a.Db),
			postgres.NewProductRepository(a.Db, a.EventBus),
			postgres.NewStockRepository(a.Db),
			NewOrderLedger(orderpostgres.NewStore(a.Db), a.Logger),
			productCache,
			a.Logger,
		),
	}
}
