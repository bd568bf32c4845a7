package services

import (
	"github.com/ghuser/ordermgmt/pkg/app"
	"github.com/ghuser/ordermgmt/services/account/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
type Services struct {
	Account *AccountService
}

// New wires the account services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	return &Services{
		Account: NewAccountService(postgres.NewAccountRepository(a.Db), a.Notifier, a.Config.SiteURL, a.Logger),
	}
}
