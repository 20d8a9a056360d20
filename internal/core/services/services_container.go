package services

import (
	portsrepo "github.com/qodirovs/finance_tracker_app/internal/core/ports/repositories"
	portssvc "github.com/qodirovs/finance_tracker_app/internal/core/ports/services"
	"github.com/qodirovs/finance_tracker_app/internal/platform/config"
	"github.com/qodirovs/finance_tracker_app/internal/platform/email"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	// Create the container structure first
	container := &portssvc.ServiceContainer{}

	// Currency and rate resolution come first since most services depend on them
	container.Currency = NewCurrencyService(repos.CurrencyRepo)
	container.ExchangeRate = NewExchangeRateService(repos.ExchangeRateRepo, container.Currency)

	container.Card = NewCardService(repos.CardRepo, repos.TransactionRepo, container.Currency, container.ExchangeRate)
	container.Category = NewCategoryService(repos.CategoryRepo, repos.TransactionRepo)
	container.Transaction = NewTransactionService(repos.TransactionRepo, repos.CardRepo, repos.CategoryRepo, repos.UserRepo, container.ExchangeRate)
	container.Transfer = NewTransferService(repos.TransferRepo, repos.CardRepo, container.ExchangeRate)
	container.Budget = NewBudgetService(repos.BudgetRepo, repos.CategoryRepo, repos.TransactionRepo, container.Currency, container.ExchangeRate)

	// Verification codes go out through SMTP when configured, otherwise the log
	var sender email.Sender
	if cfg.SMTPHost != "" {
		sender = email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		sender = &email.LogSender{}
	}

	container.User = NewUserService(repos.UserRepo, container.Currency, container.Transaction, sender)
	container.Support = NewSupportService(repos.SupportRepo, repos.UserRepo)
	container.Reporting = NewReportingService(repos.UserRepo, repos.CardRepo, repos.TransactionRepo, container.ExchangeRate)

	// Initialize TokenService
	container.Token = NewTokenService(cfg, container.User)

	// Initialize GoogleOAuthHandlerSvcFacade
	container.GoogleOAuth = NewGoogleOAuthHandlerService(cfg)

	return container
}
