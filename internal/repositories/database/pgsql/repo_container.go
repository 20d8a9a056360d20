package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/qodirovs/finance_tracker_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	currencyRepo := newPgxCurrencyRepository(dbPool)
	exchangeRateRepo := newPgxExchangeRateRepository(dbPool)
	cardRepo := newPgxCardRepository(dbPool)
	categoryRepo := newPgxCategoryRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool, cardRepo)
	transferRepo := newPgxTransferRepository(dbPool, cardRepo)
	budgetRepo := newPgxBudgetRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)
	supportRepo := newPgxSupportRepository(dbPool)

	return portsrepo.RepositoryProvider{
		CurrencyRepo:     currencyRepo,
		ExchangeRateRepo: exchangeRateRepo,
		CardRepo:         cardRepo,
		CategoryRepo:     categoryRepo,
		TransactionRepo:  transactionRepo,
		TransferRepo:     transferRepo,
		BudgetRepo:       budgetRepo,
		UserRepo:         userRepo,
		SupportRepo:      supportRepo,
	}
}
