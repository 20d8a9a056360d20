package mapping

import (
	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	"github.com/qodirovs/finance_tracker_app/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction.
// Tag relations are persisted separately.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:        d.TransactionID,
		UserID:               d.UserID,
		CardID:               d.CardID,
		CategoryID:           d.CategoryID,
		Type:                 models.TransactionType(d.Type),
		Amount:               d.Amount,
		CurrencyCode:         d.CurrencyCode,
		ExchangeRateUsed:     d.ExchangeRateUsed,
		AmountInUserCurrency: d.AmountInUserCurrency,
		Title:                d.Title,
		Description:          d.Description,
		Location:             d.Location,
		TransactionDate:      d.TransactionDate,
		AuditFields:          ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:        m.TransactionID,
		UserID:               m.UserID,
		CardID:               m.CardID,
		CategoryID:           m.CategoryID,
		Type:                 domain.TransactionType(m.Type),
		Amount:               m.Amount,
		CurrencyCode:         m.CurrencyCode,
		ExchangeRateUsed:     m.ExchangeRateUsed,
		AmountInUserCurrency: m.AmountInUserCurrency,
		Title:                m.Title,
		Description:          m.Description,
		Location:             m.Location,
		TransactionDate:      m.TransactionDate,
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions to domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
