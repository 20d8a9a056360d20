package mapping

import (
	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	"github.com/qodirovs/finance_tracker_app/internal/models"
)

// ToModelCard converts a domain Card to a model Card
func ToModelCard(d domain.Card) models.Card {
	return models.Card{
		CardID:         d.CardID,
		UserID:         d.UserID,
		Name:           d.Name,
		CurrencyCode:   d.CurrencyCode,
		Balance:        d.Balance,
		InitialBalance: d.InitialBalance,
		LastFourDigits: d.LastFourDigits,
		BankName:       d.BankName,
		Color:          d.Color,
		Status:         models.CardStatus(d.Status),
		IsDefault:      d.IsDefault,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCard converts a model Card to a domain Card
func ToDomainCard(m models.Card) domain.Card {
	return domain.Card{
		CardID:         m.CardID,
		UserID:         m.UserID,
		Name:           m.Name,
		CurrencyCode:   m.CurrencyCode,
		Balance:        m.Balance,
		InitialBalance: m.InitialBalance,
		LastFourDigits: m.LastFourDigits,
		BankName:       m.BankName,
		Color:          m.Color,
		Status:         domain.CardStatus(m.Status),
		IsDefault:      m.IsDefault,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainCardSlice converts a slice of model Cards to domain Cards
func ToDomainCardSlice(ms []models.Card) []domain.Card {
	ds := make([]domain.Card, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCard(m)
	}
	return ds
}
