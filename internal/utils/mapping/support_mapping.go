package mapping

import (
	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	"github.com/qodirovs/finance_tracker_app/internal/models"
)

// ToModelSupportMessage converts a domain SupportMessage to its model
func ToModelSupportMessage(d domain.SupportMessage) models.SupportMessage {
	return models.SupportMessage{
		MessageID:    d.MessageID,
		UserID:       d.UserID,
		Body:         d.Body,
		IsAdminReply: d.IsAdminReply,
		IsRead:       d.IsRead,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainSupportMessage converts a model SupportMessage to its domain form
func ToDomainSupportMessage(m models.SupportMessage) domain.SupportMessage {
	return domain.SupportMessage{
		MessageID:    m.MessageID,
		UserID:       m.UserID,
		Body:         m.Body,
		IsAdminReply: m.IsAdminReply,
		IsRead:       m.IsRead,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainSupportMessageSlice converts model SupportMessages to domain form
func ToDomainSupportMessageSlice(ms []models.SupportMessage) []domain.SupportMessage {
	ds := make([]domain.SupportMessage, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainSupportMessage(m)
	}
	return ds
}
