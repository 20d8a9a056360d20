package mapping

import (
	"database/sql"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	"github.com/qodirovs/finance_tracker_app/internal/models"
)

// ToModelBudget converts a domain Budget to a model Budget
func ToModelBudget(d domain.Budget) models.Budget {
	m := models.Budget{
		BudgetID:       d.BudgetID,
		UserID:         d.UserID,
		CategoryID:     d.CategoryID,
		Name:           d.Name,
		Amount:         d.Amount,
		CurrencyCode:   d.CurrencyCode,
		Period:         models.BudgetPeriod(d.Period),
		StartDate:      d.StartDate,
		AlertThreshold: d.AlertThreshold,
		AlertSent:      d.AlertSent,
		Status:         models.BudgetStatus(d.Status),
		IsRecurring:    d.IsRecurring,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
	if d.EndDate != nil {
		m.EndDate = sql.NullTime{Time: *d.EndDate, Valid: true}
	}
	return m
}

// ToDomainBudget converts a model Budget to a domain Budget
func ToDomainBudget(m models.Budget) domain.Budget {
	d := domain.Budget{
		BudgetID:       m.BudgetID,
		UserID:         m.UserID,
		CategoryID:     m.CategoryID,
		Name:           m.Name,
		Amount:         m.Amount,
		CurrencyCode:   m.CurrencyCode,
		Period:         domain.BudgetPeriod(m.Period),
		StartDate:      m.StartDate,
		AlertThreshold: m.AlertThreshold,
		AlertSent:      m.AlertSent,
		Status:         domain.BudgetStatus(m.Status),
		IsRecurring:    m.IsRecurring,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
	if m.EndDate.Valid {
		end := m.EndDate.Time
		d.EndDate = &end
	}
	return d
}

// ToDomainBudgetSlice converts a slice of model Budgets to domain Budgets
func ToDomainBudgetSlice(ms []models.Budget) []domain.Budget {
	ds := make([]domain.Budget, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainBudget(m)
	}
	return ds
}

// ToModelBudgetAlert converts a domain BudgetAlert to a model BudgetAlert
func ToModelBudgetAlert(d domain.BudgetAlert) models.BudgetAlert {
	return models.BudgetAlert{
		AlertID:     d.AlertID,
		BudgetID:    d.BudgetID,
		UserID:      d.UserID,
		SpentAmount: d.SpentAmount,
		PercentUsed: d.PercentUsed,
		PeriodStart: d.PeriodStart,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBudgetAlert converts a model BudgetAlert to a domain BudgetAlert
func ToDomainBudgetAlert(m models.BudgetAlert) domain.BudgetAlert {
	return domain.BudgetAlert{
		AlertID:     m.AlertID,
		BudgetID:    m.BudgetID,
		UserID:      m.UserID,
		SpentAmount: m.SpentAmount,
		PercentUsed: m.PercentUsed,
		PeriodStart: m.PeriodStart,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainBudgetAlertSlice converts a slice of model BudgetAlerts to domain BudgetAlerts
func ToDomainBudgetAlertSlice(ms []models.BudgetAlert) []domain.BudgetAlert {
	ds := make([]domain.BudgetAlert, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainBudgetAlert(m)
	}
	return ds
}
