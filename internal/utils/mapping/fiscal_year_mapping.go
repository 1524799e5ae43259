package mapping

import (
	"github.com/SscSPs/club_ledger/internal/core/domain"
	"github.com/SscSPs/club_ledger/internal/models"
)

// ToModelFiscalYear converts a domain FiscalYear to its row.
func ToModelFiscalYear(d domain.FiscalYear) models.FiscalYear {
	return models.FiscalYear{
		FiscalYearID:        d.FiscalYearID,
		Name:                d.Name,
		StartDate:           domain.DateOf(d.StartDate),
		EndDate:             domain.DateOf(d.EndDate),
		StartingBalanceCash: d.StartingBalanceCash,
		StartingBalanceBank: d.StartingBalanceBank,
		IsCurrent:           d.IsCurrent,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainFiscalYear converts a fiscal_years row to the domain type.
func ToDomainFiscalYear(m models.FiscalYear) domain.FiscalYear {
	return domain.FiscalYear{
		FiscalYearID:        m.FiscalYearID,
		Name:                m.Name,
		StartDate:           domain.DateOf(m.StartDate),
		EndDate:             domain.DateOf(m.EndDate),
		StartingBalanceCash: m.StartingBalanceCash,
		StartingBalanceBank: m.StartingBalanceBank,
		IsCurrent:           m.IsCurrent,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainFiscalYearSlice converts fiscal_years rows.
func ToDomainFiscalYearSlice(ms []models.FiscalYear) []domain.FiscalYear {
	ds := make([]domain.FiscalYear, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainFiscalYear(m)
	}
	return ds
}

// ToModelCategory converts a domain Category to its row.
func ToModelCategory(d domain.Category) models.Category {
	return models.Category{
		CategoryID:   d.CategoryID,
		FiscalYearID: d.FiscalYearID,
		Name:         d.Name,
		Type:         string(d.Type),
		SortOrder:    d.SortOrder,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCategory converts a categories row to the domain type.
func ToDomainCategory(m models.Category) domain.Category {
	return domain.Category{
		CategoryID:   m.CategoryID,
		FiscalYearID: m.FiscalYearID,
		Name:         m.Name,
		Type:         domain.CategoryType(m.Type),
		SortOrder:    m.SortOrder,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainCategorySlice converts categories rows.
func ToDomainCategorySlice(ms []models.Category) []domain.Category {
	ds := make([]domain.Category, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCategory(m)
	}
	return ds
}
