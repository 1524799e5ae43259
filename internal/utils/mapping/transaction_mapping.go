package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	"github.com/SscSPs/club_ledger/internal/models"
)

// ToModelTransaction converts a domain Transaction to its row.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:   d.TransactionID,
		Type:            string(d.Type),
		Amount:          d.Amount,
		Description:     d.Description,
		Category:        toNullString(d.Category),
		AccountID:       toNullString(d.AccountID),
		FromAccountID:   toNullString(d.FromAccountID),
		ToAccountID:     toNullString(d.ToAccountID),
		FiscalYearID:    d.FiscalYearID,
		RecordedBy:      d.RecordedBy,
		RecordedAt:      d.RecordedAt,
		ReceiptImageURL: toNullString(d.ReceiptImageURL),
		IsDeleted:       d.IsDeleted,
		DeletedAt:       toNullTime(d.DeletedAt),
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a transactions row to the domain type.
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:   m.TransactionID,
		Type:            domain.TransactionType(m.Type),
		Amount:          m.Amount,
		Description:     m.Description,
		Category:        fromNullString(m.Category),
		AccountID:       fromNullString(m.AccountID),
		FromAccountID:   fromNullString(m.FromAccountID),
		ToAccountID:     fromNullString(m.ToAccountID),
		FiscalYearID:    m.FiscalYearID,
		RecordedBy:      m.RecordedBy,
		RecordedAt:      m.RecordedAt,
		ReceiptImageURL: fromNullString(m.ReceiptImageURL),
		IsDeleted:       m.IsDeleted,
		DeletedAt:       fromNullTime(m.DeletedAt),
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionSlice converts transactions rows.
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}

// ToModelHistory converts a history entry, encoding its snapshots as JSON.
func ToModelHistory(d domain.TransactionHistory) (models.TransactionHistory, error) {
	oldData, err := encodeSnapshot(d.OldData)
	if err != nil {
		return models.TransactionHistory{}, fmt.Errorf("encoding old_data: %w", err)
	}
	newData, err := encodeSnapshot(d.NewData)
	if err != nil {
		return models.TransactionHistory{}, fmt.Errorf("encoding new_data: %w", err)
	}
	return models.TransactionHistory{
		HistoryID:     d.HistoryID,
		TransactionID: d.TransactionID,
		Action:        string(d.Action),
		ChangedBy:     d.ChangedBy,
		ChangedAt:     d.ChangedAt,
		OldData:       oldData,
		NewData:       newData,
	}, nil
}

// ToDomainHistory converts a transaction_history row, decoding its snapshots.
func ToDomainHistory(m models.TransactionHistory) (domain.TransactionHistory, error) {
	oldData, err := decodeSnapshot(m.OldData)
	if err != nil {
		return domain.TransactionHistory{}, fmt.Errorf("decoding old_data of %s: %w", m.HistoryID, err)
	}
	newData, err := decodeSnapshot(m.NewData)
	if err != nil {
		return domain.TransactionHistory{}, fmt.Errorf("decoding new_data of %s: %w", m.HistoryID, err)
	}
	return domain.TransactionHistory{
		HistoryID:     m.HistoryID,
		TransactionID: m.TransactionID,
		Action:        domain.HistoryAction(m.Action),
		ChangedBy:     m.ChangedBy,
		ChangedAt:     m.ChangedAt,
		OldData:       oldData,
		NewData:       newData,
	}, nil
}

func encodeSnapshot(t *domain.Transaction) ([]byte, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

func decodeSnapshot(raw []byte) (*domain.Transaction, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var t domain.Transaction
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ToDomainSystemHistory converts a system_history row.
func ToDomainSystemHistory(m models.SystemHistory) domain.SystemHistory {
	return domain.SystemHistory{
		SystemHistoryID: m.SystemHistoryID,
		Action:          domain.SystemHistoryAction(m.Action),
		PerformedBy:     m.PerformedBy,
		PerformedAt:     m.PerformedAt,
		Details:         m.Details,
	}
}
