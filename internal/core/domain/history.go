package domain

import "time"

// HistoryAction names the lifecycle transition a history row records.
type HistoryAction string

const (
	HistoryCreated  HistoryAction = "created"
	HistoryUpdated  HistoryAction = "updated"
	HistoryDeleted  HistoryAction = "deleted"
	HistoryRestored HistoryAction = "restored"
)

// TransactionHistory is an append-only snapshot pair for one transition of a transaction.
// OldData is nil for created, NewData is nil for deleted.
type TransactionHistory struct {
	HistoryID     string        `json:"historyID"`
	TransactionID string        `json:"transactionID"`
	Action        HistoryAction `json:"action"`
	ChangedBy     string        `json:"changedBy"`
	ChangedAt     time.Time     `json:"changedAt"`
	OldData       *Transaction  `json:"oldData,omitempty"`
	NewData       *Transaction  `json:"newData,omitempty"`
}

// NewHistory builds a history row for a transition of txnID. Snapshots are copied.
func NewHistory(historyID, txnID string, action HistoryAction, changedBy string, changedAt time.Time, oldData, newData *Transaction) TransactionHistory {
	h := TransactionHistory{
		HistoryID:     historyID,
		TransactionID: txnID,
		Action:        action,
		ChangedBy:     changedBy,
		ChangedAt:     changedAt,
	}
	if oldData != nil {
		snapshot := *oldData
		h.OldData = &snapshot
	}
	if newData != nil {
		snapshot := *newData
		h.NewData = &snapshot
	}
	return h
}

// SystemHistoryAction names an entry in the club-wide audit log.
type SystemHistoryAction string

const (
	SystemProposalCreated    SystemHistoryAction = "deletion_proposal_created"
	SystemProposalExecuted   SystemHistoryAction = "deletion_proposal_executed"
	SystemFiscalYearDeleted  SystemHistoryAction = "fiscal_year_deleted"
	SystemProposalCancelled  SystemHistoryAction = "deletion_proposal_cancelled"
	SystemMemberDeleted      SystemHistoryAction = "member_deleted"
	SystemBalancesReconciled SystemHistoryAction = "balances_reconciled"
)

// SystemHistory is a club-wide audit entry. Details carries action specific counts and names.
type SystemHistory struct {
	SystemHistoryID string              `json:"systemHistoryID"`
	Action          SystemHistoryAction `json:"action"`
	PerformedBy     string              `json:"performedBy"`
	PerformedAt     time.Time           `json:"performedAt"`
	Details         map[string]any      `json:"details"`
}
