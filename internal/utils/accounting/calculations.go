package accounting

import (
	"fmt"
	"sort"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Delta is a signed balance change per account ID.
type Delta map[string]decimal.Decimal

// CalculateSignedAmount returns the signed effect txn has on accountID.
// Income adds, expense subtracts, a transfer subtracts from its source and adds to its destination.
// Accounts the transaction does not touch get zero.
func CalculateSignedAmount(txn domain.Transaction, accountID string) decimal.Decimal {
	switch txn.Type {
	case domain.Income:
		if txn.AccountID != nil && *txn.AccountID == accountID {
			return txn.Amount
		}
	case domain.Expense:
		if txn.AccountID != nil && *txn.AccountID == accountID {
			return txn.Amount.Neg()
		}
	case domain.Transfer:
		effect := decimal.Zero
		if txn.FromAccountID != nil && *txn.FromAccountID == accountID {
			effect = effect.Sub(txn.Amount)
		}
		if txn.ToAccountID != nil && *txn.ToAccountID == accountID {
			effect = effect.Add(txn.Amount)
		}
		return effect
	}
	return decimal.Zero
}

// Effects computes the forward balance change of applying txn.
func Effects(txn domain.Transaction) (Delta, error) {
	if !txn.Type.IsValid() {
		return nil, fmt.Errorf("unknown transaction type '%s' for transaction %s", txn.Type, txn.TransactionID)
	}
	ids := txn.AffectedAccountIDs()
	if len(ids) == 0 {
		return nil, fmt.Errorf("transaction %s references no account", txn.TransactionID)
	}

	d := make(Delta, len(ids))
	for _, id := range ids {
		d[id] = CalculateSignedAmount(txn, id)
	}
	return d, nil
}

// Reverse returns the additive inverse of d.
func Reverse(d Delta) Delta {
	out := make(Delta, len(d))
	for id, amt := range d {
		out[id] = amt.Neg()
	}
	return out
}

// Merge sums deltas per account and drops accounts whose net change is zero.
func Merge(deltas ...Delta) Delta {
	out := make(Delta)
	for _, d := range deltas {
		for id, amt := range d {
			out[id] = out[id].Add(amt)
		}
	}
	for id, amt := range out {
		if amt.IsZero() {
			delete(out, id)
		}
	}
	return out
}

// EditDelta is the net change of reversing before and applying after, as one step.
func EditDelta(before, after domain.Transaction) (Delta, error) {
	oldEffect, err := Effects(before)
	if err != nil {
		return nil, fmt.Errorf("reversing previous state: %w", err)
	}
	newEffect, err := Effects(after)
	if err != nil {
		return nil, fmt.Errorf("applying new state: %w", err)
	}
	return Merge(Reverse(oldEffect), newEffect), nil
}

// AccountIDs returns the accounts in d in a stable order. Row locks are taken in this order.
func (d Delta) AccountIDs() []string {
	ids := make([]string, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Apply adds d to the given balances and returns the result. The input map is not modified.
func Apply(balances map[string]decimal.Decimal, d Delta) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(balances))
	for id, b := range balances {
		out[id] = b
	}
	for id, amt := range d {
		out[id] = out[id].Add(amt)
	}
	return out
}

// DeriveBalance is starting plus the signed effects of every non-deleted transaction.
// Callers pass only transactions of the fiscal year the starting balance belongs to.
func DeriveBalance(starting decimal.Decimal, accountID string, txns []domain.Transaction) decimal.Decimal {
	balance := starting
	for _, txn := range txns {
		if txn.IsDeleted {
			continue
		}
		balance = balance.Add(CalculateSignedAmount(txn, accountID))
	}
	return balance
}

// DeriveBalances computes every account's fiscal-year-scoped balance.
func DeriveBalances(fy domain.FiscalYear, accounts []domain.Account, txns []domain.Transaction) []domain.AccountBalance {
	out := make([]domain.AccountBalance, 0, len(accounts))
	for _, acc := range accounts {
		starting := fy.StartingBalanceFor(acc.Kind)
		out = append(out, domain.AccountBalance{
			AccountID: acc.AccountID,
			Name:      acc.Name,
			Kind:      acc.Kind,
			Starting:  starting,
			Current:   DeriveBalance(starting, acc.AccountID, txns),
		})
	}
	return out
}

// Totals sums non-deleted income and expense amounts. Transfers move money between
// the club's own accounts and count toward neither.
func Totals(txns []domain.Transaction) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	for _, txn := range txns {
		if txn.IsDeleted {
			continue
		}
		switch txn.Type {
		case domain.Income:
			income = income.Add(txn.Amount)
		case domain.Expense:
			expense = expense.Add(txn.Amount)
		}
	}
	return income, expense
}

// Summarize builds the fiscal year summary from its transactions.
func Summarize(fy domain.FiscalYear, accounts []domain.Account, txns []domain.Transaction) domain.FiscalYearSummary {
	income, expense := Totals(txns)
	starting := fy.StartingTotal()
	return domain.FiscalYearSummary{
		FiscalYear:    fy,
		Balances:      DeriveBalances(fy, accounts, txns),
		TotalIncome:   income,
		TotalExpense:  expense,
		StartingTotal: starting,
		EndingTotal:   starting.Add(income).Sub(expense),
	}
}
