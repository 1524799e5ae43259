package repositories

import "context"

// MaintenanceRepository exposes stored procedures run by administrative jobs.
type MaintenanceRepository interface {
	// RecalculateProposals re-derives member counts and thresholds of pending proposals.
	RecalculateProposals(ctx context.Context) error
}
