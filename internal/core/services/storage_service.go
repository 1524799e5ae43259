package services

import (
	"context"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/club_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/club_ledger/internal/core/ports/services"
)

type storageService struct {
	BaseService
	transactionRepo portsrepo.TransactionReader
	historyRepo     portsrepo.HistoryReader
	blobStore       portsrepo.BlobStore
	dbLimitMB       float64
	storageLimitMB  float64
}

// NewStorageService creates the quota usage estimator.
func NewStorageService(transactionRepo portsrepo.TransactionReader, historyRepo portsrepo.HistoryReader, blobStore portsrepo.BlobStore, dbLimitMB, storageLimitMB float64) portssvc.StorageSvcFacade {
	return &storageService{
		transactionRepo: transactionRepo,
		historyRepo:     historyRepo,
		blobStore:       blobStore,
		dbLimitMB:       dbLimitMB,
		storageLimitMB:  storageLimitMB,
	}
}

var _ portssvc.StorageSvcFacade = (*storageService)(nil)

func (s *storageService) GetStorageUsage(ctx context.Context) (*domain.StorageUsage, error) {
	transactions, err := s.transactionRepo.CountTransactions(ctx)
	if err != nil {
		return nil, err
	}
	history, err := s.historyRepo.CountHistory(ctx)
	if err != nil {
		return nil, err
	}
	keys, err := s.blobStore.List(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list receipt images")
		return nil, err
	}

	usage := domain.EstimateUsage(transactions, history, int64(len(keys)), s.dbLimitMB, s.storageLimitMB)
	return &usage, nil
}
