package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/club_ledger/internal/apperrors"
	"github.com/SscSPs/club_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/club_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/club_ledger/internal/core/ports/services"
	"github.com/SscSPs/club_ledger/internal/utils"
	"github.com/gabriel-vasile/mimetype"
)

// DefaultReceiptMaxBytes caps uploads when no limit is configured.
const DefaultReceiptMaxBytes int64 = 5 * 1024 * 1024

type receiptService struct {
	BaseService
	blobStore portsrepo.BlobStore
	maxBytes  int64
	now       func() time.Time
}

// NewReceiptService creates the receipt upload service.
func NewReceiptService(blobStore portsrepo.BlobStore, maxBytes int64) portssvc.ReceiptSvcFacade {
	if maxBytes <= 0 {
		maxBytes = DefaultReceiptMaxBytes
	}
	return &receiptService{blobStore: blobStore, maxBytes: maxBytes, now: time.Now}
}

var _ portssvc.ReceiptSvcFacade = (*receiptService)(nil)

// UploadReceipt sniffs the content rather than trusting the client's filename or header.
func (s *receiptService) UploadReceipt(ctx context.Context, filename string, r io.Reader, userID string) (*domain.Receipt, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", apperrors.ErrValidation)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: file exceeds the %d byte limit", apperrors.ErrValidation, s.maxBytes)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: receipts must be images, got %s", apperrors.ErrValidation, mt.String())
	}

	suffix, err := utils.GenerateSecureRandomString(6)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%d_%s%s", s.now().UnixMilli(), suffix, mt.Extension())

	url, err := s.blobStore.Put(ctx, key, bytes.NewReader(data))
	if err != nil {
		s.LogError(ctx, err, "Failed to store receipt", slog.String("key", key))
		return nil, err
	}

	s.LogInfo(ctx, "Receipt uploaded",
		slog.String("key", key),
		slog.String("original_filename", filename),
		slog.String("content_type", mt.String()),
		slog.String("user_id", userID))
	return &domain.Receipt{Key: key, URL: url, ContentType: mt.String(), Size: int64(len(data))}, nil
}
