package dto

import "github.com/SscSPs/club_ledger/internal/core/domain"

// ReceiptResponse describes a stored receipt image.
type ReceiptResponse struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// ToReceiptResponse converts a domain.Receipt to its response DTO.
func ToReceiptResponse(r *domain.Receipt) ReceiptResponse {
	return ReceiptResponse{Key: r.Key, URL: r.URL, ContentType: r.ContentType, Size: r.Size}
}
