package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano

// Cursor is the position of the last row of a page, in (recorded_at, created_at) order.
type Cursor struct {
	RecordedAt time.Time
	CreatedAt  time.Time
}

// EncodeToken creates an opaque, URL safe token from a ledger date and creation time.
func EncodeToken(recordedAt time.Time, createdAt time.Time) string {
	tokenStr := fmt.Sprintf("%s|%s", recordedAt.UTC().Format(timeFormat), createdAt.UTC().Format(timeFormat))
	return base64.RawURLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses a token produced by EncodeToken.
func DecodeToken(token string) (Cursor, error) {
	decodedBytes, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 {
		return Cursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	recordedAt, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (recorded_at parse): %w", err)
	}
	createdAt, err := time.Parse(timeFormat, parts[1])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}

	return Cursor{RecordedAt: recordedAt, CreatedAt: createdAt}, nil
}

// DecodeOptional decodes token, treating an empty token as "first page".
func DecodeOptional(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	c, err := DecodeToken(token)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
