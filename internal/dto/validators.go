package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// DateLayout is the calendar-day format accepted for ledger and fiscal year dates.
const DateLayout = "2006-01-02"

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("notblank", notBlank)
		_ = v.RegisterValidation("ledgerdate", ledgerDate)
	}
}

// notBlank rejects strings that are empty after trimming whitespace.
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ledgerDate accepts a calendar day or a full RFC 3339 timestamp.
func ledgerDate(fl validator.FieldLevel) bool {
	_, err := ParseLedgerDate(fl.Field().String())
	return err == nil
}

// ParseLedgerDate parses YYYY-MM-DD as midnight UTC, or an RFC 3339 timestamp as given.
func ParseLedgerDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}
