package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxReportLength is the longest error report the report form accepts.
const MaxReportLength = 300

var (
	ErrEmptyReport   = errors.New("empty error report")
	ErrReportTooLong = errors.New("error report too long (max 300 characters)")
)

// ErrorReport is a free-text problem report sent from the app.
type ErrorReport struct {
	ID        int64
	Content   string
	CreatedAt time.Time
}

func (r ErrorReport) Validate() error {
	content := strings.TrimSpace(r.Content)
	if content == "" {
		return ErrEmptyReport
	}
	if utf8.RuneCountInString(content) > MaxReportLength {
		return ErrReportTooLong
	}
	return nil
}
