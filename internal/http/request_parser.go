// Package http exposes the ledger over a JSON API.
//
// This file implements utilities for parsing and validating request data.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gagyebu/internal/core"
)

// maxBodyBytes bounds every request body the API reads.
const maxBodyBytes = 64 << 10

// ErrInvalidParam marks a query or body value that could not be read at all.
var ErrInvalidParam = errors.New("invalid parameter")

// ParseSelection reads year, month and day from the query. Missing year or
// month default to today's; a missing day means no day is selected. Values
// that are present but not numbers are rejected.
func ParseSelection(query url.Values, today core.Date) (core.Selection, error) {
	sel := core.Selection{Year: today.Year, Month: int(today.Month)}

	var err error
	if sel.Year, err = intParam(query, "year", sel.Year); err != nil {
		return core.Selection{}, err
	}
	if sel.Month, err = intParam(query, "month", sel.Month); err != nil {
		return core.Selection{}, err
	}
	if sel.Day, err = intParam(query, "day", 0); err != nil {
		return core.Selection{}, err
	}
	if err := core.ValidateMonth(sel.Month); err != nil {
		return core.Selection{}, err
	}
	return sel, nil
}

func intParam(query url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", ErrInvalidParam, key, v)
	}
	return n, nil
}

// RequestBodyParser reads a JSON object or form-encoded body once and
// exposes its fields as trimmed strings.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = fmt.Errorf("%w: request body larger than %d bytes", ErrInvalidParam, maxBodyBytes)
	}
	return p
}

// Parse parses the body as JSON when it looks like JSON, as form data otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(trimmed, "{") || strings.Contains(p.contentType, "application/json") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: JSON body: %v", ErrInvalidParam, err)
			return p.err
		}
		return nil
	}

	if p.formData, p.err = url.ParseQuery(trimmed); p.err != nil {
		p.err = fmt.Errorf("%w: form body: %v", ErrInvalidParam, p.err)
	}
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput drops control characters other than tab and newlines and
// trims surrounding whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}

// dateField parses an optional YYYY-MM-DD field, defaulting to today.
func dateField(p *RequestBodyParser, key string, today core.Date) (core.Date, error) {
	v := p.Get(key)
	if v == "" {
		return today, nil
	}
	return core.ParseDate(v)
}

// ParseEntrySubmission builds an entry submission from the body. The date
// is placed at midnight in loc so the ingestor keeps the same calendar day.
func ParseEntrySubmission(p *RequestBodyParser, today core.Date, loc *time.Location) (core.EntrySubmission, error) {
	d, err := dateField(p, "date", today)
	if err != nil {
		return core.EntrySubmission{}, err
	}
	if err := d.Validate(); err != nil {
		return core.EntrySubmission{}, err
	}
	return core.EntrySubmission{
		Date:     time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc),
		Amount:   p.Get("amount"),
		Memo:     p.Get("memo"),
		Type:     p.Get("type"),
		Category: p.Get("category"),
		Payment:  p.Get("payment"),
		Transfer: p.Get("transfer"),
	}, nil
}

// ParseFixedExpense builds a fixed expense template from the body. Amounts
// are always read with the strict policy.
func ParseFixedExpense(p *RequestBodyParser, today core.Date) (core.FixedExpense, error) {
	amount, err := core.ParseAmount(p.Get("amount"), core.AmountStrict)
	if err != nil {
		return core.FixedExpense{}, err
	}
	category, err := core.ParseCategory(p.Get("category"))
	if err != nil {
		return core.FixedExpense{}, err
	}
	every, err := core.ParseCycle(p.Get("every"))
	if err != nil {
		return core.FixedExpense{}, err
	}
	start, err := dateField(p, "start_date", today)
	if err != nil {
		return core.FixedExpense{}, err
	}
	var end core.Date
	if v := p.Get("end_date"); v != "" {
		if end, err = core.ParseDate(v); err != nil {
			return core.FixedExpense{}, err
		}
	}
	return core.FixedExpense{
		Description:   p.Get("description"),
		Amount:        amount,
		PaymentMethod: p.Get("payment_method"),
		Category:      category,
		Every:         every,
		StartDate:     start,
		EndDate:       end,
	}, nil
}
