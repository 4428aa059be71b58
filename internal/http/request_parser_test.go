package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"gagyebu/internal/core"
)

func TestParseSelection(t *testing.T) {
	today := core.NewDate(2025, 5, 27)
	tests := []struct {
		name    string
		query   url.Values
		want    core.Selection
		wantErr error
	}{
		{
			name:  "all values provided",
			query: url.Values{"year": {"2024"}, "month": {"2"}, "day": {"29"}},
			want:  core.Selection{Year: 2024, Month: 2, Day: 29},
		},
		{
			name:  "empty query uses today without a selected day",
			query: url.Values{},
			want:  core.Selection{Year: 2025, Month: 5},
		},
		{
			name:  "whitespace is trimmed",
			query: url.Values{"month": {" 7 "}},
			want:  core.Selection{Year: 2025, Month: 7},
		},
		{
			name:    "non-numeric month",
			query:   url.Values{"month": {"may"}},
			wantErr: ErrInvalidParam,
		},
		{
			name:    "month out of range",
			query:   url.Values{"month": {"13"}},
			wantErr: core.ErrInvalidMonth,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelection(tt.query, today)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseSelection() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func newParser(t *testing.T, contentType, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return NewRequestBodyParser(req)
}

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		key         string
		want        string
		wantJSON    bool
		wantErr     bool
	}{
		{"json string", "application/json", `{"memo":" 점심 "}`, "memo", "점심", true, false},
		{"json number", "application/json", `{"amount": 12.5}`, "amount", "12.5", true, false},
		{"json missing key", "application/json", `{"memo":"x"}`, "amount", "", true, false},
		{"form", "application/x-www-form-urlencoded", "memo=%EC%A0%90%EC%8B%AC&amount=100", "memo", "점심", false, false},
		{"control characters dropped", "application/json", `{"memo":"a\u0000b"}`, "memo", "ab", true, false},
		{"empty body", "", "", "memo", "", false, false},
		{"broken json", "application/json", `{"memo":`, "memo", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(t, tt.contentType, tt.body)
			err := p.Parse()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidParam) {
					t.Fatalf("error %v should wrap ErrInvalidParam", err)
				}
				return
			}
			if got := p.Get(tt.key); got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
			if p.IsJSON() != tt.wantJSON {
				t.Errorf("IsJSON() = %v, want %v", p.IsJSON(), tt.wantJSON)
			}
		})
	}
}

func TestRequestBodyParser_TooLarge(t *testing.T) {
	p := newParser(t, "application/json", `{"memo":"`+strings.Repeat("x", maxBodyBytes)+`"}`)
	if err := p.Parse(); !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("expected size error, got %v", err)
	}
}

func TestParseEntrySubmission(t *testing.T) {
	kst := time.FixedZone("KST", 9*3600)
	today := core.NewDate(2025, 5, 27)

	p := newParser(t, "application/json", `{"amount":"1000","type":"지출","memo":"택시","category":"교통","payment":"card","transfer":""}`)
	if err := p.Parse(); err != nil {
		t.Fatal(err)
	}
	sub, err := ParseEntrySubmission(p, today, kst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if core.DateOf(sub.Date) != today || sub.Date.Location() != kst {
		t.Fatalf("date = %v", sub.Date)
	}
	if sub.Amount != "1000" || sub.Type != "지출" || sub.Category != "교통" || sub.Payment != "card" {
		t.Fatalf("unexpected submission %+v", sub)
	}

	p = newParser(t, "application/json", `{"date":"2025-02-29","amount":"1","type":"expense"}`)
	p.Parse()
	if _, err := ParseEntrySubmission(p, today, kst); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected invalid date, got %v", err)
	}
}

func TestParseFixedExpense(t *testing.T) {
	today := core.NewDate(2025, 5, 27)
	p := newParser(t, "application/x-www-form-urlencoded",
		url.Values{"description": {"월세"}, "amount": {"500000"}, "category": {"주거비"}, "every": {"monthly"}, "end_date": {"2026-04-30"}}.Encode())
	if err := p.Parse(); err != nil {
		t.Fatal(err)
	}
	fe, err := ParseFixedExpense(p, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fe.Amount != 500000 || fe.Category != core.CategoryHousing || fe.Every != core.Monthly {
		t.Fatalf("unexpected fixed expense %+v", fe)
	}
	if fe.StartDate != today || fe.EndDate != core.NewDate(2026, 4, 30) {
		t.Fatalf("unexpected dates %+v", fe)
	}
}
