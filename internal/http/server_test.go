package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"gagyebu/internal/amqp"
	"gagyebu/internal/cache"
	"gagyebu/internal/core"
	"gagyebu/internal/ledger"
	applog "gagyebu/internal/log"
	"gagyebu/internal/middleware/ratelimit"
	"gagyebu/internal/services"
	"gagyebu/internal/store/memory"
)

var kst = time.FixedZone("KST", 9*3600)

type fakePublisher struct{ msgs []*amqp.EntryMessage }

func (f *fakePublisher) PublishEntry(_ context.Context, msg *amqp.EntryMessage) error {
	f.msgs = append(f.msgs, msg)
	return nil
}

type testEnv struct {
	srv   *Server
	store *memory.Store
	queue *fakePublisher
}

func newTestServer(t *testing.T, queued bool, opts ...func(*Dependencies)) *testEnv {
	t.Helper()
	logger := applog.New(applog.Config{Output: io.Discard})
	st := memory.NewSeeded(ledger.DemoTransactions())
	env := &testEnv{store: st}

	lopts := services.LedgerOptions{
		Logger: logger,
		Views:  cache.NewLRUCache[services.ViewKey, any](64, 0),
	}
	if queued {
		env.queue = &fakePublisher{}
		lopts.Queue = env.queue
	}
	formatter, err := core.NewAmountFormatter("ko-KR")
	if err != nil {
		t.Fatalf("formatter: %v", err)
	}
	deps := Dependencies{
		Ledger:        services.NewLedgerService(st, lopts),
		FixedExpenses: st,
		Reports:       services.NewReportService(st),
		Formatter:     formatter,
		Logger:        logger,
		Now:           func() time.Time { return time.Date(2025, 5, 27, 21, 0, 0, 0, kst) },
	}
	for _, o := range opts {
		o(&deps)
	}
	env.srv = NewServer(":0", deps)
	t.Cleanup(func() { env.srv.Shutdown(context.Background()) })
	return env
}

func (e *testEnv) do(t *testing.T, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	env := newTestServer(t, false)
	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rr := env.do(t, http.MethodGet, path, "", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
		if rr.Header().Get("X-Request-ID") == "" {
			t.Fatalf("%s: missing request id", path)
		}
	}

	down := newTestServer(t, false, func(d *Dependencies) {
		d.Ready = func(context.Context) error { return errors.New("disk gone") }
	})
	if rr := down.do(t, http.MethodGet, "/readyz", "", ""); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz with failing storage = %d", rr.Code)
	}
}

func TestSummary(t *testing.T) {
	env := newTestServer(t, false)
	rr := env.do(t, http.MethodGet, "/api/summary?year=2025&month=5", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	got := decode[summaryJSON](t, rr)
	if got.Income != 350000 || got.Expense != 182000 || got.Net != 168000 {
		t.Fatalf("unexpected totals %+v", got)
	}
	if got.IncomeDisplay != "350,000" || got.ExpenseDisplay != "182,000" {
		t.Fatalf("unexpected display strings %+v", got)
	}

	// Missing parameters default to the server's today.
	rr = env.do(t, http.MethodGet, "/api/summary", "", "")
	if got := decode[summaryJSON](t, rr); got.Year != 2025 || got.Month != 5 {
		t.Fatalf("defaults not applied: %+v", got)
	}
}

func TestCalendar(t *testing.T) {
	env := newTestServer(t, false)
	rr := env.do(t, http.MethodGet, "/api/calendar?year=2025&month=5&day=9", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	got := decode[calendarJSON](t, rr)

	// 2025-05-01 is a Thursday: four blank cells before it.
	if len(got.Cells) != 4+31 {
		t.Fatalf("got %d cells", len(got.Cells))
	}
	for i := 0; i < 4; i++ {
		if !got.Cells[i].Blank {
			t.Fatalf("cell %d should be blank", i)
		}
	}
	day := func(n int) cellJSON { return got.Cells[3+n] }
	if c := day(9); !c.IsSelected || c.Expense != 64500 {
		t.Fatalf("day 9 = %+v", c)
	}
	if c := day(27); !c.IsToday || c.Income != 200000 || c.Expense != 15000 {
		t.Fatalf("day 27 = %+v", c)
	}
	if got.Summary.Expense != 182000 {
		t.Fatalf("summary = %+v", got.Summary)
	}
}

func TestBadSelectionIs400(t *testing.T) {
	env := newTestServer(t, false)
	for _, target := range []string{
		"/api/calendar?year=2025&month=13",
		"/api/calendar?year=2025&month=0",
		"/api/calendar?year=2025&month=2&day=30",
		"/api/summary?year=abc&month=5",
		"/api/overview?month=x",
		"/api/days/2025-02-30",
		"/api/days/yesterday",
	} {
		rr := env.do(t, http.MethodGet, target, "", "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s status=%d, want 400", target, rr.Code)
			continue
		}
		if body := decode[errorBody](t, rr); body.Error == "" {
			t.Errorf("%s: empty error body", target)
		}
	}
}

func TestDayDetailOrdersExpensesFirst(t *testing.T) {
	env := newTestServer(t, false)
	rr := env.do(t, http.MethodGet, "/api/days/2025-05-27", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	got := decode[struct {
		Date    string            `json:"date"`
		Entries []transactionJSON `json:"entries"`
	}](t, rr)
	if len(got.Entries) != 2 {
		t.Fatalf("entries = %+v", got.Entries)
	}
	if got.Entries[0].Type != "expense" || got.Entries[0].Memo != "커피" || got.Entries[1].Income != 200000 {
		t.Fatalf("unexpected order %+v", got.Entries)
	}
	if got.Entries[0].CategoryLabel == "" || got.Entries[0].AmountDisplay != "15,000" {
		t.Fatalf("display fields missing %+v", got.Entries[0])
	}
}

func TestOverview(t *testing.T) {
	env := newTestServer(t, false)
	rr := env.do(t, http.MethodGet, "/api/overview?year=2025&month=5", "", "")
	got := decode[overviewJSON](t, rr)
	if len(got.ByCategory) == 0 {
		t.Fatalf("no categories: %s", rr.Body)
	}
	var sum int64
	for i, c := range got.ByCategory {
		sum += c.Amount
		if i > 0 && c.Amount > got.ByCategory[i-1].Amount {
			t.Fatalf("categories not sorted by amount: %+v", got.ByCategory)
		}
	}
	if sum != got.Expense {
		t.Fatalf("category sum %d != expense %d", sum, got.Expense)
	}
}

func TestCreateEntry(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantCode    int
		check       func(t *testing.T, rr *httptest.ResponseRecorder)
	}{
		{
			name:        "json expense",
			contentType: "application/json",
			body:        `{"date":"2025-05-27","amount":"007","memo":"껌","type":"expense","category":"food","payment":"cash"}`,
			wantCode:    http.StatusCreated,
			check: func(t *testing.T, rr *httptest.ResponseRecorder) {
				got := decode[transactionJSON](t, rr)
				if got.Expense != 7 || got.Date != "2025-05-27" || got.Kind != "expense" {
					t.Fatalf("unexpected transaction %+v", got)
				}
			},
		},
		{
			name:        "form income with localized labels and default date",
			contentType: "application/x-www-form-urlencoded",
			body:        url.Values{"amount": {"1000"}, "type": {"수입"}, "category": {"이자"}}.Encode(),
			wantCode:    http.StatusCreated,
			check: func(t *testing.T, rr *httptest.ResponseRecorder) {
				got := decode[transactionJSON](t, rr)
				if got.Income != 1000 || got.Date != "2025-05-27" {
					t.Fatalf("unexpected transaction %+v", got)
				}
			},
		},
		{
			name:        "json number amount",
			contentType: "application/json",
			body:        `{"amount": 2500, "type": "expense"}`,
			wantCode:    http.StatusCreated,
		},
		{
			name:        "unknown type",
			contentType: "application/json",
			body:        `{"amount":"10","type":"gift"}`,
			wantCode:    http.StatusUnprocessableEntity,
		},
		{
			name:        "unknown category",
			contentType: "application/json",
			body:        `{"amount":"10","type":"expense","category":"yachts"}`,
			wantCode:    http.StatusUnprocessableEntity,
		},
		{
			name:        "bad date",
			contentType: "application/json",
			body:        `{"date":"2025-13-01","amount":"10","type":"expense"}`,
			wantCode:    http.StatusBadRequest,
		},
		{
			name:        "broken json",
			contentType: "application/json",
			body:        `{"amount":`,
			wantCode:    http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestServer(t, false)
			rr := env.do(t, http.MethodPost, "/api/entries", tt.contentType, tt.body)
			if rr.Code != tt.wantCode {
				t.Fatalf("status=%d want %d body=%s", rr.Code, tt.wantCode, rr.Body)
			}
			if tt.check != nil {
				tt.check(t, rr)
			}
		})
	}
}

func TestCreateEntryInvalidatesViews(t *testing.T) {
	env := newTestServer(t, false)
	before := decode[summaryJSON](t, env.do(t, http.MethodGet, "/api/summary?year=2025&month=5", "", ""))

	rr := env.do(t, http.MethodPost, "/api/entries", "application/json",
		`{"date":"2025-05-31","amount":"1000","type":"expense"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d", rr.Code)
	}

	after := decode[summaryJSON](t, env.do(t, http.MethodGet, "/api/summary?year=2025&month=5", "", ""))
	if after.Expense != before.Expense+1000 {
		t.Fatalf("stale summary: before %d after %d", before.Expense, after.Expense)
	}
}

func TestStrictPolicyRejectsMalformedAmount(t *testing.T) {
	logger := applog.New(applog.Config{Output: io.Discard})
	env := newTestServer(t, false, func(d *Dependencies) {
		d.Ledger = services.NewLedgerService(memory.New(), services.LedgerOptions{Policy: core.AmountStrict, Logger: logger})
	})
	rr := env.do(t, http.MethodPost, "/api/entries", "application/json", `{"amount":"abc","type":"expense"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d", rr.Code)
	}
}

func TestCreateEntryQueued(t *testing.T) {
	env := newTestServer(t, true)
	rr := env.do(t, http.MethodPost, "/api/entries", "application/json",
		`{"date":"2025-05-28","amount":"3000","type":"expense","memo":"빵"}`)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	got := decode[queuedJSON](t, rr)
	if got.Status != "queued" || len(env.queue.msgs) != 1 || env.queue.msgs[0].ID != got.MessageID {
		t.Fatalf("unexpected queue state %+v / %d messages", got, len(env.queue.msgs))
	}
	if all, _ := env.store.All(context.Background()); len(all) != len(ledger.DemoTransactions()) {
		t.Fatal("queued entry must not be stored by the handler")
	}

	rr = env.do(t, http.MethodPost, "/api/entries", "application/json", `{"amount":"1","type":"nope"}`)
	if rr.Code != http.StatusUnprocessableEntity || len(env.queue.msgs) != 1 {
		t.Fatalf("invalid entry must be rejected before publishing, status=%d", rr.Code)
	}
}

func TestFixedExpenses(t *testing.T) {
	env := newTestServer(t, false)
	rr := env.do(t, http.MethodPost, "/api/fixed-expenses", "application/json",
		`{"description":"통신비","amount":"55000","category":"utilities","every":"월간","start_date":"2025-01-25"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	created := decode[fixedExpenseJSON](t, rr)
	if created.ID == 0 || created.Every != "monthly" || created.AmountDisplay != "55,000" {
		t.Fatalf("unexpected %+v", created)
	}

	for _, body := range []string{
		`{"description":"x","amount":"1","every":"hourly"}`,
		`{"description":"x","amount":"12abc","every":"daily"}`,
		`{"description":"","amount":"1","every":"daily"}`,
		`{"description":"x","amount":"1","every":"daily","start_date":"2025-05-10","end_date":"2025-05-01"}`,
	} {
		if rr := env.do(t, http.MethodPost, "/api/fixed-expenses", "application/json", body); rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: status=%d, want 422", body, rr.Code)
		}
	}

	rr = env.do(t, http.MethodGet, "/api/fixed-expenses", "", "")
	list := decode[map[string][]fixedExpenseJSON](t, rr)
	if len(list["fixed_expenses"]) != 1 {
		t.Fatalf("list = %+v", list)
	}
}

func TestErrorReports(t *testing.T) {
	env := newTestServer(t, false)
	rr := env.do(t, http.MethodPost, "/api/error-reports", "application/json", `{"content":"합계가 이상해요"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	if len(env.store.ErrorReports()) != 1 {
		t.Fatal("report not stored")
	}

	long := strings.Repeat("가", core.MaxReportLength+1)
	for _, body := range []string{`{"content":"   "}`, `{"content":"` + long + `"}`} {
		if rr := env.do(t, http.MethodPost, "/api/error-reports", "application/json", body); rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("status=%d, want 422", rr.Code)
		}
	}
}

func TestCategories(t *testing.T) {
	env := newTestServer(t, false)
	got := decode[map[string][]map[string]string](t, env.do(t, http.MethodGet, "/api/categories", "", ""))
	if len(got["general"]) != len(core.GeneralCategories()) || len(got["transfer"]) != len(core.TransferCategories()) {
		t.Fatalf("unexpected vocabularies %+v", got)
	}
}

func TestMethodAndSecurityMiddleware(t *testing.T) {
	env := newTestServer(t, false)
	if rr := env.do(t, http.MethodDelete, "/api/entries", "", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("DELETE status=%d", rr.Code)
	}
	rr := env.do(t, http.MethodGet, "/api/summary?year=2025&month=5", "", "")
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" || rr.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("security headers missing: %v", rr.Header())
	}
}

func TestRateLimitAppliesToPosts(t *testing.T) {
	env := newTestServer(t, false, func(d *Dependencies) {
		d.RateLimit = ratelimit.Config{RequestsPerMinute: 2}
	})
	codes := []int{}
	for i := 0; i < 3; i++ {
		rr := env.do(t, http.MethodPost, "/api/error-reports", "application/json", `{"content":"x"}`)
		codes = append(codes, rr.Code)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
	for i := 0; i < 5; i++ {
		if rr := env.do(t, http.MethodGet, "/healthz", "", ""); rr.Code != http.StatusOK {
			t.Fatalf("GET limited: %d", rr.Code)
		}
	}
}

func TestExport(t *testing.T) {
	env := newTestServer(t, false)
	rr := env.do(t, http.MethodGet, "/api/export?year=2025&month=5", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "gagyebu-2025-05.csv") {
		t.Fatalf("content disposition = %q", cd)
	}

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(rr.Body.String(), utf8BOM)), "\n")
	if lines[0] != "date,type,kind,income,expense,category,memo,payment_method,transfer_target" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if len(lines) != 1+len(ledger.DemoTransactions()) {
		t.Fatalf("got %d lines, want header plus %d rows", len(lines), len(ledger.DemoTransactions()))
	}

	empty := env.do(t, http.MethodGet, "/api/export?year=2025&month=7", "", "")
	if empty.Code != http.StatusOK {
		t.Fatalf("empty month status=%d", empty.Code)
	}
	if rr := env.do(t, http.MethodGet, "/api/export?year=2025&month=13", "", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("month 13 status=%d", rr.Code)
	}
}

func TestServerWithoutFormatterUsesKoreanDisplay(t *testing.T) {
	env := newTestServer(t, false, func(d *Dependencies) { d.Formatter = nil })
	if env.srv.formatter == nil {
		t.Fatal("expected a fallback formatter")
	}
	rr := env.do(t, http.MethodGet, "/api/summary?year=2025&month=5", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	if got := decode[summaryJSON](t, rr); got.IncomeDisplay != "350,000" || got.ExpenseDisplay != "182,000" {
		t.Fatalf("unexpected display strings %+v", got)
	}
}
