package http

import (
	"net/http"

	"gagyebu/internal/core"
	applog "gagyebu/internal/log"
)

type transactionJSON struct {
	Date           string `json:"date"`
	Type           string `json:"type"`
	Kind           string `json:"kind"`
	Income         int64  `json:"income"`
	Expense        int64  `json:"expense"`
	AmountDisplay  string `json:"amount_display"`
	Memo           string `json:"memo,omitempty"`
	Category       string `json:"category,omitempty"`
	CategoryLabel  string `json:"category_label,omitempty"`
	PaymentMethod  string `json:"payment_method,omitempty"`
	TransferTarget string `json:"transfer_target,omitempty"`
}

type cellJSON struct {
	Blank      bool  `json:"blank"`
	Day        int   `json:"day,omitempty"`
	IsToday    bool  `json:"is_today,omitempty"`
	IsSelected bool  `json:"is_selected,omitempty"`
	Income     int64 `json:"income"`
	Expense    int64 `json:"expense"`
}

type summaryJSON struct {
	Year           int    `json:"year"`
	Month          int    `json:"month"`
	Income         int64  `json:"income"`
	Expense        int64  `json:"expense"`
	Net            int64  `json:"net"`
	IncomeDisplay  string `json:"income_display"`
	ExpenseDisplay string `json:"expense_display"`
	NetDisplay     string `json:"net_display"`
}

type calendarJSON struct {
	Year        int         `json:"year"`
	Month       int         `json:"month"`
	SelectedDay int         `json:"selected_day,omitempty"`
	Cells       []cellJSON  `json:"cells"`
	Summary     summaryJSON `json:"summary"`
}

type categoryAmountJSON struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Amount   int64  `json:"amount"`
	Display  string `json:"display"`
}

type overviewJSON struct {
	summaryJSON
	ByCategory []categoryAmountJSON `json:"by_category"`
}

type queuedJSON struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id"`
}

func (s *Server) transactionView(t core.Transaction) transactionJSON {
	typ := core.EntryIncome
	if t.IsExpense() {
		typ = core.EntryExpense
	}
	return transactionJSON{
		Date:           t.Date.String(),
		Type:           string(typ),
		Kind:           string(t.Kind),
		Income:         t.Income.Int64(),
		Expense:        t.Expense.Int64(),
		AmountDisplay:  s.formatter.Format(t.Movement()),
		Memo:           t.Memo,
		Category:       string(t.Category),
		CategoryLabel:  t.Category.Label(),
		PaymentMethod:  t.PaymentMethod,
		TransferTarget: t.TransferTarget,
	}
}

func (s *Server) summaryView(year, month int, sum core.MonthlySummary) summaryJSON {
	net := sum.Net()
	netDisplay := s.formatter.Format(core.Money(net))
	if net < 0 {
		netDisplay = "-" + s.formatter.Format(core.Money(-net))
	}
	return summaryJSON{
		Year:           year,
		Month:          month,
		Income:         sum.Income.Int64(),
		Expense:        sum.Expense.Int64(),
		Net:            net,
		IncomeDisplay:  s.formatter.Format(sum.Income),
		ExpenseDisplay: s.formatter.Format(sum.Expense),
		NetDisplay:     netDisplay,
	}
}

// handleCalendar returns the month grid and the month totals.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	today, _ := s.today()
	sel, err := ParseSelection(r.URL.Query(), today)
	if err != nil {
		s.fail(w, r, applog.OpParse, err)
		return
	}

	cells, err := s.ledger.CalendarGrid(r.Context(), sel, today)
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	sum, err := s.ledger.MonthlySummary(r.Context(), sel.Year, sel.Month)
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}

	out := calendarJSON{
		Year:        sel.Year,
		Month:       sel.Month,
		SelectedDay: sel.Day,
		Cells:       make([]cellJSON, len(cells)),
		Summary:     s.summaryView(sel.Year, sel.Month, sum),
	}
	for i, c := range cells {
		out.Cells[i] = cellJSON{
			Blank:      c.Blank,
			Day:        c.Day,
			IsToday:    c.IsToday,
			IsSelected: c.IsSelected,
			Income:     c.IncomeTotal.Int64(),
			Expense:    c.ExpenseTotal.Int64(),
		}
	}
	NewJSONResponse().Body(out).Write(w)
}

// handleSummary returns the month totals with display strings.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	today, _ := s.today()
	sel, err := ParseSelection(r.URL.Query(), today)
	if err != nil {
		s.fail(w, r, applog.OpParse, err)
		return
	}
	sum, err := s.ledger.MonthlySummary(r.Context(), sel.Year, sel.Month)
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	NewJSONResponse().Body(s.summaryView(sel.Year, sel.Month, sum)).Write(w)
}

// handleOverview returns the month totals with the expense breakdown by category.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	today, _ := s.today()
	sel, err := ParseSelection(r.URL.Query(), today)
	if err != nil {
		s.fail(w, r, applog.OpParse, err)
		return
	}
	ov, err := s.ledger.MonthOverview(r.Context(), sel.Year, sel.Month)
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	out := overviewJSON{
		summaryJSON: s.summaryView(ov.Year, ov.Month, ov.Summary),
		ByCategory:  make([]categoryAmountJSON, len(ov.ByCategory)),
	}
	for i, c := range ov.ByCategory {
		out.ByCategory[i] = categoryAmountJSON{
			Category: string(c.Category),
			Label:    c.Category.Label(),
			Amount:   c.Amount.Int64(),
			Display:  s.formatter.Format(c.Amount),
		}
	}
	NewJSONResponse().Body(out).Write(w)
}

// handleDayDetail returns the entries of one day, expenses first.
func (s *Server) handleDayDetail(w http.ResponseWriter, r *http.Request) {
	d, err := core.ParseDate(r.PathValue("date"))
	if err != nil {
		s.fail(w, r, applog.OpParse, err)
		return
	}
	txs, err := s.ledger.DayDetail(r.Context(), d.Year, int(d.Month), d.Day)
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	out := struct {
		Date    string            `json:"date"`
		Entries []transactionJSON `json:"entries"`
	}{Date: d.String(), Entries: make([]transactionJSON, len(txs))}
	for i, t := range txs {
		out.Entries[i] = s.transactionView(t)
	}
	NewJSONResponse().Body(out).Write(w)
}

// handleCreateEntry stores a submission, or queues it when the durable
// queue is configured.
func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	today, loc := s.today()
	sub, err := ParseEntrySubmission(p, today, loc)
	if err != nil {
		s.fail(w, r, applog.OpParse, err)
		return
	}

	if s.ledger.Queued() {
		id, err := s.ledger.Enqueue(r.Context(), sub)
		if err != nil {
			s.fail(w, r, applog.OpEnqueue, err)
			return
		}
		NewJSONResponse().Status(http.StatusAccepted).Body(queuedJSON{Status: "queued", MessageID: id}).Write(w)
		return
	}

	t, err := s.ledger.Submit(r.Context(), sub)
	if err != nil {
		s.fail(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(s.transactionView(t)).Write(w)
}

// handleCategories lists the closed category vocabularies for entry forms.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	type option struct {
		Value string `json:"value"`
		Label string `json:"label"`
	}
	list := func(cs []core.Category) []option {
		out := make([]option, len(cs))
		for i, c := range cs {
			out[i] = option{Value: string(c), Label: c.Label()}
		}
		return out
	}
	NewJSONResponse().Body(map[string][]option{
		"general":  list(core.GeneralCategories()),
		"transfer": list(core.TransferCategories()),
	}).Write(w)
}
