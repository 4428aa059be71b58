package http

import (
	"net/http"
	"time"

	"gagyebu/internal/core"
	applog "gagyebu/internal/log"
	"gagyebu/internal/services"
)

type fixedExpenseJSON struct {
	ID            int64  `json:"id"`
	Description   string `json:"description"`
	Amount        int64  `json:"amount"`
	AmountDisplay string `json:"amount_display"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Category      string `json:"category,omitempty"`
	Every         string `json:"every"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date,omitempty"`
	LastExecution string `json:"last_execution,omitempty"`
}

func (s *Server) fixedExpenseView(fe core.FixedExpense) fixedExpenseJSON {
	out := fixedExpenseJSON{
		ID:            fe.ID,
		Description:   fe.Description,
		Amount:        fe.Amount.Int64(),
		AmountDisplay: s.formatter.Format(fe.Amount),
		PaymentMethod: fe.PaymentMethod,
		Category:      string(fe.Category),
		Every:         string(fe.Every),
		StartDate:     fe.StartDate.String(),
	}
	if !fe.EndDate.IsZero() {
		out.EndDate = fe.EndDate.String()
	}
	if !fe.LastExecution.IsZero() {
		out.LastExecution = fe.LastExecution.Format(time.RFC3339)
	}
	return out
}

func (s *Server) handleListFixedExpenses(w http.ResponseWriter, r *http.Request) {
	list, err := s.fixed.ListFixedExpenses(r.Context())
	if err != nil {
		s.fail(w, r, applog.OpList, err)
		return
	}
	out := make([]fixedExpenseJSON, len(list))
	for i, fe := range list {
		out[i] = s.fixedExpenseView(fe)
	}
	NewJSONResponse().Body(map[string]any{"fixed_expenses": out}).Write(w)
}

func (s *Server) handleCreateFixedExpense(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	today, _ := s.today()
	fe, err := ParseFixedExpense(p, today)
	if err != nil {
		s.fail(w, r, applog.OpParse, err)
		return
	}
	created, err := services.CreateFixedExpense(r.Context(), s.fixed, fe)
	if err != nil {
		s.fail(w, r, applog.OpCreate, err)
		return
	}
	s.logger.InfoContext(r.Context(), "Fixed expense created",
		applog.FieldFixedID, created.ID,
		"every", string(created.Every),
		applog.FieldOperation, applog.OpCreate)
	NewJSONResponse().Status(http.StatusCreated).Body(s.fixedExpenseView(created)).Write(w)
}
