package http

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/gocarina/gocsv"

	applog "gagyebu/internal/log"
)

// exportRow is one CSV line of the month export.
type exportRow struct {
	Date           string `csv:"date"`
	Type           string `csv:"type"`
	Kind           string `csv:"kind"`
	Income         int64  `csv:"income"`
	Expense        int64  `csv:"expense"`
	Category       string `csv:"category"`
	Memo           string `csv:"memo"`
	PaymentMethod  string `csv:"payment_method"`
	TransferTarget string `csv:"transfer_target"`
}

// utf8BOM lets spreadsheet tools detect the encoding of Korean labels.
const utf8BOM = "\ufeff"

// handleExport writes the selected month as CSV in insertion order.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	today, _ := s.today()
	sel, err := ParseSelection(r.URL.Query(), today)
	if err != nil {
		s.fail(w, r, applog.OpParse, err)
		return
	}
	txs, err := s.ledger.MonthTransactions(r.Context(), sel.Year, sel.Month)
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}

	rows := make([]*exportRow, len(txs))
	for i, t := range txs {
		v := s.transactionView(t)
		rows[i] = &exportRow{
			Date:           v.Date,
			Type:           v.Type,
			Kind:           v.Kind,
			Income:         v.Income,
			Expense:        v.Expense,
			Category:       v.CategoryLabel,
			Memo:           v.Memo,
			PaymentMethod:  v.PaymentMethod,
			TransferTarget: v.TransferTarget,
		}
	}

	var buf bytes.Buffer
	buf.WriteString(utf8BOM)
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csv.NewWriter(&buf))); err != nil {
		s.fail(w, r, applog.OpRead, fmt.Errorf("encode export: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="gagyebu-%04d-%02d.csv"`, sel.Year, sel.Month))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
