package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gagyebu/internal/core"
	"gagyebu/internal/store"
)

// ReportService stores error reports sent from the app.
type ReportService struct {
	writer store.ErrorReportWriter
	now    func() time.Time
}

func NewReportService(w store.ErrorReportWriter) *ReportService {
	return &ReportService{writer: w, now: time.Now}
}

// Submit validates the report content and stores it.
func (s *ReportService) Submit(ctx context.Context, content string) (core.ErrorReport, error) {
	r := core.ErrorReport{Content: strings.TrimSpace(content), CreatedAt: s.now()}
	if err := r.Validate(); err != nil {
		return core.ErrorReport{}, err
	}
	id, err := s.writer.SaveErrorReport(ctx, r)
	if err != nil {
		return core.ErrorReport{}, fmt.Errorf("save error report: %w", err)
	}
	r.ID = id
	return r, nil
}
