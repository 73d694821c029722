package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
)

// User-facing failure messages.
const (
	MsgNoData         = "No resume data to export"
	MsgCaptureFailed  = "Unable to capture resume preview"
	msgGenerateFailed = "Failed to generate PDF: "
)

// Result is the outcome of one export. Failures are reported here, never as
// a returned error.
type Result struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	FileName string `json:"fileName,omitempty"`
	Pages    int    `json:"pages,omitempty"`
	PDF      []byte `json:"-"`
}

// Pipeline turns a rendered resume preview into a PDF.
type Pipeline struct {
	Capturer Capturer
	Page     Page
	Scale    float64
	Paginate bool
	Now      func() time.Time
}

// Export captures target and embeds it into a PDF named after r.
func (p *Pipeline) Export(ctx context.Context, r *model.Resume, target Target) (res Result) {
	ctx, span := telemetry.Tracer().Start(ctx, "resume.export")
	start := time.Now()
	defer func() {
		outcome := "success"
		if !res.Success {
			outcome = "failure"
			span.SetStatus(codes.Error, res.Error)
		}
		span.SetAttributes(attribute.String("export.outcome", outcome), attribute.Int("export.pages", res.Pages))
		span.End()
		metrics.IncExport(outcome)
		metrics.ObserveExportDuration(time.Since(start))
	}()

	if r == nil {
		return Result{Error: MsgNoData}
	}
	if p.Capturer == nil {
		return Result{Error: MsgCaptureFailed}
	}

	scale := p.Scale
	if scale <= 0 {
		scale = 2
	}
	page := p.Page
	if page.WidthMM <= 0 || page.HeightMM <= 0 {
		page = PageA4
	}

	shot, err := p.Capturer.Capture(ctx, target, scale)
	if err != nil {
		if errors.Is(err, ErrNodeNotFound) {
			return Result{Error: MsgCaptureFailed}
		}
		telemetry.Error("export.capture_failed", map[string]any{"resume_id": r.ID, "error": err})
		return Result{Error: msgGenerateFailed + err.Error()}
	}

	pdf, pages, err := composePDF(shot, page, p.Paginate)
	if err != nil {
		telemetry.Error("export.compose_failed", map[string]any{"resume_id": r.ID, "error": err})
		return Result{Error: msgGenerateFailed + err.Error()}
	}

	return Result{
		Success:  true,
		FileName: FileName(*r, p.now()),
		Pages:    pages,
		PDF:      pdf,
	}
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// FileName is "{name}_{YYYY-MM-DD}.pdf" where name is the personal name,
// else the edit label, else "resume".
func FileName(r model.Resume, at time.Time) string {
	name := strings.TrimSpace(r.PersonalDetail.Name)
	if name == "" {
		name = strings.TrimSpace(r.EditName)
	}
	if name == "" {
		name = "resume"
	}
	name = strings.Map(func(c rune) rune {
		switch c {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return c
	}, name)
	return fmt.Sprintf("%s_%s.pdf", name, at.Format("2006-01-02"))
}
