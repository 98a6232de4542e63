package templates

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/emiliopalmerini/kpiboard/internal/domain"
)

// html accumulates writes and keeps the first error.
type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *html) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

func (h *html) render(ctx context.Context, c templ.Component) {
	if h.err == nil {
		h.err = c.Render(ctx, h.w)
	}
}

func stateClass(s domain.WidgetState) string {
	return "state-" + s.String()
}

func deltaClass(w domain.Widget) string {
	if w.InverseDelta {
		return "delta delta-inverse"
	}
	return "delta"
}

func sectionURL(id string) templ.SafeURL {
	return templ.URL("/sections/" + id)
}

func formatGenerated(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006 15:04:05 MST")
}

func isChart(k domain.WidgetKind) bool {
	switch k {
	case domain.KindTrendLine, domain.KindRankedBar, domain.KindScatter:
		return true
	default:
		return false
	}
}
