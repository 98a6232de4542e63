package page

import (
	"time"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/kpiboard/internal/domain"
)

// Title heads the rendered page.
const Title = "📊 Superstore Analytics: Key Performance Indicators"

// notRendered is shown for a panel whose widget never came back.
const notRendered = "not rendered"

// Section is a composed section of the page.
type Section struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Widgets []domain.Widget `json:"widgets"`
}

// Page is the outcome of one render. Err is set only when the data source
// could not be reached, in which case there are no sections.
type Page struct {
	RenderID    uuid.UUID `json:"render_id"`
	Title       string    `json:"title"`
	GeneratedAt time.Time `json:"generated_at"`
	Sections    []Section `json:"sections,omitempty"`
	Err         string    `json:"error,omitempty"`
}

// Halt is the page shown when a render could not start.
func Halt(err error) Page {
	return Page{Title: Title, Err: err.Error()}
}

// Compose places widgets, keyed by panel ID, into the layout. Every panel
// appears in layout order; one without a widget shows as failed. Sections are
// independent of each other.
func Compose(layout Layout, widgets map[string]domain.Widget) Page {
	p := Page{Title: Title, Sections: make([]Section, 0, len(layout))}
	for _, spec := range layout {
		p.Sections = append(p.Sections, ComposeSection(spec, widgets))
	}
	return p
}

// ComposeSection builds one section.
func ComposeSection(spec SectionSpec, widgets map[string]domain.Widget) Section {
	s := Section{ID: spec.ID, Title: spec.Title, Widgets: make([]domain.Widget, 0, len(spec.Panels))}
	for _, panel := range spec.Panels {
		w, ok := widgets[panel.ID]
		if !ok || !w.Terminal() {
			w = domain.Widget{
				Title: panel.Intent.Title,
				Kind:  panel.Intent.Kind,
				State: domain.StateFailed,
				Err:   notRendered,
			}
		}
		w.ID = panel.ID
		s.Widgets = append(s.Widgets, w)
	}
	return s
}

// Section returns the composed section with the given ID.
func (p Page) Section(id string) (Section, bool) {
	for _, s := range p.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Halted reports whether the render stopped on a connection failure.
func (p Page) Halted() bool {
	return p.Err != ""
}

// Count tallies widgets by state.
func (p Page) Count() map[domain.WidgetState]int {
	out := make(map[domain.WidgetState]int)
	for _, s := range p.Sections {
		for _, w := range s.Widgets {
			out[w.State]++
		}
	}
	return out
}
