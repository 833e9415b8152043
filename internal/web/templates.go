package web

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/justestif/go-tuneaura/internal/catalog"
	"github.com/justestif/go-tuneaura/internal/mood"
	"github.com/justestif/go-tuneaura/internal/session"
)

// Templates manages HTML template rendering.
type Templates struct {
	pages    map[string]*template.Template
	partials map[string]*template.Template
	funcs    template.FuncMap
}

// NewTemplates loads the layouts, pages and partials from templatesFS.
func NewTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{
		pages:    make(map[string]*template.Template),
		partials: make(map[string]*template.Template),
		funcs:    defaultFuncs(),
	}

	if err := t.load(templatesFS); err != nil {
		return nil, err
	}

	return t, nil
}

// Render renders a page inside the base layout.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.pages[page]
	if !ok {
		return fmt.Errorf("template %q not found", page)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}

// RenderPartial renders a partial on its own, for fragments polled by the page.
func (t *Templates) RenderPartial(w io.Writer, partial string, data any) error {
	tmpl, ok := t.partials[partial]
	if !ok {
		return fmt.Errorf("partial %q not found", partial)
	}
	return tmpl.ExecuteTemplate(w, partial, data)
}

func (t *Templates) load(templatesFS fs.FS) error {
	layouts, err := fs.Glob(templatesFS, "layouts/*.html")
	if err != nil {
		return fmt.Errorf("finding layouts: %w", err)
	}
	partials, err := fs.Glob(templatesFS, "partials/*.html")
	if err != nil {
		return fmt.Errorf("finding partials: %w", err)
	}
	pages, err := fs.Glob(templatesFS, "pages/*.html")
	if err != nil {
		return fmt.Errorf("finding pages: %w", err)
	}
	if len(layouts) == 0 || len(pages) == 0 {
		return fmt.Errorf("no layouts or pages found")
	}

	// Every page is parsed with all layouts and partials.
	common := slices.Concat(layouts, partials)
	for _, page := range pages {
		name := templateName(page)
		files := slices.Concat([]string{page}, common)

		tmpl, err := template.New(name).Funcs(t.funcs).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		t.pages[name] = tmpl
	}

	// Partials can reference each other.
	for _, partial := range partials {
		name := templateName(partial)
		tmpl, err := template.New(name).Funcs(t.funcs).ParseFS(templatesFS, partials...)
		if err != nil {
			return fmt.Errorf("parsing partial %s: %w", name, err)
		}
		t.partials[name] = tmpl
	}

	return nil
}

// templateName strips the directory and extension: "pages/app.html" is "app".
func templateName(p string) string {
	return strings.TrimSuffix(path.Base(p), ".html")
}

// defaultFuncs returns the default template functions.
func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		// moodColor returns an HSL color string based on energy and valence.
		// Energy maps to hue (cool indigo to warm orange), valence to saturation
		// and lightness.
		"moodColor": func(energy, valence float32) string {
			hue := 264 - (energy * 229)
			if hue < 0 {
				hue += 360
			}
			saturation := 60 + (valence * 40)
			lightness := 40 + (valence * 20)
			return fmt.Sprintf("hsl(%.0f, %.0f%%, %.0f%%)", hue, saturation, lightness)
		},

		"moodLabel": func(m mood.Mood) string { return m.Label() },
		"moodEmoji": func(m mood.Mood) string { return m.Emoji() },
		"moodIcon":  func(m mood.Mood) string { return m.Icon() },

		"formatTime": formatTime,

		// formatDate formats a time as "Jan 2, 2006"
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},

		// progress returns elapsed as a percentage of duration.
		"progress": func(elapsed, duration int) int {
			if duration <= 0 {
				return 0
			}
			return elapsed * 100 / duration
		},

		// add adds two integers (for 1-based indexing in loops)
		"add": func(a, b int) int {
			return a + b
		},
	}
}

// formatTime formats seconds as m:ss.
func formatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// PageData contains common data passed to all page templates.
type PageData struct {
	Title       string
	Flash       []FlashMessage
	CurrentPath string
	State       session.Snapshot
}

// FlashMessage represents a temporary notification message.
type FlashMessage struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// AuthPageData contains data for the login and signup pages.
type AuthPageData struct {
	PageData
}

// MoodPageData contains data for the mood detection page and the mood modals.
type MoodPageData struct {
	PageData
	Moods         []mood.Info
	CameraAllowed bool
}

// AppPageData contains data for the main app page.
type AppPageData struct {
	MoodPageData
	Sections []session.Section

	// Home and search
	Recommendations *catalog.Recommendations
	CatalogError    string
	Query           string
	Results         []catalog.Track

	// Library
	Mixes    []catalog.Mix
	Outliers []catalog.Track
}
