package common

import (
	"context"
	"embed"
	"html/template"
	"io"
	"io/fs"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/metacatalog/internal/ui/resources"
	"github.com/leapstack-labs/metacatalog/pkg/core"
)

//go:embed templates/*.html
var templateFS embed.FS

var shared = MustParse(nil)

// Funcs is the function map available to every page template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"static":    resources.StaticPath,
		"amount":    FormatAmount,
		"date":      FormatDate,
		"kindClass": KindClass,
		"kindColor": KindColor,
		"shortID":   ShortID,
		"json":      JSON,
		"nav":       func() []NavItem { return Nav },
		"kinds":     func() []core.AssetKind { return core.AllKinds },
		"regTags":   func() []core.RegTag { return core.AllRegTags },
		"statuses":  func() []core.ClaimStatus { return core.AllClaimStatuses },
		"add":       func(a, b int) int { return a + b },
	}
}

// Parse returns a template set holding the shared layout plus the templates
// in fsys matched by patterns. A nil fsys yields only the shared set.
func Parse(fsys fs.FS, patterns ...string) (*template.Template, error) {
	t, err := template.New("").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	if fsys == nil {
		return t, nil
	}
	return t.ParseFS(fsys, patterns...)
}

// MustParse is like Parse but panics on error. It is meant for package-level
// template sets that are embedded at build time.
func MustParse(fsys fs.FS, patterns ...string) *template.Template {
	return template.Must(Parse(fsys, patterns...))
}

// Component adapts the named template to a templ.Component so it can be
// rendered as a page or patched over SSE.
func Component(t *template.Template, name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return t.ExecuteTemplate(w, name, data)
	})
}

// Toast renders the notification area with a message.
func Toast(level ToastLevel, message string) templ.Component {
	return Component(shared, "toast", ToastData{Level: level, Message: message})
}

// SendToast patches a toast into the page.
func SendToast(sse *datastar.ServerSentEventGenerator, level ToastLevel, message string) error {
	return sse.PatchElementTempl(Toast(level, message))
}

// SendError reports err in the browser console and as an error toast.
// Internal failures are shown with the generic message; user errors with
// their own text.
func SendError(sse *datastar.ServerSentEventGenerator, err error, message string, userFacing bool) {
	_ = sse.ConsoleError(err)
	if userFacing {
		message = err.Error()
	}
	_ = SendToast(sse, ToastError, message)
}
