// internal/app/features/renovations/views/views.go
package renovations

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "renovations",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
