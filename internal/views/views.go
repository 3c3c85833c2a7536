// Package views holds the embedded HTML templates and the helpers they use.
package views

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"shelflife/internal/models"

	"github.com/gofiber/template/html/v2"
)

// Layout wraps every rendered page.
const Layout = "layouts/main"

// ExpiringSoonDays is how close to its expiry date a product is flagged.
const ExpiringSoonDays = 3

// Expiry statuses used by templates and reports.
const (
	StatusExpired  = "expired"
	StatusExpiring = "expiring"
	StatusOK       = "ok"
)

//go:embed templates
var templates embed.FS

// NewEngine builds the template engine over the embedded templates.
func NewEngine() *html.Engine {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("expiryStatus", ExpiryStatus)
	engine.AddFunc("formatDate", func(t time.Time) string {
		return t.Format(models.DateLayout)
	})
	return engine
}

// ExpiryStatus classifies expiry against today. Both are calendar dates.
func ExpiryStatus(expiry, today time.Time) string {
	switch {
	case expiry.Before(today):
		return StatusExpired
	case !expiry.After(today.AddDate(0, 0, ExpiringSoonDays)):
		return StatusExpiring
	default:
		return StatusOK
	}
}
