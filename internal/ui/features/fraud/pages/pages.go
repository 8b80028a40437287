// Package pages renders the fraud panel.
package pages

import (
	"embed"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/metacatalog/internal/ui/features/common"
)

//go:embed templates/*.html
var templateFS embed.FS

var tmpl = common.MustParse(templateFS, "templates/*.html")

// PageData is the full fraud page.
type PageData struct {
	Shell  common.ShellData
	Report ReportData
	Rules  []string
}

// ReportData is the patchable statistics and claims table.
type ReportData struct {
	Total      int
	Suspicious int
	// Rate is the suspicious percentage, already formatted.
	Rate     string
	Elevated bool
	Claims   []ClaimRow
}

// ClaimRow is one evaluated claim.
type ClaimRow struct {
	ID         string
	Name       string
	Amount     string
	Status     string
	PolicyName string
	Filed      string
	Suspicious bool
}

// FraudPage renders the full fraud page.
func FraudPage(data PageData) templ.Component {
	return common.Component(tmpl, "layout", data)
}

// Report renders the statistics and claims table.
func Report(data ReportData) templ.Component {
	return common.Component(tmpl, "fraud-report", data)
}
