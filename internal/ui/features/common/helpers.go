package common

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/leapstack-labs/metacatalog/pkg/core"
)

var printer = message.NewPrinter(language.English)

// FormatAmount renders a claim amount as dollars with grouping, like "$6,000.50".
func FormatAmount(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprintf("$%.2f", f)
}

// FormatDate renders an asset timestamp as a short date. Unparseable values
// are shown as stored.
func FormatDate(ts string) string {
	t, err := core.ParseTimestamp(ts)
	if err != nil {
		return ts
	}
	return t.UTC().Format("Jan 2, 2006")
}

// FormatTime renders an event time for the UI footer.
func FormatTime(t time.Time) string {
	return t.UTC().Format("15:04:05")
}

// KindClass returns the CSS modifier for an asset kind.
func KindClass(k core.AssetKind) string {
	return "kind-" + strings.ToLower(string(k))
}

// KindColor returns the fill color used for an asset kind in diagrams.
func KindColor(k core.AssetKind) string {
	switch k {
	case core.KindPolicy:
		return "hsl(215, 65%, 45%)"
	case core.KindClaim:
		return "hsl(35, 85%, 55%)"
	case core.KindModel:
		return "hsl(142, 76%, 36%)"
	}
	return "hsl(0, 0%, 60%)"
}

// ShortID returns the first eight characters of an ID.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// JSON marshals v for use in a data-signals attribute.
func JSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
