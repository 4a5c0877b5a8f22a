package cli

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.md
var templates embed.FS

// formatMoney formats value in the given ISO currency, e.g. "$1,234.50" or "R$1.234,50".
func formatMoney(value decimal.Decimal, code string) string {
	// money.New never returns a nil currency, but unknown codes carry no template.
	cur := *money.New(0, code).Currency()
	if cur.Template == "" {
		return value.StringFixed(2) + " " + strings.ToUpper(code)
	}
	minor := value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// formatPercent formats a percentage as computed by the calculator, e.g. 12.3456 as "12.35%".
func formatPercent(pct decimal.Decimal) string {
	return pct.StringFixed(2) + "%"
}

// formatQuantity drops trailing zeros of a quantity stored with four places.
func formatQuantity(q decimal.Decimal) string {
	return q.String()
}

// render executes the named template of templates/ with data.
func (a *app) render(name string, data any) (string, error) {
	funcs := template.FuncMap{
		"money":    func(d decimal.Decimal) string { return formatMoney(d, a.currency) },
		"pct":      formatPercent,
		"qty":      formatQuantity,
		"date":     func(t time.Time) string { return t.Format(time.DateOnly) },
		"moneyPtr": func(d *decimal.Decimal) string { return formatMoneyPtr(d, a.currency) },
	}

	tmpl, err := template.New(name).Funcs(funcs).ParseFS(templates, "templates/*.md")
	if err != nil {
		return "", fmt.Errorf("parsing templates: %w", err)
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("executing template %q: %w", name, err)
	}
	return b.String(), nil
}

func formatMoneyPtr(d *decimal.Decimal, code string) string {
	if d == nil {
		return "-"
	}
	return formatMoney(*d, code)
}
