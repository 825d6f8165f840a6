package report

import (
	"bytes"
	"fmt"
	"io"
	"propertysim/internal/domain"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const DefaultCurrency = "AUD"

// longest histogram bar in the markdown report
const barWidth = 30

type Formatter struct {
	Currency string
}

func NewFormatter(currency string) Formatter {
	if money.GetCurrency(currency) == nil {
		currency = DefaultCurrency
	}
	return Formatter{Currency: currency}
}

// Money renders a float amount in the formatter's currency, rounded to
// the currency's minor unit.
func (f Formatter) Money(amount float64) string {
	cur := money.GetCurrency(f.Currency)
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	minor := decimal.NewFromFloat(amount).Mul(factor).Round(0)
	return money.New(minor.IntPart(), f.Currency).Display()
}

func percent(ratio float64) string {
	return fmt.Sprintf("%.2f%%", ratio*100)
}

// Markdown renders a result as a markdown document.
func (f Formatter) Markdown(r domain.SimulationResult) string {
	b := &strings.Builder{}

	fmt.Fprintf(b, "# Simulation %s\n\n", r.ID.String())
	fmt.Fprintf(b, "**Recommendation: %s**\n\n", r.Decision)

	b.WriteString("| | |\n|---|---|\n")
	if r.DealID != nil {
		fmt.Fprintf(b, "| Deal | %s |\n", r.DealID.String())
	}
	fmt.Fprintf(b, "| Run at | %s |\n", r.RunAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(b, "| Iterations | %d |\n", r.Iterations)
	fmt.Fprintf(b, "| Seed | %d |\n", r.Seed)
	fmt.Fprintf(b, "| NPV mode | %s |\n", r.Mode)
	fmt.Fprintf(b, "| Equity required | %s |\n", f.Money(r.EquityRequired))
	fmt.Fprintf(b, "| Cap rate | %s |\n", percent(r.CapRate))
	fmt.Fprintf(b, "| Probability of loss | %s |\n", percent(r.ProbabilityOfLoss))
	b.WriteString("\n")

	b.WriteString("## NPV\n\n")
	b.WriteString("| P10 | Median | P90 | Mean | Std dev |\n|---|---|---|---|---|\n")
	fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n\n",
		f.Money(r.Npv.P10), f.Money(r.Npv.Median), f.Money(r.Npv.P90), f.Money(r.Npv.Mean), f.Money(r.Npv.StdDev))

	b.WriteString("## IRR\n\n")
	if r.Irr == nil {
		b.WriteString("IRR was undefined for every trial.\n\n")
	} else {
		b.WriteString("| P10 | Median | P90 | Mean |\n|---|---|---|---|\n")
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n\n",
			percent(r.Irr.P10), percent(r.Irr.Median), percent(r.Irr.P90), percent(r.Irr.Mean))
		if r.UndefinedIrrCount > 0 {
			fmt.Fprintf(b, "IRR undefined for %d trials.\n\n", r.UndefinedIrrCount)
		}
	}

	if len(r.NpvHistogram) > 0 {
		b.WriteString("## NPV distribution\n\n")
		b.WriteString("| From | To | Trials | Cumulative | |\n|---|---|---|---|---|\n")
		peak := 0
		for _, bucket := range r.NpvHistogram {
			peak = max(peak, bucket.Count)
		}
		for i, bucket := range r.NpvHistogram {
			cumulative := ""
			if i < len(r.NpvProbabilityCurve) {
				cumulative = percent(r.NpvProbabilityCurve[i].CumulativeProbability)
			}
			bar := ""
			if peak > 0 {
				bar = strings.Repeat("#", bucket.Count*barWidth/peak)
			}
			fmt.Fprintf(b, "| %s | %s | %d | %s | `%s` |\n",
				f.Money(bucket.Lower), f.Money(bucket.Upper), bucket.Count, cumulative, bar)
		}
		b.WriteString("\n")
	}

	if len(r.RepresentativeLedger) > 0 {
		b.WriteString("## Median trial cash flows\n\n")
		b.WriteString("| Year | Gross rent | Vacancy | Outgoings | Management | NOI | Debt service | Terminal | Net cash flow |\n")
		b.WriteString("|---|---|---|---|---|---|---|---|---|\n")
		for _, y := range r.RepresentativeLedger {
			fmt.Fprintf(b, "| %d | %s | %s | %s | %s | %s | %s | %s | %s |\n",
				y.Year,
				f.Money(y.GrossRent),
				f.Money(y.VacancyLoss),
				f.Money(y.Outgoings),
				f.Money(y.ManagementFee),
				f.Money(y.NetOperatingIncome),
				f.Money(y.DebtService),
				f.Money(y.TerminalValue),
				f.Money(y.NetCashFlow),
			)
		}
		b.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// HTML renders the markdown report to an HTML fragment.
func (f Formatter) HTML(r domain.SimulationResult) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(f.Markdown(r)), &buf); err != nil {
		return "", fmt.Errorf("failed to render html report: %w", err)
	}
	return buf.String(), nil
}

// Terminal renders the markdown report for a terminal. style is a
// glamour style name ("dark", "light", "notty"); empty picks one from
// the terminal's background.
func (f Formatter) Terminal(r domain.SimulationResult, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create terminal renderer: %w", err)
	}
	out, err := renderer.Render(f.Markdown(r))
	if err != nil {
		return "", fmt.Errorf("failed to render terminal report: %w", err)
	}
	return out, nil
}

// WriteLedgerCSV writes one row per year with a header line.
func WriteLedgerCSV(w io.Writer, ledger []domain.YearLedger) error {
	if ledger == nil {
		ledger = []domain.YearLedger{}
	}
	if err := gocsv.Marshal(&ledger, w); err != nil {
		return fmt.Errorf("failed to write ledger csv: %w", err)
	}
	return nil
}
