// Package reportvm derives every value the monthly report screen and its
// exported document display from the backend's raw MonthlyReport.
//
// Build is pure: the same inputs always yield the same ViewModel, and nothing
// here performs I/O. The exported Document is built from a ViewModel so the
// printed figures can never diverge from the on-screen ones.
package reportvm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/locale"
	"github.com/dalemusser/gestaoalimentar/internal/domain/models"
)

// ComparisonMonths is how many trailing months the comparison table shows.
const ComparisonMonths = 3

// highAttendance is the attendance percentage at or above which a
// comparison row is highlighted.
const highAttendance = 90

// ViewModel is the fully derived report for one selected month.
type ViewModel struct {
	MonthKey   string `json:"monthKey"`   // canonical "YYYY-MM" of the selection, "" if unparseable
	MonthLabel string `json:"monthLabel"` // the selection as shown to the user

	// HasUnit is false when the backend reported no unit for the user. In that
	// case every other derived field is left at its zero value.
	HasUnit  bool   `json:"hasUnit"`
	UnitName string `json:"unitName"`

	Capacity      float64 `json:"capacity"`
	FrequencyPct  float64 `json:"frequencyPct"`
	CostPerCapita float64 `json:"costPerCapita"`
	TotalSpending float64 `json:"totalSpending"`

	Trend      Trend           `json:"trend"`
	Origin     Origin          `json:"origin"`
	Budget     Budget          `json:"budget"`
	Foods      []FoodRow       `json:"foods"`
	Series     []BudgetPoint   `json:"series"`
	Comparison []ComparisonRow `json:"comparison"`
}

// Trend is the attendance delta against the previous month.
type Trend struct {
	Delta float64 `json:"delta"`
	Sign  string  `json:"sign"` // "↑", "↓" or ""
	Text  string  `json:"text"` // "4.0%", empty when Delta is zero
	Full  string  `json:"full"` // "↑ 4.0% vs mês anterior", empty when Delta is zero
	// Positive is true for a non-negative delta and drives the trend colour.
	Positive bool `json:"positive"`
}

// Visible reports whether the trend should be shown at all.
func (t Trend) Visible() bool { return t.Text != "" }

// Origin splits the month's packs by resource origin.
type Origin struct {
	PacksBudget      float64 `json:"packsBudget"`
	PacksDonations   float64 `json:"packsDonations"`
	TotalPacks       float64 `json:"totalPacks"`
	BudgetPercent    float64 `json:"budgetPercent"`
	DonationsPercent float64 `json:"donationsPercent"`
}

// Budget is the budget utilization for the selected month.
type Budget struct {
	Month            string  `json:"month"` // the comparison entry used; may differ from the selection
	Total            float64 `json:"total"`
	Spent            float64 `json:"spent"`
	UsedPercent      float64 `json:"usedPercent"`
	AvailablePercent float64 `json:"availablePercent"`
	// Available is Total minus Spent and is negative when overspent.
	Available float64 `json:"available"`
}

// FoodRow is the bought and donated amount of one food.
type FoodRow struct {
	Name    string  `json:"name"`
	Bought  float64 `json:"bought"`
	Donated float64 `json:"donated"`
}

// Total returns Bought plus Donated.
func (f FoodRow) Total() float64 { return f.Bought + f.Donated }

// BudgetPoint is one month of the spend versus budget chart.
type BudgetPoint struct {
	Month  string  `json:"month"` // "YYYY-MM"
	Label  string  `json:"label"` // short label, e.g. "Nov"
	Spent  float64 `json:"spent"`
	Budget float64 `json:"budget"`
}

// ComparisonRow is one row of the trailing comparison table.
type ComparisonRow struct {
	Month          string  `json:"month"`      // "YYYY-MM"
	MonthLabel     string  `json:"monthLabel"` // "Novembro 2025"
	Spent          float64 `json:"spent"`
	FreqPercent    float64 `json:"freqPercent"`
	PerCapita      float64 `json:"perCapita"`
	HighAttendance bool    `json:"highAttendance"`
}

// Build derives the ViewModel for report. previous is the report of the
// calendar month preceding the selection and may be nil. selectedMonth is
// either a "YYYY-MM" key or a full month label such as "Novembro 2025".
func Build(report, previous *models.MonthlyReport, selectedMonth string) ViewModel {
	vm := ViewModel{MonthLabel: strings.TrimSpace(selectedMonth)}
	if k, err := locale.ParseAny(selectedMonth); err == nil {
		vm.MonthKey = k.String()
		vm.MonthLabel = k.Display()
	}

	if !report.HasUnit() {
		return vm
	}
	vm.HasUnit = true
	vm.UnitName = report.UnitName

	vm.Capacity = finite(report.Metrics.Capacity)
	vm.FrequencyPct = finite(report.Metrics.FrequencyPct)
	vm.CostPerCapita = finite(report.Metrics.CostPerCapita)
	vm.TotalSpending = finite(report.Metrics.TotalSpending)

	vm.Trend = buildTrend(vm.FrequencyPct, previous)
	vm.Origin = buildOrigin(report.Totals)
	vm.Budget = buildBudget(report.MonthlyComparison, vm.MonthKey, vm.TotalSpending)

	vm.Foods = make([]FoodRow, 0, len(report.StorageSummary))
	for _, s := range report.StorageSummary {
		vm.Foods = append(vm.Foods, FoodRow{
			Name:    s.Food,
			Bought:  finite(s.BoughtAmount),
			Donated: finite(s.DonatedAmount),
		})
	}

	vm.Series = make([]BudgetPoint, 0, len(report.MonthlyComparison))
	for _, m := range report.MonthlyComparison {
		vm.Series = append(vm.Series, BudgetPoint{
			Month:  m.Month,
			Label:  locale.ShortLabel(m.Month),
			Spent:  finite(m.Spent),
			Budget: finite(m.Budget),
		})
	}

	vm.Comparison = buildComparison(report.MonthlyComparison, report.Frequencies, vm.Capacity)
	return vm
}

func buildTrend(current float64, previous *models.MonthlyReport) Trend {
	if previous == nil {
		return Trend{Positive: true}
	}
	delta := current - finite(previous.Metrics.FrequencyPct)
	t := Trend{Delta: delta, Positive: delta >= 0}
	switch {
	case delta > 0:
		t.Sign = "↑"
	case delta < 0:
		t.Sign = "↓"
	}
	if delta != 0 {
		t.Text = fmt.Sprintf("%.1f%%", math.Abs(delta))
		t.Full = t.Sign + " " + t.Text + " vs mês anterior"
	}
	return t
}

func buildOrigin(totals models.ReportTotals) Origin {
	o := Origin{
		PacksBudget:    finite(totals.PacksBudget),
		PacksDonations: finite(totals.PacksDonations),
		TotalPacks:     finite(totals.TotalPacks),
	}
	if o.TotalPacks > 0 {
		o.BudgetPercent = o.PacksBudget / o.TotalPacks * 100
		o.DonationsPercent = o.PacksDonations / o.TotalPacks * 100
	}
	return o
}

func buildBudget(comparison []models.MonthComparison, monthKey string, spent float64) Budget {
	b := Budget{Spent: spent}

	var entry *models.MonthComparison
	for i := range comparison {
		if monthKey != "" && comparison[i].Month == monthKey {
			entry = &comparison[i]
			break
		}
	}
	if entry == nil && len(comparison) > 0 {
		entry = &comparison[len(comparison)-1]
	}
	if entry != nil {
		b.Month = entry.Month
		b.Total = finite(entry.Budget)
	}

	if b.Total > 0 {
		b.UsedPercent = spent / b.Total * 100
	}
	b.AvailablePercent = 100 - b.UsedPercent
	b.Available = b.Total - spent
	return b
}

func buildComparison(comparison []models.MonthComparison, freqs []models.FrequencyRecord, capacity float64) []ComparisonRow {
	start := len(comparison) - ComparisonMonths
	if start < 0 {
		start = 0
	}
	tail := comparison[start:]

	rows := make([]ComparisonRow, 0, len(tail))
	for i := len(tail) - 1; i >= 0; i-- {
		m := tail[i]
		row := ComparisonRow{
			Month:      m.Month,
			MonthLabel: locale.DisplayLabel(m.Month),
			Spent:      finite(m.Spent),
		}

		var sum float64
		var n int
		for _, f := range freqs {
			key, ok := frequencyMonth(f.Date)
			if !ok || key != m.Month {
				continue
			}
			sum += finite(f.Amount)
			n++
		}
		if capacity > 0 {
			if n > 0 {
				row.FreqPercent = sum / float64(n) / capacity * 100
			}
			row.PerCapita = row.Spent / capacity
		}
		row.HighAttendance = row.FreqPercent >= highAttendance
		rows = append(rows, row)
	}
	return rows
}

// isoLayouts are the non-slash date encodings accepted for frequency records.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// frequencyMonth returns the "YYYY-MM" a frequency date falls in. It accepts
// "DD/MM/YYYY" with an optional trailing time, or an ISO-like date. The
// calendar fields are taken as written, without time zone conversion.
func frequencyMonth(date string) (string, bool) {
	date = strings.TrimSpace(date)
	if date == "" {
		return "", false
	}

	if strings.Contains(date, "/") {
		datePart, _, _ := strings.Cut(date, " ")
		parts := strings.Split(datePart, "/")
		if len(parts) != 3 {
			return "", false
		}
		month, err := strconv.Atoi(parts[1])
		if err != nil || month < 1 || month > 12 {
			return "", false
		}
		year, err := strconv.Atoi(parts[2])
		if err != nil || year < 1 {
			return "", false
		}
		return fmt.Sprintf("%04d-%02d", year, month), true
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return locale.KeyOf(t).String(), true
		}
	}
	return "", false
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
