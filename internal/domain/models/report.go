// internal/domain/models/report.go
package models

// UnitNotFoundName is the unit name the backend reports when the user has no
// unit. It is an empty state, not an error.
const UnitNotFoundName = "Unidade não encontrada"

// MonthlyReport is the backend's monthly aggregate for one unit. It is an
// immutable snapshot for a (unit, month) pair.
type MonthlyReport struct {
	UnitName          string            `json:"unit_name,omitempty"`
	Metrics           ReportMetrics     `json:"metrics"`
	Totals            ReportTotals      `json:"totals"`
	StorageSummary    []StorageSummary  `json:"storage_summary"`
	MonthlyComparison []MonthComparison `json:"monthly_comparison"`
	Frequencies       []FrequencyRecord `json:"frequencies"`
}

// ReportMetrics are the headline figures for the month.
type ReportMetrics struct {
	Capacity      float64 `json:"capacity"`
	FrequencyPct  float64 `json:"frequency_pct"`
	CostPerCapita float64 `json:"cost_per_capita"`
	TotalSpending float64 `json:"total_spending"`
}

// ReportTotals counts packs by resource origin.
type ReportTotals struct {
	PacksBudget    float64 `json:"packs_budget"`
	PacksDonations float64 `json:"packs_donations"`
	TotalPacks     float64 `json:"total_packs"`
}

// StorageSummary is the bought and donated amount of one food.
type StorageSummary struct {
	Food          string  `json:"food"`
	BoughtAmount  float64 `json:"bought_amount"`
	DonatedAmount float64 `json:"donated_amount"`
}

// MonthComparison is spend against budget for one "YYYY-MM" month.
type MonthComparison struct {
	Month  string  `json:"month"`
	Spent  float64 `json:"spent"`
	Budget float64 `json:"budget"`
}

// FrequencyRecord is a daily attendance entry inside a report. Date is either
// "DD/MM/YYYY" (optionally followed by a time) or an ISO-like date.
type FrequencyRecord struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// HasUnit reports whether the report belongs to an actual unit.
func (r *MonthlyReport) HasUnit() bool {
	return r != nil && r.UnitName != "" && r.UnitName != UnitNotFoundName
}
