package reportvm

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/locale"
)

// TableStyle selects how a table is drawn.
type TableStyle int

const (
	// Grid draws every cell border.
	Grid TableStyle = iota
	// Striped fills alternating body rows.
	Striped
)

// Table is a header row plus body rows of preformatted text.
type Table struct {
	Head  []string
	Rows  [][]string
	Style TableStyle
	// Widths are column widths in millimetres; zero entries share the
	// remaining width equally.
	Widths []float64
	// BoldColumns lists body columns rendered in bold.
	BoldColumns []int
	// MutedColumns lists body columns rendered in the secondary text colour.
	MutedColumns []int
}

// Section is a numbered heading followed by one table.
type Section struct {
	Heading string
	Table   Table
	// BreakIfBelow starts a new page before the section when the cursor is
	// already below this many millimetres from the top. Zero disables it.
	BreakIfBelow float64
}

// Document is the printable monthly report.
type Document struct {
	Title       string
	Subtitles   []string
	Sections    []Section
	GeneratedAt time.Time
	FooterBrand string
	FileName    string
}

// sectionBreakY matches the layout threshold for starting sections 3 and 4
// on a fresh page.
const sectionBreakY = 250

// BuildDocument lays out the exported report from an already built view
// model. It must only be called for a view model with HasUnit set.
func BuildDocument(vm ViewModel, generatedAt time.Time) Document {
	doc := Document{
		Title: "Relatório de Gestão Mensal",
		Subtitles: []string{
			"Unidade: " + vm.UnitName,
			"Mês de Referência: " + vm.MonthLabel,
		},
		GeneratedAt: generatedAt,
		FooterBrand: "Sistema de Gestão",
		FileName:    FileName(vm.UnitName, vm.MonthLabel),
	}

	doc.Sections = append(doc.Sections, Section{
		Heading: "1. Métricas Chave do Mês",
		Table: Table{
			Head: []string{"Métrica", "Valor Atual", "Observação"},
			Rows: [][]string{
				{"Capacidade Total", number(vm.Capacity) + " pessoas", "Meta de Atendimento"},
				{"Custo Per Capita", locale.FormatBRL(vm.CostPerCapita), "Custo médio por pessoa atendida"},
				{"Gasto Total (Orçamento)", locale.FormatBRL(vm.TotalSpending), "Orçamento: " + locale.FormatBRL(vm.Budget.Total)},
				{"Orçamento Disponível", locale.FormatBRL(vm.Budget.Available), percent1(vm.Budget.AvailablePercent) + " do total"},
			},
			Style:        Grid,
			Widths:       []float64{48, 0, 0},
			BoldColumns:  []int{0, 1},
			MutedColumns: []int{2},
		},
	})

	totalShare := "100.0%"
	if vm.Origin.TotalPacks <= 0 {
		totalShare = "0.0%"
	}
	doc.Sections = append(doc.Sections, Section{
		Heading: "2. Origem dos Recursos (Pacotes)",
		Table: Table{
			Head: []string{"Origem", "Quantidade", "Proporção"},
			Rows: [][]string{
				{"Verba Normal", number(vm.Origin.PacksBudget) + " pacotes", percent1(vm.Origin.BudgetPercent)},
				{"Doações", number(vm.Origin.PacksDonations) + " pacotes", percent1(vm.Origin.DonationsPercent)},
				{"Total Geral", number(vm.Origin.TotalPacks) + " pacotes", totalShare},
			},
			Style: Striped,
		},
	})

	foods := make([][]string, 0, len(vm.Foods))
	for _, f := range vm.Foods {
		foods = append(foods, []string{
			f.Name,
			number(f.Bought) + " kg",
			number(f.Donated) + " kg",
			number(f.Total()) + " kg",
		})
	}
	doc.Sections = append(doc.Sections, Section{
		Heading:      "3. Detalhamento de Alimentos (kg)",
		Table:        Table{Head: []string{"Alimento", "Comprado", "Doado", "Total"}, Rows: foods, Style: Grid},
		BreakIfBelow: sectionBreakY,
	})

	comparison := make([][]string, 0, len(vm.Comparison))
	for _, c := range vm.Comparison {
		comparison = append(comparison, []string{
			c.MonthLabel,
			locale.FormatBRL(c.Spent),
			percent0(c.FreqPercent),
			locale.FormatBRL(c.PerCapita),
		})
	}
	doc.Sections = append(doc.Sections, Section{
		Heading: fmt.Sprintf("4. Análise de Desempenho Mensal (Últimos %d Meses)", ComparisonMonths),
		Table: Table{
			Head:  []string{"Mês", "Gasto Total", "Frequência Média", "Custo Per Capita"},
			Rows:  comparison,
			Style: Striped,
		},
		BreakIfBelow: sectionBreakY,
	})

	return doc
}

// FooterNote returns the generation stamp printed on every page.
func (d Document) FooterNote() string {
	return "Gerado em " + locale.FormatDateTime(d.GeneratedAt) + " | " + d.FooterBrand
}

// PageLabel returns "Página <page> de <total>". total is text so a renderer
// can pass a page-count alias that is substituted once the document closes.
func PageLabel(page int, total string) string {
	return fmt.Sprintf("Página %d de %s", page, total)
}

var whitespace = regexp.MustCompile(`\s+`)

// FileName returns "relatorio-gestao-<unit>-<month>.pdf" with runs of
// whitespace replaced by "-".
func FileName(unit, month string) string {
	return "relatorio-gestao-" + whitespace.ReplaceAllString(unit, "-") + "-" + whitespace.ReplaceAllString(month, "-") + ".pdf"
}

// number renders a count as the backend sent it: integers without decimals.
func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PercentText renders v with one decimal ("72.5%"), matching the trend text.
func PercentText(v float64) string { return percent1(v) }

func percent1(v float64) string { return fmt.Sprintf("%.1f%%", v) }
func percent0(v float64) string { return fmt.Sprintf("%.0f%%", v) }
