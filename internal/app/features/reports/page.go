package reports

import (
	"bytes"
	"fmt"
	"math"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/authz"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/locale"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/reportvm"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type monthOption struct {
	Key      string
	Label    string
	Selected bool
}

type card struct {
	Label string
	Value string
	Note  string
}

type pageVM struct {
	viewdata.BaseVM

	Months     []monthOption
	MonthKey   string
	MonthLabel string

	// Error replaces the whole report; nothing derived is shown with it.
	Error  string
	NoUnit bool

	UnitName      string
	Cards         []card
	TrendText     string
	TrendPositive bool
	BudgetUsed    string
	BudgetBar     int // UsedPercent clamped to 0..100 for the progress bar
	Sections      []reportvm.Section
	ExportURL     string
}

// HasReport reports whether the derived report is shown.
func (vm pageVM) HasReport() bool { return vm.Error == "" && !vm.NoUnit && vm.UnitName != "" }

// Page renders the report screen for ?month=.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	vm := pageVM{BaseVM: viewdata.NewBaseVM(r, "Relatórios", "/")}
	vm.Flash = h.flash.First(w, r)

	month, ok := h.selectedMonth(r)
	if !ok {
		month = locale.KeyOf(h.now())
		vm.Error = MsgInvalidMonth
	}
	vm.MonthKey = month.String()
	vm.MonthLabel = month.Display()
	vm.Months = monthOptions(h.now(), month)

	if vm.Error == "" {
		h.fill(r, &vm, month)
	}
	templates.Render(w, r, "reports/page", vm)
}

func (h *Handler) fill(r *http.Request, vm *pageVM, month locale.MonthKey) {
	caller, _ := authz.CallerFrom(r)
	res, err := h.loader.Load(r.Context(), caller.Token, month)
	if err != nil {
		h.logger.Warn("report load failed",
			zap.String("month", month.String()),
			zap.Error(err))
		vm.Error = MsgReportFailed
		return
	}

	view := reportvm.Build(res.Current, res.Previous, month.String())
	if !view.HasUnit {
		vm.NoUnit = true
		return
	}

	vm.UnitName = view.UnitName
	vm.Cards = []card{
		{Label: "Capacidade", Value: locale.FormatDecimal(view.Capacity, 0) + " pessoas", Note: "Meta de atendimento"},
		{Label: "Frequência", Value: reportvm.PercentText(view.FrequencyPct), Note: "Média do mês"},
		{Label: "Custo per capita", Value: locale.FormatBRL(view.CostPerCapita)},
		{Label: "Gasto total", Value: locale.FormatBRL(view.TotalSpending), Note: "Orçamento: " + locale.FormatBRL(view.Budget.Total)},
	}
	if view.Trend.Visible() {
		vm.TrendText = view.Trend.Full
		vm.TrendPositive = view.Trend.Positive
	}
	vm.BudgetUsed = reportvm.PercentText(view.Budget.UsedPercent)
	vm.BudgetBar = int(math.Round(math.Max(0, math.Min(100, view.Budget.UsedPercent))))
	vm.Sections = reportvm.BuildDocument(view, h.now()).Sections
	vm.ExportURL = "/relatorios/export?month=" + url.QueryEscape(month.String())
}

// Export streams the report of ?month= as a PDF download. Failures go back
// to the report screen with a flash message.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	month, ok := h.selectedMonth(r)
	if !ok {
		h.backToPage(w, r, "", MsgInvalidMonth)
		return
	}

	caller, _ := authz.CallerFrom(r)
	res, err := h.loader.Load(r.Context(), caller.Token, month)
	if err != nil {
		h.logger.Warn("report export load failed",
			zap.String("month", month.String()),
			zap.Error(err))
		h.backToPage(w, r, month.String(), MsgReportFailed)
		return
	}

	view := reportvm.Build(res.Current, res.Previous, month.String())
	if !view.HasUnit {
		h.backToPage(w, r, month.String(), MsgNoUnit)
		return
	}

	doc := reportvm.BuildDocument(view, h.now())
	var buf bytes.Buffer
	if err := reportvm.RenderPDF(&buf, doc); err != nil {
		h.logger.Error("report pdf render failed",
			zap.String("month", month.String()),
			zap.Error(err))
		h.backToPage(w, r, month.String(), MsgExportFailed)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func (h *Handler) backToPage(w http.ResponseWriter, r *http.Request, month, msg string) {
	h.flash.Add(w, r, msg)
	target := "/relatorios"
	if month != "" {
		target += "?month=" + url.QueryEscape(month)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// monthOptions lists the selectable months, newest first, keeping the
// selection even when it falls outside the list.
func monthOptions(now time.Time, selected locale.MonthKey) []monthOption {
	recent := locale.Recent(now, monthChoices)
	out := make([]monthOption, 0, len(recent)+1)
	found := false
	for _, k := range recent {
		sel := k == selected
		found = found || sel
		out = append(out, monthOption{Key: k.String(), Label: k.Display(), Selected: sel})
	}
	if !found {
		out = append(out, monthOption{Key: selected.String(), Label: selected.Display(), Selected: true})
	}
	return out
}
