package reports

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/authz"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/inputval"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/jsonutil"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/reportvm"
)

type reportResponse struct {
	OK     bool            `json:"ok"`
	Report json.RawMessage `json:"report"`
}

type viewResponse struct {
	OK   bool               `json:"ok"`
	View reportvm.ViewModel `json:"view"`
}

// MyReport proxies /reports/me. Without ?month= the backend picks the month.
func (h *Handler) MyReport(w http.ResponseWriter, r *http.Request) {
	caller, _ := authz.CallerFrom(r)
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month != "" && !inputval.IsMonthKey(month) {
		jsonutil.BadRequest(w, MsgInvalidMonth)
		return
	}

	report, err := h.backend.MyReportRaw(r.Context(), caller.Token, month)
	if err != nil {
		jsonutil.FromBackendAs(w, h.logger, "reports.me", err, MsgReportFailed)
		return
	}
	jsonutil.OK(w, reportResponse{OK: true, Report: report})
}

// View returns the derived report for ?month=, defaulting to the current
// month. A user without a unit gets a view with hasUnit false.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	caller, _ := authz.CallerFrom(r)
	month, ok := h.selectedMonth(r)
	if !ok {
		jsonutil.BadRequest(w, MsgInvalidMonth)
		return
	}

	res, err := h.loader.Load(r.Context(), caller.Token, month)
	if err != nil {
		jsonutil.FromBackendAs(w, h.logger, "reports.view", err, MsgReportFailed)
		return
	}
	jsonutil.OK(w, viewResponse{OK: true, View: reportvm.Build(res.Current, res.Previous, month.String())})
}
