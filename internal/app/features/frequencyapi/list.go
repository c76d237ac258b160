package frequencyapi

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/authz"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/jsonutil"
	"github.com/tidwall/gjson"
)

// MyFrequencies returns the unit (merged with its detail), every record of
// the unit and today's record when there is one. A user without units gets
// an empty 200.
func (h *Handler) MyFrequencies(w http.ResponseWriter, r *http.Request) {
	caller, _ := authz.CallerFrom(r)

	unit, ok := h.primaryUnit(w, r, caller, func() {
		jsonutil.OK(w, listResponse{
			OK:             true,
			Frequencies:    json.RawMessage("[]"),
			TodayFrequency: json.RawMessage("null"),
			Message:        authz.MsgNoUnits,
		})
	})
	if !ok {
		return
	}
	unit = h.withDetail(r.Context(), caller.Token, unit)

	records, err := h.backend.Frequencies(r.Context(), caller.Token, unit.ID)
	if err != nil {
		jsonutil.FromBackendAs(w, h.logger, "frequency.list", err, MsgListFailed)
		return
	}
	if !gjson.ParseBytes(records).IsArray() {
		records = json.RawMessage("[]")
	}

	jsonutil.OK(w, listResponse{
		OK:             true,
		Frequencies:    records,
		Unit:           &unit,
		TodayFrequency: findByDate(records, h.now().UTC().Format("2006-01-02")),
	})
}

// findByDate returns the first record whose date equals day, or JSON null.
func findByDate(records json.RawMessage, day string) json.RawMessage {
	found := json.RawMessage("null")
	gjson.ParseBytes(records).ForEach(func(_, rec gjson.Result) bool {
		if rec.Get("date").String() == day {
			found = json.RawMessage(rec.Raw)
			return false
		}
		return true
	})
	return found
}
