package frequencyapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/authz"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/inputval"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/jsonutil"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/normalize"
	"github.com/dalemusser/gestaoalimentar/internal/domain/models"
)

const missingFieldsDetail = "amount e date são obrigatórios"

type frequencyInput struct {
	Amount json.RawMessage `json:"amount" validate:"required,present,count" label:"Quantidade"`
	Date   json.RawMessage `json:"date" validate:"required,present,isodate" label:"Data"`
}

// frequencyPatch is frequencyInput with both fields optional.
type frequencyPatch struct {
	Amount json.RawMessage `json:"amount" validate:"count" label:"Quantidade"`
	Date   json.RawMessage `json:"date" validate:"isodate" label:"Data"`
}

// invalidMessage ranks a failed validation: a malformed amount is reported
// before a malformed date.
func invalidMessage(res *inputval.Result) string {
	if res.Failed("count") {
		return MsgInvalidAmount
	}
	return MsgInvalidDate
}

func amountOf(raw json.RawMessage) int {
	n, _ := normalize.Int(raw)
	return n
}

func dateOf(raw json.RawMessage) string {
	var s string
	_ = json.Unmarshal(raw, &s)
	return strings.TrimSpace(s)
}

// capacityMessage is the error for an attendance count above what the unit
// serves.
func capacityMessage(capacity int) string {
	return fmt.Sprintf("Quantidade excede a capacidade da unidade (%d)", capacity)
}

// Create registers the attendance of one day for the caller's unit.
// Input is validated before any backend call; the unit capacity, when the
// backend knows it, caps the amount.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in frequencyInput
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.ErrorWithDetails(w, http.StatusBadRequest, MsgMissingFields, missingFieldsDetail)
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		if res.Failed("required", "present") {
			jsonutil.ErrorWithDetails(w, http.StatusBadRequest, MsgMissingFields, missingFieldsDetail)
			return
		}
		jsonutil.BadRequest(w, invalidMessage(res))
		return
	}
	amount, date := amountOf(in.Amount), dateOf(in.Date)

	caller, _ := authz.CallerFrom(r)
	unit, ok := h.primaryUnit(w, r, caller, func() {
		jsonutil.BadRequest(w, authz.MsgNoUnits)
	})
	if !ok {
		return
	}
	if unit.Capacity == nil {
		unit = h.withDetail(r.Context(), caller.Token, unit)
	}
	if unit.Capacity != nil && *unit.Capacity > 0 && amount > *unit.Capacity {
		jsonutil.BadRequest(w, capacityMessage(*unit.Capacity))
		return
	}

	created, err := h.backend.CreateFrequency(r.Context(), caller.Token, models.NewFrequency{
		UnitID: unit.ID,
		Amount: amount,
		Date:   date,
	})
	if err != nil {
		jsonutil.FromBackendAs(w, h.logger, "frequency.create", err, MsgCreateFailed)
		return
	}
	jsonutil.OK(w, recordResponse{OK: true, Frequency: created})
}

// Update changes the amount and/or date of the record named by the
// frequency_id query parameter.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := normalize.QueryParam(r.URL.Query().Get("frequency_id"))
	if id == "" {
		jsonutil.BadRequest(w, MsgMissingID)
		return
	}

	var in frequencyPatch
	if err := jsonutil.Decode(w, r, &in); err != nil ||
		(!normalize.Present(in.Amount) && !normalize.Present(in.Date)) {
		jsonutil.BadRequest(w, MsgNothingToUpdate)
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.BadRequest(w, invalidMessage(res))
		return
	}

	var patch models.FrequencyPatch
	if normalize.Present(in.Amount) {
		amount := amountOf(in.Amount)
		patch.Amount = &amount
	}
	if normalize.Present(in.Date) {
		date := dateOf(in.Date)
		patch.Date = &date
	}

	caller, _ := authz.CallerFrom(r)
	updated, err := h.backend.UpdateFrequency(r.Context(), caller.Token, id, patch)
	if err != nil {
		jsonutil.FromBackendAs(w, h.logger, "frequency.update", err, MsgUpdateFailed)
		return
	}
	jsonutil.OK(w, recordResponse{OK: true, Frequency: updated})
}
