package storageapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/authz"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/htmlsanitize"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/inputval"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/jsonutil"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/normalize"
	"github.com/dalemusser/gestaoalimentar/internal/domain/models"
)

type entryInput struct {
	Name            string          `json:"name" validate:"required" label:"Nome"`
	Amount          json.RawMessage `json:"amount" validate:"required,present,positive" label:"Quantidade"`
	Type            string          `json:"type" validate:"required" label:"Origem"`
	Supplier        *string         `json:"supplier"`
	Invoice         *string         `json:"invoice"`
	Responsible     string          `json:"responsible" validate:"required" label:"Responsável"`
	Date            string          `json:"date" validate:"required,isodate" label:"Data"`
	InitialQuantity json.RawMessage `json:"initial_quantity" validate:"required,present,count" label:"Quantidade inicial"`
}

type exitItemInput struct {
	Name         string          `json:"name" validate:"required" label:"Nome"`
	UsedQuantity json.RawMessage `json:"used_quantity" validate:"required,present,poscount" label:"Quantidade usada"`
}

type exitInput struct {
	Items       []exitItemInput `json:"items" validate:"required,nonempty" label:"Itens"`
	Purpose     string          `json:"purpose" validate:"required" label:"Finalidade"`
	Responsible string          `json:"responsible" validate:"required" label:"Responsável"`
	Date        string          `json:"date" validate:"required,isodate" label:"Data"`
	Notes       *string         `json:"notes"`
}

type entryResponse struct {
	OK      bool            `json:"ok"`
	Message string          `json:"message"`
	Item    json.RawMessage `json:"item"`
}

type exitResponse struct {
	OK      bool            `json:"ok"`
	Message string          `json:"message"`
	Items   json.RawMessage `json:"items"`
}

// movementMessage ranks validation failures: missing fields first, then
// malformed quantities, then dates. It returns "" for a valid result.
func movementMessage(res *inputval.Result, fieldsMsg string) string {
	switch {
	case !res.HasErrors():
		return ""
	case res.Failed("required", "present"):
		return fieldsMsg
	case res.Failed("positive", "count", "poscount"):
		return MsgInvalidNumber
	case res.Failed("isodate"):
		return MsgInvalidDate
	default:
		return fieldsMsg
	}
}

// parseEntry validates in and builds the backend payload without the unit.
// The message is empty when in is valid.
func parseEntry(in entryInput) (models.StorageEntry, string) {
	in.Name = htmlsanitize.Text(in.Name)
	in.Responsible = htmlsanitize.Text(in.Responsible)
	in.Type = strings.TrimSpace(in.Type)
	in.Date = strings.TrimSpace(in.Date)
	if msg := movementMessage(inputval.Validate(in), MsgEntryFields); msg != "" {
		return models.StorageEntry{}, msg
	}

	amount, _ := normalize.Float(in.Amount)
	initial, _ := normalize.Int(in.InitialQuantity)
	return models.StorageEntry{
		Name:            in.Name,
		Amount:          amount,
		Type:            normalize.StorageOrigin(in.Type),
		Supplier:        htmlsanitize.TextPtr(in.Supplier),
		Invoice:         htmlsanitize.TextPtr(in.Invoice),
		Responsible:     in.Responsible,
		Date:            in.Date,
		InitialQuantity: initial,
		UsedQuantity:    0,
	}, ""
}

// parseExit validates in and builds the backend payload without the unit.
// Each item is validated on its own.
func parseExit(in exitInput) (models.StorageExit, string) {
	in.Purpose = htmlsanitize.Text(in.Purpose)
	in.Responsible = htmlsanitize.Text(in.Responsible)
	in.Date = strings.TrimSpace(in.Date)
	res := inputval.Validate(in)
	if res.FailedField("items") {
		return models.StorageExit{}, MsgExitNoItems
	}
	if msg := movementMessage(res, MsgExitFields); msg != "" {
		return models.StorageExit{}, msg
	}

	items := make([]models.StorageExitItem, 0, len(in.Items))
	for _, it := range in.Items {
		it.Name = htmlsanitize.Text(it.Name)
		if inputval.Validate(it).HasErrors() {
			return models.StorageExit{}, MsgInvalidNumber
		}
		used, _ := normalize.Int(it.UsedQuantity)
		items = append(items, models.StorageExitItem{Name: it.Name, UsedQuantity: used})
	}

	return models.StorageExit{
		Items:       items,
		Purpose:     in.Purpose,
		Responsible: in.Responsible,
		Date:        in.Date,
		Notes:       htmlsanitize.TextPtr(in.Notes),
	}, ""
}

// Entry registers food arriving at the caller's unit.
func (h *Handler) Entry(w http.ResponseWriter, r *http.Request) {
	var in entryInput
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, MsgEntryFields)
		return
	}
	entry, msg := parseEntry(in)
	if msg != "" {
		jsonutil.BadRequest(w, msg)
		return
	}

	caller, _ := authz.CallerFrom(r)
	unit, ok := h.unitFor(w, r, caller)
	if !ok {
		return
	}
	entry.UnitID = unit.ID

	item, err := h.backend.StorageEntry(r.Context(), caller.Token, entry)
	if err != nil {
		jsonutil.FromBackend(w, h.logger, "storage.entry", err, MsgEntryFailed)
		return
	}
	jsonutil.Created(w, entryResponse{OK: true, Message: MsgEntryRegistered, Item: item})
}

// Exit registers food leaving the caller's unit.
func (h *Handler) Exit(w http.ResponseWriter, r *http.Request) {
	var in exitInput
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, MsgExitFields)
		return
	}
	exit, msg := parseExit(in)
	if msg != "" {
		jsonutil.BadRequest(w, msg)
		return
	}

	caller, _ := authz.CallerFrom(r)
	unit, ok := h.unitFor(w, r, caller)
	if !ok {
		return
	}
	exit.UnitID = unit.ID

	items, err := h.backend.StorageExit(r.Context(), caller.Token, exit)
	if err != nil {
		jsonutil.FromBackend(w, h.logger, "storage.exit", err, MsgExitFailed)
		return
	}
	jsonutil.OK(w, exitResponse{OK: true, Message: MsgExitRegistered, Items: items})
}
