// internal/domain/models/frequency.go
package models

// Frequency is one daily attendance record for a unit.
type Frequency struct {
	ID     ID      `json:"id,omitzero"`
	UnitID ID      `json:"unit_id,omitzero"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
}

// NewFrequency is the payload sent to the backend to create a record.
type NewFrequency struct {
	UnitID ID     `json:"unit_id"`
	Amount int    `json:"amount"`
	Date   string `json:"date"`
}

// FrequencyPatch carries the fields of an update; nil fields are omitted.
type FrequencyPatch struct {
	Amount *int    `json:"amount,omitempty"`
	Date   *string `json:"date,omitempty"`
}
