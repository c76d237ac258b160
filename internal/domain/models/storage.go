// internal/domain/models/storage.go
package models

// Storage origin types accepted by the backend.
const (
	OriginBought  = "comprado"
	OriginDonated = "doado"
)

// StorageEntry registers food arriving at a unit.
type StorageEntry struct {
	Name            string  `json:"name"`
	Amount          float64 `json:"amount"`
	UnitID          ID      `json:"unit_id"`
	Type            string  `json:"type"`
	Supplier        *string `json:"supplier"`
	Invoice         *string `json:"invoice"`
	Responsible     string  `json:"responsible"`
	Date            string  `json:"date"`
	InitialQuantity int     `json:"initial_quantity"`
	UsedQuantity    int     `json:"used_quantity"`
}

// StorageExitItem is one food item leaving storage.
type StorageExitItem struct {
	Name         string `json:"name"`
	UsedQuantity int    `json:"used_quantity"`
}

// StorageExit registers food leaving a unit.
type StorageExit struct {
	Items       []StorageExitItem `json:"items"`
	Purpose     string            `json:"purpose"`
	Responsible string            `json:"responsible"`
	Date        string            `json:"date"`
	Notes       *string           `json:"notes"`
	UnitID      ID                `json:"unit_id"`
}
