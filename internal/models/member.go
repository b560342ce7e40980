package models

// Member represents a roster entry from the members spreadsheet
type Member struct {
	Name      string `json:"name"`
	AddressAs string `json:"address_as"`
}
