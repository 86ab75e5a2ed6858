package models

import (
	"time"

	"github.com/google/uuid"
)

// FlightPrice is one priced fare row from the flight_prices table.
type FlightPrice struct {
	ID              uuid.UUID `json:"id"`
	FlightNumber    string    `json:"flight_number"`
	Class           string    `json:"class"`
	BasePrice       float64   `json:"base_price"`
	Tax             float64   `json:"tax"`
	Fee             float64   `json:"fee"`
	Currency        string    `json:"currency"`
	ValidFrom       time.Time `json:"valid_from"`
	ValidTo         time.Time `json:"valid_to"`
	OriginCode      string    `json:"origin_code"`
	DestinationCode string    `json:"destination_code"`
}

// Airport is a reference row from the airports table, keyed by IATA code.
type Airport struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	City     string `json:"city"`
	Country  string `json:"country"`
	Timezone string `json:"timezone"`
}
