package store

import (
	"context"
	"fmt"

	"github.com/gogoair/flightchat/internal/models"
)

// ListFlights returns a page of fare rows for the flights listing endpoint.
func (r *Repository) ListFlights(ctx context.Context, limit, offset int) ([]models.FlightPrice, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, flight_number, class, base_price, tax, fee, currency, valid_from, valid_to, origin_code, destination_code
FROM flight_prices
WHERE deleted_at IS NULL
ORDER BY valid_from ASC, flight_number ASC
LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	defer func() { _ = rows.Close() }()

	flights := make([]models.FlightPrice, 0, limit)
	for rows.Next() {
		var fp models.FlightPrice
		if err := rows.Scan(
			&fp.ID, &fp.FlightNumber, &fp.Class, &fp.BasePrice, &fp.Tax, &fp.Fee,
			&fp.Currency, &fp.ValidFrom, &fp.ValidTo, &fp.OriginCode, &fp.DestinationCode,
		); err != nil {
			return nil, fmt.Errorf("scan flight row: %w", err)
		}
		flights = append(flights, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flight rows: %w", err)
	}
	return flights, nil
}
