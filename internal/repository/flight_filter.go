package repository

import (
	"fmt"
	"strings"

	"github.com/Domenick1991/flightbook/internal/domain"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildFlightFilter renders the WHERE clause for a search. Placeholders start at $1.
func buildFlightFilter(f domain.FlightFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.FlightNumber != "" {
		add("flight_number = $%d", f.FlightNumber)
	}
	if f.Departure != "" {
		add("departure ILIKE $%d", "%"+likeEscaper.Replace(f.Departure)+"%")
	}
	if f.Destination != "" {
		add("destination ILIKE $%d", "%"+likeEscaper.Replace(f.Destination)+"%")
	}
	if f.DepartureDate != nil {
		add("departure_time >= $%d", *f.DepartureDate)
		add("departure_time < $%d", f.DepartureDate.AddDate(0, 0, 1))
	}
	if f.ArrivalDate != nil {
		add("arrival_time >= $%d", *f.ArrivalDate)
		add("arrival_time < $%d", f.ArrivalDate.AddDate(0, 0, 1))
	}
	if f.MinPrice != nil {
		add("price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("price <= $%d", *f.MaxPrice)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
