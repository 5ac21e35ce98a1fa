package views

import (
	"context"
	"fmt"

	"github.com/canchapp/canchapp/internal/bracket"
	"github.com/canchapp/canchapp/internal/service"
	users "github.com/canchapp/canchapp/internal/user"
	"github.com/google/uuid"
)

func GetUser(ctx context.Context) *users.User {
	return users.FromContext(ctx)
}

// Money formats an amount in whole pesos with thousands separators.
func Money(amount int64) string {
	sign := ""
	if amount < 0 {
		sign, amount = "-", -amount
	}
	s := fmt.Sprintf("%d", amount)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "." + s[i:]
	}
	return sign + "$" + s
}

// EntryName resolves a match slot to a team name. Empty slots are "TBD".
func EntryName(entries map[uuid.UUID]bracket.Entry, id *uuid.UUID) string {
	if id == nil {
		return "TBD"
	}
	if e, ok := entries[*id]; ok {
		return e.Name
	}
	return "?"
}

type ReceiptRow struct {
	Label string
	Value string
}

// ReceiptRows lists the receipt fields in print order, skipping the empty ones.
func ReceiptRows(d *service.ReservationDetail) []ReceiptRow {
	res, court := d.Reservation, d.Court
	rows := []ReceiptRow{
		{"Reserva", res.ID.String()},
		{"Cancha", court.Name},
	}
	if court.Address != "" {
		rows = append(rows, ReceiptRow{"Dirección", court.Address + ", " + court.City})
	}
	rows = append(rows,
		ReceiptRow{"Fecha", res.Label()},
		ReceiptRow{"Jugador", res.PlayerName},
		ReceiptRow{"Estado", string(res.Status)},
	)
	if res.PromotionCode != nil {
		rows = append(rows, ReceiptRow{"Promoción", *res.PromotionCode})
	}
	rows = append(rows, ReceiptRow{"Total", Money(res.TotalPrice)})
	if d.Payment != nil {
		rows = append(rows, ReceiptRow{"Pago", fmt.Sprintf("%s (%s)", d.Payment.Method, d.Payment.Status)})
	}
	return rows
}
