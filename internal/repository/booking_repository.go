package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/rental-pricing/internal/database"
	"github.com/iliyamo/rental-pricing/internal/model"
)

// BookingRepo aggregates booking revenue.
type BookingRepo struct {
	db     *sql.DB
	driver string
}

func NewBookingRepo(db *sql.DB, driver string) *BookingRepo {
	return &BookingRepo{db: db, driver: driver}
}

// EarnedRevenueByOwner sums total_amount of confirmed and completed bookings
// across all of the owner's properties. It returns 0 when there are none.
func (r *BookingRepo) EarnedRevenueByOwner(ctx context.Context, ownerID uint64) (float64, error) {
	q := database.Rebind(r.driver, `SELECT COALESCE(SUM(b.total_amount), 0)
		FROM bookings b
		JOIN properties p ON p.id = b.property_id
		WHERE p.owner_id = ? AND b.status IN (?, ?)`)
	var total float64
	if err := r.db.QueryRowContext(ctx, q, ownerID, model.BookingConfirmed, model.BookingCompleted).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
