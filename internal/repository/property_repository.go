package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/rental-pricing/internal/database"
	"github.com/iliyamo/rental-pricing/internal/model"
)

// PropertyRepo reads listings from the row store.
type PropertyRepo struct {
	db     *sql.DB
	driver string
}

// NewPropertyRepo constructs a PropertyRepo. driver selects the placeholder
// style of the queries.
func NewPropertyRepo(db *sql.DB, driver string) *PropertyRepo {
	return &PropertyRepo{db: db, driver: driver}
}

const propertyColumns = `id, owner_id, title, address, city, price_per_night, property_type, bedrooms, created_at, updated_at`

// GetByIDAndOwner loads a property only if ownerID owns it.
func (r *PropertyRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Property, error) {
	q := database.Rebind(r.driver, `SELECT `+propertyColumns+` FROM properties WHERE id = ? AND owner_id = ?`)
	var p model.Property
	err := r.db.QueryRowContext(ctx, q, id, ownerID).Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.Address, &p.City,
		&p.PricePerNight, &p.PropertyType, &p.Bedrooms, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListByOwner returns the owner's properties ordered by id. An owner with no
// listings yields an empty slice.
func (r *PropertyRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Property, error) {
	q := database.Rebind(r.driver, `SELECT `+propertyColumns+` FROM properties WHERE owner_id = ? ORDER BY id`)
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Property{}
	for rows.Next() {
		var p model.Property
		if err := rows.Scan(
			&p.ID, &p.OwnerID, &p.Title, &p.Address, &p.City,
			&p.PricePerNight, &p.PropertyType, &p.Bedrooms, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
