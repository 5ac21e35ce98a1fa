package store

import (
	"context"
	"strings"

	"github.com/canchapp/canchapp/internal/booking"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CourtStore struct {
	db *sqlx.DB
}

const (
	courtColumns = `id, owner_id, name, sport, description, address, city, latitude, longitude, price_per_hour,
		open_hour, close_hour, surface, indoor, amenities, status, rejection_reason, created_at`

	createCourtQuery = `
		INSERT INTO courts (id, owner_id, name, sport, description, address, city, latitude, longitude, price_per_hour,
			open_hour, close_hour, surface, indoor, amenities, status, rejection_reason, created_at)
		VALUES (:id, :owner_id, :name, :sport, :description, :address, :city, :latitude, :longitude, :price_per_hour,
			:open_hour, :close_hour, :surface, :indoor, :amenities, :status, :rejection_reason, :created_at)
	`
	updateCourtQuery = `
		UPDATE courts SET
		name = :name,
		sport = :sport,
		description = :description,
		address = :address,
		city = :city,
		latitude = :latitude,
		longitude = :longitude,
		price_per_hour = :price_per_hour,
		open_hour = :open_hour,
		close_hour = :close_hour,
		surface = :surface,
		indoor = :indoor,
		amenities = :amenities,
		status = :status,
		rejection_reason = :rejection_reason
		WHERE id = :id
	`
)

// CourtFilter narrows ListCourts. Zero values are ignored.
type CourtFilter struct {
	OwnerID *uuid.UUID
	Status  booking.CourtStatus
	Sport   string
	City    string
	// Query matches name, description or address.
	Query string
}

func NewCourtStore(db *sqlx.DB) *CourtStore {
	return &CourtStore{db: db}
}

func (s *CourtStore) CreateCourt(ctx context.Context, court *booking.Court) error {
	_, err := s.db.NamedExecContext(ctx, createCourtQuery, court)
	return err
}

// CreateCourtsTx inserts a batch of courts, used by imports.
func (s *CourtStore) CreateCourtsTx(ctx context.Context, tx *sqlx.Tx, courts []booking.Court) error {
	if len(courts) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, createCourtQuery, courts)
	return err
}

func (s *CourtStore) UpdateCourt(ctx context.Context, court *booking.Court) error {
	res, err := s.db.NamedExecContext(ctx, updateCourtQuery, court)
	if err != nil {
		return err
	}
	return rowsOrNotFound(res)
}

func (s *CourtStore) DeleteCourt(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, s.db, "DELETE FROM courts WHERE id = ?", id)
}

func (s *CourtStore) GetCourt(ctx context.Context, id uuid.UUID) (*booking.Court, error) {
	return getCourt(ctx, s.db, id)
}

func (s *CourtStore) GetCourtTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*booking.Court, error) {
	return getCourt(ctx, tx, id)
}

func getCourt(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*booking.Court, error) {
	var court booking.Court
	if err := sqlx.GetContext(ctx, q, &court, "SELECT "+courtColumns+" FROM courts WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &court, nil
}

func (s *CourtStore) ListCourts(ctx context.Context, f CourtFilter) ([]booking.Court, error) {
	var (
		where []string
		args  []any
	)
	if f.OwnerID != nil {
		where = append(where, "owner_id = ?")
		args = append(args, *f.OwnerID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Sport != "" {
		where = append(where, "LOWER(sport) = LOWER(?)")
		args = append(args, f.Sport)
	}
	if f.City != "" {
		where = append(where, "LOWER(city) = LOWER(?)")
		args = append(args, f.City)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(address) LIKE ?)")
		args = append(args, like, like, like)
	}

	query := "SELECT " + courtColumns + " FROM courts"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, name ASC"

	var courts []booking.Court
	err := s.db.SelectContext(ctx, &courts, query, args...)
	return courts, err
}

func (s *CourtStore) SetStatus(ctx context.Context, id uuid.UUID, status booking.CourtStatus, reason *string) error {
	return execOne(ctx, s.db, "UPDATE courts SET status = ?, rejection_reason = ? WHERE id = ?", status, reason, id)
}

func (s *CourtStore) AddPhoto(ctx context.Context, photo *booking.CourtPhoto) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO court_photos (id, court_id, url, position)
		VALUES (:id, :court_id, :url, :position)`, photo)
	return err
}

func (s *CourtStore) DeletePhoto(ctx context.Context, courtID, photoID uuid.UUID) error {
	return execOne(ctx, s.db, "DELETE FROM court_photos WHERE id = ? AND court_id = ?", photoID, courtID)
}

func (s *CourtStore) NextPhotoPosition(ctx context.Context, courtID uuid.UUID) (int, error) {
	var pos int
	err := s.db.GetContext(ctx, &pos, "SELECT COALESCE(MAX(position) + 1, 0) FROM court_photos WHERE court_id = ?", courtID)
	return pos, err
}

// GetPhotos returns the photos of the given courts keyed by court, in display order.
func (s *CourtStore) GetPhotos(ctx context.Context, courtIDs []uuid.UUID) (map[uuid.UUID][]booking.CourtPhoto, error) {
	out := make(map[uuid.UUID][]booking.CourtPhoto)
	if len(courtIDs) == 0 {
		return out, nil
	}
	var photos []booking.CourtPhoto
	err := selectIn(ctx, s.db, &photos,
		"SELECT id, court_id, url, position FROM court_photos WHERE court_id IN (?) ORDER BY position ASC", courtIDs)
	if err != nil {
		return nil, err
	}
	for _, p := range photos {
		out[p.CourtID] = append(out[p.CourtID], p)
	}
	return out, nil
}
