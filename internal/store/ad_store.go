package store

import (
	"context"

	"github.com/canchapp/canchapp/internal/commerce"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type AdStore struct {
	db *sqlx.DB
}

const adColumns = `id, title, image_url, link_url, placement, active, starts_on, ends_on, created_at`

func NewAdStore(db *sqlx.DB) *AdStore {
	return &AdStore{db: db}
}

func (s *AdStore) Create(ctx context.Context, ad *commerce.Advertisement) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO advertisements (`+adColumns+`)
		VALUES (:id, :title, :image_url, :link_url, :placement, :active, :starts_on, :ends_on, :created_at)`, ad)
	return err
}

func (s *AdStore) Update(ctx context.Context, ad *commerce.Advertisement) error {
	res, err := s.db.NamedExecContext(ctx, `UPDATE advertisements SET
		title = :title,
		image_url = :image_url,
		link_url = :link_url,
		placement = :placement,
		active = :active,
		starts_on = :starts_on,
		ends_on = :ends_on
		WHERE id = :id`, ad)
	if err != nil {
		return err
	}
	return rowsOrNotFound(res)
}

func (s *AdStore) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, s.db, "DELETE FROM advertisements WHERE id = ?", id)
}

func (s *AdStore) Get(ctx context.Context, id uuid.UUID) (*commerce.Advertisement, error) {
	var ad commerce.Advertisement
	if err := s.db.GetContext(ctx, &ad, "SELECT "+adColumns+" FROM advertisements WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &ad, nil
}

func (s *AdStore) List(ctx context.Context) ([]commerce.Advertisement, error) {
	var list []commerce.Advertisement
	err := s.db.SelectContext(ctx, &list, "SELECT "+adColumns+" FROM advertisements ORDER BY starts_on DESC, title ASC")
	return list, err
}

// Running returns the active ads of a placement whose run includes date.
func (s *AdStore) Running(ctx context.Context, placement commerce.Placement, date string) ([]commerce.Advertisement, error) {
	var list []commerce.Advertisement
	err := s.db.SelectContext(ctx, &list, "SELECT "+adColumns+` FROM advertisements
		WHERE placement = ? AND active = 1 AND starts_on <= ? AND ends_on >= ?
		ORDER BY starts_on ASC, title ASC`, placement, date, date)
	return list, err
}
