package store

import (
	"context"

	"github.com/canchapp/canchapp/internal/booking"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PricingStore struct {
	db *sqlx.DB
}

const (
	pricingRuleColumns = `id, court_id, name, days_of_week, start_hour, end_hour, multiplier, priority`
	promotionColumns   = `id, owner_id, court_id, code, discount_percent, valid_from, valid_to, active`
)

func NewPricingStore(db *sqlx.DB) *PricingStore {
	return &PricingStore{db: db}
}

func (s *PricingStore) CreateRule(ctx context.Context, rule *booking.PricingRule) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO pricing_rules (`+pricingRuleColumns+`)
		VALUES (:id, :court_id, :name, :days_of_week, :start_hour, :end_hour, :multiplier, :priority)`, rule)
	return err
}

func (s *PricingStore) UpdateRule(ctx context.Context, rule *booking.PricingRule) error {
	res, err := s.db.NamedExecContext(ctx, `UPDATE pricing_rules SET
		name = :name,
		days_of_week = :days_of_week,
		start_hour = :start_hour,
		end_hour = :end_hour,
		multiplier = :multiplier,
		priority = :priority
		WHERE id = :id AND court_id = :court_id`, rule)
	if err != nil {
		return err
	}
	return rowsOrNotFound(res)
}

func (s *PricingStore) DeleteRule(ctx context.Context, courtID, id uuid.UUID) error {
	return execOne(ctx, s.db, "DELETE FROM pricing_rules WHERE id = ? AND court_id = ?", id, courtID)
}

// ListRules returns the court's rules in creation order, which is the tie-break order for equal priorities.
func (s *PricingStore) ListRules(ctx context.Context, courtID uuid.UUID) ([]booking.PricingRule, error) {
	return listRules(ctx, s.db, courtID)
}

func (s *PricingStore) ListRulesTx(ctx context.Context, tx *sqlx.Tx, courtID uuid.UUID) ([]booking.PricingRule, error) {
	return listRules(ctx, tx, courtID)
}

func listRules(ctx context.Context, q sqlx.QueryerContext, courtID uuid.UUID) ([]booking.PricingRule, error) {
	var rules []booking.PricingRule
	err := sqlx.SelectContext(ctx, q, &rules,
		"SELECT "+pricingRuleColumns+" FROM pricing_rules WHERE court_id = ? ORDER BY rowid ASC", courtID)
	return rules, err
}

func (s *PricingStore) CreatePromotion(ctx context.Context, p *booking.Promotion) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO promotions (`+promotionColumns+`)
		VALUES (:id, :owner_id, :court_id, :code, :discount_percent, :valid_from, :valid_to, :active)`, p)
	return err
}

func (s *PricingStore) UpdatePromotion(ctx context.Context, p *booking.Promotion) error {
	res, err := s.db.NamedExecContext(ctx, `UPDATE promotions SET
		court_id = :court_id,
		code = :code,
		discount_percent = :discount_percent,
		valid_from = :valid_from,
		valid_to = :valid_to,
		active = :active
		WHERE id = :id AND owner_id = :owner_id`, p)
	if err != nil {
		return err
	}
	return rowsOrNotFound(res)
}

func (s *PricingStore) DeletePromotion(ctx context.Context, ownerID, id uuid.UUID) error {
	return execOne(ctx, s.db, "DELETE FROM promotions WHERE id = ? AND owner_id = ?", id, ownerID)
}

func (s *PricingStore) GetPromotion(ctx context.Context, id uuid.UUID) (*booking.Promotion, error) {
	var p booking.Promotion
	if err := s.db.GetContext(ctx, &p, "SELECT "+promotionColumns+" FROM promotions WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPromotionByCode matches codes case-insensitively.
func (s *PricingStore) GetPromotionByCode(ctx context.Context, code string) (*booking.Promotion, error) {
	return getPromotionByCode(ctx, s.db, code)
}

func (s *PricingStore) GetPromotionByCodeTx(ctx context.Context, tx *sqlx.Tx, code string) (*booking.Promotion, error) {
	return getPromotionByCode(ctx, tx, code)
}

func getPromotionByCode(ctx context.Context, q sqlx.QueryerContext, code string) (*booking.Promotion, error) {
	var p booking.Promotion
	if err := sqlx.GetContext(ctx, q, &p, "SELECT "+promotionColumns+" FROM promotions WHERE UPPER(code) = UPPER(?)", code); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PricingStore) ListPromotions(ctx context.Context, ownerID uuid.UUID) ([]booking.Promotion, error) {
	var list []booking.Promotion
	err := s.db.SelectContext(ctx, &list,
		"SELECT "+promotionColumns+" FROM promotions WHERE owner_id = ? ORDER BY valid_from DESC, code ASC", ownerID)
	return list, err
}
