package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/canchapp/canchapp/internal/booking"
	"github.com/canchapp/canchapp/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PricingService struct {
	db     *sqlx.DB
	store  *store.PricingStore
	courts *store.CourtStore
	access *CollaboratorService
}

func NewPricingService(db *sqlx.DB, store *store.PricingStore, courts *store.CourtStore, access *CollaboratorService) *PricingService {
	return &PricingService{db: db, store: store, courts: courts, access: access}
}

type RuleInput struct {
	Name       string  `json:"name"`
	DaysOfWeek string  `json:"days_of_week"`
	StartHour  int     `json:"start_hour"`
	EndHour    int     `json:"end_hour"`
	Multiplier float64 `json:"multiplier"`
	Priority   int     `json:"priority"`
}

func (in RuleInput) rule(id, courtID uuid.UUID) *booking.PricingRule {
	return &booking.PricingRule{
		ID:         id,
		CourtID:    courtID,
		Name:       strings.TrimSpace(in.Name),
		DaysOfWeek: strings.ReplaceAll(in.DaysOfWeek, " ", ""),
		StartHour:  in.StartHour,
		EndHour:    in.EndHour,
		Multiplier: in.Multiplier,
		Priority:   in.Priority,
	}
}

func (s *PricingService) CreateRule(ctx context.Context, courtID uuid.UUID, in RuleInput) (*booking.PricingRule, error) {
	if _, _, err := s.access.managedCourt(ctx, courtID); err != nil {
		return nil, err
	}
	rule := in.rule(uuid.New(), courtID)
	if err := booking.ValidatePricingRule(rule); err != nil {
		return nil, err
	}
	if err := s.store.CreateRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create pricing rule: %w", err)
	}
	return rule, nil
}

func (s *PricingService) UpdateRule(ctx context.Context, courtID, id uuid.UUID, in RuleInput) (*booking.PricingRule, error) {
	if _, _, err := s.access.managedCourt(ctx, courtID); err != nil {
		return nil, err
	}
	rule := in.rule(id, courtID)
	if err := booking.ValidatePricingRule(rule); err != nil {
		return nil, err
	}
	if err := s.store.UpdateRule(ctx, rule); err != nil {
		return nil, notFound("pricing rule", err)
	}
	return rule, nil
}

func (s *PricingService) DeleteRule(ctx context.Context, courtID, id uuid.UUID) error {
	if _, _, err := s.access.managedCourt(ctx, courtID); err != nil {
		return err
	}
	if err := s.store.DeleteRule(ctx, courtID, id); err != nil {
		return notFound("pricing rule", err)
	}
	return nil
}

func (s *PricingService) ListRules(ctx context.Context, courtID uuid.UUID) ([]booking.PricingRule, error) {
	if _, _, err := s.access.managedCourt(ctx, courtID); err != nil {
		return nil, err
	}
	return s.store.ListRules(ctx, courtID)
}

type PromotionInput struct {
	CourtID         *uuid.UUID `json:"court_id"`
	Code            string     `json:"code"`
	DiscountPercent int        `json:"discount_percent"`
	ValidFrom       string     `json:"valid_from"`
	ValidTo         string     `json:"valid_to"`
	Active          *bool      `json:"active"`
}

func (s *PricingService) promotionFrom(ctx context.Context, ownerID uuid.UUID, in PromotionInput, p *booking.Promotion) error {
	if in.CourtID != nil {
		court, err := s.courts.GetCourt(ctx, *in.CourtID)
		if err != nil {
			return notFound("court", err)
		}
		if court.OwnerID != ownerID {
			return ErrForbidden
		}
	}
	p.OwnerID = ownerID
	p.CourtID = in.CourtID
	p.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	p.DiscountPercent = in.DiscountPercent
	p.ValidFrom = in.ValidFrom
	p.ValidTo = in.ValidTo
	if in.Active != nil {
		p.Active = *in.Active
	}
	return booking.ValidatePromotion(p)
}

func (s *PricingService) CreatePromotion(ctx context.Context, in PromotionInput) (*booking.Promotion, error) {
	u, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	p := &booking.Promotion{ID: uuid.New(), Active: true}
	if err := s.promotionFrom(ctx, u.ID, in, p); err != nil {
		return nil, err
	}
	if err := s.store.CreatePromotion(ctx, p); err != nil {
		if isUniqueViolation(err) {
			return nil, conflictf("promotion code %s is taken", p.Code)
		}
		return nil, fmt.Errorf("failed to create promotion: %w", err)
	}
	return p, nil
}

func (s *PricingService) UpdatePromotion(ctx context.Context, id uuid.UUID, in PromotionInput) (*booking.Promotion, error) {
	u, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.store.GetPromotion(ctx, id)
	if err != nil {
		return nil, notFound("promotion", err)
	}
	if p.OwnerID != u.ID {
		return nil, ErrForbidden
	}
	if err := s.promotionFrom(ctx, u.ID, in, p); err != nil {
		return nil, err
	}
	if err := s.store.UpdatePromotion(ctx, p); err != nil {
		if isUniqueViolation(err) {
			return nil, conflictf("promotion code %s is taken", p.Code)
		}
		return nil, notFound("promotion", err)
	}
	return p, nil
}

func (s *PricingService) DeletePromotion(ctx context.Context, id uuid.UUID) error {
	u, err := requireOwner(ctx)
	if err != nil {
		return err
	}
	if err := s.store.DeletePromotion(ctx, u.ID, id); err != nil {
		return notFound("promotion", err)
	}
	return nil
}

func (s *PricingService) ListPromotions(ctx context.Context) ([]booking.Promotion, error) {
	u, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListPromotions(ctx, u.ID)
}

// ValidatePromotion resolves code for a reservation on court at date.
func (s *PricingService) ValidatePromotion(ctx context.Context, code string, courtID uuid.UUID, date string) (*booking.Promotion, error) {
	court, err := s.courts.GetCourt(ctx, courtID)
	if err != nil {
		return nil, notFound("court", err)
	}
	p, err := s.store.GetPromotionByCode(ctx, strings.TrimSpace(code))
	return checkPromotion(p, err, court, code, date)
}

// checkPromotion turns a code lookup into a usable promotion or an ErrInvalid.
func checkPromotion(p *booking.Promotion, lookupErr error, court *booking.Court, code, date string) (*booking.Promotion, error) {
	if errors.Is(lookupErr, sql.ErrNoRows) {
		return nil, invalidf("promotion code %s does not exist", code)
	}
	if lookupErr != nil {
		return nil, lookupErr
	}
	if !p.ValidOn(date) {
		return nil, invalidf("promotion code %s is not valid on %s", p.Code, date)
	}
	if !p.AppliesTo(court) {
		return nil, invalidf("promotion code %s does not apply to %s", p.Code, court.Name)
	}
	return p, nil
}
