package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/canchapp/canchapp/internal/booking"
	"github.com/canchapp/canchapp/internal/commerce"
	"github.com/canchapp/canchapp/internal/store"
	"github.com/google/uuid"
)

type AdService struct {
	store *store.AdStore
	now   func() time.Time
}

func NewAdService(store *store.AdStore) *AdService {
	return &AdService{store: store, now: time.Now}
}

type AdInput struct {
	Title     string             `json:"title"`
	ImageURL  string             `json:"image_url"`
	LinkURL   string             `json:"link_url"`
	Placement commerce.Placement `json:"placement"`
	Active    *bool              `json:"active"`
	StartsOn  string             `json:"starts_on"`
	EndsOn    string             `json:"ends_on"`
}

func (s *AdService) apply(ad *commerce.Advertisement, in AdInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return invalidf("title is required")
	}
	if !in.Placement.Valid() {
		return invalidf("unknown placement %q", in.Placement)
	}
	from, err := booking.ParseDate(in.StartsOn, s.now())
	if err != nil {
		return invalidf("starts_on: %v", err)
	}
	to, err := booking.ParseDate(in.EndsOn, s.now())
	if err != nil {
		return invalidf("ends_on: %v", err)
	}
	if to.Before(from) {
		return invalidf("ends_on is before starts_on")
	}
	ad.Title = strings.TrimSpace(in.Title)
	ad.ImageURL = strings.TrimSpace(in.ImageURL)
	ad.LinkURL = strings.TrimSpace(in.LinkURL)
	ad.Placement = in.Placement
	ad.StartsOn = booking.FormatDate(from)
	ad.EndsOn = booking.FormatDate(to)
	if in.Active != nil {
		ad.Active = *in.Active
	}
	return nil
}

func (s *AdService) Create(ctx context.Context, in AdInput) (*commerce.Advertisement, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	ad := &commerce.Advertisement{ID: uuid.New(), Active: true, CreatedAt: s.now().UTC()}
	if err := s.apply(ad, in); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, ad); err != nil {
		return nil, fmt.Errorf("failed to create ad: %w", err)
	}
	return ad, nil
}

func (s *AdService) Update(ctx context.Context, id uuid.UUID, in AdInput) (*commerce.Advertisement, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	ad, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, notFound("ad", err)
	}
	if err := s.apply(ad, in); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, ad); err != nil {
		return nil, notFound("ad", err)
	}
	return ad, nil
}

func (s *AdService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := requireAdmin(ctx); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return notFound("ad", err)
	}
	return nil
}

func (s *AdService) List(ctx context.Context) ([]commerce.Advertisement, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.store.List(ctx)
}

// Running is public: it returns the ads shown today in a placement.
func (s *AdService) Running(ctx context.Context, placement commerce.Placement) ([]commerce.Advertisement, error) {
	if !placement.Valid() {
		return nil, invalidf("unknown placement %q", placement)
	}
	return s.store.Running(ctx, placement, booking.FormatDate(s.now()))
}
