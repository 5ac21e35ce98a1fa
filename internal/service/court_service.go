package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/canchapp/canchapp/internal/booking"
	"github.com/canchapp/canchapp/internal/cache"
	"github.com/canchapp/canchapp/internal/events"
	"github.com/canchapp/canchapp/internal/store"
	"github.com/canchapp/canchapp/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
)

type CourtService struct {
	db            *sqlx.DB
	store         *store.CourtStore
	collaborators *store.CollaboratorStore
	access        *CollaboratorService
	cache         cache.SearchCache
	events        events.Publisher
	now           func() time.Time
}

func NewCourtService(db *sqlx.DB, store *store.CourtStore, collaborators *store.CollaboratorStore, access *CollaboratorService,
	searchCache cache.SearchCache, publisher events.Publisher) *CourtService {
	return &CourtService{
		db:            db,
		store:         store,
		collaborators: collaborators,
		access:        access,
		cache:         searchCache,
		events:        publisher,
		now:           time.Now,
	}
}

type CourtInput struct {
	Name         string  `json:"name"`
	Sport        string  `json:"sport"`
	Description  string  `json:"description"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	PricePerHour int64   `json:"price_per_hour"`
	OpenHour     int     `json:"open_hour"`
	CloseHour    int     `json:"close_hour"`
	Surface      string  `json:"surface"`
	Indoor       bool    `json:"indoor"`
	Amenities    string  `json:"amenities"`
}

func (in CourtInput) apply(c *booking.Court) {
	c.Name = strings.TrimSpace(in.Name)
	c.Sport = utils.Normalize(in.Sport)
	c.Description = in.Description
	c.Address = strings.TrimSpace(in.Address)
	c.City = strings.TrimSpace(in.City)
	c.Latitude = in.Latitude
	c.Longitude = in.Longitude
	c.PricePerHour = in.PricePerHour
	c.OpenHour = in.OpenHour
	c.CloseHour = in.CloseHour
	c.Surface = in.Surface
	c.Indoor = in.Indoor
	c.Amenities = in.Amenities
}

// Create lists a new court for the current owner. It stays hidden from search until an admin approves it.
func (s *CourtService) Create(ctx context.Context, in CourtInput) (*booking.Court, error) {
	u, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	court := &booking.Court{
		ID:        uuid.New(),
		OwnerID:   u.ID,
		Status:    booking.CourtPending,
		CreatedAt: s.now().UTC(),
	}
	in.apply(court)
	if err := booking.ValidateCourt(court); err != nil {
		return nil, err
	}
	if err := s.store.CreateCourt(ctx, court); err != nil {
		return nil, fmt.Errorf("failed to create court: %w", err)
	}
	s.invalidate(ctx)
	return court, nil
}

func (s *CourtService) Update(ctx context.Context, id uuid.UUID, in CourtInput) (*booking.Court, error) {
	court, _, err := s.access.managedCourt(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(court)
	if err := booking.ValidateCourt(court); err != nil {
		return nil, err
	}
	// a rejected listing goes back to review once edited
	if court.Status == booking.CourtRejected {
		court.Status = booking.CourtPending
		court.RejectionReason = nil
	}
	if err := s.store.UpdateCourt(ctx, court); err != nil {
		return nil, notFound("court", err)
	}
	s.invalidate(ctx)
	return court, nil
}

func (s *CourtService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, _, err := s.access.ownedCourt(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteCourt(ctx, id); err != nil {
		return notFound("court", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *CourtService) AddPhoto(ctx context.Context, courtID uuid.UUID, url string) (*booking.CourtPhoto, error) {
	if _, _, err := s.access.managedCourt(ctx, courtID); err != nil {
		return nil, err
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, invalidf("photo url is required")
	}
	pos, err := s.store.NextPhotoPosition(ctx, courtID)
	if err != nil {
		return nil, err
	}
	photo := &booking.CourtPhoto{ID: uuid.New(), CourtID: courtID, URL: url, Position: pos}
	if err := s.store.AddPhoto(ctx, photo); err != nil {
		return nil, fmt.Errorf("failed to add photo: %w", err)
	}
	s.invalidate(ctx)
	return photo, nil
}

func (s *CourtService) RemovePhoto(ctx context.Context, courtID, photoID uuid.UUID) error {
	if _, _, err := s.access.managedCourt(ctx, courtID); err != nil {
		return err
	}
	if err := s.store.DeletePhoto(ctx, courtID, photoID); err != nil {
		return notFound("photo", err)
	}
	s.invalidate(ctx)
	return nil
}

// Get returns an approved court to anyone. Pending and rejected courts are only visible to their managers.
func (s *CourtService) Get(ctx context.Context, id uuid.UUID) (*booking.Court, error) {
	court, err := s.store.GetCourt(ctx, id)
	if err != nil {
		return nil, notFound("court", err)
	}
	if court.Status != booking.CourtApproved {
		ok, err := s.access.CanManageCourt(ctx, currentUserOrNil(ctx), court)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("court: %w", ErrNotFound)
		}
	}
	if err := s.attachPhotos(ctx, []*booking.Court{court}); err != nil {
		return nil, err
	}
	return court, nil
}

type SortBy string

const (
	SortNewest   SortBy = ""
	SortDistance SortBy = "distance"
	SortPrice    SortBy = "price"
)

type SearchParams struct {
	Query    string
	Sport    string
	City     string
	Lat      *float64
	Lon      *float64
	RadiusKm float64
	Sort     SortBy
}

func (p SearchParams) cacheKey() string {
	point := "-"
	if p.Lat != nil && p.Lon != nil {
		point = fmt.Sprintf("%.4f,%.4f", *p.Lat, *p.Lon)
	}
	return strings.ToLower(fmt.Sprintf("q=%s|sport=%s|city=%s|at=%s|r=%.2f|sort=%s",
		strings.TrimSpace(p.Query), p.Sport, p.City, point, p.RadiusKm, p.Sort))
}

// Search lists approved courts. With a point, each court gets its distance and RadiusKm (when set) filters
// courts farther away; courts without coordinates are then excluded.
func (s *CourtService) Search(ctx context.Context, p SearchParams) ([]booking.Court, error) {
	if p.Sort == SortDistance && (p.Lat == nil || p.Lon == nil) {
		return nil, invalidf("sorting by distance needs lat and lon")
	}
	if p.Sort != SortNewest && p.Sort != SortDistance && p.Sort != SortPrice {
		return nil, invalidf("unknown sort %q", p.Sort)
	}

	key := p.cacheKey()
	var cached []booking.Court
	if ok, err := s.cache.Get(ctx, key, &cached); err != nil {
		slog.Warn("search cache read failed", "error", err)
	} else if ok {
		return cached, nil
	}

	courts, err := s.store.ListCourts(ctx, store.CourtFilter{
		Status: booking.CourtApproved,
		Sport:  p.Sport,
		City:   p.City,
		Query:  p.Query,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search courts: %w", err)
	}

	if p.Lat != nil && p.Lon != nil {
		lat, lon := *p.Lat, *p.Lon
		courts = lo.FilterMap(courts, func(c booking.Court, _ int) (booking.Court, bool) {
			if !c.HasLocation() {
				return c, p.RadiusKm <= 0
			}
			d := booking.Distance(lat, lon, c.Latitude, c.Longitude)
			c.DistanceKm = lo.ToPtr(d)
			return c, p.RadiusKm <= 0 || d <= p.RadiusKm
		})
	}

	switch p.Sort {
	case SortDistance:
		sort.SliceStable(courts, func(i, j int) bool {
			a, b := courts[i].DistanceKm, courts[j].DistanceKm
			if a == nil || b == nil {
				return a != nil
			}
			return *a < *b
		})
	case SortPrice:
		sort.SliceStable(courts, func(i, j int) bool { return courts[i].PricePerHour < courts[j].PricePerHour })
	}

	ptrs := make([]*booking.Court, len(courts))
	for i := range courts {
		ptrs[i] = &courts[i]
	}
	if err := s.attachPhotos(ctx, ptrs); err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, courts); err != nil {
		slog.Warn("search cache write failed", "error", err)
	}
	return courts, nil
}

// Mine lists the courts the current user owns or collaborates on.
func (s *CourtService) Mine(ctx context.Context) ([]booking.Court, error) {
	u, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	owned, err := s.store.ListCourts(ctx, store.CourtFilter{OwnerID: &u.ID})
	if err != nil {
		return nil, err
	}
	ids, err := s.collaborators.CourtIDsFor(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		c, err := s.store.GetCourt(ctx, id)
		if err != nil {
			return nil, notFound("court", err)
		}
		owned = append(owned, *c)
	}
	return owned, nil
}

func (s *CourtService) Pending(ctx context.Context) ([]booking.Court, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.store.ListCourts(ctx, store.CourtFilter{Status: booking.CourtPending})
}

// Moderate approves or rejects a listing. Rejections need a reason, which is shown to the owner.
func (s *CourtService) Moderate(ctx context.Context, id uuid.UUID, approve bool, reason string) (*booking.Court, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	court, err := s.store.GetCourt(ctx, id)
	if err != nil {
		return nil, notFound("court", err)
	}

	reason = strings.TrimSpace(reason)
	status := booking.CourtApproved
	var reasonPtr *string
	if !approve {
		if reason == "" {
			return nil, invalidf("a rejection needs a reason")
		}
		status = booking.CourtRejected
		reasonPtr = &reason
	}
	if err := s.store.SetStatus(ctx, id, status, reasonPtr); err != nil {
		return nil, notFound("court", err)
	}
	court.Status = status
	court.RejectionReason = reasonPtr
	s.invalidate(ctx)

	if err := s.events.Publish(ctx, events.RKCourtReviewed, events.CourtReviewed{
		CourtID:   court.ID,
		CourtName: court.Name,
		OwnerID:   court.OwnerID,
		Approved:  approve,
		Reason:    reason,
	}); err != nil {
		slog.Error("failed to publish court review", "court_id", court.ID, "error", err)
	}
	return court, nil
}

func (s *CourtService) attachPhotos(ctx context.Context, courts []*booking.Court) error {
	if len(courts) == 0 {
		return nil
	}
	photos, err := s.store.GetPhotos(ctx, lo.Map(courts, func(c *booking.Court, _ int) uuid.UUID { return c.ID }))
	if err != nil {
		return fmt.Errorf("failed to load photos: %w", err)
	}
	for _, c := range courts {
		c.Photos = photos[c.ID]
	}
	return nil
}

func (s *CourtService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		slog.Warn("search cache invalidation failed", "error", err)
	}
}
