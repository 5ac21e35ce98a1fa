package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/canchapp/canchapp/internal/booking"
	"github.com/canchapp/canchapp/internal/cache"
	"github.com/canchapp/canchapp/internal/media"
	"github.com/canchapp/canchapp/internal/store"
	users "github.com/canchapp/canchapp/internal/user"
	"github.com/canchapp/canchapp/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

// courtColumns is the header of the import template, in order.
var courtColumns = []string{
	"name", "sport", "description", "address", "city", "latitude", "longitude",
	"price_per_hour", "open_hour", "close_hour", "surface", "indoor", "amenities",
}

var requiredColumns = []string{"name", "sport", "price_per_hour", "open_hour", "close_hour"}

const maxImportRows = 500

type ImportService struct {
	db     *sqlx.DB
	courts *store.CourtStore
	users  *store.UserStore
	cache  cache.SearchCache
	now    func() time.Time
}

func NewImportService(db *sqlx.DB, courts *store.CourtStore, users *store.UserStore, searchCache cache.SearchCache) *ImportService {
	return &ImportService{db: db, courts: courts, users: users, cache: searchCache, now: time.Now}
}

type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type ImportResult struct {
	Imported int             `json:"imported"`
	Courts   []booking.Court `json:"courts,omitempty"`
	Errors   []RowError      `json:"errors,omitempty"`
}

// ImportError carries every invalid row of a rejected import.
type ImportError struct {
	Rows []RowError
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("%d invalid rows, first at row %d: %s", len(e.Rows), e.Rows[0].Row, e.Rows[0].Message)
}

func (e *ImportError) Unwrap() error { return ErrInvalid }

// ImportCourts creates courts for the current owner from a CSV or JSON document.
func (s *ImportService) ImportCourts(ctx context.Context, format media.Kind, data []byte) (*ImportResult, error) {
	u, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	return s.importFor(ctx, u, format, data)
}

// ImportCourtsAs imports on behalf of the owner with the given email. It backs the CLI.
func (s *ImportService) ImportCourtsAs(ctx context.Context, ownerEmail string, format media.Kind, data []byte) (*ImportResult, error) {
	u, err := s.users.GetUserByEmail(ctx, utils.Normalize(ownerEmail))
	if err != nil {
		return nil, notFound("owner", err)
	}
	if !u.IsOwner() {
		return nil, invalidf("%s is not a court owner", u.Email)
	}
	return s.importFor(ctx, u, format, data)
}

// importFor is all or nothing: one invalid row rejects the whole document.
func (s *ImportService) importFor(ctx context.Context, owner *users.User, format media.Kind, data []byte) (*ImportResult, error) {
	rows, err := ParseCourts(format, data)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var rowErrors []RowError
	courts := make([]booking.Court, 0, len(rows))
	for i, in := range rows {
		c := booking.Court{
			ID:        uuid.New(),
			OwnerID:   owner.ID,
			Status:    booking.CourtPending,
			CreatedAt: now,
		}
		in.apply(&c)
		if err := booking.ValidateCourt(&c); err != nil {
			rowErrors = append(rowErrors, rowError(i+1, err))
			continue
		}
		courts = append(courts, c)
	}
	if len(rowErrors) > 0 {
		return &ImportResult{Errors: rowErrors}, &ImportError{Rows: rowErrors}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.courts.CreateCourtsTx(ctx, tx, courts); err != nil {
		return nil, fmt.Errorf("failed to import courts: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		slog.Error("failed to invalidate search cache", "error", err)
	}
	slog.Info("imported courts", "owner_id", owner.ID, "count", len(courts))
	return &ImportResult{Imported: len(courts), Courts: courts}, nil
}

func rowError(row int, err error) RowError {
	var verr *booking.ValidationError
	if errors.As(err, &verr) {
		return RowError{Row: row, Field: verr.Field, Message: verr.Message}
	}
	return RowError{Row: row, Message: err.Error()}
}

// ParseCourts reads court rows without validating them against the court rules.
func ParseCourts(format media.Kind, data []byte) ([]CourtInput, error) {
	var (
		rows []CourtInput
		err  error
	)
	switch format {
	case media.KindCSV:
		rows, err = parseCourtsCSV(data)
	case media.KindJSON:
		rows, err = parseCourtsJSON(data)
	default:
		return nil, invalidf("unsupported import format, use .csv or .json")
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, invalidf("no courts found in file")
	}
	if len(rows) > maxImportRows {
		return nil, invalidf("too many rows (%d), the limit is %d", len(rows), maxImportRows)
	}
	return rows, nil
}

func parseCourtsCSV(data []byte) ([]CourtInput, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, invalidf("file is empty")
	}
	if err != nil {
		return nil, invalidf("malformed csv: %v", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if missing := lo.Filter(requiredColumns, func(c string, _ int) bool { _, ok := index[c]; return !ok }); len(missing) > 0 {
		return nil, invalidf("missing columns: %s", strings.Join(missing, ", "))
	}

	var rows []CourtInput
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, invalidf("malformed csv: %v", err)
		}
		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		if lo.EveryBy(record, func(v string) bool { return strings.TrimSpace(v) == "" }) {
			continue
		}

		in := CourtInput{
			Name:        field("name"),
			Sport:       field("sport"),
			Description: field("description"),
			Address:     field("address"),
			City:        field("city"),
			Surface:     field("surface"),
			Amenities:   field("amenities"),
		}
		var perr error
		parse := func(name string, fn func(string) error) {
			if v := field(name); v != "" && perr == nil {
				if err := fn(v); err != nil {
					perr = invalidf("row %d: %s: %q is not a valid value", line-1, name, v)
				}
			}
		}
		parse("latitude", func(v string) (err error) { in.Latitude, err = strconv.ParseFloat(v, 64); return })
		parse("longitude", func(v string) (err error) { in.Longitude, err = strconv.ParseFloat(v, 64); return })
		parse("price_per_hour", func(v string) (err error) { in.PricePerHour, err = strconv.ParseInt(v, 10, 64); return })
		parse("open_hour", func(v string) (err error) { in.OpenHour, err = strconv.Atoi(v); return })
		parse("close_hour", func(v string) (err error) { in.CloseHour, err = strconv.Atoi(v); return })
		parse("indoor", func(v string) (err error) { in.Indoor, err = parseBool(v); return })
		if perr != nil {
			return nil, perr
		}
		rows = append(rows, in)
	}
	return rows, nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "si", "sí", "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	return strconv.ParseBool(v)
}

// parseCourtsJSON accepts an array of courts or an object with a "courts" array.
func parseCourtsJSON(data []byte) ([]CourtInput, error) {
	if !gjson.ValidBytes(data) {
		return nil, invalidf("malformed json")
	}
	doc := gjson.ParseBytes(data)
	if doc.IsObject() {
		doc = doc.Get("courts")
	}
	if !doc.IsArray() {
		return nil, invalidf(`expected an array of courts or an object with a "courts" array`)
	}

	var rows []CourtInput
	var perr error
	doc.ForEach(func(_, v gjson.Result) bool {
		if !v.IsObject() {
			perr = invalidf("row %d: expected an object", len(rows)+1)
			return false
		}
		amenities := v.Get("amenities")
		in := CourtInput{
			Name:         v.Get("name").String(),
			Sport:        v.Get("sport").String(),
			Description:  v.Get("description").String(),
			Address:      v.Get("address").String(),
			City:         v.Get("city").String(),
			Latitude:     v.Get("latitude").Float(),
			Longitude:    v.Get("longitude").Float(),
			PricePerHour: v.Get("price_per_hour").Int(),
			OpenHour:     int(v.Get("open_hour").Int()),
			CloseHour:    int(v.Get("close_hour").Int()),
			Surface:      v.Get("surface").String(),
			Indoor:       v.Get("indoor").Bool(),
			Amenities:    amenities.String(),
		}
		if amenities.IsArray() {
			in.Amenities = strings.Join(lo.Map(amenities.Array(), func(a gjson.Result, _ int) string { return a.String() }), ",")
		}
		rows = append(rows, in)
		return true
	})
	if perr != nil {
		return nil, perr
	}
	return rows, nil
}

// ExportTemplate writes the CSV header owners fill in, with one sample row.
func (s *ImportService) ExportTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(courtColumns); err != nil {
		return err
	}
	sample := []string{
		"Cancha 1", "padel", "Blindex, luz LED", "Bv. Oroño 500", "Rosario", "-32.9468", "-60.6393",
		"12000", "8", "23", "synthetic", "true", "parking,showers",
	}
	if err := cw.Write(sample); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
