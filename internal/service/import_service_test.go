package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/canchapp/canchapp/internal/booking"
	"github.com/canchapp/canchapp/internal/media"
	users "github.com/canchapp/canchapp/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const courtsCSV = `name,sport,city,latitude,longitude,price_per_hour,open_hour,close_hour,indoor,amenities
Cancha 1,padel,Rosario,-32.95,-60.65,12000,8,23,si,"parking,showers"
Cancha 2,Tenis,Rosario,,,9000,9,21,false,
`

const courtsJSON = `{"courts": [
	{"name": "Cancha 1", "sport": "padel", "price_per_hour": 12000, "open_hour": 8, "close_hour": 23, "amenities": ["bar", "parking"]},
	{"name": "Cancha 2", "sport": "futbol", "price_per_hour": 20000, "open_hour": 10, "close_hour": 24, "indoor": true}
]}`

func TestParseCourts(t *testing.T) {
	rows, err := ParseCourts(media.KindCSV, []byte(courtsCSV))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Cancha 1", rows[0].Name)
	assert.True(t, rows[0].Indoor)
	assert.Equal(t, "parking,showers", rows[0].Amenities)
	assert.Equal(t, int64(9000), rows[1].PricePerHour)
	assert.Zero(t, rows[1].Latitude)

	rows, err = ParseCourts(media.KindJSON, []byte(courtsJSON))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "bar,parking", rows[0].Amenities)
	assert.Equal(t, 24, rows[1].CloseHour)
	assert.True(t, rows[1].Indoor)

	testCases := []struct {
		name   string
		format media.Kind
		data   string
	}{
		{"missing columns", media.KindCSV, "name,sport\nA,padel\n"},
		{"bad number", media.KindCSV, "name,sport,price_per_hour,open_hour,close_hour\nA,padel,cheap,8,20\n"},
		{"empty csv", media.KindCSV, ""},
		{"header only", media.KindCSV, "name,sport,price_per_hour,open_hour,close_hour\n"},
		{"malformed json", media.KindJSON, `[{"name":`},
		{"json scalar", media.KindJSON, `42`},
		{"json rows not objects", media.KindJSON, `[1, 2]`},
		{"unknown format", media.KindImage, "x"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCourts(tc.format, []byte(tc.data))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestImportService_ImportCourts(t *testing.T) {
	app := newTestApp(t)
	owner, ownerCtx := app.user(t, "owner", users.RoleOwner)
	_, playerCtx := app.user(t, "player", users.RoleUser)

	_, err := app.imports.ImportCourts(playerCtx, media.KindCSV, []byte(courtsCSV))
	assert.ErrorIs(t, err, ErrForbidden)

	res, err := app.imports.ImportCourts(ownerCtx, media.KindCSV, []byte(courtsCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	for _, c := range res.Courts {
		assert.Equal(t, owner.ID, c.OwnerID)
		assert.Equal(t, booking.CourtPending, c.Status)
	}
	assert.Equal(t, "tenis", res.Courts[1].Sport)

	mine, err := app.courts.Mine(ownerCtx)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	// one bad row rejects the whole file
	bad := strings.Replace(courtsJSON, `"close_hour": 24`, `"close_hour": 9`, 1)
	res, err = app.imports.ImportCourts(ownerCtx, media.KindJSON, []byte(bad))
	assert.ErrorIs(t, err, ErrInvalid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 2, res.Errors[0].Row)
	assert.Equal(t, "open_hour", res.Errors[0].Field)

	mine, err = app.courts.Mine(ownerCtx)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	res, err = app.imports.ImportCourtsAs(context.Background(), "OWNER@example.com", media.KindJSON, []byte(courtsJSON))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)

	_, err = app.imports.ImportCourtsAs(context.Background(), "player@example.com", media.KindJSON, []byte(courtsJSON))
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = app.imports.ImportCourtsAs(context.Background(), "nobody@example.com", media.KindJSON, []byte(courtsJSON))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestImportService_ExportTemplateRoundTrips(t *testing.T) {
	app := newTestApp(t)
	var buf bytes.Buffer
	require.NoError(t, app.imports.ExportTemplate(&buf))
	assert.True(t, strings.HasPrefix(buf.String(), strings.Join(courtColumns, ",")+"\n"))

	rows, err := ParseCourts(media.KindCSV, buf.Bytes())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "padel", rows[0].Sport)
	assert.True(t, rows[0].Indoor)
}

func TestUploadService(t *testing.T) {
	app := newTestApp(t)
	_, ctx := app.user(t, "owner", users.RoleOwner)
	dir := t.TempDir()
	uploads := NewUploadService(dir, "http://localhost:8080/", 1024)

	_, err := uploads.UploadFile(context.Background(), "courts.csv", strings.NewReader(courtsCSV))
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = uploads.UploadFile(ctx, "notes.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = uploads.UploadFile(ctx, "big.csv", strings.NewReader(strings.Repeat("a", 1025)))
	assert.ErrorIs(t, err, ErrInvalid)

	res, err := uploads.UploadFile(ctx, "courts.csv", strings.NewReader(courtsCSV))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.FileURL, "http://localhost:8080/uploads/"))
	assert.Equal(t, "text/csv", res.ContentType)
	assert.Equal(t, int64(len(courtsCSV)), res.Size)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1, "rejected uploads leave nothing behind")

	ext, err := uploads.ExtractDataFromUploadedFile(ctx, res.FileURL)
	require.NoError(t, err)
	assert.Equal(t, "success", ext.Status)
	assert.Len(t, ext.Output, 2)

	broken, err := uploads.UploadFile(ctx, "broken.json", strings.NewReader(`{"courts": 1}`))
	require.NoError(t, err)
	ext, err = uploads.ExtractDataFromUploadedFile(ctx, broken.FileURL)
	require.NoError(t, err)
	assert.Equal(t, "error", ext.Status)
	assert.NotEmpty(t, ext.Details)

	_, err = uploads.ExtractDataFromUploadedFile(ctx, "http://localhost:8080/uploads/missing.csv")
	assert.ErrorIs(t, err, ErrNotFound)

	photo, err := uploads.UploadFile(ctx, "court.png", bytes.NewReader([]byte{0x89, 'P', 'N', 'G'}))
	require.NoError(t, err)
	_, err = uploads.ExtractDataFromUploadedFile(ctx, photo.FileURL)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = os.Stat(filepath.Join(dir, filepath.Base(photo.FileURL)))
	assert.NoError(t, err)
}
