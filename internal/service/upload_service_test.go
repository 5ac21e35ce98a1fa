package service

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	users "github.com/canchapp/canchapp/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUploads(t *testing.T, maxBytes int64) (*UploadService, string) {
	t.Helper()
	dir := t.TempDir()
	return NewUploadService(dir, "http://localhost:8080/", maxBytes), dir
}

func TestUploadService_UploadFile(t *testing.T) {
	app := newTestApp(t)
	_, ctx := app.user(t, "owner", users.RoleOwner)
	uploads, dir := newTestUploads(t, 16)

	res, err := uploads.UploadFile(ctx, "Foto.PNG", strings.NewReader(strings.Repeat("x", 16)))
	require.NoError(t, err, "a file exactly at the limit is accepted")
	assert.Equal(t, int64(16), res.Size)
	assert.Equal(t, "image/png", res.ContentType)
	assert.True(t, strings.HasPrefix(res.FileURL, "http://localhost:8080/uploads/"))
	assert.Equal(t, ".png", path.Ext(res.FileURL))
	_, err = os.Stat(filepath.Join(dir, path.Base(res.FileURL)))
	assert.NoError(t, err)

	_, err = uploads.UploadFile(ctx, "big.png", strings.NewReader(strings.Repeat("x", 17)))
	assert.ErrorIs(t, err, ErrInvalid)
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1, "the oversized file is removed")

	testCases := []struct {
		name     string
		filename string
	}{
		{"executable", "setup.exe"},
		{"no extension", "README"},
		{"pdf", "contrato.pdf"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uploads.UploadFile(ctx, tc.filename, strings.NewReader("x"))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	_, err = uploads.UploadFile(context.Background(), "foto.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUploadService_ExtractDataFromUploadedFile(t *testing.T) {
	app := newTestApp(t)
	_, ctx := app.user(t, "owner", users.RoleOwner)
	uploads, _ := newTestUploads(t, 1<<20)

	good := "name,sport,price_per_hour,open_hour,close_hour,city\n" +
		"Cancha 1,padel,12000,8,23,Rosario\n" +
		"Cancha 2,futbol5,20000,10,24,Rosario\n"
	res, err := uploads.UploadFile(ctx, "canchas.csv", strings.NewReader(good))
	require.NoError(t, err)

	out, err := uploads.ExtractDataFromUploadedFile(ctx, res.FileURL+"?v=1")
	require.NoError(t, err)
	assert.Equal(t, "success", out.Status)
	require.Len(t, out.Output, 2)
	assert.Equal(t, "Cancha 2", out.Output[1].Name)
	assert.Equal(t, int64(20000), out.Output[1].PricePerHour)
	assert.Equal(t, 24, out.Output[1].CloseHour)

	testCases := []struct {
		name string
		body string
	}{
		{"missing columns", "name,sport\nCancha 1,padel\n"},
		{"bad number", "name,sport,price_per_hour,open_hour,close_hour\nCancha 1,padel,caro,8,23\n"},
		{"header only", "name,sport,price_per_hour,open_hour,close_hour\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bad, err := uploads.UploadFile(ctx, "bad.csv", strings.NewReader(tc.body))
			require.NoError(t, err)
			out, err := uploads.ExtractDataFromUploadedFile(ctx, bad.FileURL)
			require.NoError(t, err)
			assert.Equal(t, "error", out.Status)
			assert.NotEmpty(t, out.Details)
			assert.Empty(t, out.Output)
		})
	}

	img, err := uploads.UploadFile(ctx, "foto.jpg", strings.NewReader("x"))
	require.NoError(t, err)
	_, err = uploads.ExtractDataFromUploadedFile(ctx, img.FileURL)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = uploads.ExtractDataFromUploadedFile(ctx, "http://localhost:8080/uploads/missing.csv")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = uploads.ExtractDataFromUploadedFile(context.Background(), res.FileURL)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
