package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/canchapp/canchapp/internal/media"
	"github.com/google/uuid"
)

// UploadService keeps user files on local disk and serves them under /uploads/.
type UploadService struct {
	dir      string
	baseURL  string
	maxBytes int64
}

func NewUploadService(dir, baseURL string, maxBytes int64) *UploadService {
	return &UploadService{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), maxBytes: maxBytes}
}

type UploadResult struct {
	FileURL     string `json:"file_url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Extraction reports the court rows found in an uploaded file. Status is "success" or "error".
type Extraction struct {
	Status  string       `json:"status"`
	Output  []CourtInput `json:"output,omitempty"`
	Details string       `json:"details,omitempty"`
}

// UploadFile stores an image or a data file under a random name.
func (s *UploadService) UploadFile(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	if _, err := currentUser(ctx); err != nil {
		return nil, err
	}
	info := media.Classify(filename)
	if info.Kind == media.KindUnknown {
		return nil, invalidf("unsupported file type %q", info.Ext)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	name := uuid.NewString() + info.Ext
	dst := filepath.Join(s.dir, name)
	f, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	// one extra byte tells an oversized file apart from one exactly at the limit
	n, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if err == nil && n > s.maxBytes {
		err = invalidf("file is larger than %d bytes", s.maxBytes)
	}
	if err != nil {
		f.Close()
		os.Remove(dst)
		if errors.Is(err, ErrInvalid) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &UploadResult{
		FileURL:     s.baseURL + "/uploads/" + name,
		ContentType: info.ContentType,
		Size:        n,
	}, nil
}

// ExtractDataFromUploadedFile parses courts out of a file returned by UploadFile.
// Files that cannot be parsed produce an "error" extraction rather than an error.
func (s *UploadService) ExtractDataFromUploadedFile(ctx context.Context, fileURL string) (*Extraction, error) {
	if _, err := currentUser(ctx); err != nil {
		return nil, err
	}
	if idx := strings.IndexAny(fileURL, "?#"); idx != -1 {
		fileURL = fileURL[:idx]
	}
	name := path.Base(fileURL)
	info := media.Classify(name)
	if !info.IsData() {
		return nil, invalidf("only .csv and .json files can be extracted")
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("file %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	rows, err := ParseCourts(info.Kind, data)
	if err != nil {
		return &Extraction{Status: "error", Details: err.Error()}, nil
	}
	return &Extraction{Status: "success", Output: rows}, nil
}
