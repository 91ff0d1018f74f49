// Package storage is the file-upload service behind listing images.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrTooLarge    = errors.New("file too large")
	ErrNotAnImage  = errors.New("only jpeg, png, webp and gif images are accepted")
	ErrEmptyUpload = errors.New("empty file")
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Object is a validated upload ready to be stored.
type Object struct {
	Key         string
	ContentType string
	Body        []byte
}

// Uploader stores an object and returns its public URL.
type Uploader interface {
	Put(ctx context.Context, obj Object) (string, error)
}

// Result is what upload(file) returns to the client.
type Result struct {
	FileURL string `json:"file_url"`
}

// Service validates files before handing them to an Uploader.
type Service struct {
	up       Uploader
	maxBytes int64
	prefix   string
}

func NewService(up Uploader, maxBytes int64) *Service {
	return &Service{up: up, maxBytes: maxBytes, prefix: "equipment"}
}

// Upload reads at most maxBytes from r, sniffs the type and stores it under a fresh key.
func (s *Service) Upload(ctx context.Context, r io.Reader) (Result, error) {
	body, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return Result{}, fmt.Errorf("read upload: %w", err)
	}
	if len(body) == 0 {
		return Result{}, ErrEmptyUpload
	}
	if int64(len(body)) > s.maxBytes {
		return Result{}, ErrTooLarge
	}
	mt := mimetype.Detect(body)
	ct := strings.SplitN(mt.String(), ";", 2)[0]
	if !allowedTypes[ct] {
		return Result{}, ErrNotAnImage
	}
	obj := Object{
		Key:         fmt.Sprintf("%s/%s%s", s.prefix, uuid.NewString(), mt.Extension()),
		ContentType: ct,
		Body:        body,
	}
	url, err := s.up.Put(ctx, obj)
	if err != nil {
		return Result{}, fmt.Errorf("store %s: %w", obj.Key, err)
	}
	return Result{FileURL: url}, nil
}

func reader(b []byte) io.ReadSeeker { return bytes.NewReader(b) }
