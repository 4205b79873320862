// Package validator checks user-selected media against the upload
// constraints before anything is read, stored, or sent over the network.
package validator

import (
	"slices"

	"github.com/pronob/libvision/internal/models"
	"github.com/pronob/libvision/internal/storage"
)

const DefaultMaxFileSize = 50 * 1024 * 1024 // 50 MiB

type Config struct {
	MaxFileSize int64
	ImageTypes  []string
	VideoTypes  []string
}

func NewConfig() Config {
	return Config{
		MaxFileSize: DefaultMaxFileSize,
		ImageTypes:  []string{"image/jpeg", "image/png", "image/webp"},
		VideoTypes:  []string{"video/mp4", "video/webm"},
	}
}

type Result struct {
	Valid  bool
	Reason string
}

// Validate applies the upload rules in order; the first failing rule wins.
// It is a pure function of the config and the file metadata.
func Validate(cfg Config, info storage.FileInfo) Result {
	if info.Size > cfg.MaxFileSize {
		return Result{Reason: "File size exceeds 50MB limit"}
	}

	if !slices.Contains(cfg.ImageTypes, info.ContentType) &&
		!slices.Contains(cfg.VideoTypes, info.ContentType) {
		return Result{Reason: "File type not supported"}
	}

	return Result{Valid: true}
}

// MediaTypeOf classifies an already-validated content type.
func MediaTypeOf(cfg Config, contentType string) models.MediaType {
	if slices.Contains(cfg.ImageTypes, contentType) {
		return models.MediaTypeImage
	}
	return models.MediaTypeVideo
}
