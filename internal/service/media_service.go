package service

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"puppytalk/internal/config"
	"puppytalk/internal/models"
	"puppytalk/internal/repository"
	"puppytalk/internal/storage"
	"puppytalk/internal/validation"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const DefaultMaxUploadSize = 10 * 1024 * 1024

var DefaultAllowedImageTypes = []string{"image/jpeg", "image/jpg", "image/png"}

// UploadFile is one file taken from a multipart form.
type UploadFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type MediaService struct {
	images  repository.ImageRepository
	store   storage.Storage
	allowed map[string]struct{}
	maxSize int64
	apiBase string
}

func NewMediaService(images repository.ImageRepository, store storage.Storage, cfg *config.Config) *MediaService {
	types := DefaultAllowedImageTypes
	maxSize := int64(DefaultMaxUploadSize)
	var apiBase string
	if cfg != nil {
		apiBase = cfg.BEAPIURL
		if list := cfg.AllowedImageTypeList(); len(list) > 0 {
			types = list
		}
		if cfg.MaxFileSize > 0 {
			maxSize = cfg.MaxFileSize
		}
	}
	allowed := make(map[string]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}
	return &MediaService{images: images, store: store, allowed: allowed, maxSize: maxSize, apiBase: apiBase}
}

// Upload validates the file, stores it under {folder}/{uuid}.{ext} and
// records it. uploaderID is nil for uploads made before signup. Unknown
// folders fall back to "post".
func (s *MediaService) Upload(ctx context.Context, file *UploadFile, folder string, uploaderID *uint) (*models.Image, error) {
	if file == nil {
		return nil, models.NewValidationError(models.CodeMissingRequiredField)
	}
	contentType := normalizeContentType(file.ContentType)
	if _, ok := s.allowed[contentType]; !ok {
		return nil, models.NewValidationError(models.CodeInvalidFileType)
	}
	if len(file.Data) == 0 {
		return nil, models.NewValidationError(models.CodeInvalidImageFile)
	}
	if int64(len(file.Data)) > s.maxSize {
		return nil, models.NewValidationError(models.CodeFileSizeExceeded)
	}
	if !looksLikeImage(file.Data) {
		return nil, models.NewValidationError(models.CodeInvalidImageFile)
	}

	if folder != models.ImageFolderProfile {
		folder = models.ImageFolderPost
	}
	key := folder + "/" + strings.ReplaceAll(uuid.NewString(), "-", "") + "." + fileExtension(file.Filename, contentType)

	url, err := s.store.Put(ctx, key, file.Data, contentType)
	if err != nil {
		return nil, models.WrapError(models.CodeStorageError, err)
	}
	if err := validation.ValidateURL(url, s.apiBase); err != nil {
		s.discard(ctx, key)
		return nil, err
	}

	img := &models.Image{
		FileKey:     key,
		FileURL:     url,
		ContentType: contentType,
		Size:        int64(len(file.Data)),
		UploaderID:  uploaderID,
	}
	if err := s.images.Create(ctx, img); err != nil {
		s.discard(ctx, key)
		return nil, err
	}
	return img, nil
}

// discard removes an object that will not be recorded.
func (s *MediaService) discard(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "orphaned upload left in storage", "key", key, "error", err)
	}
}

// Delete soft-deletes an image uploaded by userID. Someone else's image is
// reported as IMAGE_NOT_FOUND.
func (s *MediaService) Delete(ctx context.Context, imageID, userID uint) error {
	img, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return err
	}
	if img.UploaderID == nil || *img.UploaderID != userID {
		return models.NewNotFoundError(models.CodeImageNotFound)
	}
	return s.images.Delete(ctx, imageID)
}

func normalizeContentType(raw string) string {
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return mediaType
}

// looksLikeImage sniffs the bytes and checks that a registered decoder can
// read the header.
func looksLikeImage(data []byte) bool {
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return false
	}
	_, _, err := image.DecodeConfig(bytes.NewReader(data))
	return err == nil
}

// fileExtension keeps a short alphanumeric extension from the client's file
// name, otherwise derives one from the content type.
func fileExtension(filename, contentType string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext != "" && len(ext) <= 5 && isAlnum(ext) {
		return ext
	}
	switch {
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "webp"):
		return "webp"
	case strings.Contains(contentType, "gif"):
		return "gif"
	default:
		return "jpg"
	}
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
