package repository

import (
	"context"

	"puppytalk/internal/models"

	"gorm.io/gorm"
)

// ImageRepository defines storage operations for uploaded image metadata.
type ImageRepository interface {
	Create(ctx context.Context, image *models.Image) error
	GetByID(ctx context.Context, id uint) (*models.Image, error)
	// FindByIDs returns the live images among ids, in ids order. Missing ids
	// are skipped.
	FindByIDs(ctx context.Context, ids []uint) ([]models.Image, error)
	Delete(ctx context.Context, id uint) error
}

type imageRepository struct {
	base
}

// NewImageRepository returns a repository implementation for image metadata.
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{base: newBase(db, "images")}
}

func (r *imageRepository) Create(ctx context.Context, image *models.Image) (err error) {
	ctx, done := r.begin(ctx, "create")
	defer done(&err)

	if err := r.conn(ctx).Create(image).Error; err != nil {
		return dbError(err)
	}
	r.log.LogCreate(ctx, map[string]any{"image_id": image.ID, "key": image.FileKey, "size": image.Size})
	return nil
}

func (r *imageRepository) GetByID(ctx context.Context, id uint) (_ *models.Image, err error) {
	ctx, done := r.begin(ctx, "get_by_id")
	defer done(&err)

	var image models.Image
	if err := r.conn(ctx).First(&image, id).Error; err != nil {
		return nil, notFoundOr(err, models.CodeImageNotFound)
	}
	return &image, nil
}

func (r *imageRepository) FindByIDs(ctx context.Context, ids []uint) (_ []models.Image, err error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, done := r.begin(ctx, "find_by_ids")
	defer done(&err)

	var found []models.Image
	if err := r.conn(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, dbError(err)
	}
	byID := make(map[uint]models.Image, len(found))
	for _, img := range found {
		byID[img.ID] = img
	}
	out := make([]models.Image, 0, len(ids))
	for _, id := range ids {
		if img, ok := byID[id]; ok {
			out = append(out, img)
		}
	}
	return out, nil
}

func (r *imageRepository) Delete(ctx context.Context, id uint) (err error) {
	ctx, done := r.begin(ctx, "delete")
	defer done(&err)

	res := r.conn(ctx).Delete(&models.Image{}, id)
	if res.Error != nil {
		return dbError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(models.CodeImageNotFound)
	}
	r.log.LogDelete(ctx, map[string]any{"image_id": id})
	return nil
}

// softDeleteOrphanImages soft-deletes the images in ids that no live post
// attachment or profile still references.
func softDeleteOrphanImages(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Where("id IN ?", ids).
		Where("NOT EXISTS (SELECT 1 FROM post_images pi WHERE pi.image_id = images.id AND pi.deleted_at IS NULL)").
		Where("NOT EXISTS (SELECT 1 FROM users u WHERE u.profile_image_id = images.id AND u.deleted_at IS NULL)").
		Delete(&models.Image{}).Error
}
