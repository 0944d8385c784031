package server

import (
	"errors"
	"io"

	"puppytalk/internal/middleware"
	"puppytalk/internal/models"
	"puppytalk/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// imageField is the multipart field carrying the upload.
const imageField = "image"

// UploadImage handles POST /media/images?type=profile|post
// @Summary Upload an image
// @Description Accepts a multipart "image" field. Works without a session so signup can attach a profile picture.
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param type query string false "Folder: profile or post (default post)"
// @Param image formData file true "Image file"
// @Success 201 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Router /media/images [post]
func (s *Server) UploadImage(c *fiber.Ctx) error {
	folder := c.Query("type", models.ImageFolderPost)
	if folder != models.ImageFolderPost && folder != models.ImageFolderProfile {
		return models.NewValidationError(models.CodeInvalidUploadType)
	}

	file, err := readUpload(c)
	if err != nil {
		return err
	}

	var uploader *uint
	if uid, ok := middleware.UserID(c); ok {
		uploader = &uid
	}

	img, err := s.mediaService.Upload(c.UserContext(), file, folder, uploader)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, models.CodeImageUploaded, fiber.Map{
		"imageId": img.ID,
		"url":     img.FileURL,
	})
}

// DeleteImage handles DELETE /media/images/:id
// @Summary Delete an uploaded image
// @Tags media
// @Param id path int true "Image ID"
// @Success 204
// @Failure 404 {object} models.Envelope
// @Router /media/images/{id} [delete]
func (s *Server) DeleteImage(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	imageID, err := parseID(c, "id", models.CodeInvalidImageIDFormat)
	if err != nil {
		return err
	}
	if err := s.mediaService.Delete(c.UserContext(), imageID, userID); err != nil {
		return err
	}
	return noContent(c)
}

// readUpload returns the image part, or nil when the request has none.
func readUpload(c *fiber.Ctx) (*service.UploadFile, error) {
	fh, err := c.FormFile(imageField)
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
			return nil, nil
		}
		return nil, models.WrapError(models.CodeInvalidRequestBody, err)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &service.UploadFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}
