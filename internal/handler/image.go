package handler

import (
	"database/sql"
	"encoding/base64"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenwork/greenwork-api/internal/repository"
)

// maxImageBytes caps a single uploaded image (8 MiB raw).
const maxImageBytes = 8 << 20

// ImageHandler implements the /api/images endpoints.  Images arrive
// as multipart uploads and are stored base64-encoded in the database.
type ImageHandler struct {
	Images ImageStore
}

func NewImageHandler(images ImageStore) *ImageHandler {
	return &ImageHandler{Images: images}
}

// List handles GET /api/images.  Payloads are omitted; fetch a single
// image by name to get its data.
func (h *ImageHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	images, err := h.Images.List(ctx)
	if err != nil {
		return serverError(c, "Failed to load images")
	}
	return c.JSON(http.StatusOK, images)
}

// Get handles GET /api/images/:name, payload included.
func (h *ImageHandler) Get(c echo.Context) error {
	name := c.Param("name")
	if name == "" {
		return badRequest(c, "Image name is required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	img, err := h.Images.GetByName(ctx, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "Image not found")
		}
		return serverError(c, "Failed to load image")
	}
	return c.JSON(http.StatusOK, img)
}

// Upload handles POST /api/images.  The multipart form carries the
// file under "image" and an optional "name"; without an explicit name
// the client filename is used.  A name with no file stores a
// placeholder row, matching how profile image slots are reserved
// before the upload finishes.
func (h *ImageHandler) Upload(c echo.Context) error {
	name := c.FormValue("name")
	var encoded string

	if file, err := c.FormFile("image"); err == nil {
		if file.Size > maxImageBytes {
			return badRequest(c, "Image is too large")
		}
		if name == "" {
			name = file.Filename
		}
		src, err := file.Open()
		if err != nil {
			return serverError(c, "Failed to read image")
		}
		defer src.Close()
		raw, err := io.ReadAll(io.LimitReader(src, maxImageBytes))
		if err != nil {
			return serverError(c, "Failed to read image")
		}
		encoded = base64.StdEncoding.EncodeToString(raw)
	}

	if name == "" {
		return badRequest(c, "No image or name provided")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Images.Create(ctx, name, encoded)
	if err != nil {
		return serverError(c, "Failed to create image")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Image created successfully",
		"image": echo.Map{
			"id_image":  id,
			"name":      name,
			"imagescol": encoded,
		},
	})
}

// Update handles PUT /api/images/:id.  The payload comes either from
// a multipart "image" file or from an "imageData" form field already
// base64 encoded; one of the two is required.  The name is replaced
// only when a "name" field is present.
func (h *ImageHandler) Update(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	img, err := h.Images.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "Image not found")
		}
		return serverError(c, "Failed to load image")
	}

	var p repository.ImagePatch
	if file, err := c.FormFile("image"); err == nil {
		if file.Size > maxImageBytes {
			return badRequest(c, "Image is too large")
		}
		src, err := file.Open()
		if err != nil {
			return serverError(c, "Failed to read image")
		}
		defer src.Close()
		raw, err := io.ReadAll(io.LimitReader(src, maxImageBytes))
		if err != nil {
			return serverError(c, "Failed to read image")
		}
		encoded := base64.StdEncoding.EncodeToString(raw)
		p.Data = &encoded
	} else if encoded := c.FormValue("imageData"); encoded != "" {
		// Already base64 from the client; stored verbatim.
		p.Data = &encoded
	} else {
		return badRequest(c, "No image provided to update")
	}

	if name := c.FormValue("name"); name != "" {
		p.Name = &name
	}

	if err := h.Images.Update(ctx, id, p); err != nil {
		return serverError(c, "Failed to update image")
	}

	name := img.Name
	if p.Name != nil {
		name = *p.Name
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Image updated successfully",
		"image": echo.Map{
			"id_image":  id,
			"name":      name,
			"imagescol": *p.Data,
		},
	})
}

// Data handles GET /api/images/data/:id, returning the payload as a
// data URL so browsers can render it directly.  The MIME type is
// sniffed from a decoded sample of the payload and falls back to
// image/jpeg when the sample cannot be decoded.
func (h *ImageHandler) Data(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	img, err := h.Images.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "Image not found")
		}
		return serverError(c, "Failed to load image")
	}

	mime := sniffImageMIME(img.Data)
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    "data:" + mime + ";base64," + img.Data,
		"mime":    mime,
		"name":    img.Name,
		"id":      img.IDImage,
	})
}

// sniffImageMIME detects the content type from the leading bytes of a
// base64 payload.
func sniffImageMIME(encoded string) string {
	const sample = 512
	head := encoded
	if len(head) > sample {
		head = head[:sample]
		// Trim to a whole base64 quantum so the prefix decodes.
		head = head[:len(head)-len(head)%4]
	}
	raw, err := base64.StdEncoding.DecodeString(head)
	if err != nil || len(raw) == 0 {
		return "image/jpeg"
	}
	return http.DetectContentType(raw)
}

// Delete handles DELETE /api/images/:id.
func (h *ImageHandler) Delete(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Images.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "Image not found")
		}
		return serverError(c, "Failed to delete image")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Image deleted successfully"})
}
