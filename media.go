package studiocms

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/northbeam/studiocms/store"
)

const (
	maxUploadSize = 10 << 20 // 10MB
	jpegQuality   = 80
)

// allowedMedia maps accepted extensions to their MIME types. Anything else
// is rejected at upload time.
var allowedMedia = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

// variantWidths are the named renditions generated for raster uploads.
var variantWidths = map[string]int{
	"thumbnail": 240,
	"medium":    800,
	"large":     1600,
}

// handleAdminUploadMedia accepts a multipart upload, validates it against
// the allow-list, stores the original plus resized variants, and records a
// media document. SVG and GIF are stored verbatim with no variants:
// resampling would rasterize the one and freeze the other.
func (a *App) handleAdminUploadMedia(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("no file provided"))
	}
	if file.Size > maxUploadSize {
		return c.JSON(http.StatusBadRequest, errorBody("file too large (max 10MB)"))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	mimeType, ok := allowedMedia[ext]
	if !ok {
		return c.JSON(http.StatusBadRequest, errorBody("unsupported file type: only jpeg, png, gif, webp, and svg are accepted"))
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	filename, err := a.uniqueFilename(store.Slugify(strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename)))+ext)
	if err != nil {
		return jsonError(c, err)
	}

	media := &store.Media{
		Filename:     filename,
		OriginalName: file.Filename,
		MimeType:     mimeType,
		Size:         int64(len(data)),
		Backend:      a.Blobs.Name(),
		UploadedBy:   "admin",
		Metadata:     map[string]string{},
	}

	ctx := c.Request().Context()
	if isResizable(ext) {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorBody("invalid image: "+err.Error()))
		}
		bounds := img.Bounds()
		media.Width = bounds.Dx()
		media.Height = bounds.Dy()

		variants := map[string]store.MediaVariant{}
		base := strings.TrimSuffix(filename, ext)
		for name, maxWidth := range variantWidths {
			resized, w, h := scaleToWidth(img, maxWidth)
			var buf bytes.Buffer
			if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: jpegQuality}); err != nil {
				return fmt.Errorf("encode %s variant: %w", name, err)
			}
			variantName := fmt.Sprintf("%s-%s.jpg", base, name)
			if err := a.Blobs.Put(ctx, variantName, buf.Bytes()); err != nil {
				return jsonError(c, err)
			}
			variants[name] = store.MediaVariant{URL: a.Blobs.URL(variantName), Width: w, Height: h}
		}
		media.Variants = variants
	}

	if err := a.Blobs.Put(ctx, filename, data); err != nil {
		return jsonError(c, err)
	}
	media.URL = a.Blobs.URL(filename)

	created, err := a.Store.CreateMedia(media)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func isResizable(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	}
	return false
}

// scaleToWidth returns img resized down to maxWidth, or the original when
// already narrower.
func scaleToWidth(img image.Image, maxWidth int) (image.Image, int, int) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxWidth {
		return img, w, h
	}
	newH := h * maxWidth / w
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst, maxWidth, newH
}

// uniqueFilename appends a counter while the candidate collides with an
// existing media document.
func (a *App) uniqueFilename(filename string) (string, error) {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	candidate := filename
	for counter := 2; ; counter++ {
		_, err := a.Store.GetMedia(candidate)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return candidate, nil
			}
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d%s", base, counter, ext)
	}
}

func (a *App) handleAdminListMedia(c echo.Context) error {
	media, err := a.Store.ListMedia()
	if err != nil {
		return jsonError(c, err)
	}
	if media == nil {
		media = []*store.Media{}
	}
	return c.JSON(http.StatusOK, media)
}

func (a *App) handleAdminUpdateMedia(c echo.Context) error {
	fields := map[string]any{}
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	media, err := a.Store.UpdateMedia(c.Param("filename"), fields)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, media)
}

// handleAdminDeleteMedia removes the blob bytes (original and variants) and
// the media document.
func (a *App) handleAdminDeleteMedia(c echo.Context) error {
	filename := c.Param("filename")
	media, err := a.Store.GetMedia(filename)
	if err != nil {
		return jsonError(c, err)
	}

	ctx := c.Request().Context()
	if err := a.Blobs.Delete(ctx, filename); err != nil {
		return jsonError(c, err)
	}
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	for name := range media.Variants {
		// Best effort: an orphaned variant is not worth failing the delete.
		_ = a.Blobs.Delete(ctx, fmt.Sprintf("%s-%s.jpg", base, name))
	}

	if err := a.Store.DeleteMedia(filename); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// handleServeMedia streams an uploaded file from whichever backend holds
// it, resolving the content type by extension.
func (a *App) handleServeMedia(c echo.Context) error {
	filename := c.Param("filename")
	data, err := a.Blobs.Get(c.Request().Context(), filename)
	if err != nil {
		return c.JSON(http.StatusNotFound, errorBody("file not found"))
	}
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return c.Blob(http.StatusOK, contentType, data)
}
