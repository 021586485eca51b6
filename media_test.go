package studiocms

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northbeam/studiocms/store"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func uploadFile(t *testing.T, a *App, filename string, data []byte, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/media", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func TestUploadGeneratesVariants(t *testing.T) {
	a := newTestApp(t)
	cookies := login(t, a)

	rec := uploadFile(t, a, "Big Banner.png", pngBytes(t, 1000, 500), cookies...)
	require.Equal(t, http.StatusCreated, rec.Code)

	var media store.Media
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &media))
	assert.Equal(t, "big-banner.png", media.Filename)
	assert.Equal(t, "image/png", media.MimeType)
	assert.Equal(t, 1000, media.Width)
	assert.Equal(t, 500, media.Height)
	assert.Equal(t, "local", media.Backend)

	require.Len(t, media.Variants, 3)
	thumb := media.Variants["thumbnail"]
	assert.Equal(t, 240, thumb.Width)
	assert.Equal(t, 120, thumb.Height)
	// Narrower than the source: not upscaled.
	large := media.Variants["large"]
	assert.Equal(t, 1000, large.Width)

	// The original and a variant are both fetchable.
	rec = doRequest(t, a, http.MethodGet, "/media/big-banner.png", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = doRequest(t, a, http.MethodGet, "/media/big-banner-thumbnail.jpg", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	a := newTestApp(t)
	cookies := login(t, a)

	rec := uploadFile(t, a, "script.exe", []byte("MZ"), cookies...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadSVGStoredVerbatim(t *testing.T) {
	a := newTestApp(t)
	cookies := login(t, a)

	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`)
	rec := uploadFile(t, a, "logo.svg", svg, cookies...)
	require.Equal(t, http.StatusCreated, rec.Code)

	var media store.Media
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &media))
	assert.Empty(t, media.Variants)

	rec = doRequest(t, a, http.MethodGet, "/media/logo.svg", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, svg, rec.Body.Bytes())
}

func TestUploadCollisionGetsCounterSuffix(t *testing.T) {
	a := newTestApp(t)
	cookies := login(t, a)

	data := pngBytes(t, 10, 10)
	rec := uploadFile(t, a, "photo.png", data, cookies...)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = uploadFile(t, a, "photo.png", data, cookies...)
	require.Equal(t, http.StatusCreated, rec.Code)

	var media store.Media
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &media))
	assert.Equal(t, "photo-2.png", media.Filename)
}

func TestDeleteMediaRemovesBlobAndDocument(t *testing.T) {
	a := newTestApp(t)
	cookies := login(t, a)

	rec := uploadFile(t, a, "gone.png", pngBytes(t, 10, 10), cookies...)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, a, http.MethodDelete, "/api/admin/media/gone.png", nil, cookies...)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, a, http.MethodGet, "/media/gone.png", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, err := a.Store.GetMedia("gone.png")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUploadRequiresSession(t *testing.T) {
	a := newTestApp(t)

	rec := uploadFile(t, a, "photo.png", pngBytes(t, 10, 10))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
