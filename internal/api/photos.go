package api

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/minirent/internal/blob"
	"github.com/erazemk/minirent/internal/imaging"
	"github.com/erazemk/minirent/internal/model"
	"github.com/erazemk/minirent/internal/store"
)

// PhotosHandler handles property photo endpoints.
type PhotosHandler struct {
	DB    *sql.DB
	Blobs blob.Store
}

// Upload handles POST /api/properties/{id}/photos. The multipart field is
// "photo"; the image is downscaled and stored as JPEG.
func (h *PhotosHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	claims := GetClaims(r.Context())
	if _, err := managedProperty(r.Context(), h.DB, id, claims.UserID, claims.Role); err != nil {
		writeError(w, r, err)
		return
	}

	// Multipart framing needs a little room on top of the image itself.
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if err != nil {
		switch {
		case errors.Is(err, imaging.ErrTooLarge):
			jsonError(w, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, imaging.ErrUnsupported):
			jsonError(w, http.StatusUnsupportedMediaType, err.Error())
		default:
			writeError(w, r, err)
		}
		return
	}

	key := blob.PhotoKey(id)
	if err := h.Blobs.Put(r.Context(), key, photo.Data, photo.MIME); err != nil {
		writeError(w, r, err)
		return
	}

	img, err := store.CreatePropertyImage(r.Context(), h.DB, &model.PropertyImage{
		PropertyID: id,
		BlobKey:    key,
		Mime:       photo.MIME,
		Size:       int64(len(photo.Data)),
		Width:      photo.Width,
		Height:     photo.Height,
	})
	if err != nil {
		if derr := h.Blobs.Delete(r.Context(), key); derr != nil {
			slog.Warn("orphaned photo blob", "key", key, "error", derr)
		}
		writeError(w, r, err)
		return
	}

	slog.Info("photo uploaded", "user", claims.Username, "property", id, "photo", img.ID,
		"driver", string(h.Blobs.Driver()), "width", img.Width, "height", img.Height)
	jsonResponse(w, http.StatusCreated, img)
}

// List handles GET /api/properties/{id}/photos.
func (h *PhotosHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := store.GetProperty(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if p == nil {
		writeError(w, r, fmt.Errorf("property %d: %w", id, model.ErrNotFound))
		return
	}

	images, err := store.ListPropertyImages(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(images))
}

// Get handles GET /api/properties/{id}/photos/{photoID}, serving the bytes.
func (h *PhotosHandler) Get(w http.ResponseWriter, r *http.Request) {
	img, ok := h.load(w, r)
	if !ok {
		return
	}

	info, rc, err := h.Blobs.Get(r.Context(), img.BlobKey)
	if errors.Is(err, blob.ErrNotFound) {
		writeError(w, r, fmt.Errorf("photo %d: %w", img.ID, model.ErrNotFound))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = img.Mime
	}
	w.Header().Set("Content-Type", contentType)
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("streaming photo", "photo", img.ID, "error", err)
	}
}

// Delete handles DELETE /api/properties/{id}/photos/{photoID}.
func (h *PhotosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	img, ok := h.load(w, r)
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	if _, err := managedProperty(r.Context(), h.DB, img.PropertyID, claims.UserID, claims.Role); err != nil {
		writeError(w, r, err)
		return
	}

	if err := store.DeletePropertyImage(r.Context(), h.DB, img.ID); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Blobs.Delete(r.Context(), img.BlobKey); err != nil {
		slog.Warn("orphaned photo blob", "key", img.BlobKey, "error", err)
	}

	slog.Info("photo deleted", "user", claims.Username, "property", img.PropertyID, "photo", img.ID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo deleted"})
}

// load reads the photo named by the path, checking that it belongs to the
// named live property.
func (h *PhotosHandler) load(w http.ResponseWriter, r *http.Request) (*model.PropertyImage, bool) {
	propertyID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	photoID, err := pathID(r, "photoID")
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}

	p, err := store.GetProperty(r.Context(), h.DB, propertyID)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	img, err := store.GetPropertyImage(r.Context(), h.DB, photoID)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	if p == nil || img == nil || img.PropertyID != propertyID {
		writeError(w, r, fmt.Errorf("photo %d: %w", photoID, model.ErrNotFound))
		return nil, false
	}
	return img, true
}
