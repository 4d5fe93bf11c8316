package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/game-review-platform/internal/platform/analytics"
	"github.com/example/game-review-platform/internal/platform/api"
	"github.com/example/game-review-platform/services/reviews/internal/media"
	"github.com/example/game-review-platform/services/reviews/internal/store"
)

const maxImageBytes = 10 << 20

// UploadGameImage stores a cover image and points the game's photo at its
// public URL. A nil uploader means object storage is not configured.
func UploadGameImage(s store.GameStore, uploader media.Uploader, an *analytics.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := strings.TrimSpace(chi.URLParam(r, "game_id"))
		if gameID == "" {
			api.BadRequest(w, "MISSING_ID", "game_id is required", "", nil)
			return
		}
		if uploader == nil {
			api.WriteError(w, http.StatusServiceUnavailable, "MEDIA_DISABLED", "image uploads are not configured", "", nil)
			return
		}

		if _, err := s.GetGameByID(r.Context(), gameID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "game not found", "")
				return
			}
			api.Internal(w, "")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
		file, header, err := r.FormFile("image")
		if err != nil {
			api.BadRequest(w, "MISSING_IMAGE", "multipart field 'image' is required", "", nil)
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		key := media.ObjectKey(gameID, header.Filename)
		url, err := uploader.Upload(r.Context(), key, contentType, file)
		if err != nil {
			api.BadGateway(w, "UPLOAD_FAILED", "image upload failed", "")
			return
		}

		if err := s.UpdateGamePhoto(r.Context(), gameID, url); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "game not found", "")
				return
			}
			api.Internal(w, "")
			return
		}

		userID, _ := callerUserID(r)
		an.Publish(analytics.SubjectImageUploaded, "image_uploaded", userID, map[string]any{"game_id": gameID})
		api.WriteJSON(w, http.StatusOK, map[string]string{"photo": url})
	}
}
