package handler

import (
	"net/http"
	"time"

	"github.com/gisvideo/backend/internal/domain"
	"github.com/gisvideo/backend/internal/service"
	"github.com/go-chi/chi/v5"
)

// VideoHandler serves the catalog and the playback gate.
type VideoHandler struct {
	catalog *service.CatalogService
	access  *service.AccessService
}

func NewVideoHandler(catalog *service.CatalogService, access *service.AccessService) *VideoHandler {
	return &VideoHandler{catalog: catalog, access: access}
}

// List handles GET /api/videos.
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	videos, err := h.catalog.List(r.Context())
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, videos)
}

// Get handles GET /api/videos/{id}.
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, v)
}

// Access handles GET /api/videos/{id}/access.
func (h *VideoHandler) Access(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		unauthorized(w)
		return
	}
	videoID := chi.URLParam(r, "id")
	if _, err := h.catalog.Get(r.Context(), videoID); err != nil {
		Error(w, r, err)
		return
	}

	grant, err := h.access.Check(r.Context(), userID, videoID)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, domain.NewAccessSnapshot(userID, videoID, grant, time.Now()))
}

// Stream handles GET /api/videos/{id}/stream: the media URL is released only to entitled users.
func (h *VideoHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		unauthorized(w)
		return
	}
	video, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		Error(w, r, err)
		return
	}

	grant, err := h.access.Check(r.Context(), userID, video.ID)
	if err != nil {
		Error(w, r, err)
		return
	}
	if grant == nil {
		Error(w, r, domain.ErrPaymentRequired("payment required"))
		return
	}

	JSON(w, http.StatusOK, domain.StreamResponse{
		VideoID:   video.ID,
		VideoURL:  video.VideoURL,
		ExpiresAt: grant.ExpiresAt,
		Remaining: domain.FormatRemaining(time.Until(grant.ExpiresAt)),
	})
}
