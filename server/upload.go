package server

import (
	"errors"
	"net/http"

	"github.com/rustyeddy/tradejournal/imagehost"
)

type uploadRequest struct {
	Image    string `json:"image"`
	Filename string `json:"filename"`
}

type uploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	if s.deps.Images == nil {
		writeError(w, http.StatusServiceUnavailable, "Image uploads are not configured")
		return
	}
	var req uploadRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Image == "" {
		writeError(w, http.StatusBadRequest, "No image provided")
		return
	}

	url, err := s.deps.Images.Upload(r.Context(), req.Image, req.Filename)
	var upErr *imagehost.UploadError
	switch {
	case err == nil:
	case errors.Is(err, imagehost.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "Image uploads are not configured")
		return
	case errors.As(err, &upErr):
		logFrom(r).Warn().Err(err).Int("status", upErr.Status).Msg("image upload failed")
		writeError(w, http.StatusBadGateway, "Failed to upload image")
		return
	default:
		logFrom(r).Error().Err(err).Msg("image upload failed")
		writeError(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{Success: true, URL: url})
}
