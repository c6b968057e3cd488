package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"novaflix/models"
	metadatapkg "novaflix/services/metadata"
)

type metadataService interface {
	Featured(context.Context) (models.CatalogItem, bool, error)
	Popular(context.Context, int) ([]models.CatalogItem, error)
	Trending(context.Context, string, string) ([]models.CatalogItem, error)
	ByGenre(context.Context, int64, int) ([]models.CatalogItem, error)
	Search(context.Context, string, int) ([]models.CatalogItem, error)
	Details(context.Context, int64) (*models.CatalogItemDetail, bool)
	Trailer(context.Context, int64) (string, bool)
	Genres(context.Context) []models.Genre
}

var _ metadataService = (*metadatapkg.Service)(nil)

// MetadataHandler serves the catalog routes.
type MetadataHandler struct {
	Service metadataService
}

func NewMetadataHandler(s metadataService) *MetadataHandler {
	return &MetadataHandler{Service: s}
}

func (h *MetadataHandler) Featured(w http.ResponseWriter, r *http.Request) {
	item, ok, err := h.Service.Featured(r.Context())
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "No featured movie found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *MetadataHandler) Popular(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(w, r)
	if !ok {
		return
	}
	items, err := h.Service.Popular(r.Context(), page)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *MetadataHandler) Trending(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mediaType := q.Get("media_type")
	if mediaType == "" {
		mediaType = metadatapkg.TrendingAll
	}
	switch mediaType {
	case metadatapkg.TrendingAll, models.MediaTypeMovie, models.MediaTypeTV:
	default:
		writeError(w, http.StatusBadRequest, "media_type must be one of all, movie, tv")
		return
	}

	window := q.Get("time_window")
	if window == "" {
		window = metadatapkg.TrendingDay
	}
	if window != metadatapkg.TrendingDay && window != metadatapkg.TrendingWeek {
		writeError(w, http.StatusBadRequest, "time_window must be one of day, week")
		return
	}

	items, err := h.Service.Trending(r.Context(), mediaType, window)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *MetadataHandler) ByGenre(w http.ResponseWriter, r *http.Request) {
	genreID, ok := parseInt64Var(mux.Vars(r), "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid genre id")
		return
	}
	page, ok := parsePage(w, r)
	if !ok {
		return
	}
	items, err := h.Service.ByGenre(r.Context(), genreID, page)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *MetadataHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	page, ok := parsePage(w, r)
	if !ok {
		return
	}
	items, err := h.Service.Search(r.Context(), query, page)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *MetadataHandler) Details(w http.ResponseWriter, r *http.Request) {
	movieID, ok := parseInt64Var(mux.Vars(r), "id")
	if !ok {
		writeError(w, http.StatusNotFound, "Movie not found")
		return
	}
	detail, ok := h.Service.Details(r.Context(), movieID)
	if !ok {
		writeError(w, http.StatusNotFound, "Movie not found")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *MetadataHandler) Trailer(w http.ResponseWriter, r *http.Request) {
	movieID, ok := parseInt64Var(mux.Vars(r), "id")
	if !ok {
		writeError(w, http.StatusNotFound, "Trailer not found")
		return
	}
	url, ok := h.Service.Trailer(r.Context(), movieID)
	if !ok {
		writeError(w, http.StatusNotFound, "Trailer not found")
		return
	}
	writeJSON(w, http.StatusOK, models.TrailerResponse{TrailerURL: url})
}

// Genres never fails; an unavailable upstream yields an empty list.
func (h *MetadataHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres := h.Service.Genres(r.Context())
	if genres == nil {
		genres = []models.Genre{}
	}
	writeJSON(w, http.StatusOK, genres)
}

func (h *MetadataHandler) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("[metadata] %s %s failed: %v", r.Method, r.URL.Path, err)
	writeError(w, http.StatusServiceUnavailable, err.Error())
}

// parsePage reads ?page=, defaulting to 1. It writes a 400 and returns false
// when the value is not an integer within the upstream's page range.
func parsePage(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("page"))
	if raw == "" {
		return metadatapkg.MinPage, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < metadatapkg.MinPage || page > metadatapkg.MaxPage {
		writeError(w, http.StatusBadRequest, "page must be an integer between 1 and 500")
		return 0, false
	}
	return page, true
}
