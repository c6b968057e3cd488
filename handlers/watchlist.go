package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"novaflix/internal/auth"
	"novaflix/models"
	"novaflix/services/watchlist"
)

type watchlistService interface {
	List(ctx context.Context, accountID string) ([]models.CatalogItem, error)
	Add(ctx context.Context, accountID string, movieID int64) error
	Remove(ctx context.Context, accountID string, movieID int64) error
}

var _ watchlistService = (*watchlist.Service)(nil)

type WatchlistHandler struct {
	Service watchlistService
}

func NewWatchlistHandler(service watchlistService) *WatchlistHandler {
	return &WatchlistHandler{Service: service}
}

func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.requireAccount(w, r)
	if !ok {
		return
	}

	items, err := h.Service.List(r.Context(), accountID)
	if err != nil {
		h.writeServiceError(w, accountID, err)
		return
	}
	writeJSON(w, http.StatusOK, models.WatchlistResponse{Watchlist: items, Count: len(items)})
}

func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.requireAccount(w, r)
	if !ok {
		return
	}
	movieID, ok := parseInt64Var(mux.Vars(r), "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid movie id")
		return
	}

	if err := h.Service.Add(r.Context(), accountID, movieID); err != nil {
		h.writeServiceError(w, accountID, err)
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Movie added to watchlist"})
}

func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.requireAccount(w, r)
	if !ok {
		return
	}
	movieID, ok := parseInt64Var(mux.Vars(r), "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid movie id")
		return
	}

	if err := h.Service.Remove(r.Context(), accountID, movieID); err != nil {
		h.writeServiceError(w, accountID, err)
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Movie removed from watchlist"})
}

func (h *WatchlistHandler) requireAccount(w http.ResponseWriter, r *http.Request) (string, bool) {
	accountID := auth.GetAccountID(r)
	if accountID == "" {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return "", false
	}
	return accountID, true
}

func (h *WatchlistHandler) writeServiceError(w http.ResponseWriter, accountID string, err error) {
	switch {
	case errors.Is(err, watchlist.ErrAlreadyInWatchlist):
		writeError(w, http.StatusBadRequest, "Movie already in watchlist")
	case errors.Is(err, watchlist.ErrTitleNotFound):
		writeError(w, http.StatusNotFound, "Movie not found")
	case errors.Is(err, watchlist.ErrNotInWatchlist):
		writeError(w, http.StatusNotFound, "Movie not in watchlist")
	case errors.Is(err, watchlist.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	default:
		log.Printf("[watchlist] request failed for %s: %v", accountID, err)
		writeError(w, http.StatusInternalServerError, "watchlist unavailable")
	}
}
