package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"novaflix/handlers"
	"novaflix/models"
	"novaflix/services/watchlist"
)

type fakeWatchlistService struct {
	items     []models.CatalogItem
	listErr   error
	addErr    error
	removeErr error

	lastAccountID string
	lastMovieID   int64
}

func (f *fakeWatchlistService) List(_ context.Context, accountID string) ([]models.CatalogItem, error) {
	f.lastAccountID = accountID
	return f.items, f.listErr
}

func (f *fakeWatchlistService) Add(_ context.Context, accountID string, movieID int64) error {
	f.lastAccountID = accountID
	f.lastMovieID = movieID
	return f.addErr
}

func (f *fakeWatchlistService) Remove(_ context.Context, accountID string, movieID int64) error {
	f.lastAccountID = accountID
	f.lastMovieID = movieID
	return f.removeErr
}

func movieRequest(method, id string) *http.Request {
	req := httptest.NewRequest(method, "/api/watchlist/"+id, nil)
	req = mux.SetURLVars(req, map[string]string{"id": id})
	return withAccount(req, testAccount())
}

func TestWatchlistList(t *testing.T) {
	fake := &fakeWatchlistService{items: sampleItems()}
	handler := handlers.NewWatchlistHandler(fake)

	req := withAccount(httptest.NewRequest(http.MethodGet, "/api/watchlist", nil), testAccount())
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if fake.lastAccountID != "acc-1" {
		t.Fatalf("expected account acc-1, got %q", fake.lastAccountID)
	}
	var resp models.WatchlistResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 || len(resp.Watchlist) != 2 || resp.Watchlist[0].ID != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestWatchlistRequiresAccount(t *testing.T) {
	handler := handlers.NewWatchlistHandler(&fakeWatchlistService{})
	rec := httptest.NewRecorder()

	handler.List(rec, httptest.NewRequest(http.MethodGet, "/api/watchlist", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestWatchlistAdd(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKey    string
		wantMsg    string
	}{
		{"added", nil, http.StatusOK, "message", "Movie added to watchlist"},
		{"duplicate", watchlist.ErrAlreadyInWatchlist, http.StatusBadRequest, "error", "Movie already in watchlist"},
		{"unknown title", watchlist.ErrTitleNotFound, http.StatusNotFound, "error", "Movie not found"},
		{"account gone", watchlist.ErrAccountNotFound, http.StatusNotFound, "error", "User not found"},
		{"store failure", errors.New("disk full"), http.StatusInternalServerError, "error", "watchlist unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeWatchlistService{addErr: tt.err}
			rec := httptest.NewRecorder()

			handlers.NewWatchlistHandler(fake).Add(rec, movieRequest(http.MethodPost, "603"))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if fake.lastMovieID != 603 {
				t.Fatalf("expected movie 603, got %d", fake.lastMovieID)
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if body[tt.wantKey] != tt.wantMsg {
				t.Fatalf("expected %s %q, got %v", tt.wantKey, tt.wantMsg, body)
			}
		})
	}
}

func TestWatchlistRemove(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKey    string
		wantMsg    string
	}{
		{"removed", nil, http.StatusOK, "message", "Movie removed from watchlist"},
		{"absent", watchlist.ErrNotInWatchlist, http.StatusNotFound, "error", "Movie not in watchlist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeWatchlistService{removeErr: tt.err}
			rec := httptest.NewRecorder()

			handlers.NewWatchlistHandler(fake).Remove(rec, movieRequest(http.MethodDelete, "42"))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if fake.lastMovieID != 42 {
				t.Fatalf("expected movie 42, got %d", fake.lastMovieID)
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if body[tt.wantKey] != tt.wantMsg {
				t.Fatalf("expected %s %q, got %v", tt.wantKey, tt.wantMsg, body)
			}
		})
	}
}

func TestWatchlistInvalidID(t *testing.T) {
	fake := &fakeWatchlistService{}
	rec := httptest.NewRecorder()

	handlers.NewWatchlistHandler(fake).Add(rec, movieRequest(http.MethodPost, "abc"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if fake.lastAccountID != "" {
		t.Fatal("service should not be called")
	}
}
