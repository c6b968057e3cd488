package api

import (
	"log/slog"
	"net/http"

	"novaflix/handlers"
	"novaflix/services/accounts"
	"novaflix/services/metadata"
	"novaflix/services/sessions"
	"novaflix/services/watchlist"
	"novaflix/utils"
)

// Services bundles everything the HTTP surface depends on.
type Services struct {
	Accounts  *accounts.Service
	Sessions  *sessions.Service
	Metadata  *metadata.Service
	Watchlist *watchlist.Service
}

// NewHandler wires every route under /api. CORS wraps the router itself so
// preflight requests are answered before route matching.
func NewHandler(svc Services, corsOrigins []string, logger *slog.Logger) http.Handler {
	root, r := utils.NewRouter()
	root.Use(RecoverMiddleware)

	metadataHandler := handlers.NewMetadataHandler(svc.Metadata)
	authHandler := handlers.NewAuthHandler(svc.Accounts, svc.Sessions)
	watchlistHandler := handlers.NewWatchlistHandler(svc.Watchlist)

	r.HandleFunc("/movies/featured", metadataHandler.Featured).Methods(http.MethodGet)
	r.HandleFunc("/movies/popular", metadataHandler.Popular).Methods(http.MethodGet)
	r.HandleFunc("/movies/trending", metadataHandler.Trending).Methods(http.MethodGet)
	r.HandleFunc("/movies/search", metadataHandler.Search).Methods(http.MethodGet)
	r.HandleFunc("/movies/genre/{id:[0-9]+}", metadataHandler.ByGenre).Methods(http.MethodGet)
	r.HandleFunc("/movies/{id:[0-9]+}", metadataHandler.Details).Methods(http.MethodGet)
	r.HandleFunc("/movies/{id:[0-9]+}/trailer", metadataHandler.Trailer).Methods(http.MethodGet)
	r.HandleFunc("/genres", metadataHandler.Genres).Methods(http.MethodGet)

	r.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)

	protected := r.NewRoute().Subrouter()
	protected.Use(AccountAuthMiddleware(svc.Sessions, svc.Accounts))
	protected.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)
	protected.HandleFunc("/auth/profile", authHandler.UpdateProfile).Methods(http.MethodPut)
	protected.HandleFunc("/watchlist", watchlistHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/watchlist/", watchlistHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/watchlist/{id:[0-9]+}", watchlistHandler.Add).Methods(http.MethodPost)
	protected.HandleFunc("/watchlist/{id:[0-9]+}", watchlistHandler.Remove).Methods(http.MethodDelete)

	// Logging wraps the router so unmatched requests (404, 405) are logged too.
	var handler http.Handler = root
	if logger != nil {
		handler = RequestLogger(logger)(handler)
	}
	return utils.NewCORS(corsOrigins)(handler)
}
