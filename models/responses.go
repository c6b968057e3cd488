package models

// AuthResponse is returned by register and login.
type AuthResponse struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	User        Account `json:"user"`
}

// MessageResponse carries a human readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// WatchlistResponse is the hydrated watchlist view.
type WatchlistResponse struct {
	Watchlist []CatalogItem `json:"watchlist"`
	Count     int           `json:"count"`
}

// TrailerResponse wraps a single resolved trailer URL.
type TrailerResponse struct {
	TrailerURL string `json:"trailer_url"`
}
