package utils

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// APIPrefix is where every route is mounted.
const APIPrefix = "/api"

// NewRouter constructs the base mux router with the root and health routes.
// Feature routes are attached to the returned subrouter.
func NewRouter() (*mux.Router, *mux.Router) {
	r := mux.NewRouter()
	api := r.PathPrefix(APIPrefix).Subrouter()

	root := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Novaflix API is running!"})
	}
	r.HandleFunc(APIPrefix, root).Methods(http.MethodGet)
	api.HandleFunc("/", root).Methods(http.MethodGet)

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status":           "healthy",
			"message":          "Novaflix API is operational",
			"tmdb_integration": "active",
		})
	}).Methods(http.MethodGet)
	return r, api
}
