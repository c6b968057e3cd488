package models

const (
	// MediaTypeMovie tags titles served from the movie vocabulary.
	MediaTypeMovie = "movie"
	// MediaTypeTV tags titles served from the tv vocabulary.
	MediaTypeTV = "tv"
)

// Genre is a catalog genre. Movie and tv vocabularies share the id space.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CatalogItem is the normalized title summary returned to clients. It is built
// fresh for every request and never persisted.
type CatalogItem struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  *string `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	GenreIDs     []int64 `json:"genre_ids"`
	MediaType    string  `json:"media_type"`
	TrailerURL   *string `json:"trailer_url"`
}

// CatalogItemDetail extends CatalogItem with the fields only the movie detail
// endpoint provides. GenreIDs always mirrors the ids in Genres.
type CatalogItemDetail struct {
	CatalogItem
	Genres  []Genre `json:"genres"`
	Runtime *int    `json:"runtime"`
	Status  *string `json:"status"`
	Tagline *string `json:"tagline"`
	Budget  *int64  `json:"budget"`
	Revenue *int64  `json:"revenue"`
}

// Summary drops the detail-only fields.
func (d CatalogItemDetail) Summary() CatalogItem {
	return d.CatalogItem
}
