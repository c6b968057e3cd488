package metadata

import (
	"context"
	"log"
	"net/http"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/text/unicode/norm"

	"novaflix/config"
	"novaflix/models"
)

// Trending filters accepted by the upstream trending endpoint.
const (
	TrendingAll   = "all"
	TrendingDay   = "day"
	TrendingWeek  = "week"
	MinPage       = 1
	MaxPage       = 500
	defaultWorker = 8
)

// Service composes the upstream client and the trailer resolver into the
// catalog operations served to clients. Nothing is cached: every call goes
// upstream.
type Service struct {
	tmdb    *tmdbClient
	workers int
}

// NewService creates a catalog service. httpc may be nil, in which case a
// client with the configured timeout is used.
func NewService(settings config.TMDBSettings, workers int, httpc *http.Client) *Service {
	if workers <= 0 {
		workers = defaultWorker
	}
	return &Service{
		tmdb:    newTMDBClient(settings, httpc),
		workers: workers,
	}
}

// Popular returns one page of popular movies.
func (s *Service) Popular(ctx context.Context, page int) ([]models.CatalogItem, error) {
	items, err := s.popular(ctx, page)
	if err != nil {
		return nil, err
	}
	s.enrichTrailers(ctx, items)
	return items, nil
}

func (s *Service) popular(ctx context.Context, page int) ([]models.CatalogItem, error) {
	resp, err := s.tmdb.popularMovies(ctx, page)
	if err != nil {
		return nil, err
	}
	return s.mapMovies(resp.Results), nil
}

// ByGenre returns one page of movies in the genre, most popular first.
func (s *Service) ByGenre(ctx context.Context, genreID int64, page int) ([]models.CatalogItem, error) {
	resp, err := s.tmdb.discoverMovies(ctx, genreID, page)
	if err != nil {
		return nil, err
	}
	items := s.mapMovies(resp.Results)
	s.enrichTrailers(ctx, items)
	return items, nil
}

// Trending returns the trending listing. The mediaType filter is applied by
// the upstream endpoint; each item is then mapped by its own reported kind.
func (s *Service) Trending(ctx context.Context, mediaType, window string) ([]models.CatalogItem, error) {
	items, err := s.trending(ctx, mediaType, window)
	if err != nil {
		return nil, err
	}
	s.enrichTrailers(ctx, items)
	return items, nil
}

func (s *Service) trending(ctx context.Context, mediaType, window string) ([]models.CatalogItem, error) {
	resp, err := s.tmdb.trending(ctx, mediaType, window)
	if err != nil {
		return nil, err
	}
	items := make([]models.CatalogItem, 0, len(resp.Results))
	for _, raw := range resp.Results {
		kind := raw.MediaType
		if kind == "" {
			kind = models.MediaTypeMovie
		}
		items = append(items, s.toCatalogItem(raw, kind))
	}
	return items, nil
}

// Search runs a multi-type search. Results that are neither movies nor tv
// shows are dropped.
func (s *Service) Search(ctx context.Context, query string, page int) ([]models.CatalogItem, error) {
	resp, err := s.tmdb.searchMulti(ctx, norm.NFC.String(query), page)
	if err != nil {
		return nil, err
	}
	items := make([]models.CatalogItem, 0, len(resp.Results))
	for _, raw := range resp.Results {
		if raw.MediaType != models.MediaTypeMovie && raw.MediaType != models.MediaTypeTV {
			continue
		}
		items = append(items, s.toCatalogItem(raw, raw.MediaType))
	}
	s.enrichTrailers(ctx, items)
	return items, nil
}

// Details returns the full record of a movie. Any upstream failure is
// reported as absence.
func (s *Service) Details(ctx context.Context, movieID int64) (*models.CatalogItemDetail, bool) {
	raw, err := s.tmdb.movieDetails(ctx, movieID)
	if err != nil {
		log.Printf("[metadata] movie details unavailable id=%d err=%v", movieID, err)
		return nil, false
	}

	genres := make([]models.Genre, 0, len(raw.Genres))
	genreIDs := make([]int64, 0, len(raw.Genres))
	for _, g := range raw.Genres {
		genres = append(genres, models.Genre{ID: g.ID, Name: g.Name})
		genreIDs = append(genreIDs, g.ID)
	}

	detail := &models.CatalogItemDetail{
		CatalogItem: models.CatalogItem{
			ID:           raw.ID,
			Title:        raw.Title,
			Overview:     raw.Overview,
			PosterPath:   s.tmdb.imageURL(raw.PosterPath, tmdbPosterSize),
			BackdropPath: s.tmdb.imageURL(raw.BackdropPath, tmdbBackdropSize),
			ReleaseDate:  raw.ReleaseDate,
			VoteAverage:  raw.VoteAverage,
			GenreIDs:     genreIDs,
			MediaType:    models.MediaTypeMovie,
		},
		Genres:  genres,
		Runtime: raw.Runtime,
		Status:  raw.Status,
		Tagline: raw.Tagline,
		Budget:  raw.Budget,
		Revenue: raw.Revenue,
	}
	if trailer, ok := s.resolveTrailer(ctx, movieID, models.MediaTypeMovie); ok {
		detail.TrailerURL = &trailer
	}
	return detail, true
}

// Genres merges the movie and tv genre vocabularies by id; tv names win on
// collision. Genre listing is non-critical, so any failure yields an empty list.
func (s *Service) Genres(ctx context.Context) []models.Genre {
	movieGenres, err := s.tmdb.genres(ctx, models.MediaTypeMovie)
	if err != nil {
		log.Printf("[metadata] WARN: movie genres fetch failed: %v", err)
		return []models.Genre{}
	}
	tvGenres, err := s.tmdb.genres(ctx, models.MediaTypeTV)
	if err != nil {
		log.Printf("[metadata] WARN: tv genres fetch failed: %v", err)
		return []models.Genre{}
	}
	return mergeGenres(movieGenres, tvGenres)
}

// mergeGenres keeps first-seen order; later vocabularies overwrite names.
func mergeGenres(vocabularies ...[]tmdbGenre) []models.Genre {
	index := make(map[int64]int)
	merged := make([]models.Genre, 0)
	for _, vocab := range vocabularies {
		for _, g := range vocab {
			if pos, ok := index[g.ID]; ok {
				merged[pos].Name = g.Name
				continue
			}
			index[g.ID] = len(merged)
			merged = append(merged, models.Genre{ID: g.ID, Name: g.Name})
		}
	}
	return merged
}

// Featured picks the hero title: the first movie trending this week, else the
// first popular movie. A failed trending lookup is not returned; it falls back
// to popular like an empty one. Only the chosen title is enriched with a trailer.
func (s *Service) Featured(ctx context.Context) (models.CatalogItem, bool, error) {
	trending, err := s.trending(ctx, models.MediaTypeMovie, TrendingWeek)
	if err != nil {
		log.Printf("[metadata] WARN: featured trending lookup failed, falling back to popular: %v", err)
	}
	candidates := trending
	if len(candidates) == 0 {
		popular, err := s.popular(ctx, 1)
		if err != nil {
			return models.CatalogItem{}, false, err
		}
		candidates = popular
	}
	if len(candidates) == 0 {
		return models.CatalogItem{}, false, nil
	}
	featured := candidates[:1]
	s.enrichTrailers(ctx, featured)
	return featured[0], true, nil
}

func (s *Service) mapMovies(results []tmdbListItem) []models.CatalogItem {
	items := make([]models.CatalogItem, 0, len(results))
	for _, raw := range results {
		items = append(items, s.toCatalogItem(raw, models.MediaTypeMovie))
	}
	return items
}

// toCatalogItem normalizes a raw listing entry. Movies use title and
// release_date; every other kind uses name and first_air_date.
func (s *Service) toCatalogItem(raw tmdbListItem, mediaType string) models.CatalogItem {
	item := models.CatalogItem{
		ID:           raw.ID,
		Overview:     raw.Overview,
		PosterPath:   s.tmdb.imageURL(raw.PosterPath, tmdbPosterSize),
		BackdropPath: s.tmdb.imageURL(raw.BackdropPath, tmdbBackdropSize),
		VoteAverage:  raw.VoteAverage,
		GenreIDs:     raw.GenreIDs,
	}
	if item.GenreIDs == nil {
		item.GenreIDs = []int64{}
	}
	if mediaType == models.MediaTypeMovie {
		item.Title = raw.Title
		item.ReleaseDate = raw.ReleaseDate
		item.MediaType = models.MediaTypeMovie
	} else {
		item.Title = raw.Name
		item.ReleaseDate = raw.FirstAirDate
		item.MediaType = models.MediaTypeTV
	}
	return item
}

// enrichTrailers resolves trailers for every item on a bounded pool. Each
// worker writes only its own index, so listing order is preserved.
func (s *Service) enrichTrailers(ctx context.Context, items []models.CatalogItem) {
	if len(items) == 0 {
		return
	}
	p := pool.New().WithMaxGoroutines(s.workers)
	for i := range items {
		p.Go(func() {
			if trailer, ok := s.resolveTrailer(ctx, items[i].ID, items[i].MediaType); ok {
				items[i].TrailerURL = &trailer
			}
		})
	}
	p.Wait()
}
