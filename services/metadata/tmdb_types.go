package metadata

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// tmdbListItem is one entry of a popular, discover, trending or search page.
type tmdbListItem struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  *string `json:"release_date"`
	FirstAirDate *string `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	GenreIDs     []int64 `json:"genre_ids"`
	MediaType    string  `json:"media_type"`
}

type tmdbPage struct {
	Page         int            `json:"page"`
	Results      []tmdbListItem `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

type tmdbMovieDetails struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	Overview     string      `json:"overview"`
	PosterPath   string      `json:"poster_path"`
	BackdropPath string      `json:"backdrop_path"`
	ReleaseDate  *string     `json:"release_date"`
	VoteAverage  float64     `json:"vote_average"`
	Genres       []tmdbGenre `json:"genres"`
	Runtime      *int        `json:"runtime"`
	Status       *string     `json:"status"`
	Tagline      *string     `json:"tagline"`
	Budget       *int64      `json:"budget"`
	Revenue      *int64      `json:"revenue"`
}

type tmdbGenre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type tmdbGenreList struct {
	Genres []tmdbGenre `json:"genres"`
}

type tmdbVideo struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

type tmdbVideoList struct {
	ID      int64       `json:"id"`
	Results []tmdbVideo `json:"results"`
}

func pageParams(page int) url.Values {
	return url.Values{"page": []string{strconv.Itoa(page)}}
}

func (c *tmdbClient) popularMovies(ctx context.Context, page int) (tmdbPage, error) {
	var out tmdbPage
	err := c.get(ctx, "/movie/popular", pageParams(page), &out)
	return out, err
}

func (c *tmdbClient) discoverMovies(ctx context.Context, genreID int64, page int) (tmdbPage, error) {
	params := pageParams(page)
	params.Set("with_genres", strconv.FormatInt(genreID, 10))
	params.Set("sort_by", "popularity.desc")
	var out tmdbPage
	err := c.get(ctx, "/discover/movie", params, &out)
	return out, err
}

func (c *tmdbClient) trending(ctx context.Context, mediaType, window string) (tmdbPage, error) {
	var out tmdbPage
	err := c.get(ctx, fmt.Sprintf("/trending/%s/%s", mediaType, window), nil, &out)
	return out, err
}

func (c *tmdbClient) searchMulti(ctx context.Context, query string, page int) (tmdbPage, error) {
	params := pageParams(page)
	params.Set("query", query)
	var out tmdbPage
	err := c.get(ctx, "/search/multi", params, &out)
	return out, err
}

func (c *tmdbClient) movieDetails(ctx context.Context, movieID int64) (tmdbMovieDetails, error) {
	var out tmdbMovieDetails
	err := c.get(ctx, fmt.Sprintf("/movie/%d", movieID), nil, &out)
	return out, err
}

func (c *tmdbClient) genres(ctx context.Context, mediaType string) ([]tmdbGenre, error) {
	var out tmdbGenreList
	if err := c.get(ctx, fmt.Sprintf("/genre/%s/list", mediaType), nil, &out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}

func (c *tmdbClient) videos(ctx context.Context, mediaType string, id int64) ([]tmdbVideo, error) {
	var out tmdbVideoList
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/videos", mediaType, id), nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}
