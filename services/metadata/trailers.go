package metadata

import (
	"context"
	"fmt"
	"log"

	"novaflix/models"
)

const youtubeEmbedURL = "https://www.youtube.com/embed/%s"

// selectPrimaryTrailer picks the first YouTube trailer in listing order and
// falls back to the first video of any kind.
func selectPrimaryTrailer(videos []tmdbVideo) (tmdbVideo, bool) {
	for _, v := range videos {
		if v.Type == "Trailer" && v.Site == "YouTube" {
			return v, true
		}
	}
	if len(videos) > 0 {
		return videos[0], true
	}
	return tmdbVideo{}, false
}

func trailerEmbedURL(key string) string {
	return fmt.Sprintf(youtubeEmbedURL, key)
}

// resolveTrailer returns the embed URL of the title's primary trailer. A
// missing trailer must never block catalog display, so fetch failures are
// logged and reported as absence.
func (s *Service) resolveTrailer(ctx context.Context, id int64, mediaType string) (string, bool) {
	if mediaType != models.MediaTypeMovie {
		mediaType = models.MediaTypeTV
	}
	videos, err := s.tmdb.videos(ctx, mediaType, id)
	if err != nil {
		log.Printf("[metadata] WARN: trailer lookup failed mediaType=%s id=%d err=%v", mediaType, id, err)
		return "", false
	}
	video, ok := selectPrimaryTrailer(videos)
	if !ok {
		return "", false
	}
	return trailerEmbedURL(video.Key), true
}

// Trailer resolves the primary trailer of a movie.
func (s *Service) Trailer(ctx context.Context, movieID int64) (string, bool) {
	return s.resolveTrailer(ctx, movieID, models.MediaTypeMovie)
}
