package domain

import (
	"context"
	"errors"
	"time"
)

// ErrMovieNotFound is returned when no movie matches a lookup
var ErrMovieNotFound = errors.New("movie not found")

// Movie is a playable title.  VideoURL is the base source that quality tiers are derived from.
type Movie struct {
	ID           string
	Title        string
	Description  string
	VideoURL     string
	ThumbnailURL string
	Duration     time.Duration
	Genre        string
}

// MovieRepository defines the interface for movie catalog access
type MovieRepository interface {
	// GetMovie retrieves a single movie by its catalog ID.  Returns ErrMovieNotFound if there is no such movie.
	GetMovie(ctx context.Context, id string) (*Movie, error)

	// ListMovies retrieves movies whose title matches the search term.  An empty term lists the whole catalog.
	ListMovies(ctx context.Context, search string) ([]*Movie, error)
}
