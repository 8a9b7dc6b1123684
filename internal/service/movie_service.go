package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PizzaHomicide/reel/internal/domain"
	"github.com/PizzaHomicide/reel/internal/log"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ErrNoCatalog is returned when a reference needs the catalog but none is configured
var ErrNoCatalog = errors.New("no catalog configured")

type MovieService struct {
	repo domain.MovieRepository
}

// NewMovieService creates a service over repo.  A nil repo limits resolution to direct URLs and local files.
func NewMovieService(repo domain.MovieRepository) *MovieService {
	return &MovieService{
		repo: repo,
	}
}

// Resolve turns a user supplied reference into a playable movie.  The reference is tried in turn as a URL, a local
// file, a catalog ID and finally a fuzzy title search, where the closest title wins.
func (s *MovieService) Resolve(ctx context.Context, ref string) (*domain.Movie, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", domain.ErrMovieNotFound)
	}

	if isStreamURL(ref) {
		log.Debug("Resolved movie as URL", "ref", ref)
		return movieFromSource(ref), nil
	}

	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		abs, err := filepath.Abs(ref)
		if err != nil {
			abs = ref
		}
		log.Debug("Resolved movie as local file", "path", abs)
		return movieFromSource(abs), nil
	}

	if s.repo == nil {
		return nil, fmt.Errorf("%w: cannot look up %q", ErrNoCatalog, ref)
	}

	movie, err := s.repo.GetMovie(ctx, ref)
	if err == nil {
		log.Debug("Resolved movie by ID", "id", movie.ID)
		return movie, nil
	}
	if !errors.Is(err, domain.ErrMovieNotFound) {
		return nil, err
	}

	return s.search(ctx, ref)
}

// search finds the catalog movie whose title is closest to the query
func (s *MovieService) search(ctx context.Context, query string) (*domain.Movie, error) {
	movies, err := s.repo.ListMovies(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		// The catalog may only do exact matching, so rank against the whole catalog locally
		if movies, err = s.repo.ListMovies(ctx, ""); err != nil {
			return nil, err
		}
	}

	titles := make([]string, len(movies))
	for i, m := range movies {
		titles[i] = m.Title
	}

	ranks := fuzzy.RankFindNormalizedFold(query, titles)
	if len(ranks) == 0 {
		return nil, fmt.Errorf("%w: no title matches %q", domain.ErrMovieNotFound, query)
	}
	sort.Sort(ranks)

	best := movies[ranks[0].OriginalIndex]
	log.Info("Resolved movie by title", "query", query, "title", best.Title, "candidates", len(ranks))
	return best, nil
}

func isStreamURL(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "file", "rtmp", "rtsp":
		return u.Host != "" || u.Scheme == "file"
	default:
		return false
	}
}

// movieFromSource describes a movie that is played straight from its source without any catalog metadata
func movieFromSource(src string) *domain.Movie {
	title := src
	if u, err := url.Parse(src); err == nil && u.Path != "" {
		title = filepath.Base(u.Path)
	}
	return &domain.Movie{
		ID:       src,
		Title:    title,
		VideoURL: src,
	}
}
