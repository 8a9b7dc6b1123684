package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/PizzaHomicide/reel/internal/domain"
	"github.com/PizzaHomicide/reel/internal/log"
)

const movieFields = `
                id
                title
                description
                videoUrl
                thumbnailUrl
                duration
                genre
`

type MovieRepository struct {
	client *Client
}

func NewMovieRepository(client *Client) domain.MovieRepository {
	return &MovieRepository{
		client: client,
	}
}

// movieResponse is a movie as returned by the catalog.  Duration is in seconds.
type movieResponse struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	VideoURL     string  `json:"videoUrl"`
	ThumbnailURL string  `json:"thumbnailUrl"`
	Duration     float64 `json:"duration"`
	Genre        string  `json:"genre"`
}

func (m movieResponse) toDomain() *domain.Movie {
	return &domain.Movie{
		ID:           m.ID,
		Title:        m.Title,
		Description:  m.Description,
		VideoURL:     m.VideoURL,
		ThumbnailURL: m.ThumbnailURL,
		Duration:     time.Duration(m.Duration * float64(time.Second)),
		Genre:        m.Genre,
	}
}

func (r *MovieRepository) GetMovie(ctx context.Context, id string) (*domain.Movie, error) {
	query := `
        query ($id: ID!) {
            movie(id: $id) {` + movieFields + `            }
        }
    `

	var response struct {
		Movie *movieResponse `json:"movie"`
	}

	if err := r.client.Query(ctx, query, map[string]interface{}{"id": id}, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch movie %s: %w", id, err)
	}

	if response.Movie == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMovieNotFound, id)
	}

	log.Debug("Fetched movie", "id", response.Movie.ID, "title", response.Movie.Title)
	return response.Movie.toDomain(), nil
}

func (r *MovieRepository) ListMovies(ctx context.Context, search string) ([]*domain.Movie, error) {
	query := `
        query ($search: String) {
            movies(search: $search) {` + movieFields + `            }
        }
    `

	variables := map[string]interface{}{}
	if search != "" {
		variables["search"] = search
	}

	var response struct {
		Movies []movieResponse `json:"movies"`
	}

	if err := r.client.Query(ctx, query, variables, &response); err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}

	movies := make([]*domain.Movie, 0, len(response.Movies))
	for _, m := range response.Movies {
		movies = append(movies, m.toDomain())
	}

	log.Debug("Listed movies", "search", search, "count", len(movies))
	return movies, nil
}
