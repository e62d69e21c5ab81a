package infra_tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mavrushkin/swipematch/internal/config"
	"github.com/mavrushkin/swipematch/internal/model"
	usecase_movie "github.com/mavrushkin/swipematch/internal/usecase/movie"
)

var (
	ErrUnconfigured = errors.New("tmdb api key not configured")
	ErrBadStatus    = errors.New("unexpected tmdb status")
)

type Client struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	httpClient   *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(cfg config.TMDB, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		imageBaseURL: cfg.ImageBaseURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type movieDTO struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	Overview    string  `json:"overview"`
	VoteAverage float64 `json:"vote_average"`
	ReleaseDate string  `json:"release_date"`
}

type popularResponseDTO struct {
	Results []movieDTO `json:"results"`
}

type videoDTO struct {
	Site string `json:"site"`
	Type string `json:"type"`
	Key  string `json:"key"`
}

type videosResponseDTO struct {
	Results []videoDTO `json:"results"`
}

// PopularMovies returns the current popular page. Entries without a poster
// are dropped: the swipe card is the poster.
func (c *Client) PopularMovies(ctx context.Context) ([]model.Movie, error) {
	if c.apiKey == "" {
		return nil, ErrUnconfigured
	}

	var dto popularResponseDTO
	path := fmt.Sprintf("/movie/popular?api_key=%s&language=en-US&page=1", url.QueryEscape(c.apiKey))
	if err := c.get(ctx, path, &dto); err != nil {
		return nil, err
	}

	movies := make([]model.Movie, 0, len(dto.Results))
	for _, m := range dto.Results {
		if m.PosterPath == "" {
			continue
		}
		movies = append(movies, model.Movie{
			ID:          strconv.Itoa(m.ID),
			Title:       m.Title,
			PosterURL:   c.imageBaseURL + m.PosterPath,
			Description: m.Overview,
			Rating:      m.VoteAverage,
			Year:        releaseYear(m.ReleaseDate),
		})
	}

	return movies, nil
}

// MovieTrailer resolves the first YouTube trailer for the movie.
func (c *Client) MovieTrailer(ctx context.Context, movieID string) (string, error) {
	if c.apiKey == "" {
		return "", usecase_movie.ErrNoTrailer
	}

	var dto videosResponseDTO
	path := fmt.Sprintf("/movie/%s/videos?api_key=%s&language=en-US", url.PathEscape(movieID), url.QueryEscape(c.apiKey))
	if err := c.get(ctx, path, &dto); err != nil {
		return "", err
	}

	for _, v := range dto.Results {
		if v.Site == "YouTube" && v.Type == "Trailer" {
			return "https://www.youtube.com/watch?v=" + v.Key, nil
		}
	}

	return "", usecase_movie.ErrNoTrailer
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
