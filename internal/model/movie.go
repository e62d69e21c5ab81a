package model

// Movie is an externally sourced value object. It is embedded verbatim into a
// room's movie list at creation time and never mutated afterwards, so it
// carries its wire tags directly.
type Movie struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	PosterURL   string  `json:"poster_url"`
	Description string  `json:"description"`
	Rating      float64 `json:"rating"`
	Year        int     `json:"year"`
}
