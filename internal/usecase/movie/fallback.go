package usecase_movie

import "github.com/mavrushkin/swipematch/internal/model"

// FallbackMovies keeps the app usable when the external catalog is
// unreachable or no API key is configured.
var FallbackMovies = []model.Movie{
	{
		ID:          "1",
		Title:       "Inception",
		PosterURL:   "https://image.tmdb.org/t/p/w500/9gk7adHYeDvHkCSEqAvQNLV5Uge.jpg",
		Description: "A thief who steals corporate secrets through the use of dream-sharing technology is given the inverse task of planting an idea into the mind of a C.E.O.",
		Rating:      8.8,
		Year:        2010,
	},
	{
		ID:          "2",
		Title:       "Interstellar",
		PosterURL:   "https://image.tmdb.org/t/p/w500/gEU2QniL6E77AAyFcAJ20eNSiv.jpg",
		Description: "A team of explorers travel through a wormhole in space in an attempt to ensure humanity's survival.",
		Rating:      8.6,
		Year:        2014,
	},
	{
		ID:          "3",
		Title:       "The Dark Knight",
		PosterURL:   "https://image.tmdb.org/t/p/w500/qJ2tW6WMUDux911r6m7haRef0WH.jpg",
		Description: "When the menace known as the Joker wreaks havoc and chaos on the people of Gotham, Batman must accept one of the greatest psychological and physical tests of his ability to fight injustice.",
		Rating:      9.0,
		Year:        2008,
	},
	{
		ID:          "4",
		Title:       "Avatar",
		PosterURL:   "https://image.tmdb.org/t/p/w500/kyeqWdyUXW608qlYkRqosgbbJyK.jpg",
		Description: "A paraplegic Marine dispatched to the moon Pandora on a unique mission becomes torn between following his orders and protecting the world he feels is his home.",
		Rating:      7.9,
		Year:        2009,
	},
	{
		ID:          "5",
		Title:       "The Avengers",
		PosterURL:   "https://image.tmdb.org/t/p/w500/RYMX2wcKCBAr24UyPD7xwmjaTn.jpg",
		Description: "Earth's mightiest heroes must come together and learn to fight as a team if they are to stop the mischievous Loki and his alien army from enslaving humanity.",
		Rating:      8.0,
		Year:        2012,
	},
}
