package main

import (
	"github.com/mavrushkin/swipematch/internal/app"
	"github.com/mavrushkin/swipematch/internal/config"
)

func main() {
	app.Go(config.Load())
}
