package app

import (
	"log/slog"

	"github.com/mavrushkin/swipematch/internal/config"
	http_auth "github.com/mavrushkin/swipematch/internal/delivery/http/auth"
	http_init "github.com/mavrushkin/swipematch/internal/delivery/http/init"
	http_auth_middleware "github.com/mavrushkin/swipematch/internal/delivery/http/middleware/auth"
	http_movie "github.com/mavrushkin/swipematch/internal/delivery/http/movie"
	http_room "github.com/mavrushkin/swipematch/internal/delivery/http/room"
	http_swipe "github.com/mavrushkin/swipematch/internal/delivery/http/swipe"
	ws_room "github.com/mavrushkin/swipematch/internal/delivery/ws/room"
	infra_pg_init "github.com/mavrushkin/swipematch/internal/infra/postgres/init"
	infra_postgres_room "github.com/mavrushkin/swipematch/internal/infra/postgres/room"
	infra_postgres_swipe "github.com/mavrushkin/swipematch/internal/infra/postgres/swipe"
	infra_redis_init "github.com/mavrushkin/swipematch/internal/infra/redis/init"
	infra_session_cache "github.com/mavrushkin/swipematch/internal/infra/redis/session"
	infra_tmdb "github.com/mavrushkin/swipematch/internal/infra/tmdb"
	service_session_auth "github.com/mavrushkin/swipematch/internal/service/auth/session"
	usecase_movie "github.com/mavrushkin/swipematch/internal/usecase/movie"
	usecase_room "github.com/mavrushkin/swipematch/internal/usecase/room"
	usecase_swipe "github.com/mavrushkin/swipematch/internal/usecase/swipe"
)

func Go(cfg *config.Config) {
	redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)
	pgConn := infra_pg_init.MustEstablishConn(cfg.Postgres)

	roomRepository := infra_postgres_room.New(pgConn)
	swipeRepository := infra_postgres_swipe.New(pgConn)

	tmdbClient := infra_tmdb.New(cfg.TMDB)
	movieUC := usecase_movie.New(tmdbClient)
	roomUC := usecase_room.New(roomRepository, movieUC)
	swipeUC := usecase_swipe.New(swipeRepository)

	hub := ws_room.NewHub(slog.Default())
	go hub.Run()

	sessionCache := infra_session_cache.New(redisConn, "session_cache")
	authService := service_session_auth.New(sessionCache, nil)
	authMiddleware := http_auth_middleware.New(authService)

	controllerPool := http_init.NewControllerPool()
	controllerPool.Add(http_auth.New(authService))
	controllerPool.Add(http_room.New(roomUC, authMiddleware, hub))
	controllerPool.Add(http_swipe.New(swipeUC, roomUC, authMiddleware, hub))
	controllerPool.Add(http_movie.New(movieUC))
	controllerPool.Add(ws_room.NewController(hub))

	controllerPool.Register()
	controllerPool.RunAll(cfg.HTTP.Port)
}
