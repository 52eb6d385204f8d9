package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"kingston_guide/internal/adapters/googleplaces"
	server "kingston_guide/internal/adapters/http_server"
	"kingston_guide/internal/adapters/observability"
	redisad "kingston_guide/internal/adapters/redis"
	"kingston_guide/internal/app"
	"kingston_guide/internal/shared"
	mysqlrepo "kingston_guide/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	google := googleplaces.New(cfg.GoogleBase, cfg.GoogleKey, cfg.GoogleRPS)

	q := app.NewQueryService(repo, repo, cache, cfg.CacheTTL)
	subs := app.NewSubmissionService(repo, repo, repo, cache, cfg.CacheTTL)
	imports := app.NewImportService(google, repo)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, Subs: subs, Imports: imports}, []byte(cfg.JWTSecret))

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
