package main

import (
	"bufio"
	"context"
	"database/sql"
	"os"
	"strings"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"kingston_guide/internal/adapters/googleplaces"
	"kingston_guide/internal/adapters/observability"
	"kingston_guide/internal/app"
	"kingston_guide/internal/shared"
	mysqlrepo "kingston_guide/internal/storage/mysql"
)

// Batch importer: place IDs come from the command line, or one per line on
// stdin when no arguments are given.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	ids := os.Args[1:]
	if len(ids) == 0 {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line != "" && !strings.HasPrefix(line, "#") {
				ids = append(ids, line)
			}
		}
		if err := sc.Err(); err != nil {
			log.Fatal().Err(err).Msg("read stdin failed")
		}
	}
	if len(ids) == 0 {
		log.Fatal().Msg("no place ids given")
	}

	log.Info().
		Str("base", cfg.GoogleBase).
		Int("workers", cfg.Workers).
		Int("ids", len(ids)).
		Msg("importer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	google := googleplaces.New(cfg.GoogleBase, cfg.GoogleKey, cfg.GoogleRPS)
	imp := app.NewImportService(google, repo)

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, id := range ids {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(placeID string) {
			defer wg.Done()
			defer sem.Release(int64(1))

			res, err := imp.Import(ctx, placeID)
			if err != nil {
				log.Warn().Str("place_id", placeID).Err(err).Msg("import failed")
				return
			}
			if res.Imported {
				log.Info().Str("place_id", placeID).Str("slug", res.Place.Slug).Msg("import ok")
			} else {
				log.Info().Str("place_id", placeID).Str("slug", res.Place.Slug).Msg("already imported")
			}
		}(id)
	}

	wg.Wait()
	log.Info().Msg("import completed")
}
