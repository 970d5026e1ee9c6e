package main

import (
	"context"
	"flag"
	"io/fs"
	"os"

	"github.com/matt-steen/taskboard/pkg/api"
	"github.com/matt-steen/taskboard/pkg/config"
	"github.com/matt-steen/taskboard/pkg/controller"
	"github.com/matt-steen/taskboard/pkg/dashboard"
	"github.com/matt-steen/taskboard/pkg/db"
	"github.com/matt-steen/taskboard/pkg/local"
	"github.com/matt-steen/taskboard/pkg/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	ctx := context.Background()

	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	filePerms := 0o666

	logFile, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, fs.FileMode(filePerms))
	if err != nil {
		panic(err)
	}

	defer logFile.Close()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	log.Logger = log.With().Caller().Logger().Output(zerolog.ConsoleWriter{
		Out: logFile, TimeFormat: "2006-01-02_15:04:05",
	})

	log.Info().Str("api", cfg.APIURL).Bool("offline", cfg.Offline).Msg("starting application...")

	database, err := db.NewDatabase(ctx, cfg.DBFile)
	if err != nil {
		panic(err)
	}

	defer database.Close()

	var (
		repo  dashboard.Repository
		guard *session.Guard
		auth  *session.Authenticator
	)

	if cfg.Offline {
		repo, err = local.NewRepository(database)
		if err != nil {
			panic(err)
		}
	} else {
		creds := session.NewCredentials(database)
		client := api.NewClient(cfg.APIURL, cfg.Timeout, creds)

		repo = client
		guard = session.NewGuard(creds)
		auth = session.NewAuthenticator(client, creds)
	}

	ctrl, err := controller.NewController(ctx, repo, guard, auth)
	if err != nil {
		panic(err)
	}

	if err := ctrl.Go(); err != nil {
		log.Error().Err(err).Msg("application exited with an error")
	}
}
