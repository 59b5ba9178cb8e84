// Package daemon assembles the application: database, session storage and
// the web service.
package daemon

import (
	"fmt"

	sessionmysql "github.com/gofiber/storage/mysql/v2"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/notevault/notevault/internal/config"
	"github.com/notevault/notevault/internal/db/dsn"
	"github.com/notevault/notevault/internal/db/models"
	"github.com/notevault/notevault/internal/web"
	"github.com/notevault/notevault/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	dbDriver := gormmysql.Open(dsn.Create(cfg))

	// TranslateError turns driver duplicate-key failures into
	// gorm.ErrDuplicatedKey, which the sign-in race handling relies on.
	db, err := gorm.Open(dbDriver, &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
		return nil
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Note{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
		return nil
	}

	sessionStorage := sessionmysql.New(sessionmysql.Config{
		ConnectionURI: dsn.Create(cfg),
		Table:         "sessions",
	})

	store, err := session.New(sessionStorage, cfg.Webserver.Session.ExpiryTime)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create session store")
		return nil
	}

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db, store),
	}
}
