// Package web builds and runs the HTTP surface: template engine, static
// assets, access logging, the access gate and all route handlers.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/notevault/notevault/internal/config"
	fiberlogger "github.com/notevault/notevault/internal/logger/adapter/fiber"
	authmw "github.com/notevault/notevault/internal/web/middleware/auth"
	"github.com/notevault/notevault/internal/web/session"

	"github.com/notevault/notevault/internal/web/handler/api"
	cognitohandler "github.com/notevault/notevault/internal/web/handler/auth/cognito"
	guesthandler "github.com/notevault/notevault/internal/web/handler/auth/guest"
	"github.com/notevault/notevault/internal/web/handler/auth/whoami"
	"github.com/notevault/notevault/internal/web/handler/categories"
	"github.com/notevault/notevault/internal/web/handler/export"
	"github.com/notevault/notevault/internal/web/handler/login"
	"github.com/notevault/notevault/internal/web/handler/logout"
	"github.com/notevault/notevault/internal/web/handler/notes"
	"github.com/notevault/notevault/internal/web/handler/profile"
)

// CheckAliveURI is the health endpoint polled by load balancers.
const CheckAliveURI = "/checkalive"

// Service represents the web service.
type Service struct {
	App   *fiber.App
	cfg   *config.Config
	db    *gorm.DB
	store *session.Store
	alive atomic.Bool
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the web service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Let the load balancer drain this instance: checkalive fails while we
	// keep serving in-flight traffic for the configured window.
	if s.cfg.Webserver.ShutDownTime > 0 {
		log.Info().Msgf(
			"graceful shutdown: return 503 for %d seconds to let the LB remove this instance",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		if err := s.App.Shutdown(); err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB, store *session.Store) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	if store == nil {
		panic("session store cannot be nil")
	}

	httpFS := http.FS(templateEmbedFS{embeddedTemplates})
	templateEngine := html.NewFileSystem(httpFS, ".gohtml")

	// in dev mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("dev mode enabled: using local filesystem for templates")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			Views:          templateEngine,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	// access log
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAliveURI,
	}))

	// serve embedded static files
	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:       http.FS(embeddedStaticFiles),
				PathPrefix: "static",
			},
		),
	)

	service := &Service{
		cfg:   cfg,
		App:   app,
		db:    db,
		store: store,
	}
	service.alive.Store(true)

	app.Get(CheckAliveURI, service.checkAlive)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// access gate
	app.Use(authmw.New(store, db))

	// init handlers (they register their own routes)
	_ = login.Handler.Init(app, cfg, db, store)
	_ = guesthandler.Handler.Init(app, cfg, db, store)
	_ = cognitohandler.Handler.Init(app, cfg, db, store)
	_ = whoami.Handler.Init(app, cfg, db, store)
	_ = logout.Handler.Init(app, cfg, db, store)
	_ = profile.Handler.Init(app, cfg, db, store)
	_ = notes.Handler.Init(app, cfg, db, store)
	_ = categories.Handler.Init(app, cfg, db, store)
	_ = export.Handler.Init(app, cfg, db, store)
	_ = api.Handler.Init(app, cfg, db, store)

	return service
}

// checkAlive reports liveness; it flips to 503 during shutdown draining.
func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendStatus(fiber.StatusOK)
}
