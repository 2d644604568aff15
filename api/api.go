package api

import (
	"log/slog"
	"net"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/replybot/pkg/storage"
)

// StatsProvider reports a point in time snapshot of the bot's counters.
type StatsProvider interface {
	Stats() Stats
}

// Server is the status API server for a running bot.
type Server struct {
	config Config
	driver storage.Driver
	stats  StatsProvider
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The driver is injected so the server reads the same ledger the worker
// pool writes to.
func NewServer(config Config, driver storage.Driver, stats StatsProvider, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		driver: driver,
		stats:  stats,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/stats", s.handleStats)
	app.Get("/replies", s.handleListReplies)
	app.Get("/replies/:id", s.handleGetReply)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Serve starts the API server on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting API server", "listen", ln.Addr().String())
	return s.app.Listener(ln)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
