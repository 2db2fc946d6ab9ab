// Package server assembles the chat gateway: it opens the storage backend,
// builds the chat services and serves the account API and the WebSocket
// endpoint until the process is signalled to stop.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/auth"
	"github.com/dmitrijs2005/gophchat/internal/server/config"
	"github.com/dmitrijs2005/gophchat/internal/server/httpapi"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophchat/internal/server/services"
	"github.com/dmitrijs2005/gophchat/internal/server/sessions"
	"github.com/dmitrijs2005/gophchat/internal/server/ws"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	sessions *sessions.Registry
	handler  http.Handler
}

// NewApp opens storage and wires the services behind one HTTP handler.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	repos, err := repomanager.New(ctx, repomanager.Options{
		Storage:     c.Storage,
		DatabaseDSN: c.DatabaseDSN,
		BadgerPath:  c.BadgerPath,
	})
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	registry := sessions.New()

	broadcaster := services.NewBroadcaster(repos, registry, logger.With("module", "broadcaster"))
	chatLocks := services.NewKeyedMutex()
	chatService := services.NewChatService(repos, broadcaster, chatLocks, logger.With("module", "chats"))
	router := services.NewMessageRouter(repos, registry, chatLocks, logger.With("module", "messages"))
	query := services.NewChatQuery(repos, logger.With("module", "history"))
	userService := services.NewUserService(repos, c.SecretKey, c.AccessTokenValidityDuration)

	gateway := ws.NewServer(ws.Deps{
		Auth:     auth.NewGate([]byte(c.SecretKey)),
		Sessions: registry,
		Snapshot: broadcaster,
		Chats:    chatService,
		Messages: router,
		History:  query,
	}, ws.Options{
		HandshakeTimeout: c.HandshakeTimeout,
		WriteTimeout:     c.WriteTimeout,
		PongWait:         c.PongWait,
		RequestTimeout:   c.RequestTimeout,
		SendQueueSize:    c.SendQueueSize,
		MaxFrameBytes:    c.MaxFrameBytes,
	}, logger.With("module", "ws"))

	return &App{
		config:   c,
		logger:   logger,
		repos:    repos,
		sessions: registry,
		handler:  httpapi.NewRouter(userService, gateway, logger.With("module", "httpapi")),
	}, nil
}

// Handler returns the root HTTP handler.
func (app *App) Handler() http.Handler {
	return app.handler
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// closes every session and the storage backend.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	listen, err := net.Listen("tcp", app.config.EndpointAddr)
	if err != nil {
		app.close(ctx)
		return fmt.Errorf("listen %s: %w", app.config.EndpointAddr, err)
	}

	return app.serve(ctx, listen)
}

func (app *App) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           app.handler,
		ReadHeaderTimeout: app.config.HandshakeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String(), "storage", app.config.Storage)
		if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	app.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "http shutdown error", "error", err)
	}

	app.close(ctx)
	return serveErr
}

// close drops live sessions before the storage they write to.
func (app *App) close(ctx context.Context) {
	app.sessions.Close()
	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "storage close error", "error", err)
	}
}
