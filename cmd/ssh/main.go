package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"

	"github.com/tomz197/kartrace/internal/asset"
	"github.com/tomz197/kartrace/internal/config"
	"github.com/tomz197/kartrace/internal/draw"
	kartlog "github.com/tomz197/kartrace/internal/logging"
	"github.com/tomz197/kartrace/internal/session"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
	defaultIdleTimeout = 5 * time.Minute
)

// race holds what every session shares. Sprites are read-only once loaded.
type race struct {
	settings    config.Settings
	resolution  config.Resolution
	assets      *asset.Set
	idleTimeout time.Duration
	logger      *log.Logger
	active      sync.WaitGroup
}

func main() {
	logger := kartlog.New(os.Stderr, log.InfoLevel)

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	idleTimeout := config.GetEnvDuration("SSH_IDLE_TIMEOUT", defaultIdleTimeout)
	logger.Info("SSH config", "host", host, "port", port, "hostKeyPath", hostKeyPath, "idleTimeout", idleTimeout)

	r, err := newRace(config.GetEnv("KARTRACE_CONFIG", ""), idleTimeout, logger)
	if err != nil {
		logger.Fatal("failed to prepare race", "err", err)
	}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			r.middleware,
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(logger),
		),
		// Set TCP_NODELAY to reduce latency for key presses
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Starting SSH server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown timed out, closing sessions", "err", err)
		_ = s.Close()
	}
	r.active.Wait()
	logger.Info("Server stopped")
}

func newRace(configPath string, idleTimeout time.Duration, logger *log.Logger) (*race, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	res := config.DefaultResolution
	if settings.Resolution != "" {
		if res, err = config.ParseResolution(settings.Resolution); err != nil {
			return nil, err
		}
	}

	assets, err := asset.Load(asset.Options{
		TrackPath: settings.Assets.Track,
		CarPaths:  settings.Assets.Cars[:settings.Players],
		Width:     res.Width,
		Height:    res.Height,
	})
	if err != nil {
		return nil, fmt.Errorf("loading assets: %w", err)
	}

	return &race{
		settings:    settings,
		resolution:  res,
		assets:      assets,
		idleTimeout: idleTimeout,
		logger:      logger,
	}, nil
}

// middleware runs one isolated race per SSH session.
func (r *race) middleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		r.active.Add(1)
		defer r.active.Done()

		r.logger.Info("New race session", "user", sess.User(), "terminal", pty.Term,
			"size", fmt.Sprintf("%dx%d", pty.Window.Width, pty.Window.Height))

		// Track terminal size from window change events
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		s, err := session.NewANSI(sess, sess, session.Options{
			Settings:     r.settings,
			Resolution:   r.resolution,
			Assets:       r.assets,
			Logger:       r.logger,
			TermSizeFunc: sizeTracker.getSize,
			IdleTimeout:  r.idleTimeout,
			Username:     sess.User(),
		})
		if err != nil {
			r.logger.Error("Failed to start race", "user", sess.User(), "err", err)
			return
		}
		if err := s.Run(); err != nil {
			r.logger.Warn("Race ended with error", "user", sess.User(), "err", err)
		}

		r.logger.Info("Session ended", "user", sess.User())
		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
