package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/batnotify/pkg/config"
	"github.com/charlie0129/batnotify/pkg/events"
	"github.com/charlie0129/batnotify/pkg/notify"
	"github.com/charlie0129/batnotify/pkg/power"
	"github.com/charlie0129/batnotify/pkg/watch"
)

// Run starts the monitor and, if unixSocketPath is not empty, the status
// socket. It returns when SIGINT/SIGTERM arrives or the monitor fails.
func Run(configPath string, unixSocketPath string) error {
	conf, err := config.NewFile(configPath)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to parse config during startup")
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			err := conf.Load()
			if err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			// Paths, poll interval and notifier are bound at startup.
			logrus.WithFields(conf.LogrusFields()).Infof("config reloaded")
		}
	}()

	notifier, err := notify.New(conf.Notifier())
	if err != nil {
		return err
	}

	hub := events.NewEventHub()
	shutdown := NewShutdownScheduler(commandShutdown(conf.ShutdownCommand), hub)
	reader := power.NewSysfs(conf.CapacityPath(), conf.ACOnlinePath())
	monitor := NewMonitor(reader, notifier, shutdown, conf, hub)

	// Handle common process-killing signals, so we can gracefully shut down:
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *http.Server
	if unixSocketPath != "" {
		srv, err = serve(ctx, monitor, conf, unixSocketPath)
		if err != nil {
			return err
		}
	}

	runErr := monitor.Run(ctx, watch.NewPoller(conf.CapacityPath(), conf.PollInterval()))
	if runErr != nil {
		logrus.Errorf("monitor stopped: %v", runErr)
	} else {
		logrus.Info("caught signal: shutting down.")
	}

	if n := shutdown.Stop(); n > 0 {
		logrus.Warnf("cancelled %d pending shutdown(s) on exit", n)
	}

	if srv != nil {
		logrus.Info("shutting down http server")
		// Release streaming handlers before waiting on them.
		stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.Errorf("failed to shutdown http server: %v", err)
		}
		cancel()

		if err := os.Remove(unixSocketPath); err != nil && !os.IsNotExist(err) {
			logrus.Warnf("failed to remove %s: %v", unixSocketPath, err)
		}
	}

	logrus.Info("exiting")
	return runErr
}

func serve(ctx context.Context, m *Monitor, conf config.Config, unixSocketPath string) (*http.Server, error) {
	// A previous daemon that died without cleaning up leaves its socket behind.
	if _, err := os.Stat(unixSocketPath); err == nil {
		if conn, err := net.Dial("unix", unixSocketPath); err == nil {
			_ = conn.Close()
			return nil, pkgerrors.Errorf("another daemon is listening on %s", unixSocketPath)
		}
		logrus.Debugf("removing stale socket %s", unixSocketPath)
		_ = os.Remove(unixSocketPath)
	}

	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to listen on %s", unixSocketPath)
	}

	srv := &http.Server{
		Handler: setupRoutes(ctx, m, conf),
	}

	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("http server failed: %v", err)
		}
	}()

	return srv, nil
}
