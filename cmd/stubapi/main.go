package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/evangelism-tracker/apitest"
	"github.com/jrsteele09/evangelism-tracker/guard"
	"github.com/jrsteele09/evangelism-tracker/internal/config"
	"github.com/jrsteele09/evangelism-tracker/internal/logging"
	"github.com/jrsteele09/evangelism-tracker/users"
	"github.com/rs/zerolog"
)

func main() {
	c := config.New()
	logger := logging.New(c.GetLogLevel(), c.GetEnv())
	if err := run(c, logger); err != nil {
		logger.Fatal().Err(err).Msg("stub api stopped")
	}
	logger.Info().Msg("stub api stopped")
}

func run(c config.Config, logger zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(c.GetAppName() + " API")
	api, err := apitest.New(apitest.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := seed(api, logger); err != nil {
		return err
	}

	server := &http.Server{Addr: c.GetStubPort(), Handler: newHandler(api), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		errCh <- listenAndServe(server, logger)
	}()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

// newHandler serves the API with placeholder pages behind the route guard,
// so the redirects can be tried with curl.
func newHandler(api http.Handler) http.Handler {
	pages := http.NewServeMux()
	for _, route := range []string{guard.RouteLogin, guard.RouteRegister, guard.RouteDashboard, guard.RouteDashboard + "/"} {
		pages.HandleFunc("GET "+route, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, "%s\n", r.URL.Path)
		})
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", api)
	mux.Handle("/", guard.Middleware(pages))
	return mux
}

// seed adds a demo evangelist and admin so the CLI has someone to log in as.
func seed(api *apitest.Server, logger zerolog.Logger) error {
	accounts := []struct {
		name, email, password string
		role                  users.RoleType
	}{
		{"Demo Evangelist", "evangelist@example.com", "password1", users.RoleEvangelist},
		{"Demo Admin", "admin@example.com", "password1", users.RoleAdmin},
	}
	for _, a := range accounts {
		if _, err := api.AddUser(a.name, a.email, a.password, a.role); err != nil {
			return err
		}
		logger.Info().Str("email", a.email).Str("role", string(a.role)).Msg("seeded account")
	}
	return nil
}

func listenAndServe(server *http.Server, logger zerolog.Logger) error {
	logger.Info().Str("addr", server.Addr).Msg("stub api listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
