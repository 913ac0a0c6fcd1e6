package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/evangelism-tracker/apiclient"
	"github.com/jrsteele09/evangelism-tracker/internal/config"
	errs "github.com/jrsteele09/evangelism-tracker/internal/errors"
	"github.com/jrsteele09/evangelism-tracker/internal/logging"
	"github.com/jrsteele09/evangelism-tracker/internal/metrics"
	"github.com/jrsteele09/evangelism-tracker/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(os.Stderr, errs.Message(err))
		stop()
		os.Exit(1)
	}
}

type app struct {
	out      io.Writer
	cfg      config.Config
	logger   zerolog.Logger
	client   *apiclient.Client
	registry *prometheus.Registry
}

func run(ctx context.Context, args []string, out io.Writer) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	showMetrics := len(args) > 0 && (args[0] == "-metrics" || args[0] == "--metrics")
	if showMetrics {
		args = args[1:]
	}

	cfg := config.New()
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		displayAppname(out, cfg.GetAppName())
		usage(out)
		return nil
	}

	logger := logging.New(cfg.GetLogLevel(), cfg.GetEnv())
	repo, closeRepo, err := newSessionRepo(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	m := metrics.New()
	registry := prometheus.NewRegistry()
	if err := m.Register(registry); err != nil {
		return fmt.Errorf("[tracker run] register metrics: %w", err)
	}

	store := sessions.NewStore(repo)
	a := &app{
		out:    out,
		cfg:    cfg,
		logger: logger,
		client: apiclient.New(cfg.GetAPIBaseURL(), store,
			apiclient.WithTimeout(cfg.GetHTTPTimeout()),
			apiclient.WithLogger(logger),
			apiclient.WithMetrics(m),
		),
		registry: registry,
	}

	if _, err := a.client.RestoreSession(ctx); err != nil {
		logger.Warn().Err(err).Msg("ignoring unreadable saved session")
		_ = a.client.Logout(ctx)
	}

	stopWatching := a.watchSession(store)
	defer stopWatching()

	err = a.dispatch(ctx, args)
	if showMetrics {
		if mErr := a.printMetrics(); mErr != nil {
			logger.Warn().Err(mErr).Msg("metrics unavailable")
		}
	}
	return err
}

// watchSession logs session transitions until the returned func is called.
func (a *app) watchSession(store *sessions.Store) func() {
	changes, stop := store.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for s := range changes {
			if s.IsAuthenticated() {
				a.logger.Debug().Str("user_id", s.Profile.ID).Msg("session updated")
			} else {
				a.logger.Debug().Msg("session cleared")
			}
		}
	}()
	return func() {
		stop()
		<-done
	}
}

func displayAppname(out io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(out, myFigure.String())
}

func usage(out io.Writer) {
	fmt.Fprint(out, `Usage: tracker [-metrics] <command> [flags]

Account
  login -email E -password P
  logout
  whoami
  register -name N -email E -password P [-phone PH]
  forgot-password -email E
  reset-password -token T -password P -confirm P

Reports
  reports list
  reports get ID
  reports create -name N -location L -date YYYY-MM-DD [-heard N -interested N -accepted N -repented N -notes S]
  reports update ID [same flags as create]
  reports delete ID

People
  people list [-report ID]
  people get ID
  people create -name N -status interested|accepted|repented -report ID [-phone PH]
  people update ID [-name N -status S -report ID -phone PH]
  people delete ID

Other
  insights

Put -metrics before any command to print client counters when it finishes.

Configuration comes from TRACKER_* environment variables or a .env file.
`)
}
