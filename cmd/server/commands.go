package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bus-route-viewer/internal/api"
	"bus-route-viewer/internal/config"
	"bus-route-viewer/internal/controller"
	"bus-route-viewer/internal/domain"
	"bus-route-viewer/internal/render"
	"bus-route-viewer/internal/services"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const sessionIdleTimeout = 30 * time.Minute

var backendURLFlag = &cli.StringFlag{
	Name:  "backend-url",
	Usage: "route optimizer base URL (default: $BUSROUTE_BACKEND_URL, $BACKEND_URL or " + config.DefaultBackendURL + ")",
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the route viewer web API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "listen target for the web server (default: $BUSROUTE_LISTEN or " + config.DefaultListenAddr + ")",
			},
			backendURLFlag,
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(config.Overrides{
				BackendURL: c.String("backend-url"),
				ListenAddr: c.String("listen"),
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	opt, cleanup, err := buildOptimizer(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	history, closeHistory, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeHistory()

	sessions := api.NewSessionStore(opt, history)
	app := api.NewRouter(api.Deps{
		Sessions:     sessions,
		History:      history,
		Prober:       opt,
		BackendURL:   cfg.BackendURL,
		HistoryLimit: cfg.HistoryLimit,
		WaitTimeout:  2 * cfg.HTTPTimeout,
	})

	go sweepSessions(ctx, sessions)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Str("backend_url", cfg.BackendURL).Msg("Server listening")
		errCh <- app.Listen(cfg.ListenAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

func sweepSessions(ctx context.Context, sessions *api.SessionStore) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(sessionIdleTimeout); n > 0 {
				log.Debug().Int("closed", n).Msg("swept idle sessions")
			}
		}
	}
}

func lookupCommand() *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Usage:     "optimize one route and print its itinerary",
		ArgsUsage: "<route_no>",
		Flags: []cli.Flag{
			backendURLFlag,
			&cli.StringFlag{
				Name:  "format",
				Value: "text",
				Usage: "output format: text, csv or json",
			},
		},
		Action: func(c *cli.Context) error {
			format := strings.ToLower(c.String("format"))
			if format != "text" && format != "csv" && format != "json" {
				return cli.Exit(fmt.Sprintf("unknown format %q", format), 2)
			}

			cfg, err := config.Load(config.Overrides{BackendURL: c.String("backend-url")})
			if err != nil {
				return err
			}

			opt, cleanup, err := buildOptimizer(c.Context, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			state, err := lookup(c.Context, controller.New(opt), c.Args().First(), 2*cfg.HTTPTimeout)
			if err != nil {
				var verr *domain.ValidationError
				if errors.As(err, &verr) {
					return cli.Exit("Please enter a bus route number.", 2)
				}
				return err
			}

			if err := printState(os.Stdout, state, format); err != nil {
				return err
			}
			if state.Phase == controller.PhaseFailed {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

// lookup submits routeNo and waits for its outcome.
func lookup(ctx context.Context, ctrl *controller.Controller, routeNo string, timeout time.Duration) (controller.State, error) {
	ticket, err := ctrl.Submit(ctx, routeNo)
	if err != nil {
		return controller.State{}, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, err := ticket.Wait(waitCtx); err != nil {
		ctrl.Close()
		return controller.State{}, fmt.Errorf("lookup route %q: %w", ticket.RouteNo, err)
	}
	return ctrl.State(), nil
}

func printState(w io.Writer, s controller.State, format string) error {
	switch format {
	case "csv":
		return render.WriteCSV(w, render.List(s.Result))
	case "json":
		v := services.BuildView(s)
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Phase   controller.Phase `json:"phase"`
			RouteNo string           `json:"route_no"`
			Map     render.MapView   `json:"map"`
			List    render.ListView  `json:"list"`
		}{v.Phase, v.RouteNo, v.Map, v.List})
	default:
		return render.WriteText(w, render.List(s.Result))
	}
}

func pingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "check that the route optimizer answers",
		Flags: []cli.Flag{backendURLFlag},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(config.Overrides{BackendURL: c.String("backend-url")})
			if err != nil {
				return err
			}

			opt, cleanup, err := buildOptimizer(c.Context, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(c.Context, 5*time.Second)
			defer cancel()

			if err := opt.Probe(ctx); err != nil {
				return cli.Exit(fmt.Sprintf("route optimizer at %s is not reachable: %v", cfg.BackendURL, err), 1)
			}
			fmt.Fprintf(c.App.Writer, "route optimizer at %s is reachable\n", cfg.BackendURL)
			return nil
		},
	}
}
