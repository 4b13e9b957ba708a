package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/Swind/go-render-thread/core"
	"github.com/Swind/go-render-thread/internal/config"
	"github.com/Swind/go-render-thread/internal/demo"
	"github.com/Swind/go-render-thread/observability/prometheus"
	"github.com/Swind/go-render-thread/observability/zlog"
	"github.com/Swind/go-render-thread/softgl"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Create a surface, toggle visibility and render a starfield",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Configuration file",
			},
			&cli.IntFlag{
				Name:  "cycles",
				Value: 3,
				Usage: "Visible/hidden cycles to run; 0 runs until interrupted",
			},
			&cli.DurationFlag{
				Name:  "visible",
				Value: 2 * time.Second,
				Usage: "Length of each visible phase",
			},
			&cli.DurationFlag{
				Name:  "hidden",
				Value: 500 * time.Millisecond,
				Usage: "Length of each hidden phase",
			},
			&cli.IntFlag{
				Name:  "stars",
				Value: 200,
				Usage: "Number of stars to draw",
			},
			&cli.BoolFlag{
				Name:  "rotate",
				Usage: "Swap the surface orientation every other cycle",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override log.level from the configuration",
			},
			&cli.StringFlag{
				Name:  "metrics-listen",
				Usage: "Override metrics.listen from the configuration",
			},
		},
		Action: RunAction,
	}
}

func RunAction(c *cli.Context) error {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if addr := c.String("metrics-listen"); addr != "" {
		cfg.Metrics.Listen = addr
	}
	if c.Int("cycles") < 0 {
		return cli.Exit("cycles must not be negative", 1)
	}

	logger, err := newLogger(cfg.Log, c.App.ErrWriter)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
	}

	r := &runner{
		cfg:    cfg,
		logger: logger,
		stars:  c.Int("stars"),
		host: demo.HostOptions{
			Visible: c.Duration("visible"),
			Hidden:  c.Duration("hidden"),
			Cycles:  c.Int("cycles"),
			Rotate:  c.Bool("rotate"),
		},
	}
	if err := r.run(c.Context); err != nil {
		return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
	}
	return nil
}

func newLogger(cfg config.Log, w io.Writer) (*zlog.Logger, error) {
	level, err := zlog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if cfg.Format == "json" {
		return zlog.New(w, level), nil
	}
	return zlog.NewConsole(w, level), nil
}

type runner struct {
	cfg    *config.Config
	logger *zlog.Logger
	stars  int
	host   demo.HostOptions

	// listener overrides cfg.Metrics.Listen; set by tests.
	listener net.Listener
}

func (r *runner) run(ctx context.Context) error {
	coordCfg := r.cfg.CoordinatorConfig()
	coordCfg.Worker.Logger = r.logger.With(core.F("coordinator", coordCfg.Name))
	coordCfg.Worker.PanicHandler = zlog.PanicHandler{Logger: r.logger}

	var (
		reg    *prom.Registry
		poller *prometheus.SnapshotPoller
	)
	if r.cfg.Metrics.Enabled {
		reg = prom.NewRegistry()
		exporter, err := prometheus.NewMetricsExporter(r.cfg.Metrics.Namespace, reg, prometheus.ExporterOptions{})
		if err != nil {
			return err
		}
		poller, err = prometheus.NewSnapshotPoller(r.cfg.Metrics.Namespace, reg, r.cfg.Metrics.PollInterval)
		if err != nil {
			return err
		}
		coordCfg.Worker.Metrics = exporter
	}

	client := demo.NewStarfield(r.stars, uint64(time.Now().UnixNano()))
	coord := core.NewCoordinator(client, softgl.NewBackend(), coordCfg)
	window := softgl.NewWindow(r.cfg.Surface.Width, r.cfg.Surface.Height)
	host := demo.NewHost(coord, window, r.logger, r.host)

	g, gctx := errgroup.WithContext(ctx)

	if poller != nil {
		poller.AddCoordinator(coordCfg.Name, coord)
		poller.Start(gctx)
		defer poller.Stop()

		srv := &http.Server{
			Addr:              r.cfg.Metrics.Listen,
			Handler:           metricsMux(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			r.logger.Info("serving metrics", core.F("listen", r.cfg.Metrics.Listen))
			var err error
			if r.listener != nil {
				err = srv.Serve(r.listener)
			} else {
				err = srv.ListenAndServe()
			}
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.WithoutCancel(gctx), time.Second)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}

	// The host ends the group once its script is done.
	g.Go(func() error {
		err := host.Run(gctx)
		stats := coord.Stats()
		r.logger.Info("wallpaper finished",
			core.F("frames", stats.Frame.Frames),
			core.F("presented", window.Presented()),
			core.F("resumes", int(client.Resumes())),
			core.F("pauses", int(client.Pauses())))
		// Shutdown during startup interrupts SurfaceCreated; the host has still torn down.
		if err != nil && !(errors.Is(err, core.ErrInterruptedWait) && gctx.Err() != nil) {
			return err
		}
		return errDone
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errDone) {
		return err
	}
	return nil
}

// errDone cancels the errgroup after a clean host run.
var errDone = errors.New("host finished")

func metricsMux(reg *prom.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
