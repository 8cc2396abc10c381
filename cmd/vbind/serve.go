package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/metrics"
	"github.com/vango-dev/vbind/pkg/preview"
	"github.com/vango-dev/vbind/pkg/tracing"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		port          int
		host          string
		sweepInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live preview of the demo",
		Long: `Serve the demo document and push every change to connected
browsers over WebSocket. Input in the browser runs the bindings on
the server.

Routes:
  /          the document
  /ws        live updates
  /healthz   health check
  /metrics   Prometheus metrics

Examples:
  vbind serve
  vbind serve --port=8080
  vbind serve --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Preview.Port = port
			}
			if host != "" {
				cfg.Preview.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			collector := metrics.New(metrics.WithRegistry(reg))
			tracer := tracing.Tracer()

			d, err := buildDocument(ctx, cfg, logger, collector, tracer)
			if err != nil {
				return err
			}

			interval, _ := cfg.PushInterval()
			srv := preview.New(d.doc, preview.Config{
				Addr:         cfg.PreviewAddress(),
				PushInterval: interval,
				Logger:       logger,
				Metrics:      collector,
				Gatherer:     reg,
			})

			go sweepLoop(ctx, srv, d, sweepInterval)

			info("Preview on %s", cfg.PreviewURL())
			if err := srv.ListenAndServe(ctx); err != nil {
				return errors.New("L003").Wrap(err)
			}
			success("Stopped")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from vbind.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from vbind.json)")
	cmd.Flags().DurationVar(&sweepInterval, "sweep", 30*time.Second, "Interval between binding registry sweeps")

	return cmd
}

// sweepLoop releases the bindings of collected nodes on the event loop.
func sweepLoop(ctx context.Context, srv *preview.Server, d *document, interval time.Duration) {
	if interval <= 0 {
		return
	}
	tracer := tracing.Tracer()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := srv.Do(ctx, func() { tracing.Sweep(ctx, tracer, d.binder) }); err != nil {
				return
			}
		}
	}
}
