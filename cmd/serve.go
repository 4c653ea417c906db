package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theirongolddev/opdusage/internal/chart"
	"github.com/theirongolddev/opdusage/internal/server"

	"github.com/spf13/cobra"
)

var (
	serveAddr            string
	serveEventsBuffer    int
	serveShutdownTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis over HTTP",
	Long: "Load the input once and answer analysis requests over HTTP until interrupted.\n\n" +
		"Routes: /healthz, /metrics, /v1/status, /v1/dimensions, /v1/analyze,\n" +
		"/v1/chart.png, /v1/events, /v1/stream.",
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.Flags().IntVar(&serveEventsBuffer, "events-buffer", 200, "Max in-memory analysis events")
	serveCmd.Flags().DurationVar(&serveShutdownTimeout, "shutdown-timeout", 5*time.Second, "Grace period for in-flight requests")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := loadSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	svc := server.New(server.Config{
		Addr:            addr,
		EventsBuffer:    serveEventsBuffer,
		ShutdownTimeout: serveShutdownTimeout,
		Chart:           chart.DefaultOptions(),
	}, s)
	return svc.Run(ctx)
}
