package main

import (
	"context"
	"errors"
	"net"
	h "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lamg/corsproxy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional
	_ = godotenv.Load()
	os.Exit(execute(newRootCmd(), logrus.StandardLogger()))
}

// execute runs c and reports through lg the error that
// stopped it, returning the process exit code
func execute(c *cobra.Command, lg logrus.FieldLogger) (code int) {
	if e := c.Execute(); e != nil {
		lg.WithError(e).Error("corsproxy stopped")
		code = 1
	}
	return
}

func newRootCmd() (c *cobra.Command) {
	v := viper.New()
	var dir string
	c = &cobra.Command{
		Use:   "corsproxy",
		Short: "Relays requests adding CORS headers to the responses",
		Long: "corsproxy forwards each request to the URL in its query " +
			"string, with browser-like headers, and answers with " +
			"CORS headers allowing any page to read the response.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) (e error) {
			var s *settings
			s, e = loadSettings(v, dir)
			if e == nil {
				e = run(cmd.Context(), s)
			}
			return
		},
	}
	fs := c.Flags()
	fs.StringVarP(&dir, "config", "c", "",
		"Directory containing corsproxy.yaml")
	fs.StringP("addr", "a", ":8080", "Server address")
	fs.BoolP("fast", "f", false, "Use github.com/valyala/fasthttp")
	fs.StringP("parent-proxy", "p", "",
		"Parent proxy URL (http:// or socks5://)")
	fs.StringP("interface", "i", "",
		"Network interface for dialing targets")
	fs.String("metrics-listen", "",
		"Address serving /metrics and /health, disabled if empty")
	fs.String("log-level", "info", "Log level")
	binds := map[string]string{
		"listen":         "addr",
		"fast":           "fast",
		"parent_proxy":   "parent-proxy",
		"interface":      "interface",
		"metrics_listen": "metrics-listen",
		"log.level":      "log-level",
	}
	for k, f := range binds {
		v.BindPFlag(k, fs.Lookup(f))
	}
	return
}

func run(ctx context.Context, s *settings) (e error) {
	var lg *logrus.Logger
	lg, e = newLogger(s.Log)
	var p *corsproxy.Relay
	reg := prometheus.NewRegistry()
	if e == nil {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		p, e = corsproxy.NewRelay(&s.Relay, lg, corsproxy.NewMetrics(reg),
			time.Now)
	}
	if e != nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 2)
	var admin *h.Server
	if s.MetricsListen != "" {
		admin = adminSrv(s.MetricsListen, reg)
		go serve(errc, admin.ListenAndServe)
	}
	var shutdown func(context.Context) error
	if s.Fast {
		fs := corsproxy.NewFastServer(p, lg)
		go serve(errc, func() error { return fs.ListenAndServe(s.Listen) })
		shutdown = fs.ShutdownWithContext
	} else {
		srv := standardSrv(p, s.Listen)
		go serve(errc, srv.ListenAndServe)
		shutdown = srv.Shutdown
	}
	lg.WithFields(logrus.Fields{
		"listen":       s.Listen,
		"fast":         s.Fast,
		"metrics":      s.MetricsListen,
		"parent_proxy": s.Relay.ParentProxy,
	}).Info("Relay listening")

	select {
	case <-ctx.Done():
		lg.Info("Shutting down")
	case e = <-errc:
		lg.WithError(e).Error("Server stopped")
	}
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if se := shutdown(sctx); e == nil {
		e = se
	}
	if admin != nil {
		admin.Shutdown(sctx)
	}
	return
}

func standardSrv(p *corsproxy.Relay, addr string) (s *h.Server) {
	// no write timeout: bodies are streamed for as long as the
	// target keeps sending
	s = &h.Server{
		Addr:              addr,
		Handler:           p,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return
}

func adminSrv(addr string, g prometheus.Gatherer) (s *h.Server) {
	mux := h.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w h.ResponseWriter, _ *h.Request) {
		w.WriteHeader(h.StatusOK)
		w.Write([]byte("OK"))
	})
	s = &h.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return
}

// serve sends to errc the error that made a server stop, unless
// it stopped because of a shutdown
func serve(errc chan<- error, listen func() error) {
	e := listen()
	if e != nil && !errors.Is(e, h.ErrServerClosed) &&
		!errors.Is(e, net.ErrClosed) {
		errc <- e
	}
}
