// Shellgate is an edge gateway that serves a single-page application's HTML
// shell. Navigation requests are resolved against a Redis precache, the
// origin, and an offline fallback; everything else is proxied to the origin
// untouched.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/shellgate/shellgate/internal/config"
	"github.com/shellgate/shellgate/pkg/connectivity"
	"github.com/shellgate/shellgate/pkg/logging"
	"github.com/shellgate/shellgate/pkg/matcher"
	"github.com/shellgate/shellgate/pkg/metrics"
	"github.com/shellgate/shellgate/pkg/precache"
	"github.com/shellgate/shellgate/pkg/preload"
	"github.com/shellgate/shellgate/pkg/resolver"
	"github.com/shellgate/shellgate/pkg/transport"
)

func main() {
	configPath := flag.String("config", getEnv("SHELLGATE_CONFIG", ""), "path to YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "shellgate: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
		Output: os.Stderr,
	})

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("Shellgate failed")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect to Redis at %s: %w", cfg.Redis.Addr, err)
	}
	logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")

	gw, err := newGateway(cfg, redisClient)
	if err != nil {
		return err
	}

	router := newRouter(gw, redisClient)

	server := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Server.ListenAddr).Str("origin", cfg.Origin.URL).Msg("Starting shell gateway")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// gateway wires the navigation matcher, the document resolver and the origin
// proxy into one request handler.
type gateway struct {
	matcher  *matcher.Matcher
	resolver *resolver.Resolver
	preloads *preload.Manager
	proxy    *httputil.ReverseProxy
	logger   zerolog.Logger
}

// newGateway assembles the gateway from the configuration.
func newGateway(cfg *config.Config, redisClient *redis.Client) (*gateway, error) {
	logger := logging.NewLogger("shell-gateway")

	docURL, err := url.Parse(cfg.Shell.DocumentURL)
	if err != nil {
		return nil, fmt.Errorf("parse shell document URL: %w", err)
	}
	originURL, err := url.Parse(cfg.Origin.URL)
	if err != nil {
		return nil, fmt.Errorf("parse origin URL: %w", err)
	}

	tracker := connectivity.NewTracker(cfg.Connectivity.FailureThreshold, logging.NewLogger("shell-connectivity"))
	tr := transport.New(nil, tracker)

	var fallback *resolver.Fallback
	if cfg.Shell.OfflineFallbackPath != "" {
		html, err := os.ReadFile(cfg.Shell.OfflineFallbackPath)
		if err != nil {
			return nil, fmt.Errorf("read offline fallback: %w", err)
		}
		fallback = resolver.NewHTMLFallback(html)
	}

	store := precache.NewStore(precache.NewManager(redisClient))

	res, err := resolver.New(resolver.Config{
		Store:       store,
		Transport:   tr,
		Probe:       tracker,
		DocumentURL: cfg.Shell.DocumentURL,
		DocumentKey: precache.DocumentKey(docURL.Host, docURL.Path),
		Fallback:    fallback,
	})
	if err != nil {
		return nil, fmt.Errorf("create resolver: %w", err)
	}

	preloads := preload.NewManager(tr, preload.Config{MaxConcurrent: cfg.Preload.MaxConcurrent})

	return &gateway{
		matcher: matcher.New(matcher.Config{
			CanonicalHost: cfg.Shell.CanonicalHost,
			LocalDevHosts: cfg.Shell.LocalDevHosts,
		}),
		resolver: res,
		preloads: preloads,
		proxy:    httputil.NewSingleHostReverseProxy(originURL),
		logger:   logger,
	}, nil
}

// newRouter builds the HTTP surface: health and metrics endpoints, preload
// middleware, and the gateway handler for everything else.
func newRouter(gw *gateway, redisClient *redis.Client) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(gw.preloads.Middleware(gw.isNavigation, gw.resolver.DocumentURL()))

	r.Get("/healthz", healthHandler)
	r.Get("/readyz", readyHandler(redisClient))
	r.Handle("/metrics", metrics.Handler())
	r.NotFound(gw.handle)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// readyHandler reports readiness based on the Redis connection.
func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := redisClient.Ping(r.Context()).Err(); err != nil {
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}
}

// isNavigation is the preload middleware's gate predicate.
func (g *gateway) isNavigation(r *http.Request) bool {
	return g.matcher.Matches(matcher.FromHTTP(r))
}

// handle serves a request: matched navigations go through the resolver, all
// other traffic is proxied to the origin.
func (g *gateway) handle(w http.ResponseWriter, r *http.Request) {
	if !g.isNavigation(r) {
		g.proxy.ServeHTTP(w, r)
		return
	}

	ev := &resolver.Event{Request: r}
	if h := preload.FromContext(r.Context()); h != nil {
		ev.Preload = h
	}

	resolution, err := g.resolver.Resolve(r.Context(), ev)
	if err != nil {
		g.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Shell resolution failed")
		var netErr *resolver.NetworkError
		if errors.As(err, &netErr) {
			http.Error(w, "origin unreachable", http.StatusBadGateway)
			return
		}
		http.Error(w, "no shell document available", http.StatusServiceUnavailable)
		return
	}
	defer resolution.Response.Body.Close()

	copyHeader(w.Header(), resolution.Response.Header)
	if resolution.CacheServed {
		w.Header().Set("X-Shell-Cache", "hit")
	} else {
		w.Header().Set("X-Shell-Cache", "miss")
	}
	w.WriteHeader(resolution.Response.StatusCode)

	if _, err := io.Copy(w, resolution.Response.Body); err != nil {
		g.logger.Warn().Err(err).Msg("Failed to write shell response")
	}
}

func copyHeader(dst, src http.Header) {
	for key, values := range src {
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
