package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"realty-places/internal/config"
	httphandler "realty-places/internal/http"
	"realty-places/internal/places"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Parse command line flags
	var (
		probe = flag.Bool("probe", false, "Run one sample search through the proxy, print the response and exit")
		port  = flag.String("port", "", "Port to run the server on (overrides PORT)")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	setupLogger(cfg.App)

	placesHandler := httphandler.NewPlacesHandler(httphandler.PlacesConfig{
		APIKey:      cfg.Places.APIKey,
		BaseURL:     cfg.Places.BaseURL,
		Development: cfg.App.Development(),
	}, nil)

	if *probe {
		os.Exit(runProbe(placesHandler))
	}

	if cfg.Places.APIKey == "" {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY is not set; the places proxy will answer with a configuration error")
	}

	router := httphandler.NewRouter(cfg.Server.HandlerTimeout, cfg.App.Development())
	router.RegisterPlacesRoutes(placesHandler)
	router.RegisterHealthRoutes(cfg.Places.APIKey != "")

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Str("env", cfg.App.Env).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped with error")
	}

	log.Info().Msg("Server stopped")
}

func setupLogger(app config.AppConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(app.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if app.Development() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		return
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// runProbe sends the default Accra search through the handler and prints
// the status and body. It returns the process exit code.
func runProbe(h *httphandler.PlacesHandler) int {
	target := fmt.Sprintf("/placesProxy?lat=%s&lng=%s&radius=%d&type=%s",
		"5.6037", "-0.1870", places.DefaultRadius, places.DefaultType)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.Proxy(rec, req)

	fmt.Printf("Status: %d\n%s\n", rec.Code, rec.Body.String())
	if rec.Code != http.StatusOK {
		return 1
	}
	return 0
}
