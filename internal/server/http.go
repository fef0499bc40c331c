package server

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"lexiquest/internal/auth"
	"lexiquest/internal/config"
	"lexiquest/internal/game"
	"lexiquest/internal/highscore"
)

// NewHTTPServer wires all routes for the API service.
func NewHTTPServer(
	cfg *config.App,
	logger zerolog.Logger,
	pool *pgxpool.Pool,
	redisClient *redis.Client,
	tokens *auth.Manager,
	gameHandlers *game.HTTPHandlers,
	wsHandler *game.WSHandler,
	boardHandler *highscore.HTTPHandler,
) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), pool, redisClient); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	// Session endpoints. Everything past creation requires the session token.
	mux.HandleFunc("/v1/sessions", gameHandlers.StartSession)
	mux.HandleFunc("/v1/sessions/{id}", tokens.RequireSession(gameHandlers.GetQuestion))
	mux.HandleFunc("/v1/sessions/{id}/letters", tokens.RequireSession(gameHandlers.Letters))
	mux.HandleFunc("/v1/sessions/{id}/submit", tokens.RequireSession(gameHandlers.SubmitAnswer))
	mux.HandleFunc("/v1/sessions/{id}/skip", tokens.RequireSession(gameHandlers.SkipQuestion))
	mux.HandleFunc("/v1/sessions/{id}/wildcards", tokens.RequireSession(gameHandlers.UseWildcard))
	mux.HandleFunc("/v1/sessions/{id}/finish", tokens.RequireSession(gameHandlers.FinishSession))
	mux.HandleFunc("/v1/sessions/{id}/stats", tokens.RequireSession(gameHandlers.GetStats))

	// Live event stream (token via query parameter).
	mux.HandleFunc("/ws/sessions", wsHandler.HandleWebSocket)

	mux.HandleFunc("/v1/highscores", boardHandler.HandleGet)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redisClient *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}
