package main

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"cardhouse/internal/bank"
	"cardhouse/internal/config"
	"cardhouse/internal/events"
	"cardhouse/internal/game"
	"cardhouse/internal/logging"
	httptransport "cardhouse/internal/transport/http"
)

func main() {
	appCfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(appCfg.Log)

	ctx := context.Background()
	chipBank, err := newBank(ctx, appCfg.Server)
	if err != nil {
		log.Fatal().Err(err).Msg("bank init failed")
	}
	seedAccounts(ctx, chipBank, appCfg.Server.SeedAccounts)

	bus := events.NewBus(500)
	engine := game.NewEngine(appCfg.Game, chipBank, chipBank, bus)
	engine.StartJanitor(ctx, time.Duration(appCfg.Server.JanitorIntervalSecs)*time.Second)

	r := httptransport.NewRouter(engine, chipBank, bus, appCfg.Server)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              appCfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", appCfg.Server.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

// newBank picks the Postgres ledger when a DSN is configured, otherwise the
// in-memory one.
func newBank(ctx context.Context, cfg config.ServerConfig) (bank.Admin, error) {
	if cfg.PostgresDSN == "" {
		log.Info().Msg("using in-memory chip bank")
		return bank.NewBank(0), nil
	}
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}
	pg := bank.NewPgBank(pool, 0)
	if err := pg.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	log.Info().Msg("using postgres chip bank")
	return pg, nil
}

// seedAccounts parses "account:balance,account:balance" and registers each
// pair, skipping malformed entries with a warning.
func seedAccounts(ctx context.Context, chipBank bank.Admin, seed string) {
	if seed == "" {
		return
	}
	for _, pair := range strings.Split(seed, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, balStr, found := strings.Cut(pair, ":")
		if !found {
			log.Warn().Str("entry", pair).Msg("malformed seed account entry")
			continue
		}
		balance, err := strconv.ParseInt(strings.TrimSpace(balStr), 10, 64)
		if err != nil || balance < 0 {
			log.Warn().Str("entry", pair).Msg("malformed seed account balance")
			continue
		}
		if err := chipBank.EnsureAccount(ctx, strings.TrimSpace(name), balance); err != nil {
			log.Warn().Err(err).Str("account", name).Msg("seed account failed")
			continue
		}
		log.Info().Str("account", strings.TrimSpace(name)).Int64("balance", balance).Msg("seeded account")
	}
}
