package httptransport

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"cardhouse/internal/bank"
	"cardhouse/internal/config"
	"cardhouse/internal/events"
	"cardhouse/internal/game"
)

func NewRouter(engine *game.Engine, chipBank bank.Admin, bus *events.Bus, cfg config.ServerConfig) *chi.Mux {
	playerHandlers := NewPlayerHandlers(engine)
	publicHandlers := NewPublicHandlers(engine, bus)
	adminHandlers := NewAdminHandlers(engine, chipBank)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())

		r.Get("/public/tables", publicHandlers.Tables())
		r.Get("/public/tables/available", publicHandlers.AvailableTable())
		r.Get("/public/tables/{table_id}", publicHandlers.Table())
		r.Get("/public/tables/{table_id}/stats", publicHandlers.TableStats())
		r.Get("/public/tables/{table_id}/events", publicHandlers.EventsSSE())

		r.Post("/tables/{table_id}/join", playerHandlers.Join())
		r.Post("/tables/{table_id}/leave", playerHandlers.Leave())
		r.Post("/tables/{table_id}/bet", playerHandlers.Bet())
		r.Post("/tables/{table_id}/move", playerHandlers.Move())

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))

			r.Post("/admin/tables", adminHandlers.CreateTable())
			r.Delete("/admin/tables/{table_id}", adminHandlers.DeleteTable())
			r.Get("/admin/tables/{table_id}/signals", adminHandlers.Signals())
			r.Post("/admin/tables/{table_id}/signals/clear", adminHandlers.ClearSignals())
			r.Post("/admin/tables/{table_id}/advance", adminHandlers.Advance())
			r.Post("/admin/tables/{table_id}/current-player", adminHandlers.SetCurrentPlayer())
			r.Post("/admin/tables/{table_id}/force-next", adminHandlers.ForceNextPlayer())
			r.Post("/admin/tables/{table_id}/settle", adminHandlers.Settle())
			r.Post("/admin/tables/{table_id}/kick", adminHandlers.Kick())
			r.Post("/admin/tables/{table_id}/refund", adminHandlers.EmergencyRefund())
			r.Post("/admin/tables/{table_id}/active", adminHandlers.SetActive())
			r.Post("/admin/sweep", adminHandlers.Sweep())
			r.Get("/admin/stats", adminHandlers.Stats())
			r.Get("/admin/config", adminHandlers.GetConfig())
			r.Post("/admin/config", adminHandlers.UpdateConfig())
			r.Post("/admin/pause", adminHandlers.Pause())
			r.Post("/admin/resume", adminHandlers.Resume())
			r.Get("/admin/accounts", adminHandlers.Accounts())
			r.Post("/admin/accounts", adminHandlers.Topup())
		})
	})

	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Msg("route walk failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	for _, rt := range routes {
		log.Info().Str("method", rt.Method).Str("route", rt.Path).Msg("route registered")
	}
}
