package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cardhouse/internal/events"
	"cardhouse/internal/game"
)

var ssePingInterval = 15 * time.Second

type PublicHandlers struct {
	engine *game.Engine
	bus    *events.Bus
}

func NewPublicHandlers(e *game.Engine, bus *events.Bus) *PublicHandlers {
	return &PublicHandlers{engine: e, bus: bus}
}

func (h *PublicHandlers) Tables() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"items": h.engine.ListActiveTables()})
	}
}

func (h *PublicHandlers) AvailableTable() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, ok := h.engine.FindAvailableTable()
		if !ok {
			writeJSON(w, map[string]any{"ok": false})
			return
		}
		writeJSON(w, map[string]any{"ok": true, "table": view})
	}
}

func (h *PublicHandlers) Table() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, ok := h.engine.GetTable(chi.URLParam(r, "table_id"))
		if !ok {
			WriteHTTPError(w, http.StatusNotFound, "table_not_found")
			return
		}
		writeJSON(w, view)
	}
}

func (h *PublicHandlers) TableStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, ok := h.engine.GetTableStats(chi.URLParam(r, "table_id"))
		if !ok {
			WriteHTTPError(w, http.StatusNotFound, "table_not_found")
			return
		}
		writeJSON(w, stats)
	}
}

// EventsSSE streams table events, replaying the buffer past Last-Event-ID
// first so a reconnecting spectator misses nothing still buffered.
func (h *PublicHandlers) EventsSSE() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tableID := chi.URLParam(r, "table_id")
		if _, ok := h.engine.GetTable(tableID); !ok {
			WriteHTTPError(w, http.StatusNotFound, "table_not_found")
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			WriteHTTPError(w, http.StatusInternalServerError, "stream_not_supported")
			return
		}
		events.SetSSEHeaders(w)

		for _, ev := range h.bus.ReplayAfter(tableID, r.Header.Get("Last-Event-ID")) {
			if err := events.WriteSSE(w, ev); err != nil {
				return
			}
		}
		flusher.Flush()

		ch := h.bus.Subscribe()
		defer h.bus.Unsubscribe(ch)
		ticker := time.NewTicker(ssePingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case ev, open := <-ch:
				if !open {
					return
				}
				if ev.TableID != tableID && ev.TableID != "" {
					continue
				}
				if err := events.WriteSSE(w, ev); err != nil {
					return
				}
				flusher.Flush()
			case <-ticker.C:
				ping := events.Event{
					Event:    "ping",
					TableID:  tableID,
					ServerTS: time.Now().UnixMilli(),
				}
				if err := events.WriteSSE(w, ping); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
