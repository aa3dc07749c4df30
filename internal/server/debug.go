package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"bomberman-client/internal/domain"
	"bomberman-client/internal/engine"
	"bomberman-client/internal/render"
)

// DefaultReadTimeout - сколько ждать, пока цикл выполнит чтение.
// Остановленный цикл не разбирает inbox, тогда отвечаем 503.
const DefaultReadTimeout = 2 * time.Second

// DebugHandler предоставляет доступ к состоянию клиентского ядра.
// Все чтения выполняются на цикле через Inbox.Call.
type DebugHandler struct {
	Client  *engine.Client
	Palette render.Palette
	Timeout time.Duration
}

func NewDebugHandler(c *engine.Client) *DebugHandler {
	return &DebugHandler{Client: c, Palette: render.DefaultPalette(), Timeout: DefaultReadTimeout}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/state", h.handleState)
	mux.HandleFunc("/debug/camera", h.handleCamera)
	mux.HandleFunc("/debug/world", h.handleWorld)
}

// StateSummary - сводка по сессии и реплике.
type StateSummary struct {
	Status      string      `json:"status"`
	GameID      string      `json:"game_id,omitempty"`
	PlayerID    string      `json:"player_id,omitempty"`
	LastError   string      `json:"last_error,omitempty"`
	Frames      uint64      `json:"frames"`
	Running     bool        `json:"running"`
	LastUpdate  *time.Time  `json:"last_update,omitempty"`
	Resyncs     int         `json:"resync_requests"`
	Outstanding bool        `json:"resync_outstanding"`
	MapVersion  uint64      `json:"map_version"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Players     int         `json:"players"`
	Enemies     int         `json:"enemies"`
	Projectiles int         `json:"projectiles"`
	Pickups     int         `json:"pickups"`
	Meta        domain.Meta `json:"meta"`
}

// CameraSummary - текущее состояние камеры.
type CameraSummary struct {
	Offset   domain.Vec2 `json:"offset"`
	Target   domain.Vec2 `json:"target"`
	Lag      domain.Vec2 `json:"lag"`
	Viewport domain.Vec2 `json:"viewport"`
}

// read выполняет fn на цикле. false - ответ уже записан.
func (h *DebugHandler) read(w http.ResponseWriter, r *http.Request, fn func()) bool {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	if err := h.Client.Inbox.Call(ctx, fn); err != nil {
		http.Error(w, "client loop unavailable: "+err.Error(), http.StatusServiceUnavailable)
		return false
	}
	return true
}

// /debug/state - статус сессии, сторож и размеры реплики
func (h *DebugHandler) handleState(w http.ResponseWriter, r *http.Request) {
	var sum StateSummary
	ok := h.read(w, r, func() {
		c := h.Client
		sum.Status = c.Session.Status().String()
		sum.GameID = c.Session.GameID()
		sum.PlayerID = c.Session.PlayerID()
		sum.LastError = c.Session.LastError()
		sum.Frames = c.Loop.Frames()
		sum.Running = c.Loop.Running()
		sum.Resyncs = c.Watchdog.Requests()
		sum.Outstanding = c.Watchdog.Outstanding()
		sum.MapVersion = c.Cache.Version()
		if t := c.Store.LastUpdate(); !t.IsZero() {
			sum.LastUpdate = &t
		}

		snap := c.Store.Renderable()
		if snap == nil {
			return
		}
		sum.Players = len(snap.Players)
		sum.Enemies = len(snap.Enemies)
		sum.Projectiles = len(snap.Projectiles)
		sum.Pickups = len(snap.Pickups)
		sum.Meta = snap.Meta
		if snap.Grid != nil {
			sum.Width = snap.Grid.Width()
			sum.Height = snap.Grid.Height()
		}
	})
	if !ok {
		return
	}
	writeJSON(w, sum)
}

// /debug/camera - смещение, цель и отставание камеры
func (h *DebugHandler) handleCamera(w http.ResponseWriter, r *http.Request) {
	var sum CameraSummary
	ok := h.read(w, r, func() {
		cam := h.Client.Camera
		sum = CameraSummary{
			Offset:   cam.Offset(),
			Target:   cam.Target(),
			Lag:      cam.Lag(),
			Viewport: cam.Viewport(),
		}
	})
	if !ok {
		return
	}
	writeJSON(w, sum)
}

// /debug/world - карта из кэша в виде текста, по символу на клетку
func (h *DebugHandler) handleWorld(w http.ResponseWriter, r *http.Request) {
	var (
		dump    string
		hasGrid bool
	)
	ok := h.read(w, r, func() {
		g := h.Client.Cache.Grid()
		if g == nil {
			return
		}
		hasGrid = true
		dump = h.Palette.Dump(g)
	})
	if !ok {
		return
	}
	if !hasGrid {
		http.Error(w, "no map cached", http.StatusNotFound)
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(dump))
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	// Разрешаем запросы с любого источника (нужно для локальных debug-страниц)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	w.Header().Set("Content-Type", "application/json")

	if data == nil {
		w.Write([]byte("{}"))
		return
	}

	json.NewEncoder(w).Encode(data)
}
