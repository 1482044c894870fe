// Package hostapi is the local HTTP surface through which the host
// delivers widget lifecycle events, taps and connectivity changes.
package hostapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmcdole/datapass/internal/carrier"
	"github.com/mmcdole/datapass/internal/domain"
	"github.com/mmcdole/datapass/internal/metrics"
	"github.com/mmcdole/datapass/internal/render"
	"github.com/mmcdole/datapass/internal/scheduler"
	"github.com/mmcdole/datapass/internal/tile"
)

// Server routes host events to the scheduler
type Server struct {
	sched    *scheduler.Scheduler
	resolver *carrier.Resolver
	tiles    *tile.Service
	tracker  *render.Tracker
	logger   *slog.Logger

	router chi.Router
	srv    *http.Server
}

// NewServer builds the router; tiles may be nil
func NewServer(addr string, sched *scheduler.Scheduler, resolver *carrier.Resolver, tiles *tile.Service, tracker *render.Tracker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		sched:    sched,
		resolver: resolver,
		tiles:    tiles,
		tracker:  tracker,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/widgets", func(r chi.Router) {
		r.Get("/", s.listWidgets)
		r.Post("/", s.placeWidget)
		r.Delete("/{id}", s.removeWidget)
		r.Put("/{id}/carrier", s.reassignCarrier)
		r.Post("/{id}/tap", s.tapWidget)
	})
	r.Post("/connectivity", s.connectivityChanged)
	r.Get("/carriers", s.listCarriers)
	r.Get("/tile", s.getTile)
	r.Post("/tile/click", s.clickTile)

	s.router = r
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Handler exposes the router for tests and embedding
func (s *Server) Handler() http.Handler { return s.router }

// Start serves in the background
func (s *Server) Start() {
	go func() {
		s.logger.Info("starting host API", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("host API error", "error", err)
		}
	}()
}

// Shutdown stops the listener gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

type widgetResponse struct {
	ID          int       `json:"id"`
	Carrier     string    `json:"carrier"`
	LastRefresh time.Time `json:"last_refresh,omitzero"`
	Refreshing  bool      `json:"refreshing"`
	Progress    *int      `json:"progress,omitempty"`
	Usage       string    `json:"usage,omitempty"`
	Unit        string    `json:"unit,omitempty"`
	Hint        string    `json:"hint,omitempty"`
	Clickable   bool      `json:"clickable"`
}

func (s *Server) widget(inst domain.WidgetInstance) widgetResponse {
	resp := widgetResponse{
		ID:          inst.ID,
		Carrier:     inst.CarrierID,
		LastRefresh: inst.LastRefreshTimestamp,
		Refreshing:  s.sched.IsRefreshing(inst.ID),
		Clickable:   s.tracker.Clickable(inst.ID),
	}
	if f, ok := s.tracker.Last(inst.ID); ok {
		p := f.Progress
		resp.Progress = &p
		resp.Usage = f.PrimaryText
		resp.Unit = f.SecondaryText
		resp.Hint = f.HintText
	}
	return resp
}

func (s *Server) listWidgets(w http.ResponseWriter, _ *http.Request) {
	all := s.sched.Registry().All()
	out := make([]widgetResponse, 0, len(all))
	for _, inst := range all {
		out = append(out, s.widget(inst))
	}
	writeJSON(w, http.StatusOK, out)
}

type placeRequest struct {
	ID int `json:"id"`
}

func (s *Server) placeWidget(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	inst, res, err := s.sched.Place(req.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"widget": s.widget(inst), "refresh": res.String()})
}

func (s *Server) removeWidget(w http.ResponseWriter, r *http.Request) {
	id, ok := widgetID(w, r)
	if !ok {
		return
	}
	if err := s.sched.Remove(id); err != nil {
		writeDomainError(w, err)
		return
	}
	s.tracker.Forget(id)
	w.WriteHeader(http.StatusNoContent)
}

type carrierRequest struct {
	Carrier string `json:"carrier"`
}

func (s *Server) reassignCarrier(w http.ResponseWriter, r *http.Request) {
	id, ok := widgetID(w, r)
	if !ok {
		return
	}
	var req carrierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Carrier == "" {
		writeError(w, http.StatusBadRequest, "carrier is required")
		return
	}
	if err := s.sched.Reassign(id, req.Carrier); err != nil {
		writeDomainError(w, err)
		return
	}
	inst, _ := s.sched.Registry().Get(id)
	writeJSON(w, http.StatusOK, s.widget(inst))
}

func (s *Server) tapWidget(w http.ResponseWriter, r *http.Request) {
	id, ok := widgetID(w, r)
	if !ok {
		return
	}
	if !s.tracker.Clickable(id) {
		writeError(w, http.StatusConflict, "widget is updating")
		return
	}
	res := s.sched.RequestRefresh(id, domain.UpdateRegular)
	switch res {
	case scheduler.Accepted:
		writeJSON(w, http.StatusAccepted, map[string]string{"refresh": res.String()})
	case scheduler.Busy:
		writeError(w, http.StatusConflict, "widget is updating")
	case scheduler.Debounced:
		writeError(w, http.StatusTooManyRequests, "refreshed too recently")
	default:
		writeError(w, http.StatusNotFound, domain.ErrWidgetNotFound.Error())
	}
}

func (s *Server) connectivityChanged(w http.ResponseWriter, _ *http.Request) {
	s.sched.OnConnectivityChange()
	w.WriteHeader(http.StatusAccepted)
}

type carrierResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) listCarriers(w http.ResponseWriter, r *http.Request) {
	suppliers := s.resolver.Suggest(r.URL.Query().Get("q"))
	out := make([]carrierResponse, 0, len(suppliers))
	for _, sup := range suppliers {
		out = append(out, carrierResponse{ID: sup.ID(), Name: sup.Name()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getTile(w http.ResponseWriter, _ *http.Request) {
	if s.tiles == nil {
		writeError(w, http.StatusNotFound, "tile disabled")
		return
	}
	writeJSON(w, http.StatusOK, s.tiles.Current())
}

func (s *Server) clickTile(w http.ResponseWriter, _ *http.Request) {
	if s.tiles == nil {
		writeError(w, http.StatusNotFound, "tile disabled")
		return
	}
	if !s.tiles.Current().Clickable() {
		writeError(w, http.StatusConflict, "tile is updating")
		return
	}
	go s.tiles.Click(context.Background())
	w.WriteHeader(http.StatusAccepted)
}

func widgetID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidWidgetID.Error())
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrWidgetNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidWidgetID):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
