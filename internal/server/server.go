// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package server exposes a simulation session over HTTP.
//
// A session is one editable scene and the preset library its chips are
// taken from. Requests are serialized.
//
package server

import (
	"cmp"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"sync"

	"github.com/db47h/logsim"
	"github.com/db47h/logsim/internal/logging"
	"github.com/db47h/logsim/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves a simulation session.
//
type Server struct {
	mu     sync.Mutex
	lib    *logsim.Library
	scene  *logsim.Scene
	store  store.Store
	log    *slog.Logger
	gather prometheus.Gatherer
}

// Option configures a Server.
//
type Option func(*Server)

// WithStore saves promoted presets to st and deletes removed ones from it.
//
func WithStore(st store.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithLogger sets the request logger.
//
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithGatherer sets the metrics served on /metrics. The default is
// prometheus.DefaultGatherer.
//
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gather = g }
}

// New returns a server for a new empty scene using presets from lib.
//
func New(lib *logsim.Library, opts ...Option) *Server {
	s := &Server{
		lib:    lib,
		scene:  lib.NewScene(),
		log:    logging.NewNop(),
		gather: prometheus.DefaultGatherer,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the HTTP handler of the server.
//
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/scene", func(r chi.Router) {
		r.Get("/", s.getScene)
		r.Put("/", s.putScene)
		r.Post("/devices", s.addDevice)
		r.Delete("/devices/{id}", s.removeDevice)
		r.Post("/links", s.addLink)
		r.Delete("/links/{id}", s.removeLink)
		r.Put("/inputs/{id}", s.drive)
		r.Post("/tick", s.tick)
		r.Get("/signals", s.signals)
		r.Get("/levels", s.levels)
	})
	r.Route("/presets", func(r chi.Router) {
		r.Get("/", s.listPresets)
		r.Post("/", s.promote)
		r.Get("/{name}", s.getPreset)
		r.Delete("/{name}", s.deletePreset)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status())
	})
}

// ListenAndServe serves on addr until ctx is done.
//
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("listening", "addr", addr)
	select {
	case err := <-errc:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
		return errors.Wrap(srv.Shutdown(context.Background()), "shutdown")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("encode response", "error", err)
	}
}

// httpStatus maps simulator errors to status codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, logsim.ErrInternal):
		return http.StatusInternalServerError
	case errors.Is(err, logsim.ErrUnknownDevice),
		errors.Is(err, logsim.ErrUnknownLink),
		errors.Is(err, logsim.ErrUnknownPreset),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, logsim.ErrFanInConflict),
		errors.Is(err, logsim.ErrBoundaryShort),
		errors.Is(err, logsim.ErrCycleDetected),
		errors.Is(err, logsim.ErrDuplicatePreset),
		errors.Is(err, logsim.ErrPresetInUse),
		errors.Is(err, logsim.ErrPresetDeleted):
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

type errorResponse struct {
	Error string            `json:"error"`
	Cycle []logsim.DeviceID `json:"cycle,omitempty"`
	Fault []logsim.DeviceID `json:"faults,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("internal error", "error", err)
	}
	resp := errorResponse{Error: err.Error()}
	var ce *logsim.CycleError
	if errors.As(err, &ce) {
		resp.Cycle = ce.Path
	}
	var fe *logsim.FaultError
	if errors.As(err, &fe) {
		resp.Fault = fe.Devices
	}
	s.writeJSON(w, status, resp)
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return errors.Wrap(dec.Decode(v), "invalid request body")
}

func idParam(r *http.Request) (uint32, error) {
	v, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		return 0, errors.Wrap(err, "invalid id")
	}
	return uint32(v), nil
}

func (s *Server) getScene(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, s.scene.Snapshot())
}

func (s *Server) putScene(w http.ResponseWriter, r *http.Request) {
	var data logsim.SceneData
	if err := decodeBody(r, &data); err != nil {
		s.writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, err := logsim.SceneFromData(data, s.lib.Get)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.scene.Dispose()
	s.scene = sc
	s.writeJSON(w, http.StatusOK, sc.Snapshot())
}

type idResponse struct {
	ID uint32 `json:"id"`
}

func (s *Server) addDevice(w http.ResponseWriter, r *http.Request) {
	var dd logsim.DeviceData
	if err := decodeBody(r, &dd); err != nil {
		s.writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	spec, err := dd.Spec(s.lib.Get)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id := s.scene.AddDevice(spec)
	s.writeJSON(w, http.StatusCreated, idResponse{uint32(id)})
}

func (s *Server) removeDevice(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err = s.scene.RemoveDevice(logsim.DeviceID(id)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type linkRequest struct {
	Src logsim.PinRef `json:"src"`
	Dst logsim.PinRef `json:"dst"`
}

func (s *Server) addLink(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.scene.AddLink(req.Src, req.Dst)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, idResponse{uint32(id)})
}

func (s *Server) removeLink(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err = s.scene.RemoveLink(logsim.LinkID(id)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type driveRequest struct {
	Value logsim.Signal `json:"value"`
}

// drive sets a scene input or a switch.
func (s *Server) drive(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req driveRequest
	if err = decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Value > logsim.High {
		s.writeError(w, errors.Errorf("invalid signal value %d", req.Value))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	did := logsim.DeviceID(id)
	info, err := s.scene.Device(did)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if info.Kind == logsim.KindSwitch {
		err = s.scene.SetSwitch(did, req.Value)
	} else {
		err = s.scene.SetInput(did, req.Value)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) tick(w http.ResponseWriter, r *http.Request) {
	n := 1
	if v := r.URL.Query().Get("n"); v != "" {
		var err error
		if n, err = strconv.Atoi(v); err != nil || n < 1 {
			s.writeError(w, errors.Errorf("invalid tick count %q", v))
			return
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		// latch values computed from the current inputs
		if err := s.scene.Propagate(); err != nil && !errors.Is(err, logsim.ErrPresetDeleted) {
			s.writeError(w, err)
			return
		}
		s.scene.Tick()
	}
	w.WriteHeader(http.StatusNoContent)
}

// PinState is the state of one pin.
//
type PinState struct {
	Pin   logsim.PinRef `json:"pin"`
	Value logsim.Signal `json:"value"`
}

// SignalsResponse is the response to GET /scene/signals.
//
type SignalsResponse struct {
	Pins   []PinState        `json:"pins"`
	Faults []logsim.DeviceID `json:"faults,omitempty"`
}

func comparePins(a, b logsim.PinRef) int {
	if c := cmp.Compare(a.Device, b.Device); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Dir, b.Dir); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}

func (s *Server) signals(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sig, err := s.scene.Evaluate()
	if err != nil && !errors.Is(err, logsim.ErrPresetDeleted) {
		s.writeError(w, err)
		return
	}
	resp := SignalsResponse{Pins: make([]PinState, 0, len(sig)), Faults: s.scene.Faults()}
	for p, v := range sig {
		resp.Pins = append(resp.Pins, PinState{p, v})
	}
	slices.SortFunc(resp.Pins, func(a, b PinState) int { return comparePins(a.Pin, b.Pin) })
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) levels(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lvl, err := s.scene.Levels()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, lvl)
}

// PresetInfo describes a preset.
//
type PresetInfo struct {
	Name     string          `json:"name"`
	Inputs   []string        `json:"inputs"`
	Outputs  []string        `json:"outputs"`
	Strategy logsim.Strategy `json:"strategy"`
	Stateful bool            `json:"stateful"`
	Refs     int             `json:"refs"`
}

func presetInfo(p *logsim.Preset) PresetInfo {
	return PresetInfo{
		Name:     p.Name(),
		Inputs:   p.Inputs(),
		Outputs:  p.Outputs(),
		Strategy: p.Strategy(),
		Stateful: p.Stateful(),
		Refs:     p.Refs(),
	}
}

func (s *Server) listPresets(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps := s.lib.Presets()
	resp := make([]PresetInfo, len(ps))
	for i, p := range ps {
		resp[i] = presetInfo(p)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type promoteRequest struct {
	Name string `json:"name"`
}

// promote promotes the session scene.
func (s *Server) promote(w http.ResponseWriter, r *http.Request) {
	var req promoteRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.lib.Promote(s.scene, req.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if s.store != nil {
		if err = s.store.Save(r.Context(), p.Data()); err != nil {
			s.log.Error("store preset", "preset", p.Name(), "error", err)
		}
	}
	s.writeJSON(w, http.StatusCreated, presetInfo(p))
}

func (s *Server) getPreset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.lib.Get(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p.Data())
}

// deletePreset removes a preset. With ?force=true, presets in use are
// revoked.
func (s *Server) deletePreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if force {
		_, err = s.lib.Revoke(name)
	} else {
		err = s.lib.Remove(name)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	if s.store != nil {
		if err = s.store.Delete(r.Context(), name); err != nil && !errors.Is(err, store.ErrNotFound) {
			s.log.Error("delete stored preset", "preset", name, "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
