// Package api exposes a minimal read-only diagnostics HTTP server: the
// current pump/holiday/quiet/waiting state and the learned timetable.
// There are deliberately no write endpoints — editing the schedule by
// hand is out of scope (spec Non-goals: "no user-facing scheduling UI").
// Shape (CORS middleware, mux, writeJSON/writeError helpers) follows the
// teacher's internal/api verbatim; only the resource surface changed.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/wwpump/controller/internal/clock"
	"github.com/wwpump/controller/internal/pumpcontroller"
	"github.com/wwpump/controller/internal/timetable"
)

type Server struct {
	clk clock.Clock
	pc  *pumpcontroller.PumpController
	tt  *timetable.Timetable
}

type StatusResponse struct {
	Now                 int64 `json:"now"`
	LastPumpStart       int64 `json:"last_pump_start"`
	LastWarmWaterDemand int64 `json:"last_warm_water_demand"`
	LastScheduledRun    int64 `json:"last_scheduled_run"`
	SanityFailed        int64 `json:"sanity_failed"`
	OutsideWaitingTime  bool  `json:"outside_waiting_time"`
	OutsideQuietTime    bool  `json:"outside_quiet_time"`
	OutsideScheduledRun bool  `json:"outside_scheduled_run"`
	Holiday             bool  `json:"holiday"`
	Running             bool  `json:"running"`
	NextAlarmSeconds    int64 `json:"next_alarm_seconds,omitempty"`
	NextAlarmKnown      bool  `json:"next_alarm_known"`
}

type SlotResponse struct {
	Weekday int `json:"weekday"`
	Hour    int `json:"hour"`
	Minute  int `json:"minute"`
	Count   int `json:"count"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewServer(clk clock.Clock, pc *pumpcontroller.PumpController, tt *timetable.Timetable) *Server {
	return &Server{clk: clk, pc: pc, tt: tt}
}

func (s *Server) Start(port int) error {
	mux := http.NewServeMux()

	corsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		mux.ServeHTTP(w, r)
	})

	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/timetable", s.handleTimetable)

	addr := fmt.Sprintf("0.0.0.0:%d", port)
	log.Info().Str("address", addr).Msg("Starting diagnostics API server")

	return http.ListenAndServe(addr, corsHandler)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	now := s.clk.Now()
	state := s.pc.State()

	resp := StatusResponse{
		Now:                 now,
		LastPumpStart:       state.LastPumpStart,
		LastWarmWaterDemand: state.LastWarmWaterDemand,
		LastScheduledRun:    state.LastScheduledRun,
		SanityFailed:        state.SanityFailed,
		OutsideWaitingTime:  state.OutsideWaitingTime,
		OutsideQuietTime:    state.OutsideQuietTime,
		OutsideScheduledRun: state.OutsideScheduledRun,
		Holiday:             state.Holiday,
		Running:             state.Running,
	}

	if delay, ok := s.tt.NextAlarmDelay(now); ok {
		resp.NextAlarmSeconds = delay
		resp.NextAlarmKnown = true
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTimetable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	slots := s.tt.Slots()
	resp := make([]SlotResponse, 0, len(slots))
	for _, sl := range slots {
		resp = append(resp, SlotResponse{Weekday: sl.Weekday, Hour: sl.Hour, Minute: sl.Minute, Count: sl.Count})
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
