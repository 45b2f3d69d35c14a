package httpapi

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dokzlo13/displayd/internal/display"
)

//go:embed static/index.html
var indexHTML []byte

type handlers struct {
	display       Display
	watchdog      Watchdog
	recentEntries int
}

type powerResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	State   string `json:"state"`
}

type statusResponse struct {
	Status string `json:"status"`
	State  string `json:"state"`
	IsOn   bool   `json:"is_on"`
}

type brightnessResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	Brightness int    `json:"brightness"`
}

type watchdogResponse struct {
	Status       string `json:"status"`
	LastCheck    string `json:"last_check"`
	RestartCount int    `json:"restart_count"`
}

type watchdogLogResponse struct {
	Status  string   `json:"status"`
	Entries []string `json:"entries"`
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(indexHTML)
}

func (h *handlers) turnOn(w http.ResponseWriter, r *http.Request) {
	state, err := h.display.TurnOn(r.Context())
	if err != nil {
		respondDisplayError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, powerResponse{
		Status:  statusSuccess,
		Message: "Monitor turned on",
		State:   state.String(),
	})
}

func (h *handlers) turnOff(w http.ResponseWriter, r *http.Request) {
	state, err := h.display.TurnOff(r.Context())
	if err != nil {
		respondDisplayError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, powerResponse{
		Status:  statusSuccess,
		Message: "Monitor turned off",
		State:   state.String(),
	})
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	state, err := h.display.QueryPower(r.Context())
	if err != nil {
		respondDisplayError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, statusResponse{
		Status: statusSuccess,
		State:  state.String(),
		IsOn:   state.IsOn(),
	})
}

func (h *handlers) getBrightness(w http.ResponseWriter, r *http.Request) {
	value, err := h.display.GetBrightness(r.Context())
	if err != nil {
		respondDisplayError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, brightnessResponse{
		Status:     statusSuccess,
		Brightness: value,
	})
}

func (h *handlers) setBrightness(w http.ResponseWriter, r *http.Request) {
	requested, err := display.ParseLevel(mux.Vars(r)["value"])
	if err != nil {
		respondDisplayError(w, r, err)
		return
	}

	value, err := h.display.SetBrightness(r.Context(), requested)
	if err != nil {
		respondDisplayError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, brightnessResponse{
		Status:     statusSuccess,
		Message:    fmt.Sprintf("Brightness set to %d", requested),
		Brightness: value,
	})
}

func (h *handlers) watchdogStatus(w http.ResponseWriter, r *http.Request) {
	summary := h.watchdog.Summarize()
	respondJSON(w, r, http.StatusOK, watchdogResponse{
		Status:       statusSuccess,
		LastCheck:    summary.LastMessage,
		RestartCount: summary.RestartCount,
	})
}

func (h *handlers) watchdogLog(w http.ResponseWriter, r *http.Request) {
	entries := h.watchdog.Recent(h.recentEntries)
	if entries == nil {
		entries = []string{}
	}
	respondJSON(w, r, http.StatusOK, watchdogLogResponse{
		Status:  statusSuccess,
		Entries: entries,
	})
}

func health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": ServiceName,
	})
}

func ready(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// respondDisplayError maps controller failures to HTTP statuses:
// rejected input is the client's fault, everything else is a device failure.
func respondDisplayError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if display.IsInvalidInput(err) {
		status = http.StatusBadRequest
	}
	loggerFor(r).Warn().Err(err).Int("status", status).Str("kind", string(display.KindOf(err))).Msg("Display request failed")
	respondError(w, r, status, err.Error())
}
