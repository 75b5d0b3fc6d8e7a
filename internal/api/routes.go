package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clipmark/clipmark-agent/internal/export"
	"github.com/clipmark/clipmark-agent/internal/trim"
)

const (
	defaultExportsLimit = 50
	maxExportsLimit     = 500
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSAllowlist(cfg.CORSOrigins...))

	r.Get("/health", healthHandler(cfg))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	rateLimit := cfg.ExportRateLimit
	if rateLimit <= 0 {
		rateLimit = 10
	}

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Tokens, cfg.Logger))

		r.Route("/session", func(r chi.Router) {
			r.Get("/", sessionHandler(cfg))
			r.Put("/link", setLinkHandler(cfg))
			r.Post("/markers/start", markHandler(cfg.Session.MarkStart))
			r.Post("/markers/end", markHandler(cfg.Session.MarkEnd))
			r.Put("/markers", setMarkersHandler(cfg))
			r.Post("/preview", previewHandler(cfg))
			r.With(ExportRateLimit(rateLimit)).Post("/export", exportHandler(cfg))
			r.Get("/download", downloadHandler(cfg))
			r.Get("/selection.edl", selectionEDLHandler(cfg))
		})
		r.Get("/exports", listExportsHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: uptime,
		})
	}
}

func sessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, cfg.Session.Snapshot())
	}
}

func setLinkHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LinkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		state, err := cfg.Session.SetLink(r.Context(), req.Link)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, state)
	}
}

func markHandler(mark func() (trim.State, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := mark()
		if err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, state)
	}
}

func setMarkersHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MarkersRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		start, hasStart, err := parseTimeValue(req.Start)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "start: "+err.Error(), "BAD_REQUEST")
			return
		}
		end, hasEnd, err := parseTimeValue(req.End)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "end: "+err.Error(), "BAD_REQUEST")
			return
		}

		var state trim.State
		switch {
		case hasStart && hasEnd:
			state, err = cfg.Session.SetMarkers(start, end)
		case hasStart:
			state, err = cfg.Session.SetStart(start)
		case hasEnd:
			state, err = cfg.Session.SetEnd(end)
		default:
			WriteError(w, http.StatusBadRequest, "start or end is required", "BAD_REQUEST")
			return
		}
		if err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, state)
	}
}

func previewHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := cfg.Session.TogglePreview(r.Context())
		if err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, state)
	}
}

func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action, err := cfg.Session.TriggerExport(r.Context())
		if err != nil {
			writeSessionError(w, err)
			return
		}

		status := http.StatusAccepted
		if action.Kind == trim.ActionNavigate {
			status = http.StatusOK
		}
		WriteJSON(w, status, ExportResponse{Action: action, State: cfg.Session.Snapshot()})
	}
}

// downloadHandler redirects to the exported clip. The suggested filename is
// sent alongside since the redirect target is on another origin.
func downloadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := cfg.Session.Snapshot()
		if state.ExportStatus != trim.ExportSucceeded || state.DownloadURL == "" {
			WriteError(w, http.StatusNotFound, "no export result for the current selection", "NO_RESULT")
			return
		}

		sel := export.Selection{VideoID: state.VideoID, Link: state.Link, Start: state.Start, End: state.End}
		w.Header().Set("X-Suggested-Filename", export.Filename(sel, state.ExportResult))
		http.Redirect(w, r, state.DownloadURL, http.StatusFound)
	}
}

func selectionEDLHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := cfg.Session.Snapshot()
		if !state.HasVideo() {
			writeSessionError(w, trim.ErrNoVideo)
			return
		}

		frameRate := export.DefaultFrameRate
		if v := r.URL.Query().Get("fps"); v != "" {
			fps, err := strconv.ParseFloat(v, 64)
			if err != nil || fps <= 0 {
				WriteError(w, http.StatusBadRequest, "fps must be a positive number", "BAD_REQUEST")
				return
			}
			frameRate = fps
		}

		sel := export.Selection{VideoID: state.VideoID, Link: state.Link, Start: state.Start, End: state.End}
		edl, err := export.SelectionEDL(sel, frameRate)
		if err != nil {
			WriteError(w, http.StatusConflict, err.Error(), "EMPTY_SELECTION")
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+export.EDLFilename(sel)+`"`)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(edl))
	}
}

func listExportsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.History == nil {
			WriteJSON(w, http.StatusOK, ExportsResponse{Exports: []ExportRecordResponse{}})
			return
		}

		limit := defaultExportsLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				WriteError(w, http.StatusBadRequest, "limit must be a positive integer", "BAD_REQUEST")
				return
			}
			limit = min(n, maxExportsLimit)
		}

		exports, err := cfg.History.Recent(r.Context(), limit)
		if err != nil {
			cfg.Logger.Error("failed to list exports", "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to list exports", "INTERNAL_ERROR")
			return
		}

		resp := ExportsResponse{Exports: make([]ExportRecordResponse, len(exports))}
		for i, e := range exports {
			resp.Exports[i] = ExportToResponse(e)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, trim.ErrNoVideo):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "NO_VIDEO")
	case errors.Is(err, trim.ErrMarkersFrozen):
		WriteError(w, http.StatusConflict, err.Error(), "MARKERS_FROZEN")
	case errors.Is(err, trim.ErrInvalidRange):
		WriteError(w, http.StatusConflict, err.Error(), "EXPORT_DISABLED")
	case errors.Is(err, trim.ErrExportPending):
		WriteError(w, http.StatusConflict, err.Error(), "EXPORT_PENDING")
	case errors.Is(err, trim.ErrInvalidMarker):
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
	case errors.Is(err, trim.ErrClosed):
		WriteError(w, http.StatusServiceUnavailable, err.Error(), "UNAVAILABLE")
	default:
		WriteError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
