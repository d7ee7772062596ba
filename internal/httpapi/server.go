package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"topohmm/internal/manager"
	"topohmm/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() []types.Model
	Status() types.StatusResponse
	Predict(ctx context.Context, req types.PredictRequest) (types.PredictResponse, error)
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(corsOptions()))
	}
	r.Use(MetricsMiddleware)

	// @Summary      List models
	// @Description  Models discovered in the models directory.
	// @Tags         models
	// @Produce      json
	// @Success      200  {object}  types.ModelsResponse
	// @Router       /models [get]
	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.ModelsResponse{Models: svc.ListModels()})
	})

	// @Summary      Service status
	// @Tags         status
	// @Produce      json
	// @Success      200  {object}  types.StatusResponse
	// @Router       /status [get]
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	// @Summary      Predict topologies
	// @Description  Decodes each sequence and returns its label path, segments and statistics.
	// @Tags         predict
	// @Accept       json
	// @Produce      json
	// @Param        request  body      types.PredictRequest  true  "sequences to annotate"
	// @Success      200      {object}  types.PredictResponse
	// @Failure      400      {object}  types.ErrorResponse
	// @Failure      404      {object}  types.ErrorResponse
	// @Failure      415      {object}  types.ErrorResponse
	// @Failure      422      {object}  types.ErrorResponse
	// @Failure      429      {object}  types.ErrorResponse
	// @Router       /predict [post]
	r.Post("/predict", func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		var req types.PredictRequest
		if err := dec.Decode(&req); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		lvl := requestLogLevel(r)
		rid := middleware.GetReqID(r.Context())
		start := time.Now()
		if lvl >= LevelInfo {
			zlog.Info().Str("path", r.URL.Path).Str("model", req.Model).Int("sequences", len(req.Sequences)).
				Str("request_id", rid).Msg("predict start")
		}

		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if predictTimeout > 0 {
			var tcancel context.CancelFunc
			ctx, tcancel = context.WithTimeout(ctx, predictTimeout)
			defer tcancel()
		}

		resp, err := svc.Predict(ctx, req)
		if err != nil {
			// Client went away or the server is shutting down: nobody to answer.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := statusFor(err)
			if status == http.StatusTooManyRequests {
				IncrementBackpressure(manager.BusyReason(err))
			}
			writeJSONError(w, status, err.Error())
			if lvl >= LevelError && status >= http.StatusInternalServerError {
				zlog.Error().Int("status", status).Dur("dur", time.Since(start)).Str("request_id", rid).Err(err).Msg("predict end")
			} else if lvl >= LevelInfo {
				zlog.Info().Int("status", status).Dur("dur", time.Since(start)).Str("request_id", rid).Err(err).Msg("predict end")
			}
			return
		}
		writeJSON(w, http.StatusOK, resp)
		if lvl >= LevelInfo {
			ev := zlog.Info().Int("status", http.StatusOK).Dur("dur", time.Since(start)).
				Str("request_id", rid).Str("id", resp.ID).Str("model", resp.Model)
			if lvl >= LevelDebug {
				ev = ev.Strs("topologies", topologies(resp))
			}
			ev.Msg("predict end")
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready"))
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

func topologies(resp types.PredictResponse) []string {
	out := make([]string, len(resp.Results))
	for i, res := range resp.Results {
		out[i] = res.ID + ":" + res.Stats.Topology
	}
	return out
}
