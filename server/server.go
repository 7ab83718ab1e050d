// Package server 通过 HTTP 暴露推荐接口、健康检查与 Prometheus 指标。
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rushteam/seqrec/core"
)

const maxBodyBytes = 1 << 20

// Recommender 是 HTTP 层依赖的推理链路，*pipeline.Pipeline 实现此接口。
type Recommender interface {
	Recommend(ctx context.Context, req *core.Request) (*core.Response, error)
	Ready(ctx context.Context) error
}

// Options HTTP 层配置
type Options struct {
	// RequestTimeout 单个推荐请求的截止时间（0 表示不限制）
	RequestTimeout time.Duration
}

// Server 持有路由与依赖
type Server struct {
	rec    Recommender
	opts   Options
	logger zerolog.Logger
	router chi.Router
}

// New 创建 HTTP 服务并注册路由。
func New(rec Recommender, opts Options, logger zerolog.Logger) *Server {
	s := &Server{
		rec:    rec,
		opts:   opts,
		logger: logger.With().Str("component", "server").Logger(),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.accessLog)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health/live", s.handleLive)
	r.Get("/health/ready", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/v1/recommend", s.handleRecommend)
	r.Post("/invocations", s.handleInvocations)

	s.router = r
	return s
}

// Handler 返回根 http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}

func (s *Server) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.RequestTimeout > 0 {
		return context.WithTimeout(ctx, s.opts.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.rec.Ready(r.Context()); err != nil {
		s.writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

// errorResponse 错误响应体
type errorResponse struct {
	Error string `json:"error"`
}

// statusFor 把链路错误映射为 HTTP 状态码
func statusFor(err error) int {
	switch {
	case core.IsInvalidInput(err):
		return http.StatusBadRequest
	case core.IsUnavailable(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Int("status", status).
			Msg("request failed")
	}
	s.writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

// writeJSON 序列化失败时记录日志并返回带错误信息的 500。
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		s.logger.Error().Err(err).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Int("status", status).
			Msg("encode response failed")
		status = http.StatusInternalServerError
		data, _ = json.Marshal(errorResponse{Error: "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "invalid request body: "+err.Error())
	}
	return nil
}
