package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vadiminshakov/coinsight/internal/domain"
	"github.com/vadiminshakov/coinsight/internal/metrics"
	"github.com/vadiminshakov/coinsight/internal/report"
	"go.uber.org/zap"
)

const (
	defaultRefreshInterval = time.Minute
	heartbeatInterval      = 30 * time.Second
)

// ReportBuilder produces a fresh report, typically by re-reading the listing.
type ReportBuilder func(ctx context.Context) (report.Report, error)

// RunLister reads journaled runs.
type RunLister interface {
	RunsAfter(index uint64) ([]domain.RunRecord, error)
}

// Server exposes the recommendations as an HTML page, JSON and an SSE stream.
type Server struct {
	Addr    string
	Build   ReportBuilder
	Refresh time.Duration
	// Runs nil disables /api/runs.
	Runs RunLister
	// Gatherer nil disables /metrics.
	Gatherer prometheus.Gatherer
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRuns exposes the run journal under /api/runs.
func WithRuns(runs RunLister) Option {
	return func(s *Server) {
		s.Runs = runs
	}
}

// WithMetrics instruments requests and serves the gatherer under /metrics.
func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.Gatherer = gatherer
	}
}

// NewServer creates a new web server instance.
func NewServer(logger *zap.Logger, addr string, build ReportBuilder, refresh time.Duration, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if refresh <= 0 {
		refresh = defaultRefreshInterval
	}
	s := &Server{Addr: addr, Build: build, Refresh: refresh, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/recommendations", s.handleRecommendations)
	mux.HandleFunc("/recommendations/stream", s.handleStream)
	mux.HandleFunc("/api/runs", s.handleRuns)
	if s.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	if s.metrics == nil {
		return mux
	}
	return s.instrument(mux)
}

// statusRecorder keeps the response status for metrics. It forwards Flush so the
// SSE stream still works behind it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *Server) instrument(next *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		// set by the mux on match
		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		s.metrics.RecordHTTPRequest(r.Method, path, rec.status, time.Since(started))
	})
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("serving recommendations", zap.String("addr", s.Addr), zap.Duration("refresh", s.Refresh))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	rep, err := s.Build(r.Context())
	if err != nil {
		s.logger.Error("failed to build report", zap.Error(err))
		http.Error(w, "failed to build report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, rep); err != nil {
		s.logger.Error("failed to render index", zap.Error(err))
	}
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	rep, err := s.Build(r.Context())
	if err != nil {
		s.logger.Error("failed to build report", zap.Error(err))
		http.Error(w, "failed to build report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rep); err != nil {
		s.logger.Error("failed to encode report", zap.Error(err))
	}
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.Runs == nil {
		http.NotFound(w, r)
		return
	}

	var after uint64
	if raw := r.URL.Query().Get("after"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid after index", http.StatusBadRequest)
			return
		}
		after = v
	}

	runs, err := s.Runs.RunsAfter(after)
	if err != nil {
		s.logger.Error("failed to read run journal", zap.Error(err))
		http.Error(w, "failed to read run journal", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []domain.RunRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(runs); err != nil {
		s.logger.Error("failed to encode runs", zap.Error(err))
	}
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// send a comment heartbeat so proxies keep connection
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	refresh := time.NewTicker(s.Refresh)
	defer refresh.Stop()

	sendReport := func() error {
		rep, err := s.Build(r.Context())
		if err != nil {
			return err
		}
		payload, err := json.Marshal(rep)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "event: report\n")
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
		return nil
	}

	if err := sendReport(); err != nil {
		http.Error(w, "failed to build report", http.StatusInternalServerError)
		s.logger.Error("report stream initial load", zap.Error(err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-refresh.C:
			if err := sendReport(); err != nil {
				s.logger.Warn("report stream refresh", zap.Error(err))
			}
		}
	}
}

var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"price":   report.FormatPrice,
	"usd":     report.FormatUSD,
	"percent": report.FormatPercent,
	"inc":     func(i int) int { return i + 1 },
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Coinsight</title>
  <link href="https://fonts.googleapis.com/css2?family=Space+Mono:wght@400;700&display=swap" rel="stylesheet">
  <style>
    :root { --bg:#ffffff; --ink:#111111; --ink-soft:#9c9c9c; --panel:#f6f6f6; --up:#2e8b57; --down:#c0392b; }
    * { box-sizing:border-box; }
    body { margin:0; padding:2rem; background:var(--bg); color:var(--ink); font-family:'Space Mono','JetBrains Mono',monospace; }
    #app { max-width:1400px; margin:0 auto; background:var(--panel); border:3px solid var(--ink); padding:2rem; box-shadow:12px 12px 0 rgba(0,0,0,.15); }
    table { width:100%; border-collapse:collapse; margin-top:1rem; }
    th, td { text-align:left; padding:.4rem .6rem; border-bottom:1px dashed rgba(0,0,0,.15); }
    .muted { color:var(--ink-soft); }
    .bullish { color:var(--up); font-weight:700; }
    .bearish { color:var(--down); font-weight:700; }
    ul { margin:.2rem 0 .8rem; }
  </style>
</head>
<body>
<div id="app">
  <header>
    <h1>COINSIGHT</h1>
    <p class="muted" id="generated">generated {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}</p>
    <p>Total market cap {{usd .Market.TotalMarketCap}} &middot; 24h volume {{usd .Market.TotalVolume24h}}</p>
  </header>
  <table>
    <thead>
      <tr><th>#</th><th>Asset</th><th>Price</th><th>24h</th><th>7d</th><th>Rec</th><th>Trend</th><th>Momentum</th><th>Risk</th><th>Signal</th><th>1w target</th><th>Forecast</th></tr>
    </thead>
    <tbody id="rows">
    {{range $i, $e := .Recommendations}}
      <tr>
        <td>{{inc $i}}</td>
        <td>{{$e.Asset.Name}} ({{$e.Asset.Symbol}})</td>
        <td>{{price $e.Asset.Price}}</td>
        <td>{{percent $e.Asset.PercentChange24h}}</td>
        <td>{{percent $e.Asset.PercentChange7d}}</td>
        <td>{{$e.RecommendationScore}}</td>
        <td>{{$e.TrendScore}}</td>
        <td>{{$e.MomentumScore}}</td>
        <td>{{$e.RiskScore}}</td>
        <td class="{{if $e.Recommendation.IsBullish}}bullish{{else if $e.Recommendation.IsBearish}}bearish{{end}}">{{$e.Recommendation}}</td>
        <td>{{if $e.Forecast}}{{price $e.Forecast.Targets.ShortTerm}}{{end}}</td>
        <td class="muted">{{$e.ForecastSource}}</td>
      </tr>
    {{else}}
      <tr><td colspan="12" class="muted">no assets could be evaluated</td></tr>
    {{end}}
    </tbody>
  </table>
  {{range .Recommendations}}
  <h3>{{.Asset.Symbol}}</h3>
  <ul>
    {{range .Reasoning}}<li>{{.}}</li>{{end}}
    {{range .RiskFactors}}<li class="bearish">{{.}}</li>{{end}}
  </ul>
  {{end}}
</div>
<script>
  const source = new EventSource('/recommendations/stream');
  let first = true;
  source.addEventListener('report', () => {
    if (first) { first = false; return; }
    window.location.reload();
  });
</script>
</body>
</html>
`
