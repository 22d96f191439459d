package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/go-compactdates/internal/config"
	"github.com/tartampluch/go-compactdates/internal/engine"
	"github.com/tartampluch/go-compactdates/internal/locale"
)

// CodecServer exposes the compact date codec over HTTP on the loopback interface.
type CodecServer struct {
	Port string
	// Year is the default implicit year. Zero means "current year" per Clock.
	Year    int
	Locale  string
	Catalog *locale.Catalog
	Clock   engine.Clock

	// startedAt stamps calendar feeds so identical queries yield identical bodies.
	startedAt time.Time
}

// NewCodecServer creates a server on the real clock.
func NewCodecServer(port string, year int, lang string, catalog *locale.Catalog) *CodecServer {
	clock := engine.RealClock{}
	return &CodecServer{
		Port:      port,
		Year:      year,
		Locale:    lang,
		Catalog:   catalog,
		Clock:     clock,
		startedAt: clock.Now().UTC().Truncate(time.Second),
	}
}

// Handler returns the routed HTTP handler.
func (s *CodecServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteDecode, s.handleDecode)
	mux.HandleFunc(config.RouteEncode, s.handleEncode)
	mux.HandleFunc(config.RouteValidate, s.handleValidate)
	mux.HandleFunc(config.RouteFormat, s.handleFormat)
	mux.HandleFunc(config.RouteCalendar, s.handleCalendar)
	return logRequests(mux)
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *CodecServer) Start(ctx context.Context) error {
	if err := config.ValidatePort(s.Port); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         config.BindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

type encodeRequest struct {
	Dates []string `json:"dates"`
}

type encodeResponse struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type validateResponse struct {
	engine.ValidationReport
	OK      bool   `json:"ok"`
	Warning string `json:"warning"`
}

type formatResponse struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *CodecServer) handleDecode(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	codec, ok := s.codecFor(w, r)
	if !ok {
		return
	}

	res, _ := codec.TryDecode(r.URL.Query().Get(config.QueryValue))
	if res.Dropped == nil {
		res.Dropped = []engine.DroppedToken{}
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *CodecServer) handleEncode(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}

	var req encodeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, config.MaxRequestBody))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: config.ErrBadRequestBody})
		return
	}

	dates := engine.ParseDates(req.Dates)
	codec := &engine.Codec{Clock: s.Clock, Year: s.Year}
	writeJSON(w, r, http.StatusOK, encodeResponse{
		Value: codec.Encode(dates),
		Count: engine.EncodedDayCount(dates),
	})
}

func (s *CodecServer) handleValidate(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	codec, ok := s.codecFor(w, r)
	if !ok {
		return
	}

	report := codec.Validate(r.URL.Query().Get(config.QueryValue))
	if report.Dropped == nil {
		report.Dropped = []engine.DroppedToken{}
	}
	writeJSON(w, r, http.StatusOK, validateResponse{
		ValidationReport: report,
		OK:               report.OK(),
		Warning:          codec.Warning(report),
	})
}

func (s *CodecServer) handleFormat(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	codec, ok := s.codecFor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	dates := codec.Decode(q.Get(config.QueryValue))

	var text string
	if ranges, _ := strconv.ParseBool(q.Get(config.QueryRanges)); ranges {
		text = codec.FormatRanges(dates)
	} else {
		style := q.Get(config.QueryStyle)
		if style == "" {
			style = config.StyleShort
		}
		text = codec.Format(dates, style)
	}
	writeJSON(w, r, http.StatusOK, formatResponse{Text: text})
}

// handleCalendar serves the decoded value as an iCalendar feed with HTTP caching support.
func (s *CodecServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	codec, ok := s.codecFor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	data, err := engine.ExportICS(codec.Decode(q.Get(config.QueryValue)), engine.ExportOptions{
		Name:  q.Get(config.QueryName),
		Clock: fixedClock(s.startedAt),
	})
	if err != nil {
		slog.Error(config.ErrICalEncode,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		http.Error(w, config.HTTPMsgInternalErr, http.StatusInternalServerError)
		return
	}

	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))
	lastModified := s.startedAt.Format(http.TimeFormat)

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, etag)
	w.Header().Set(config.HeaderLastModified, lastModified)

	if notModified(r, etag, s.startedAt) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if r.Method == http.MethodGet {
		if _, err := w.Write(data); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// codecFor builds a request-scoped codec from the year and locale query parameters.
// It writes a 400 response and returns false when the year is malformed.
func (s *CodecServer) codecFor(w http.ResponseWriter, r *http.Request) (*engine.Codec, bool) {
	q := r.URL.Query()

	year := s.Year
	if raw := q.Get(config.QueryYear); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: config.ErrBadYear})
			return nil, false
		}
		if n < 1 || n > 9999 {
			writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: config.ErrYearRange})
			return nil, false
		}
		year = n
	}

	lang := q.Get(config.QueryLocale)
	if lang == "" {
		lang = s.Locale
	}

	codec := &engine.Codec{Clock: s.Clock, Year: year}
	if s.Catalog != nil {
		codec.Locale = s.Catalog.Locale(lang)
	}
	return codec, true
}

// notModified evaluates If-None-Match first, then If-Modified-Since.
func notModified(r *http.Request, etag string, modified time.Time) bool {
	if match := r.Header.Get(config.HeaderIfNoneMatch); match != "" {
		return match == etag
	}
	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			return !modified.After(clientTime)
		}
	}
	return false
}

func allowMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	if slices.Contains(methods, r.Method) {
		return true
	}
	w.Header().Set(config.HeaderAllow, strings.Join(methods, config.MethodSeparator))
	http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
	return false
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug(config.MsgRequestServed,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyMethod, r.Method,
			config.LogKeyPath, r.URL.Path,
			config.LogKeyDuration, time.Since(start).Milliseconds(),
		)
	})
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }
