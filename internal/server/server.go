// Package server serves a packed state-space artifact over HTTP.
//
// Routes:
//
//	GET /healthz      liveness check
//	GET /version      build info as JSON
//	GET /graph/meta   JSON header summary
//	GET /graph.bin    raw packed bytes
//	GET /graph        packed bytes, zstd or gzip encoded when accepted
//	GET /graph.json   the decoded interchange document
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/klotskigraph/pkg/buildinfo"
	"github.com/matzehuels/klotskigraph/pkg/cache"
	"github.com/matzehuels/klotskigraph/pkg/packed"
)

const contentTypePacked = "application/octet-stream"

// Artifact is a decoded packed graph with its precomputed encodings.
type Artifact struct {
	Graph *packed.Graph

	raw       []byte
	encodings map[string][]byte
	etag      string
}

// NewArtifact accepts packed bytes in any supported codec, validates them
// and prepares the gzip and zstd encodings.
func NewArtifact(data []byte) (*Artifact, error) {
	raw, _, err := packed.Unwrap(data)
	if err != nil {
		return nil, err
	}
	g, err := packed.Decode(raw)
	if err != nil {
		return nil, err
	}

	a := &Artifact{
		Graph:     g,
		raw:       raw,
		encodings: make(map[string][]byte, 2),
		etag:      `"` + cache.Hash(raw)[:32] + `"`,
	}
	for _, name := range []string{packed.CodecZstd, packed.CodecGzip} {
		c, err := packed.CodecByName(name)
		if err != nil {
			return nil, err
		}
		if a.encodings[name], err = c.Compress(raw); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Meta is the body of GET /graph/meta.
type Meta struct {
	Version     uint16  `json:"version"`
	Nodes       uint32  `json:"nodes"`
	Edges       uint32  `json:"edges"`
	Pieces      uint16  `json:"pieces"`
	BoardWidth  uint8   `json:"board_width"`
	BoardHeight uint8   `json:"board_height"`
	Scale       float64 `json:"scale"`
	RawSize     int     `json:"raw_size"`
	GzipSize    int     `json:"gzip_size"`
	ZstdSize    int     `json:"zstd_size"`
	ETag        string  `json:"etag"`
}

// Meta summarizes the artifact.
func (a *Artifact) Meta() Meta {
	h := a.Graph.Header
	return Meta{
		Version:     h.Version,
		Nodes:       h.NodeCount,
		Edges:       h.EdgeCount,
		Pieces:      h.PieceCount,
		BoardWidth:  h.BoardWidth,
		BoardHeight: h.BoardHeight,
		Scale:       h.Scale(),
		RawSize:     len(a.raw),
		GzipSize:    len(a.encodings[packed.CodecGzip]),
		ZstdSize:    len(a.encodings[packed.CodecZstd]),
		ETag:        a.etag,
	}
}

// Server wires the HTTP layer to one artifact.
type Server struct {
	artifact *Artifact
	logger   *log.Logger

	srvMu sync.Mutex
	srv   *http.Server
}

// New creates a server for a.
func New(a *Artifact, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{artifact: a, logger: logger}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, buildinfo.Get())
	})
	r.Get("/graph/meta", s.handleMeta)
	r.Get("/graph.bin", s.handleRaw)
	r.Get("/graph", s.handleGraph)
	r.Get("/graph.json", s.handleJSON)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("serving artifact", "addr", addr, "nodes", s.artifact.Graph.Header.NodeCount)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Close(shutdownCtx)
	}
}

// Close attempts a graceful shutdown of the HTTP server.
func (s *Server) Close(ctx context.Context) error {
	s.srvMu.Lock()
	srv := s.srv
	s.srv = nil
	s.srvMu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.artifact.Meta())
}

func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	s.writeBody(w, r, s.artifact.raw, "")
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Vary", "Accept-Encoding")
	enc := negotiate(r.Header.Get("Accept-Encoding"))
	if enc == "" {
		s.writeBody(w, r, s.artifact.raw, "")
		return
	}
	s.writeBody(w, r, s.artifact.encodings[enc], enc)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.artifact.Graph.ToGraph())
}

func (s *Server) writeBody(w http.ResponseWriter, r *http.Request, body []byte, encoding string) {
	h := w.Header()
	h.Set("Content-Type", contentTypePacked)
	etag := s.artifact.etagFor(encoding)
	h.Set("ETag", etag)
	h.Set("Cache-Control", "public, max-age=3600")
	if noneMatch(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if encoding != "" {
		h.Set("Content-Encoding", encoding)
	}
	_, _ = w.Write(body)
}

// etagFor returns the entity tag of the body in the given content coding.
// Each coding is a different representation and gets its own tag.
func (a *Artifact) etagFor(encoding string) string {
	if encoding == "" {
		return a.etag
	}
	return strings.TrimSuffix(a.etag, `"`) + "-" + encoding + `"`
}

// noneMatch reports whether an If-None-Match header matches etag. The
// header is "*" or a list of tags; weak tags compare by their opaque part.
func noneMatch(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	for _, tag := range strings.Split(header, ",") {
		if strings.TrimPrefix(strings.TrimSpace(tag), "W/") == etag {
			return true
		}
	}
	return false
}

// negotiate picks zstd, then gzip, from an Accept-Encoding header. Quality
// values of zero disable a coding.
func negotiate(header string) string {
	accepted := make(map[string]bool)
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		params = strings.ReplaceAll(params, " ", "")
		if q, ok := strings.CutPrefix(params, "q="); ok {
			if v, err := strconv.ParseFloat(q, 64); err == nil && v == 0 {
				continue
			}
		}
		accepted[strings.ToLower(strings.TrimSpace(name))] = true
	}
	for _, enc := range []string{packed.CodecZstd, packed.CodecGzip} {
		if accepted[enc] {
			return enc
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
