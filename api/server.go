package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"weather-page/config"
	"weather-page/datasource"
	"weather-page/page"
	"weather-page/render"
	"weather-page/route"
	"weather-page/search"
)

const (
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Provider is the upstream the server renders pages and searches from
type Provider interface {
	datasource.WeatherProvider
	datasource.PlaceSearcher
}

// Server represents the HTTP front-end
type Server struct {
	provider Provider
	geo      route.Geolocator
	fallback route.Route
	view     *page.HTMLView
	server   *http.Server
}

// NewServer creates a server for cfg that fetches from provider
func NewServer(provider Provider, cfg config.Config) *Server {
	s := &Server{
		provider: provider,
		geo:      route.NewStaticLocator(cfg.Home),
		fallback: route.Weather(cfg.Fallback),
		view:     page.NewHTMLView(),
	}
	s.server = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.Routes(cfg.AssetsDir),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Routes builds the HTTP handler. Icons are served from assetsDir.
func (s *Server) Routes(assetsDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(requestTimeout),
	)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, route.PathCurrentLocation, http.StatusFound)
	})
	r.Get(route.PathCurrentLocation, s.handlePage)
	r.Get(route.PathWeather, s.handlePage)

	r.Get("/api/search", s.handleSearch)
	r.Get("/api/health", s.handleHealthCheck)

	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(assetsDir))))

	r.NotFound(s.handlePage)
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting API server on %s", s.server.Addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handlePage dispatches the request path as a route fragment against a fresh page.
// Navigation performed by the router becomes a redirect.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	fragment := "#" + r.URL.Path
	if r.URL.RawQuery != "" {
		fragment += "?" + r.URL.RawQuery
	}

	p := page.New(nil)
	renderer := render.NewRenderer(s.provider, p)

	var redirect string
	nav := route.NavigatorFunc(func(_ context.Context, fragment string) error {
		redirect = fragment
		return nil
	})
	router := route.NewRouter(renderer, s.geo, nav, s.fallback)

	err := router.Dispatch(r.Context(), fragment)
	if redirect != "" {
		http.Redirect(w, r, strings.TrimPrefix(redirect, "#"), http.StatusFound)
		return
	}

	snap := p.Snapshot()
	status := http.StatusOK
	switch {
	case snap.NotFound:
		status = http.StatusNotFound
	case err != nil:
		log.Printf("Failed to render %s: %v", fragment, err)
		status = http.StatusBadGateway
	}

	var buf bytes.Buffer
	if err := s.view.Render(&buf, snap); err != nil {
		log.Printf("Failed to execute page template: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// SearchResult is one candidate place in a search response
type SearchResult struct {
	Name    string  `json:"name"`
	State   string  `json:"state,omitempty"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Title   string  `json:"title"`
	Detail  string  `json:"detail"`
	Link    string  `json:"link"`
}

// SearchResponse is the body of /api/search
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	locations, err := s.provider.Search(r.Context(), query)
	if err != nil {
		log.Printf("Search for %q failed: %v", query, err)
		writeError(w, upstreamStatus(err), err.Error())
		return
	}

	resp := SearchResponse{Query: query, Results: make([]SearchResult, 0, len(locations))}
	for _, l := range locations {
		row := search.NewRow(l)
		resp.Results = append(resp.Results, SearchResult{
			Name:    l.Name,
			State:   l.State,
			Country: l.Country,
			Lat:     l.Lat,
			Lon:     l.Lon,
			Title:   row.Title,
			Detail:  row.Subtitle,
			Link:    row.Link,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"provider":  s.provider.Name(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// upstreamStatus maps a provider error to the status reported to the client
func upstreamStatus(err error) int {
	var apiErr *datasource.APIError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}
