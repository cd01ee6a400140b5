// Package render runs the fetch-and-populate sequence of the weather page.
//
// Every call to Render starts a session with a fresh generation token and cancels the
// previous session. Writes from a session whose token is no longer current are
// dropped, so a superseded pass never touches the page.
package render

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"weather-page/datasource"
	"weather-page/models"
	"weather-page/page"
)

// ErrSuperseded is returned by Render when a newer session replaced this one
var ErrSuperseded = errors.New("render superseded")

// Target is the page a session writes into
type Target interface {
	Begin(session string, fromDevice bool)
	SetCurrent(card page.CurrentCard)
	SetLocation(label string)
	SetHighlights(h page.Highlights)
	SetForecast(hourly []page.HourlySlot, daily []page.DailySlot)
	Reveal()
	Fail(err error)
	NotFound(err error)
}

var _ Target = (*page.Page)(nil)

// Renderer owns one Target and at most one live session
type Renderer struct {
	provider datasource.WeatherProvider
	target   Target

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	dropped rate.Sometimes
}

// NewRenderer creates a renderer that fetches from provider and writes into target
func NewRenderer(provider datasource.WeatherProvider, target Target) *Renderer {
	return &Renderer{
		provider: provider,
		target:   target,
		dropped:  rate.Sometimes{Interval: 5 * time.Second},
	}
}

// session is a single render pass
type session struct {
	r      *Renderer
	id     string
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
	failed bool // guarded by r.mu
}

// Render fetches everything for c and populates the target. It returns when every
// fetch of the pass has completed, ErrSuperseded if a newer Render replaced it, or
// the first failure, which is also shown on the page.
func (r *Renderer) Render(ctx context.Context, c models.Coordinates, fromDevice bool) error {
	s := r.begin(ctx, fromDevice)
	defer s.cancel()

	log.Printf("Render %s started for %v,%v", s.id, c.Lat, c.Lon)
	start := time.Now()

	err := s.run(c)
	switch {
	case err == nil:
		log.Printf("Render %s complete in %s", s.id, time.Since(start).Round(time.Millisecond))
		return nil
	case s.stale():
		return ErrSuperseded
	default:
		if s.fail(err) {
			log.Printf("Render %s failed: %v", s.id, err)
		}
		return err
	}
}

// Update implements route.View
func (r *Renderer) Update(ctx context.Context, c models.Coordinates, fromDevice bool) error {
	return r.Render(ctx, c, fromDevice)
}

// NotFound implements route.View. It supersedes the live session, if any, so a
// late completion cannot overwrite the not-found state.
func (r *Renderer) NotFound(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gen++
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.target.NotFound(err)
}

func (r *Renderer) begin(ctx context.Context, fromDevice bool) *session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
	r.gen++

	sctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	s := &session{
		r:      r,
		id:     uuid.NewString(),
		gen:    r.gen,
		ctx:    sctx,
		cancel: cancel,
	}
	r.target.Begin(s.id, fromDevice)
	return s
}

// run fetches current weather first; reverse geocoding, air quality and the forecast
// follow in parallel once it is on the page. The page is revealed when the forecast lands.
// A missing place name does not fail the pass.
func (s *session) run(c models.Coordinates) error {
	g, ctx := errgroup.WithContext(s.ctx)
	p := s.r.provider

	g.Go(func() error {
		cw, err := p.CurrentWeather(ctx, c)
		if err != nil {
			return fmt.Errorf("failed to fetch current weather: %w", err)
		}
		if err := s.apply(ctx, func(t Target) { t.SetCurrent(NewCurrentCard(cw)) }); err != nil {
			return err
		}

		// The place name is optional: without it the label stays blank.
		g.Go(func() error {
			places, err := p.ReverseGeocode(ctx, c)
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("Render %s: failed to fetch place name: %v", s.id, err)
				}
				return nil
			}
			return s.apply(ctx, func(t Target) { t.SetLocation(LocationLabel(places[0])) })
		})

		g.Go(func() error {
			aq, err := p.AirPollution(ctx, c)
			if err != nil {
				return fmt.Errorf("failed to fetch air quality: %w", err)
			}
			h, err := NewHighlights(cw, aq)
			if err != nil {
				return err
			}
			return s.apply(ctx, func(t Target) { t.SetHighlights(h) })
		})

		g.Go(func() error {
			fc, err := p.Forecast(ctx, c)
			if err != nil {
				return fmt.Errorf("failed to fetch forecast: %w", err)
			}
			hourly, daily := HourlyStrip(fc), DailyStrip(fc)
			return s.apply(ctx, func(t Target) {
				t.SetForecast(hourly, daily)
				t.Reveal()
			})
		})
		return nil
	})

	return g.Wait()
}

// apply runs write against the target unless the session is stale or has failed
func (s *session) apply(ctx context.Context, write func(Target)) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()

	if s.gen != s.r.gen {
		s.r.dropped.Do(func() {
			log.Printf("Dropping write from superseded render %s", s.id)
		})
		return ErrSuperseded
	}
	// Another fetch of this pass already failed.
	if s.failed || ctx.Err() != nil {
		return ctx.Err()
	}
	write(s.r.target)
	return nil
}

// fail puts the page in the error state once; it reports whether it did
func (s *session) fail(err error) bool {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()

	if s.gen != s.r.gen || s.failed {
		return false
	}
	s.failed = true
	s.r.target.Fail(err)
	return true
}

func (s *session) stale() bool {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	return s.gen != s.r.gen
}
