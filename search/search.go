// Package search implements search-as-you-type over place names with a debounce.
package search

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"weather-page/datasource"
	"weather-page/models"
	"weather-page/route"
)

// DefaultDelay is how long input must pause before a search is issued
const DefaultDelay = 500 * time.Millisecond

// Row is one search result
type Row struct {
	Title    string
	Subtitle string
	Link     string
	Location models.Location
}

// NewRow builds a result row whose link navigates to the place's weather
func NewRow(l models.Location) Row {
	return Row{
		Title:    l.Name,
		Subtitle: strings.TrimSpace(l.State + " " + l.Country),
		Link:     route.Weather(l.Coordinates()).Fragment(),
		Location: l,
	}
}

// Panel is the search UI a Controller drives
type Panel interface {
	// SetSearching toggles the in-progress state of the search field
	SetSearching(on bool)
	// Clear empties and hides the results panel
	Clear()
	// Show replaces the results with rows and shows the panel
	Show(rows []Row)
	// ShowError replaces the results with err and shows the panel
	ShowError(err error)
	// Close hides the results panel and the search overlay
	Close()
	// ToggleOverlay shows or hides the search overlay
	ToggleOverlay()
}

// Controller debounces input and issues at most one search per pause
type Controller struct {
	searcher datasource.PlaceSearcher
	panel    Panel
	clock    clock.Clock
	delay    time.Duration

	mu    sync.Mutex
	timer *clock.Timer
	seq   uint64
	ctx   context.Context
}

// Option configures a Controller
type Option func(*Controller)

// WithClock replaces the wall clock, for tests
func WithClock(c clock.Clock) Option {
	return func(ctrl *Controller) { ctrl.clock = c }
}

// WithDelay sets the debounce delay
func WithDelay(d time.Duration) Option {
	return func(ctrl *Controller) { ctrl.delay = d }
}

// NewController creates a controller. Searches run with ctx, so cancelling it stops
// pending and in-flight searches.
func NewController(ctx context.Context, searcher datasource.PlaceSearcher, panel Panel, opts ...Option) *Controller {
	c := &Controller{
		searcher: searcher,
		panel:    panel,
		clock:    clock.New(),
		delay:    DefaultDelay,
		ctx:      ctx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Input handles a change of the search field to text. Any pending search is
// cancelled; a new one is armed only for non-empty text.
func (c *Controller) Input(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.seq++

	if text == "" {
		c.panel.Clear()
		c.panel.SetSearching(false)
		return
	}

	c.panel.SetSearching(true)
	seq := c.seq
	c.timer = c.clock.AfterFunc(c.delay, func() {
		c.search(seq, text)
	})
}

// Activate closes the results and the overlay and returns where row navigates to
func (c *Controller) Activate(row Row) string {
	c.panel.Close()
	return row.Link
}

// ToggleOverlay shows or hides the search overlay
func (c *Controller) ToggleOverlay() {
	c.panel.ToggleOverlay()
}

// Stop cancels any pending search
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.seq++
}

func (c *Controller) search(seq uint64, text string) {
	if !c.current(seq) {
		return
	}

	locations, err := c.searcher.Search(c.ctx, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	// Input changed while the request was in flight.
	if seq != c.seq {
		return
	}
	c.timer = nil
	c.panel.SetSearching(false)
	if err != nil {
		log.Printf("Search for %q failed: %v", text, err)
		c.panel.ShowError(err)
		return
	}

	rows := make([]Row, 0, len(locations))
	for _, l := range locations {
		rows = append(rows, NewRow(l))
	}
	c.panel.Show(rows)
}

func (c *Controller) current(seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return seq == c.seq
}
