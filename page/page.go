// Package page holds the weather page view model: four regions plus the loading,
// error and "use my location" state that a render session writes into.
package page

import (
	"sync"
)

// Event names the kind of change a Page reports to its hook
type Event string

const (
	EventBegin      Event = "begin"
	EventCurrent    Event = "current"
	EventLocation   Event = "location"
	EventHighlights Event = "highlights"
	EventForecast   Event = "forecast"
	EventRevealed   Event = "revealed"
	EventFailed     Event = "failed"
	EventNotFound   Event = "not-found"
)

// CurrentCard is the "now" region
type CurrentCard struct {
	Temperature int
	Icon        string
	Description string
	Date        string
}

// Pollutant is one concentration reading on the air quality tile
type Pollutant struct {
	Label string
	Value string
}

// Highlights is the "today's highlights" region
type Highlights struct {
	Pollutants []Pollutant
	AQI        int
	AQILevel   string
	AQIMessage string
	Sunrise    string
	Sunset     string
	Humidity   string
	Pressure   string
	Visibility string
	FeelsLike  int
}

// HourlySlot is one 3-hour step of the hourly strip
type HourlySlot struct {
	Hour         string
	Icon         string
	Description  string
	Temperature  int
	WindKmh      int
	WindRotation int // degrees to rotate the direction arrow
}

// DailySlot is one day of the 5-day strip
type DailySlot struct {
	Icon           string
	Description    string
	TemperatureMax int
	Weekday        string
	DayMonth       string
}

// Snapshot is a copy of the page state
type Snapshot struct {
	Session                string
	Loading                bool
	Revealed               bool
	NotFound               bool
	Err                    string
	LocationButtonDisabled bool

	Current    *CurrentCard
	Location   string
	Highlights *Highlights
	Hourly     []HourlySlot
	Daily      []DailySlot
}

// Page is the mutable page a render session owns. It is safe for concurrent use.
type Page struct {
	mu    sync.Mutex
	state Snapshot
	hook  func(Event, Snapshot)
}

// New creates an empty page. hook, if not nil, is called after every change with a
// snapshot of the new state; it must not call back into whatever is writing the page.
func New(hook func(Event, Snapshot)) *Page {
	return &Page{hook: hook}
}

// Begin shows the loading state, clears all regions and hides the error state
func (p *Page) Begin(session string, fromDevice bool) {
	p.update(EventBegin, func(s *Snapshot) {
		*s = Snapshot{
			Session:                session,
			Loading:                true,
			LocationButtonDisabled: fromDevice,
		}
	})
}

// SetCurrent fills the "now" region
func (p *Page) SetCurrent(card CurrentCard) {
	p.update(EventCurrent, func(s *Snapshot) {
		s.Current = &card
	})
}

// SetLocation fills the place label of the "now" region
func (p *Page) SetLocation(label string) {
	p.update(EventLocation, func(s *Snapshot) {
		s.Location = label
	})
}

// SetHighlights fills the highlights region
func (p *Page) SetHighlights(h Highlights) {
	p.update(EventHighlights, func(s *Snapshot) {
		s.Highlights = &h
	})
}

// SetForecast fills the hourly and 5-day regions
func (p *Page) SetForecast(hourly []HourlySlot, daily []DailySlot) {
	p.update(EventForecast, func(s *Snapshot) {
		s.Hourly = hourly
		s.Daily = daily
	})
}

// Reveal hides the loading state and shows the page
func (p *Page) Reveal() {
	p.update(EventRevealed, func(s *Snapshot) {
		s.Loading = false
		s.Revealed = true
	})
}

// Fail hides the loading state and shows err
func (p *Page) Fail(err error) {
	p.update(EventFailed, func(s *Snapshot) {
		s.Loading = false
		s.Err = err.Error()
	})
}

// NotFound shows the not-found state
func (p *Page) NotFound(err error) {
	p.update(EventNotFound, func(s *Snapshot) {
		*s = Snapshot{NotFound: true}
		if err != nil {
			s.Err = err.Error()
		}
	})
}

// Snapshot returns a copy of the current state
func (p *Page) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.clone()
}

func (p *Page) update(ev Event, change func(*Snapshot)) {
	p.mu.Lock()
	change(&p.state)
	snap := p.state.clone()
	p.mu.Unlock()

	if p.hook != nil {
		p.hook(ev, snap)
	}
}

func (s Snapshot) clone() Snapshot {
	out := s
	if s.Current != nil {
		c := *s.Current
		out.Current = &c
	}
	if s.Highlights != nil {
		h := *s.Highlights
		h.Pollutants = append([]Pollutant(nil), s.Highlights.Pollutants...)
		out.Highlights = &h
	}
	out.Hourly = append([]HourlySlot(nil), s.Hourly...)
	out.Daily = append([]DailySlot(nil), s.Daily...)
	return out
}
