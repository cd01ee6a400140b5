// Command weather is an interactive terminal client for the weather page.
//
// Input lines:
//
//	#/current-location           show the device location
//	#/weather?lat=..&lon=..      show a place
//	/N                           open search result N
//	/toggle                      show or hide the search overlay
//	:q                           quit
//
// Anything else, including an empty line, becomes the text of the search field.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"weather-page/config"
	"weather-page/datasource"
	"weather-page/page"
	"weather-page/render"
	"weather-page/route"
	"weather-page/search"
)

func main() {
	configFile := flag.String("config", "config.json", "Path to optional configuration file")
	start := flag.String("route", "", "Initial route, e.g. #/weather?lat=51.5&lon=-0.12")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider := datasource.NewOpenWeatherMapProvider(cfg.APIKey, cfg.BaseURL, cfg.HTTPTimeout)
	if err := run(ctx, cfg, provider, *start, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// terminal serialises writes from the page hook, the search panel and the prompt
type terminal struct {
	mu   sync.Mutex
	out  io.Writer
	view *page.TextView
}

func (t *terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

// pageChanged prints the page once a pass settles
func (t *terminal) pageChanged(ev page.Event, s page.Snapshot) {
	switch ev {
	case page.EventBegin:
		t.printf("loading...\n")
	case page.EventRevealed, page.EventFailed, page.EventNotFound:
		t.mu.Lock()
		defer t.mu.Unlock()
		if err := t.view.Render(t.out, s); err != nil {
			log.Printf("Failed to render page: %v", err)
		}
	}
}

// panel prints search state and remembers the last result rows for /N
type panel struct {
	term *terminal

	mu      sync.Mutex
	rows    []search.Row
	overlay bool
}

func (p *panel) SetSearching(on bool) {
	if on {
		p.term.printf("searching...\n")
	}
}

func (p *panel) Clear() {
	p.mu.Lock()
	p.rows = nil
	p.mu.Unlock()
}

func (p *panel) Show(rows []search.Row) {
	p.mu.Lock()
	p.rows = rows
	p.mu.Unlock()

	if len(rows) == 0 {
		p.term.printf("no places found\n")
		return
	}
	var b strings.Builder
	for i, r := range rows {
		fmt.Fprintf(&b, "  /%d  %s  %s\n", i+1, r.Title, r.Subtitle)
	}
	p.term.printf("%s", b.String())
}

func (p *panel) ShowError(err error) {
	p.mu.Lock()
	p.rows = nil
	p.mu.Unlock()
	p.term.printf("search failed: %v\n", err)
}

func (p *panel) Close() {
	p.mu.Lock()
	p.rows = nil
	p.overlay = false
	p.mu.Unlock()
}

func (p *panel) ToggleOverlay() {
	p.mu.Lock()
	p.overlay = !p.overlay
	on := p.overlay
	p.mu.Unlock()

	if on {
		p.term.printf("search: type a place name\n")
	} else {
		p.term.printf("search closed\n")
	}
}

func (p *panel) row(n int) (search.Row, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n < 1 || n > len(p.rows) {
		return search.Row{}, false
	}
	return p.rows[n-1], true
}

type provider interface {
	datasource.WeatherProvider
	datasource.PlaceSearcher
}

func run(ctx context.Context, cfg config.Config, prov provider, start string, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	term := &terminal{out: out, view: page.NewTextView()}
	p := page.New(term.pageChanged)
	renderer := render.NewRenderer(prov, p)

	var router *route.Router
	nav := route.NavigatorFunc(func(ctx context.Context, fragment string) error {
		return router.Dispatch(ctx, fragment)
	})
	router = route.NewRouter(renderer, route.NewStaticLocator(cfg.Home), nav, route.Weather(cfg.Fallback))

	results := &panel{term: term}
	controller := search.NewController(ctx, prov, results, search.WithDelay(cfg.SearchDebounce))
	defer controller.Stop()

	navigate := func(fragment string, initial bool) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dispatch := router.Dispatch
			if initial {
				dispatch = router.Start
			}
			err := dispatch(ctx, fragment)
			if err != nil && !errors.Is(err, render.ErrSuperseded) && ctx.Err() == nil {
				log.Printf("Navigation to %s failed: %v", fragment, err)
			}
		}()
	}

	navigate(start, true)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
			if !ok {
				return nil
			}
		}

		cmd := strings.TrimSpace(line)
		switch {
		case cmd == ":q":
			return nil
		case strings.HasPrefix(cmd, "#/"):
			navigate(cmd, false)
		case cmd == "/toggle":
			controller.ToggleOverlay()
		case strings.HasPrefix(cmd, "/"):
			n, err := strconv.Atoi(cmd[1:])
			if err != nil {
				controller.Input(cmd)
				continue
			}
			row, ok := results.row(n)
			if !ok {
				term.printf("no search result %d\n", n)
				continue
			}
			navigate(controller.Activate(row), false)
		default:
			controller.Input(cmd)
		}
	}
}
