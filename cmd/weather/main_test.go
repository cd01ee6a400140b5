package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"weather-page/config"
	"weather-page/datasource"
	"weather-page/datasource/owmtest"
)

// syncBuffer is a bytes.Buffer safe to read while the client writes to it
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type session struct {
	upstream *owmtest.Server
	in       *io.PipeWriter
	out      *syncBuffer
	done     chan error
}

func startSession(t *testing.T, start string) *session {
	t.Helper()

	upstream := owmtest.NewServer(t)
	prov := datasource.NewOpenWeatherMapProvider(owmtest.APIKey, upstream.URL, 5*time.Second)
	cfg := config.Default()
	cfg.SearchDebounce = 10 * time.Millisecond

	pr, pw := io.Pipe()
	s := &session{upstream: upstream, in: pw, out: &syncBuffer{}, done: make(chan error, 1)}
	go func() {
		s.done <- run(context.Background(), cfg, prov, start, pr, s.out)
	}()
	t.Cleanup(func() { pw.Close() })
	return s
}

func (s *session) send(t *testing.T, line string) {
	t.Helper()
	if _, err := io.WriteString(s.in, line+"\n"); err != nil {
		t.Fatalf("failed to send %q: %v", line, err)
	}
}

func (s *session) waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s; output:\n%s", what, s.out.String())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func (s *session) waitOutput(t *testing.T, want string) {
	t.Helper()
	s.waitFor(t, func() bool { return strings.Contains(s.out.String(), want) }, want)
}

func (s *session) quit(t *testing.T) {
	t.Helper()
	s.send(t, ":q")
	select {
	case err := <-s.done:
		if err != nil {
			t.Errorf("run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("client did not quit")
	}
}

func TestInitialRoutePrintsPage(t *testing.T) {
	s := startSession(t, "#/weather?lat=24.833271&lon=92.778908")

	s.waitOutput(t, "5 days")
	out := s.out.String()
	for _, want := range []string{"Silchar, IN", "21°C  haze", "AQI 2 Fair"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	s.quit(t)
}

func TestEmptyStartFallsBackToDefaultPlace(t *testing.T) {
	s := startSession(t, "")

	s.waitOutput(t, "5 days")
	reqs := s.upstream.Requests(owmtest.PathWeather)
	if len(reqs) != 1 || reqs[0].Get("lat") != "24.833271" || reqs[0].Get("lon") != "92.778908" {
		t.Errorf("unexpected weather requests: %v", reqs)
	}
	s.quit(t)
}

func TestSearchAndOpenResult(t *testing.T) {
	s := startSession(t, "#/weather?lat=24.833271&lon=92.778908")
	s.waitOutput(t, "5 days")

	s.send(t, "/toggle")
	s.send(t, "London")
	s.waitOutput(t, "/3  London  US")

	s.send(t, "/3")
	s.waitFor(t, func() bool {
		for _, q := range s.upstream.Requests(owmtest.PathForecast) {
			if q.Get("lat") == "39.8864493" && q.Get("lon") == "-83.4482508" {
				return true
			}
		}
		return false
	}, "forecast for the chosen place")

	s.send(t, "/9")
	s.waitOutput(t, "no search result 9")
	s.quit(t)
}

func TestUnknownRoutePrintsNotFound(t *testing.T) {
	s := startSession(t, "#/weather?lat=24.833271&lon=92.778908")
	s.waitOutput(t, "5 days")

	s.send(t, "#/nowhere")
	s.waitOutput(t, "404 page not found")
	s.quit(t)
}
