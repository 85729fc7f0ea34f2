package rod

import (
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

// DefaultRecycleAfter is the number of rendered pages after which the
// Chrome process is replaced.
const DefaultRecycleAfter = 75

// chromeSwitches disables the throttling Chrome applies to pages it
// considers background work. A headless crawl is nothing but background
// work, and without these switches navigation stalls mid-render.
var chromeSwitches = []string{
	"disable-background-timer-throttling",
	"disable-backgrounding-occluded-windows",
	"disable-renderer-backgrounding",
	"disable-dev-shm-usage",
	"disable-hang-monitor",
}

// Session owns a headless Chrome process and replaces it after a fixed
// number of rendered pages. Chrome's resident memory grows while rendering
// and does not return to baseline when pages close, so a crawl over a
// large sitemap would slowly exhaust the host if one process served the
// whole run. Session is safe for concurrent use.
type Session struct {
	mu           sync.Mutex
	browser      *rod.Browser
	launcher     *launcher.Launcher
	rendered     int64
	recycleAfter int64
	closed       bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithRecycleAfter overrides the rendered-page threshold at which the
// Chrome process is replaced.
func WithRecycleAfter(n int64) SessionOption {
	return func(s *Session) {
		s.recycleAfter = n
	}
}

// NewSession launches a headless Chrome process. The caller must call
// Close when done with the session.
func NewSession(opts ...SessionOption) (*Session, error) {
	s := &Session{recycleAfter: DefaultRecycleAfter}
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.launch(); err != nil {
		return nil, err
	}
	return s, nil
}

// Acquire returns the live browser, first replacing the Chrome process if
// the rendered-page count has reached the recycle threshold. Callers
// report completed renders via PageRendered.
func (s *Session) Acquire() *rod.Browser {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rendered >= s.recycleAfter {
		s.replaceBrowser()
	}
	return s.browser
}

// PageRendered records one completed render toward the recycle threshold.
func (s *Session) PageRendered() {
	s.mu.Lock()
	s.rendered++
	s.mu.Unlock()
}

// PID reports the process ID of the running Chrome launcher, or zero when
// no process is live. Tests use it to verify cleanup.
func (s *Session) PID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.launcher == nil {
		return 0
	}
	return s.launcher.PID()
}

// Close shuts down the Chrome process. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.shutdown()
}

// launch starts a fresh Chrome process. Callers must hold mu.
func (s *Session) launch() error {
	l := launcher.New().Headless(true).Leakless(true)
	for _, name := range chromeSwitches {
		l = l.Set(flags.Flag(name))
	}

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	s.browser = browser
	s.launcher = l
	return nil
}

// shutdown closes the browser and kills its launcher. Callers must hold mu.
func (s *Session) shutdown() error {
	var err error
	if s.browser != nil {
		err = s.browser.Close()
		s.browser = nil
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher = nil
	}
	return err
}

// replaceBrowser swaps in a fresh Chrome process and shuts down the old
// one. When the fresh launch fails the old process stays in service.
// Callers must hold mu.
func (s *Session) replaceBrowser() {
	prevBrowser, prevLauncher := s.browser, s.launcher
	s.browser, s.launcher = nil, nil

	if err := s.launch(); err != nil {
		s.browser, s.launcher = prevBrowser, prevLauncher
		return
	}

	if prevBrowser != nil {
		_ = prevBrowser.Close()
	}
	if prevLauncher != nil {
		prevLauncher.Kill()
	}
	s.rendered = 0
}
