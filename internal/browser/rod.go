package browser

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/90.0.4430.212 Safari/537.36"

// Common browser install locations, checked when no explicit path is set.
var commonBrowserPaths = []string{
	"/usr/bin/google-chrome",
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
	"C:\\Program Files\\Google\\Chrome\\Application\\chrome.exe",
	"C:\\Program Files (x86)\\Google\\Chrome\\Application\\chrome.exe",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
}

// Options configures a rod-backed session.
type Options struct {
	BrowserPath string // explicit browser binary, optional
	Headless    bool
	Proxy       string
	Logger      *log.Logger
}

// RodSession implements Session on top of go-rod.
type RodSession struct {
	opts    Options
	logger  *log.Logger
	browser *rod.Browser
	page    *rod.Page
}

// NewRodSession creates an unstarted session.
func NewRodSession(opts Options) *RodSession {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &RodSession{opts: opts, logger: logger}
}

// Start launches the browser. It tries an explicitly located browser binary
// first and falls back to rod's managed launcher; if both fail the returned
// error wraps ErrInit.
func (s *RodSession) Start() error {
	if s.browser != nil {
		return nil
	}

	binPath := s.opts.BrowserPath
	if binPath == "" {
		for _, path := range commonBrowserPaths {
			if _, err := os.Stat(path); err == nil {
				binPath = path
				break
			}
		}
	}

	var firstErr error
	if binPath != "" {
		browser, err := s.connect(s.newLauncher().Bin(binPath))
		if err == nil {
			s.logger.Printf("Browser started from %s", binPath)
			s.browser = browser
			return nil
		}
		firstErr = err
		s.logger.Printf("Launch with browser binary %s failed: %v", binPath, err)
	}

	// Second attempt: let rod locate or download a browser on its own
	browser, err := s.connect(s.newLauncher())
	if err == nil {
		s.browser = browser
		return nil
	}
	if firstErr == nil {
		firstErr = err
	}
	return fmt.Errorf("%w: %v; %v", ErrInit, firstErr, err)
}

func (s *RodSession) newLauncher() *launcher.Launcher {
	l := launcher.New().
		Headless(s.opts.Headless).
		NoSandbox(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage")
	if s.opts.Proxy != "" {
		l = l.Proxy(s.opts.Proxy)
	}
	return l
}

func (s *RodSession) connect(l *launcher.Launcher) (*rod.Browser, error) {
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	return browser, nil
}

// Navigate opens the URL in the session's page, creating the page on first
// use. Load timeouts are logged and tolerated; dynamic content is handled by
// the caller's explicit waits.
func (s *RodSession) Navigate(url string) error {
	if s.browser == nil {
		return fmt.Errorf("%w: session not started", ErrInit)
	}

	if s.page == nil {
		page, err := s.browser.Page(proto.TargetCreateTarget{})
		if err != nil {
			return fmt.Errorf("failed to open page: %w", err)
		}
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent}); err != nil {
			return fmt.Errorf("failed to set user agent: %w", err)
		}
		s.page = page
	}

	if err := s.page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := s.page.Timeout(30 * time.Second).WaitLoad(); err != nil {
		s.logger.Printf("Page load timed out for %s, proceeding: %v", url, err)
	}
	return nil
}

// WaitForPresence blocks until the selector matches an element.
func (s *RodSession) WaitForPresence(selector string, timeout time.Duration) error {
	if s.page == nil {
		return fmt.Errorf("no page open")
	}
	if _, err := s.page.Timeout(timeout).Element(selector); err != nil {
		return fmt.Errorf("element %q did not appear within %s: %w", selector, timeout, err)
	}
	return nil
}

// Find returns the first element matching the selector without waiting.
func (s *RodSession) Find(selector string) (Element, error) {
	elements, err := s.FindAll(selector)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("no element matches %q", selector)
	}
	return elements[0], nil
}

// FindAll returns every element currently matching the selector.
func (s *RodSession) FindAll(selector string) ([]Element, error) {
	if s.page == nil {
		return nil, fmt.Errorf("no page open")
	}
	found, err := s.page.Elements(selector)
	if err != nil {
		return nil, err
	}
	elements := make([]Element, 0, len(found))
	for _, el := range found {
		elements = append(elements, &rodElement{el: el})
	}
	return elements, nil
}

// PageSource returns the rendered markup of the current page.
func (s *RodSession) PageSource() (string, error) {
	if s.page == nil {
		return "", fmt.Errorf("no page open")
	}
	return s.page.HTML()
}

// Close shuts the browser down. Safe to call repeatedly or before Start.
func (s *RodSession) Close() {
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			s.logger.Printf("Error closing page: %v", err)
		}
		s.page = nil
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			s.logger.Printf("Error closing browser: %v", err)
		}
		s.browser = nil
	}
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Attribute(name string) (*string, error) {
	return e.el.Attribute(name)
}

func (e *rodElement) Text() (string, error) {
	return e.el.Text()
}

func (e *rodElement) Input(text string) error {
	return e.el.Input(text)
}

func (e *rodElement) Click() error {
	return e.el.Click(proto.InputMouseButtonLeft, 1)
}
