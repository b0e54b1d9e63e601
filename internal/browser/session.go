// Package browser owns the headless browser lifecycle. Everything that needs
// JavaScript-rendered content (login, post body, video tag) goes through the
// Session interface so callers can be tested without a real browser.
package browser

import (
	"errors"
	"time"
)

// ErrInit is wrapped by Start when no compatible browser can be launched.
var ErrInit = errors.New("browser initialization failed")

// Element is one located page element.
type Element interface {
	// Attribute returns the attribute value, or nil if the attribute is absent.
	Attribute(name string) (*string, error)
	Text() (string, error)
	Input(text string) error
	Click() error
}

// Session drives one headless browser process. Close is idempotent and safe
// to call on an unstarted session; any caller that called Start must call
// Close on every exit path.
type Session interface {
	Start() error
	Navigate(url string) error
	// WaitForPresence blocks until an element matching the selector appears,
	// or fails after the timeout.
	WaitForPresence(selector string, timeout time.Duration) error
	// Find returns the first matching element without waiting.
	Find(selector string) (Element, error)
	FindAll(selector string) ([]Element, error)
	// PageSource returns the current page's rendered markup.
	PageSource() (string, error)
	Close()
}
