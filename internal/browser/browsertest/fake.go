// Package browsertest provides an in-memory Session for tests that exercise
// probing and orchestration logic without a real browser.
package browsertest

import (
	"fmt"
	"time"

	"linkvid/internal/browser"
)

// FakeElement is a scripted page element.
type FakeElement struct {
	Attrs     map[string]string
	TextValue string

	Inputs  []string
	Clicked bool
}

func (e *FakeElement) Attribute(name string) (*string, error) {
	if v, ok := e.Attrs[name]; ok {
		return &v, nil
	}
	return nil, nil
}

func (e *FakeElement) Text() (string, error) { return e.TextValue, nil }

func (e *FakeElement) Input(text string) error {
	e.Inputs = append(e.Inputs, text)
	return nil
}

func (e *FakeElement) Click() error {
	e.Clicked = true
	return nil
}

// FakeSession implements browser.Session against scripted elements and page
// source. The zero value behaves like an empty page.
type FakeSession struct {
	StartErr    error
	NavigateErr error
	Elements    map[string][]*FakeElement // selector -> matching elements
	WaitErrs    map[string]error          // selector -> forced wait outcome
	Source      string

	Started    bool
	Navigated  []string
	CloseCount int
}

func (s *FakeSession) Start() error {
	if s.StartErr != nil {
		return s.StartErr
	}
	s.Started = true
	return nil
}

func (s *FakeSession) Navigate(url string) error {
	if s.NavigateErr != nil {
		return s.NavigateErr
	}
	s.Navigated = append(s.Navigated, url)
	return nil
}

func (s *FakeSession) WaitForPresence(selector string, timeout time.Duration) error {
	if err, ok := s.WaitErrs[selector]; ok {
		return err
	}
	if len(s.Elements[selector]) > 0 {
		return nil
	}
	return fmt.Errorf("element %q did not appear within %s", selector, timeout)
}

func (s *FakeSession) Find(selector string) (browser.Element, error) {
	elements := s.Elements[selector]
	if len(elements) == 0 {
		return nil, fmt.Errorf("no element matches %q", selector)
	}
	return elements[0], nil
}

func (s *FakeSession) FindAll(selector string) ([]browser.Element, error) {
	var out []browser.Element
	for _, el := range s.Elements[selector] {
		out = append(out, el)
	}
	return out, nil
}

func (s *FakeSession) PageSource() (string, error) { return s.Source, nil }

func (s *FakeSession) Close() { s.CloseCount++ }
