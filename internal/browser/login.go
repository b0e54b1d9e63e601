package browser

import (
	"fmt"
	"time"
)

const loginURL = "https://www.linkedin.com/login"

// Login signs the session in to LinkedIn with the given credentials. A
// failure anywhere in the flow is returned as an error; callers treat login
// as optional and continue unauthenticated.
func Login(s Session, email, password string, timeout time.Duration) error {
	if err := s.Navigate(loginURL); err != nil {
		return fmt.Errorf("login navigation failed: %w", err)
	}

	if err := s.WaitForPresence("#username", timeout); err != nil {
		return fmt.Errorf("login form did not load: %w", err)
	}

	emailField, err := s.Find("#username")
	if err != nil {
		return err
	}
	if err := emailField.Input(email); err != nil {
		return fmt.Errorf("could not enter email: %w", err)
	}

	passwordField, err := s.Find("#password")
	if err != nil {
		return err
	}
	if err := passwordField.Input(password); err != nil {
		return fmt.Errorf("could not enter password: %w", err)
	}

	submit, err := s.Find("button[type='submit']")
	if err != nil {
		return err
	}
	if err := submit.Click(); err != nil {
		return fmt.Errorf("could not submit login form: %w", err)
	}

	// The global nav only renders for an authenticated session
	if err := s.WaitForPresence("#global-nav", timeout); err != nil {
		return fmt.Errorf("login did not complete: %w", err)
	}
	return nil
}
