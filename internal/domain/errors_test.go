package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsRetriable(t *testing.T) {
	t.Run("Retriable Network Error", func(t *testing.T) {
		err := NewNetworkError("dial", errors.New("connection refused"))
		if !IsRetriable(err) {
			t.Error("Expected dial failure to be retriable")
		}
	})

	t.Run("Fatal Network Error", func(t *testing.T) {
		err := NewFatalNetworkError("dial", errors.New("invalid url"))
		if IsRetriable(err) {
			t.Error("Expected fatal network error to not be retriable")
		}
	})

	t.Run("Config Error", func(t *testing.T) {
		err := &ConfigError{Field: "feed.ws_url", Err: errors.New("invalid")}
		if IsRetriable(err) {
			t.Error("Config errors must never be retriable")
		}
	})

	t.Run("Wrapped Error", func(t *testing.T) {
		inner := NewNetworkError("read", errors.New("timeout"))
		wrapped := fmt.Errorf("feed: %w", inner)
		if !IsRetriable(wrapped) {
			t.Error("Classification must survive error wrapping")
		}
	})

	t.Run("Plain Error", func(t *testing.T) {
		if IsRetriable(errors.New("something")) {
			t.Error("Plain errors must not be retriable")
		}
	})

	t.Run("Nil Error", func(t *testing.T) {
		if IsRetriable(nil) {
			t.Error("Nil must not be retriable")
		}
	})
}

func TestErrorUnwrapping(t *testing.T) {
	t.Run("Network Error Chain", func(t *testing.T) {
		err := NewNetworkError("dial", fmt.Errorf("%w: refused", ErrConnectionFailed))
		if !errors.Is(err, ErrConnectionFailed) {
			t.Errorf("Expected ErrConnectionFailed in chain, got %v", err)
		}
	})

	t.Run("Config Error Chain", func(t *testing.T) {
		err := &ConfigError{Field: "path", Err: ErrConfigNotFound}
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound in chain, got %v", err)
		}
	})

	t.Run("Error Messages", func(t *testing.T) {
		netErr := NewNetworkError("read", errors.New("timeout"))
		if netErr.Error() != "read: timeout" {
			t.Errorf("Unexpected message: %q", netErr.Error())
		}
		cfgErr := &ConfigError{Field: "algo", Err: errors.New("bad")}
		if cfgErr.Error() != "config error [algo]: bad" {
			t.Errorf("Unexpected message: %q", cfgErr.Error())
		}
	})
}
