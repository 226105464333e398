package spotifyx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/zmb3/spotify/v2"
)

// Named causes for gateway failures. The resolver branches on these, never
// on "any error", so an expired token is never mistaken for a missing
// device.
var (
	// ErrUnauthorized means the bearer token is missing or expired; the
	// caller must re-authenticate. Never recovered by fallback.
	ErrUnauthorized = errors.New("spotify: unauthorized")
	// ErrNoActiveDevice is the remote transport's 404: no device is
	// currently able to accept playback commands.
	ErrNoActiveDevice = errors.New("spotify: no active device")
	// ErrForbidden is the remote service refusing the operation (missing
	// scope or subscription level).
	ErrForbidden = errors.New("spotify: access denied")
)

// classify maps a remote API error onto the named causes above. Anything
// unrecognized passes through untouched and is treated as a transient
// remote failure by callers.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var se spotify.Error
	if errors.As(err, &se) {
		switch se.Status {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrUnauthorized, se.Message)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrForbidden, se.Message)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNoActiveDevice, se.Message)
		}
	}
	return err
}

// classifyRead is classify for read endpoints, where a 404 is a plain
// not-found rather than a device condition.
func classifyRead(err error) error {
	if err == nil {
		return nil
	}
	var se spotify.Error
	if errors.As(err, &se) {
		switch se.Status {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrUnauthorized, se.Message)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrForbidden, se.Message)
		}
	}
	return err
}
