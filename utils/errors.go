package utils

import "errors"

// Startup failures. Callers match them with errors.Is and decide whether to
// retry or abort.
var (
	ErrNoController      = errors.New("no joystick detected")
	ErrUnknownController = errors.New("no profile for controller")
	ErrLinkUnavailable   = errors.New("link unavailable")
)
