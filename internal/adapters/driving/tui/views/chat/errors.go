package chat

import "errors"

// ErrNoAgent indicates that no agent service was provided.
var ErrNoAgent = errors.New("agent service is required")
