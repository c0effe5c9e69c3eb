package transcript

import (
	"context"
	"errors"
)

// ErrInvalidReference means the source reference could not be understood as a
// video at all.
var ErrInvalidReference = errors.New("invalid video reference")

// ErrNoTranscript means the video exists but no caption track could be
// fetched in any accepted language.
var ErrNoTranscript = errors.New("no transcript available")

// Provider fetches the plain-text transcript for a video reference.
type Provider interface {
	Fetch(ctx context.Context, sourceRef string) (string, error)
}
