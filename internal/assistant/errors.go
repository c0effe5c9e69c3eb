package assistant

import "errors"

// Error kinds surfaced by HandleMessage. Transports match with errors.Is and
// render a distinct user-facing message per kind; anything unclassified gets a
// generic fallback without internal detail.
var (
	ErrRateLimited  = errors.New("rate limited")
	ErrNoSession    = errors.New("no session available")
	ErrSourceFetch  = errors.New("source fetch failed")
	ErrGeneration   = errors.New("generation failed")
	ErrStorage      = errors.New("storage failed")
	ErrInvalidInput = errors.New("invalid input")
)

// UserMessage translates an error into the reply shown to the user.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return "Too many requests. Please wait a minute and try again."
	case errors.Is(err, ErrNoSession):
		return "No video processed yet. Send a YouTube URL first."
	case errors.Is(err, ErrSourceFetch):
		return "Could not fetch the video transcript. Make sure the link is valid and the video has captions enabled."
	case errors.Is(err, ErrGeneration):
		return "The AI model could not produce a response. Please try again."
	case errors.Is(err, ErrStorage):
		return "Could not save your session. Please try again."
	case errors.Is(err, ErrInvalidInput):
		return "I did not understand that. Send a YouTube link, ask a question about the last video, or say 'summarize in <language>'."
	default:
		return "An unexpected error occurred. Please try again."
	}
}
