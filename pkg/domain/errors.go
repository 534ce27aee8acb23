package domain

import "errors"

const GenerationStoppedMessage = "Response generation stopped."

var (
	ErrNotFound = errors.New("not found")

	// ErrEmptyPrompt rejects empty or whitespace-only input. Callers drop it
	// silently: validation failures never surface in the transcript.
	ErrEmptyPrompt = errors.New("empty prompt")

	// ErrTurnInProgress rejects a submit while a completion request is
	// already in flight. Single-flight: no queuing, no overlap.
	ErrTurnInProgress = errors.New("turn already in progress")

	// ErrGenerationStopped marks a user-initiated abort of the completion
	// call, rendered differently from network or relay failures.
	ErrGenerationStopped = errors.New("generation stopped")
)
