package tui

import (
	"strings"
	"time"
)

// revealInterval is the fixed tick between revealed words.
const revealInterval = 40 * time.Millisecond

// reveal paces the display of an already-complete reply: the text is split
// on single spaces and one token surfaces per tick. Purely cosmetic — there
// is no streaming underneath, and newlines survive inside their tokens.
type reveal struct {
	words []string
	index int
}

func newReveal(text string) *reveal {
	return &reveal{words: strings.Split(text, " ")}
}

// Advance surfaces the next token. It reports false once every token is
// visible, which is the ticker's stop condition.
func (r *reveal) Advance() bool {
	if r.Done() {
		return false
	}
	r.index++
	return true
}

func (r *reveal) Done() bool {
	return r.index >= len(r.words)
}

// Current reconstructs the visible prefix, word-separated.
func (r *reveal) Current() string {
	return strings.Join(r.words[:r.index], " ")
}

// Text returns the complete reply.
func (r *reveal) Text() string {
	return strings.Join(r.words, " ")
}
