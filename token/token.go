// Package token counts embedding-model tokens for batch budgeting.
//
// The precise counter runs the cl100k_base byte-pair encoding used by the
// embedding models. When the encoding cannot be loaded the heuristic
// counter approximates three bytes per token; which one is in play is
// observable through Precise, so budget overruns can be traced to the
// approximation rather than guessed at.
package token

import (
	"fmt"
	"log/slog"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

// Counter reports how many tokens a text costs against a batch budget.
type Counter interface {
	// Count returns the token count for text.
	Count(text string) int

	// Precise reports whether counts come from the real tokenizer rather
	// than the byte heuristic.
	Precise() bool
}

// TiktokenCounter counts tokens with the cl100k_base encoding.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

var _ Counter = (*TiktokenCounter)(nil)

// NewTiktokenCounter loads the cl100k_base encoding.
func NewTiktokenCounter() (*TiktokenCounter, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("load %s encoding: %w", encodingName, err)
	}
	return &TiktokenCounter{enc: enc}, nil
}

func (c *TiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

func (c *TiktokenCounter) Precise() bool { return true }

// HeuristicCounter approximates one token per three bytes, never less than
// one. It matches the budget headroom the batch limits were tuned with.
type HeuristicCounter struct{}

var _ Counter = HeuristicCounter{}

func (HeuristicCounter) Count(text string) int {
	n := len(text) / 3
	if n < 1 {
		return 1
	}
	return n
}

func (HeuristicCounter) Precise() bool { return false }

// NewCounter returns a precise counter when the encoding loads and the
// heuristic otherwise. The fallback is logged once at construction.
func NewCounter(logger *slog.Logger) Counter {
	if logger == nil {
		logger = slog.Default()
	}

	c, err := NewTiktokenCounter()
	if err != nil {
		logger.Warn("precise token counting unavailable, falling back to heuristic", "error", err)
		return HeuristicCounter{}
	}
	return c
}
