// Package share hands quotes to the world outside the terminal UI.
//
// Copy places the bare quote text on the system clipboard. Share emits the
// formatted share text as an OSC 52 escape sequence, which the terminal
// forwards to the local clipboard even over SSH or inside tmux.
package share

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"

	"github.com/muurk/quotegen/internal/quote"
)

// Status texts shown after a successful copy or share
const (
	StatusCopied = "Copied to clipboard"
	StatusShared = "Sent to terminal clipboard"
)

// ErrNoQuote is returned when there is nothing to copy or share
var ErrNoQuote = errors.New("no quote to share")

var clipboardWrite = clipboard.WriteAll

// Sharer copies and shares quotes
type Sharer struct {
	out  io.Writer
	tmux bool
}

// New creates a Sharer that writes OSC 52 sequences to out.
// A nil out uses os.Stderr so the sequence never mixes with rendered frames.
func New(out io.Writer) *Sharer {
	if out == nil {
		out = os.Stderr
	}
	return &Sharer{
		out:  out,
		tmux: os.Getenv("TMUX") != "",
	}
}

// Copy writes the quote text to the system clipboard
func (s *Sharer) Copy(q *quote.Quote) error {
	if q == nil || q.Text == "" {
		return ErrNoQuote
	}
	if err := clipboardWrite(q.Text); err != nil {
		return fmt.Errorf("clipboard unavailable: %w", err)
	}
	return nil
}

// Share emits the quote's share text as an OSC 52 sequence
func (s *Sharer) Share(q *quote.Quote) error {
	if q == nil || q.Text == "" {
		return ErrNoQuote
	}
	seq := osc52.New(q.ShareText())
	if s.tmux {
		seq = seq.Tmux()
	}
	if _, err := seq.WriteTo(s.out); err != nil {
		return fmt.Errorf("failed to write share sequence: %w", err)
	}
	return nil
}
