package quote

import (
	"fmt"
	"time"
)

// Quote is a single generated quote.
// Its identity is the millisecond timestamp at which it was created.
type Quote struct {
	Text      string    `json:"text"`
	Category  Category  `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	Favorite  bool      `json:"favorite"`
}

// New creates a quote stamped at the given time, truncated to millisecond precision
func New(text string, category Category, at time.Time) Quote {
	return Quote{
		Text:      text,
		Category:  category,
		Timestamp: at.Truncate(time.Millisecond),
	}
}

// ID returns the identity key (Unix milliseconds)
func (q Quote) ID() int64 {
	return q.Timestamp.UnixMilli()
}

// ShareText formats the quote for sharing outside the application
func (q Quote) ShareText() string {
	return fmt.Sprintf("\"%s\" — #%s", q.Text, q.Category.Label())
}

// String returns the quote text with its category tag
func (q Quote) String() string {
	return fmt.Sprintf("%s %s: %s", q.Category.Emoji(), q.Category.Label(), q.Text)
}
