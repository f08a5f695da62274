package quote

import "time"

// History is an ordered list of quotes, most recent first.
// All methods return new slices and never modify the receiver in place.
type History []Quote

// Prepend returns a history with q at the head
func (h History) Prepend(q Quote) History {
	out := make(History, 0, len(h)+1)
	out = append(out, q)
	return append(out, h...)
}

// Find returns the quote with the given identity
func (h History) Find(id int64) (Quote, bool) {
	for _, q := range h {
		if q.ID() == id {
			return q, true
		}
	}
	return Quote{}, false
}

// ToggleFavorite flips the favorite flag on the entry matching id.
// The second return value is the updated quote; ok is false when no entry matched.
func (h History) ToggleFavorite(id int64) (History, Quote, bool) {
	out := h.Clone()
	for i := range out {
		if out[i].ID() == id {
			out[i].Favorite = !out[i].Favorite
			return out, out[i], true
		}
	}
	return out, Quote{}, false
}

// Delete removes the entry matching id
func (h History) Delete(id int64) (History, bool) {
	out := make(History, 0, len(h))
	removed := false
	for _, q := range h {
		if q.ID() == id {
			removed = true
			continue
		}
		out = append(out, q)
	}
	return out, removed
}

// Favorites returns the favorited entries in history order
func (h History) Favorites() History {
	out := make(History, 0)
	for _, q := range h {
		if q.Favorite {
			out = append(out, q)
		}
	}
	return out
}

// Head returns the most recent quote, if any
func (h History) Head() (Quote, bool) {
	if len(h) == 0 {
		return Quote{}, false
	}
	return h[0], true
}

// Clone returns an independent copy
func (h History) Clone() History {
	if h == nil {
		return nil
	}
	out := make(History, len(h))
	copy(out, h)
	return out
}

// NextTimestamp returns a creation time that keeps identities unique.
// When now is not strictly after the newest entry, the newest entry plus one millisecond is used.
func (h History) NextTimestamp(now time.Time) time.Time {
	now = now.Truncate(time.Millisecond)
	head, ok := h.Head()
	if ok && !now.After(head.Timestamp) {
		return head.Timestamp.Add(time.Millisecond)
	}
	return now
}
