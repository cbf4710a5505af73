package monitor

// Entry is one processed message, kept per-monitor as an append-only
// sequence. correspondence, precedence, and ordered checks consult it.
type Entry struct {
	State   string
	Tag     string
	Reply   any
	Fields  map[string]any
}

// History is the append-only log backing correspondence/precedence/ordered
// checks. Growth is O(messages) by default, per spec.md §9's documented
// open question; MaxLen bounds it for long-lived sessions (affects only the
// lookback window, never blame correctness for checks referencing a bounded
// suffix).
type History struct {
	entries []Entry
	MaxLen  int
}

func (h *History) Append(e Entry) {
	h.entries = append(h.entries, e)
	if h.MaxLen > 0 && len(h.entries) > h.MaxLen {
		h.entries = h.entries[len(h.entries)-h.MaxLen:]
	}
}

func (h *History) Entries() []Entry { return h.entries }

// LastFieldValue returns the most recent value recorded for tag/field, used
// by the ordered check.
func (h *History) LastFieldValue(tag, field string) (any, bool) {
	for i := len(h.entries) - 1; i >= 0; i-- {
		e := h.entries[i]
		if e.Tag != tag {
			continue
		}
		v, ok := e.Fields[field]
		return v, ok
	}
	return nil, false
}

// ContainsState reports whether state appears anywhere in history as a
// committed-to state, used by the precedence check (spec.md §4.2 pass 5:
// `precedence.{target, required} ⊆ states`).
func (h *History) ContainsState(state string) bool {
	for _, e := range h.entries {
		if e.State == state {
			return true
		}
	}
	return false
}
