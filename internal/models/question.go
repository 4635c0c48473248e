package models

// Option is a single answer choice. Keys are single letters (A-D).
type Option struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Question is immutable once loaded into a bank.
// JSON field names follow the questions.json export format.
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"question"`
	CorrectAnswer string   `json:"correct"`
	Options       []Option `json:"options"`
}

// Clone returns a deep copy so snapshots never share the options slice.
func (q Question) Clone() Question {
	c := q
	if q.Options != nil {
		c.Options = make([]Option, len(q.Options))
		copy(c.Options, q.Options)
	}
	return c
}

// HasOption reports whether key is one of the question's option keys.
func (q Question) HasOption(key string) bool {
	for _, o := range q.Options {
		if o.Key == key {
			return true
		}
	}
	return false
}

// ── Response Types ────────────────────────────────────────

type QuestionListResponse struct {
	Questions []Question `json:"questions"`
	Total     int        `json:"total"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
