// Package wrongbook owns the per-user wrong-question ledger: the records a
// user missed, how correct re-answers retire them, and how the ledger is
// loaded and saved under per-user mutual exclusion.
package wrongbook

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hamexam/backend/internal/models"
)

// RetireThreshold is the number of consecutive correct answers that removes a
// question from the ledger.
const RetireThreshold = 3

// Record is one missed question under review. CorrectCount is always in
// [0, RetireThreshold) while the record exists.
type Record struct {
	Question      models.Question `json:"question"`
	WrongCount    int             `json:"wrong_count"`
	CorrectCount  int             `json:"correct_count"`
	LastWrongTime time.Time       `json:"last_wrong_time"`
}

// RetireDecision is the outcome of RecordHit.
type RetireDecision struct {
	Present      bool
	Retired      bool
	CorrectCount int
}

// Ledger maps question IDs to records and remembers insertion order.
// A Ledger is not safe for concurrent use; Service serialises access per user.
type Ledger struct {
	order   []string
	records map[string]*Record
}

func NewLedger() *Ledger {
	return &Ledger{records: make(map[string]*Record)}
}

func (l *Ledger) Get(id string) (Record, bool) {
	r, ok := l.records[id]
	if !ok {
		return Record{}, false
	}
	return r.clone(), true
}

// RecordMiss inserts a fresh record for a first miss, or bumps the wrong
// count and miss time of an existing one. The correct streak is left alone;
// callers that want it cleared call ResetStreak.
func (l *Ledger) RecordMiss(id string, snapshot models.Question, now time.Time) Record {
	if r, ok := l.records[id]; ok {
		r.WrongCount++
		r.LastWrongTime = now
		return r.clone()
	}
	r := &Record{
		Question:      snapshot.Clone(),
		WrongCount:    1,
		LastWrongTime: now,
	}
	l.records[id] = r
	l.order = append(l.order, id)
	return r.clone()
}

func (l *Ledger) ResetStreak(id string) {
	if r, ok := l.records[id]; ok {
		r.CorrectCount = 0
	}
}

// RecordHit counts a correct answer. Reaching RetireThreshold deletes the
// record in the same call. Hits on absent records are no-ops.
func (l *Ledger) RecordHit(id string) RetireDecision {
	r, ok := l.records[id]
	if !ok {
		return RetireDecision{}
	}
	if r.CorrectCount+1 >= RetireThreshold {
		l.remove(id)
		return RetireDecision{Present: true, Retired: true, CorrectCount: RetireThreshold}
	}
	r.CorrectCount++
	return RetireDecision{Present: true, CorrectCount: r.CorrectCount}
}

func (l *Ledger) remove(id string) {
	delete(l.records, id)
	for i, o := range l.order {
		if o == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			return
		}
	}
}

// All returns copies of every record in insertion order.
func (l *Ledger) All() []Record {
	out := make([]Record, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.records[id].clone())
	}
	return out
}

// Entries is All in listing shape.
func (l *Ledger) Entries() []models.WrongQuestionEntry {
	out := make([]models.WrongQuestionEntry, 0, len(l.order))
	for _, id := range l.order {
		r := l.records[id]
		out = append(out, models.WrongQuestionEntry{
			QuestionID:    id,
			Question:      r.Question.Clone(),
			WrongCount:    r.WrongCount,
			CorrectCount:  r.CorrectCount,
			LastWrongTime: r.LastWrongTime,
		})
	}
	return out
}

func (l *Ledger) Len() int {
	return len(l.order)
}

func (l *Ledger) Clear() {
	l.order = nil
	l.records = make(map[string]*Record)
}

// LastUpdated is the most recent miss time, or the zero time for an empty ledger.
func (l *Ledger) LastUpdated() time.Time {
	var latest time.Time
	for _, r := range l.records {
		if r.LastWrongTime.After(latest) {
			latest = r.LastWrongTime
		}
	}
	return latest
}

// restore appends a record as loaded from storage.
func (l *Ledger) restore(id string, r Record) error {
	if id == "" {
		return fmt.Errorf("record with empty question id")
	}
	if _, dup := l.records[id]; dup {
		return fmt.Errorf("duplicate record %s", id)
	}
	if r.CorrectCount < 0 || r.CorrectCount >= RetireThreshold {
		return fmt.Errorf("record %s: correct_count %d out of range", id, r.CorrectCount)
	}
	rc := r.clone()
	l.records[id] = &rc
	l.order = append(l.order, id)
	return nil
}

func (r Record) clone() Record {
	c := r
	c.Question = r.Question.Clone()
	return c
}

// ── JSON ────────────────────────────────────────────────

// MarshalJSON writes the ledger as an ordered array of listing entries.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Entries())
}

func (l *Ledger) UnmarshalJSON(data []byte) error {
	var entries []models.WrongQuestionEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	fresh := NewLedger()
	for _, e := range entries {
		r := Record{
			Question:      e.Question,
			WrongCount:    e.WrongCount,
			CorrectCount:  e.CorrectCount,
			LastWrongTime: e.LastWrongTime,
		}
		if err := fresh.restore(e.QuestionID, r); err != nil {
			return err
		}
	}
	*l = *fresh
	return nil
}
