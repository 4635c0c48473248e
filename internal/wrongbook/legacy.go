package wrongbook

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hamexam/backend/internal/jsonobj"
	"github.com/hamexam/backend/internal/models"
)

// ── Legacy wrong_questions.json import ─────────────────
//
// Two layouts exist in the wild:
//
//	global:   {"<questionID>": {question, wrong_count, correct_count, last_wrong_time}}
//	per-user: {"<userID>": {"<questionID>": {...}}}
//
// Timestamps were written without a zone and are read as UTC.

type legacyRecord struct {
	Question      models.Question `json:"question"`
	WrongCount    int             `json:"wrong_count"`
	CorrectCount  int             `json:"correct_count"`
	LastWrongTime string          `json:"last_wrong_time"`
}

type LegacyReport struct {
	Users   int
	Records int
	Retired int
}

// ParseLegacy decodes either layout. Global files are assigned to
// defaultUser. Records already at the retirement threshold are dropped and
// counted in the report.
func ParseLegacy(data []byte, defaultUser int64) (map[int64]*Ledger, LegacyReport, error) {
	var report LegacyReport

	top, err := jsonobj.Fields(data)
	if err != nil {
		return nil, report, fmt.Errorf("decode legacy ledger: %w", err)
	}

	out := make(map[int64]*Ledger)
	if len(top) == 0 {
		return out, report, nil
	}

	if isGlobalLayout(top[0].Value) {
		l, retired, err := buildLedger(top)
		if err != nil {
			return nil, report, err
		}
		out[defaultUser] = l
		report.Retired += retired
	} else {
		for _, u := range top {
			userID, err := strconv.ParseInt(strings.TrimSpace(u.Key), 10, 64)
			if err != nil {
				return nil, report, fmt.Errorf("legacy ledger: user key %q is not numeric", u.Key)
			}
			entries, err := jsonobj.Fields(u.Value)
			if err != nil {
				return nil, report, fmt.Errorf("legacy ledger for user %d: %w", userID, err)
			}
			l, retired, err := buildLedger(entries)
			if err != nil {
				return nil, report, fmt.Errorf("legacy ledger for user %d: %w", userID, err)
			}
			out[userID] = l
			report.Retired += retired
		}
	}

	report.Users = len(out)
	for _, l := range out {
		report.Records += l.Len()
	}
	return out, report, nil
}

// ImportLegacy parses the file contents and saves every ledger through store.
func ImportLegacy(ctx context.Context, store Store, data []byte, defaultUser int64) (LegacyReport, error) {
	ledgers, report, err := ParseLegacy(data, defaultUser)
	if err != nil {
		return report, err
	}
	for userID, l := range ledgers {
		if err := store.Save(ctx, userID, l); err != nil {
			return report, fmt.Errorf("save ledger for user %d: %w", userID, err)
		}
	}
	return report, nil
}

func isGlobalLayout(first json.RawMessage) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(first, &probe); err != nil {
		return false
	}
	_, ok := probe["question"]
	return ok
}

func buildLedger(entries []jsonobj.Field) (*Ledger, int, error) {
	l := NewLedger()
	retired := 0
	for _, e := range entries {
		var lr legacyRecord
		if err := json.Unmarshal(e.Value, &lr); err != nil {
			return nil, 0, fmt.Errorf("record %s: %w", e.Key, err)
		}
		if lr.CorrectCount >= RetireThreshold {
			retired++
			continue
		}
		if lr.CorrectCount < 0 {
			lr.CorrectCount = 0
		}
		if lr.WrongCount < 1 {
			lr.WrongCount = 1
		}
		ts, err := parseLegacyTime(lr.LastWrongTime)
		if err != nil {
			return nil, 0, fmt.Errorf("record %s: %w", e.Key, err)
		}
		if lr.Question.ID == "" {
			lr.Question.ID = e.Key
		}
		r := Record{
			Question:      lr.Question,
			WrongCount:    lr.WrongCount,
			CorrectCount:  lr.CorrectCount,
			LastWrongTime: ts,
		}
		if err := l.restore(e.Key, r); err != nil {
			return nil, 0, err
		}
	}
	return l, retired, nil
}

var legacyTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseLegacyTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range legacyTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
