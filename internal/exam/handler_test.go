package exam

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/hamexam/backend/internal/apperr"
	"github.com/hamexam/backend/internal/middleware"
	"github.com/hamexam/backend/internal/models"
	"github.com/hamexam/backend/internal/wrongbook"
	"go.uber.org/zap"
)

// headerProvider identifies callers by an X-Test-User header.
type headerProvider struct{}

func (headerProvider) Identify(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.Header.Get("X-Test-User"), 10, 64)
	if err != nil {
		return 0, apperr.E(apperr.Unauthenticated, "missing test user")
	}
	return id, nil
}

func newTestRouter(t *testing.T, bankSize int) *mux.Router {
	t.Helper()
	log := zap.NewNop().Sugar()

	store, err := wrongbook.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ledgers := wrongbook.NewService(store, log)
	svc := NewService(testBank(t, bankSize), ledgers, log, Options{})
	h := NewHandler(svc, log)
	wh := wrongbook.NewHandler(ledgers, log)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(headerProvider{}))
	api.HandleFunc("/exam", h.GetExam).Methods("GET")
	api.HandleFunc("/exam/custom", h.GetCustomExam).Methods("GET")
	api.HandleFunc("/exam/submit", h.SubmitExam).Methods("POST")
	api.HandleFunc("/wrong-questions", wh.ListWrongQuestions).Methods("GET")
	api.HandleFunc("/wrong-questions/practice-exam", h.GetPracticeExam).Methods("GET")
	api.HandleFunc("/wrong-questions/practice-submit", h.SubmitPracticeExam).Methods("POST")
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string, user int64) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	req.Header.Set("X-Test-User", strconv.FormatInt(user, 10))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGetExam(t *testing.T) {
	r := newTestRouter(t, 30)

	rec := do(t, r, "GET", "/api/exam", "", 1)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp models.ExamResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Questions) != DefaultExamSize || resp.ExamID == "" {
		t.Errorf("exam_id = %q, %d questions", resp.ExamID, len(resp.Questions))
	}
}

func TestGetCustomExam(t *testing.T) {
	r := newTestRouter(t, 4)

	tests := []struct {
		query  string
		status int
		actual int
	}{
		{"", http.StatusOK, 4},
		{"?start_id=1&count=20", http.StatusOK, 4},
		{"?start_id=3&count=1", http.StatusOK, 1},
		{"?start_id=0&count=5", http.StatusBadRequest, 0},
		{"?start_id=1&count=0", http.StatusBadRequest, 0},
		{"?start_id=1&count=1001", http.StatusBadRequest, 0},
		{"?start_id=abc", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		rec := do(t, r, "GET", "/api/exam/custom"+tt.query, "", 1)
		if rec.Code != tt.status {
			t.Errorf("GET custom%s = %d, want %d", tt.query, rec.Code, tt.status)
			continue
		}
		if tt.status != http.StatusOK {
			continue
		}
		var resp models.CustomExamResponse
		json.NewDecoder(rec.Body).Decode(&resp)
		if resp.ActualCount != tt.actual || len(resp.Questions) != tt.actual {
			t.Errorf("GET custom%s actual_count = %d, want %d", tt.query, resp.ActualCount, tt.actual)
		}
		if !strings.HasPrefix(resp.ExamID, "custom_exam_") {
			t.Errorf("exam_id = %q", resp.ExamID)
		}
	}
}

func TestGetCustomExamEmptyBank(t *testing.T) {
	r := newTestRouter(t, 0)
	if rec := do(t, r, "GET", "/api/exam/custom", "", 1); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSubmitExamShape(t *testing.T) {
	r := newTestRouter(t, 4)

	body := `{"exam_id":"e1","answers":{"MC1-0002":"A","MC1-0001":"b","ghost":"A"}}`
	rec := do(t, r, "POST", "/api/exam/submit", body, 1)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp models.SubmitExamResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.ExamID != "e1" || resp.Total != 3 || resp.CorrectCount != 1 || resp.Score != 33 || resp.SkippedCount != 1 {
		t.Errorf("resp = %+v", resp)
	}
	if len(resp.Results) != 2 || resp.Results[0].QuestionID != "MC1-0002" || resp.Results[1].QuestionID != "MC1-0001" {
		t.Errorf("results not in submission order: %+v", resp.Results)
	}

	for _, tt := range []struct{ body, name string }{{"", "empty body"}, {`{"exam_id":"e2"}`, "no answers"}} {
		rec = do(t, r, "POST", "/api/exam/submit", tt.body, 1)
		var empty models.SubmitExamResponse
		json.NewDecoder(rec.Body).Decode(&empty)
		if rec.Code != http.StatusOK || empty.Total != 0 || empty.Score != 0 {
			t.Errorf("%s: status %d, total %d, score %d", tt.name, rec.Code, empty.Total, empty.Score)
		}
	}

	if rec := do(t, r, "POST", "/api/exam/submit", `{"answers":[1]}`, 1); rec.Code != http.StatusBadRequest {
		t.Errorf("bad answers status = %d, want 400", rec.Code)
	}
}

func TestPracticeExamEmptyLedger(t *testing.T) {
	r := newTestRouter(t, 4)
	if rec := do(t, r, "GET", "/api/wrong-questions/practice-exam", "", 1); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestMissTwiceThenRetire(t *testing.T) {
	r := newTestRouter(t, 4)

	miss := `{"exam_id":"e1","answers":{"MC1-0001":"C"}}`
	for i := 0; i < 2; i++ {
		if rec := do(t, r, "POST", "/api/exam/submit", miss, 1); rec.Code != http.StatusOK {
			t.Fatalf("miss %d: status %d", i+1, rec.Code)
		}
	}

	var listed []models.WrongQuestionEntry
	json.NewDecoder(do(t, r, "GET", "/api/wrong-questions", "", 1).Body).Decode(&listed)
	if len(listed) != 1 || listed[0].WrongCount != 2 || listed[0].CorrectCount != 0 {
		t.Fatalf("ledger after two misses = %+v", listed)
	}

	rec := do(t, r, "GET", "/api/wrong-questions/practice-exam", "", 1)
	var pe models.PracticeExamResponse
	json.NewDecoder(rec.Body).Decode(&pe)
	if rec.Code != http.StatusOK || pe.Type != "practice" || len(pe.Questions) != 1 {
		t.Fatalf("practice exam = %d %+v", rec.Code, pe)
	}

	hit := `{"exam_id":"p1","answers":{"MC1-0001":"a"}}`
	want := []models.UpdateAction{models.ActionCorrect, models.ActionCorrect, models.ActionRemoved}
	for i, action := range want {
		rec := do(t, r, "POST", "/api/wrong-questions/practice-submit", hit, 1)
		var resp models.SubmitPracticeResponse
		json.NewDecoder(rec.Body).Decode(&resp)
		if len(resp.UpdatedQuestions) != 1 || resp.UpdatedQuestions[0].Action != action {
			t.Fatalf("hit %d: updated_questions = %+v, want %s", i+1, resp.UpdatedQuestions, action)
		}
	}

	listed = nil
	json.NewDecoder(do(t, r, "GET", "/api/wrong-questions", "", 1).Body).Decode(&listed)
	if len(listed) != 0 {
		t.Errorf("ledger after retirement = %+v", listed)
	}

	// Another user's ledger was never touched.
	json.NewDecoder(do(t, r, "GET", "/api/wrong-questions", "", 2).Body).Decode(&listed)
	if len(listed) != 0 {
		t.Errorf("user 2 ledger = %+v", listed)
	}
}

func TestConcurrentSubmitsSameUser(t *testing.T) {
	r := newTestRouter(t, 4)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			do(t, r, "POST", "/api/exam/submit", `{"answers":{"MC1-0003":"D"}}`, 1)
		}()
	}
	wg.Wait()

	var listed []models.WrongQuestionEntry
	json.NewDecoder(do(t, r, "GET", "/api/wrong-questions", "", 1).Body).Decode(&listed)
	if len(listed) != 1 || listed[0].WrongCount != n {
		t.Errorf("ledger = %+v, want wrong_count %d", listed, n)
	}
}

func TestUnauthenticated(t *testing.T) {
	r := newTestRouter(t, 4)
	req := httptest.NewRequest("GET", "/api/exam", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
