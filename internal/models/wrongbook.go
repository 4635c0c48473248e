package models

import "time"

// WrongQuestionEntry is the listing shape of one ledger record.
type WrongQuestionEntry struct {
	QuestionID    string    `json:"question_id"`
	Question      Question  `json:"question"`
	WrongCount    int       `json:"wrong_count"`
	CorrectCount  int       `json:"correct_count"`
	LastWrongTime time.Time `json:"last_wrong_time"`
}

type PracticeRequest struct {
	QuestionID string `json:"question_id"`
	IsCorrect  bool   `json:"is_correct"`
}

type PracticeResponse struct {
	Success bool   `json:"success"`
	Removed bool   `json:"removed"`
	Message string `json:"message"`
}

type SystemStatusResponse struct {
	TotalQuestions      int       `json:"total_questions"`
	WrongQuestionsCount int       `json:"wrong_questions_count"`
	LastUpdated         time.Time `json:"last_updated"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
