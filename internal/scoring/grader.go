package scoring

import (
	"encoding/json"
	"fmt"

	"github.com/linguabridge/exam-grading-service/internal/models"
)

// Question is the minimal read-only view of a question the graders need.
// The session/persistence layer converts its stored models into this shape;
// the scoring package itself performs no I/O.
type Question struct {
	ID                uint
	Type              models.QuestionType
	Text              string
	Options           []models.QuestionOption
	CorrectAnswerSpec json.RawMessage
	ExtraMetadata     json.RawMessage
	Points            int
	ScoringMode       models.ScoringMode
}

// Part is an ordered group of questions within a test.
type Part struct {
	Number       int
	Title        string
	Instructions string
	Questions    []Question
}

// Test is the definition tree handed to the assembler.
type Test struct {
	Parts []Part
}

// SubQuestionResult records correctness for one gradable unit: one gap, one
// table cell, one option, one matching pair.
type SubQuestionResult struct {
	SubID         string `json:"sub_id"`
	Label         string `json:"label"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	IsAnswered    bool   `json:"is_answered"`
}

// QuestionBreakdown is one question's grading output.
type QuestionBreakdown struct {
	QuestionID   uint                `json:"question_id"`
	QuestionType models.QuestionType `json:"question_type"`
	Correct      int                 `json:"correct_sub_questions"`
	Total        int                 `json:"total_sub_questions"`
	SubQuestions []SubQuestionResult `json:"sub_questions"`
	Note         string              `json:"note,omitempty"`
}

// Anomaly marks a question whose definition could not be graded (missing or
// malformed spec, unknown type). Anomalies are data problems, not errors:
// the assembler turns them into zero-width placeholder entries and the rest
// of the test grades normally.
type Anomaly struct {
	QuestionID uint                `json:"question_id"`
	Type       models.QuestionType `json:"question_type"`
	Reason     string              `json:"reason"`
}

func (a *Anomaly) Error() string {
	return fmt.Sprintf("question %d (%s): %s", a.QuestionID, a.Type, a.Reason)
}

func newAnomaly(q Question, reason string) *Anomaly {
	return &Anomaly{QuestionID: q.ID, Type: q.Type, Reason: reason}
}

type questionFamily int

const (
	familyUnknown questionFamily = iota
	familyGapFill
	familyTable
	familySingleChoice
	familyMultipleResponse
	familyMatching
)

func familyOf(t models.QuestionType) questionFamily {
	switch t {
	case models.GapFill, models.SentenceCompletion, models.SummaryCompletion,
		models.NoteCompletion, models.FlowChart:
		return familyGapFill
	case models.Table, models.TableCompletion, models.TableCompletionAlt,
		models.Form, models.FormCompletion:
		return familyTable
	case models.MultipleChoice, models.SingleChoice, models.Radio,
		models.TrueFalse, models.TrueFalseNotGiven,
		models.ShortAnswer, models.ShortAnswerAlt:
		return familySingleChoice
	case models.MultipleResponse, models.Checkbox, models.MultiSelect:
		return familyMultipleResponse
	case models.Matching:
		return familyMatching
	default:
		return familyUnknown
	}
}

// GradeQuestion dispatches to the grading strategy for the question's type.
// Unknown types come back as an anomaly rather than an error; callers decide
// how to surface it.
func GradeQuestion(q Question, answers AnswerMap) (QuestionBreakdown, *Anomaly) {
	switch familyOf(q.Type) {
	case familyGapFill:
		return gradeGapFill(q, answers)
	case familyTable:
		return gradeTable(q, answers)
	case familySingleChoice:
		return gradeSingleChoice(q, answers)
	case familyMultipleResponse:
		return gradeMultipleResponse(q, answers)
	case familyMatching:
		return gradeMatching(q, answers)
	default:
		return QuestionBreakdown{}, newAnomaly(q, "unsupported question type")
	}
}

// allOrNothing reports whether a multi-part choice question grades as a
// single unit. Points of one (or unset) means exact-match scoring; more than
// one point switches to per-option partial credit. An explicit scoring mode
// overrides the points heuristic.
func allOrNothing(q Question) bool {
	switch q.ScoringMode {
	case models.ScoringAllOrNothing:
		return true
	case models.ScoringPerOption:
		return false
	}
	return q.Points <= 1
}
