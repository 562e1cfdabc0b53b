package validator

import (
	"encoding/json"
	"fmt"

	"github.com/linguabridge/exam-grading-service/internal/errors"
	"github.com/linguabridge/exam-grading-service/internal/models"
	"github.com/linguabridge/exam-grading-service/internal/scoring"
)

// ExamValidator checks that each question's correct-answer spec is
// structurally consistent with its type. It runs at activation time so
// grading never meets a malformed spec it has to degrade.
//
// It decodes specs with the same helpers the graders use, so anything
// that passes here is guaranteed gradable.
type ExamValidator struct{}

// NewExamValidator creates a new exam content validator
func NewExamValidator() *ExamValidator {
	return &ExamValidator{}
}

// ValidateExam validates a full exam tree loaded with parts and questions.
// All problems are collected rather than stopping at the first.
func (v *ExamValidator) ValidateExam(exam *models.Exam) ValidationErrors {
	var errs ValidationErrors

	if len(exam.Parts) == 0 {
		errs = append(errs, *errors.NewValidationError("parts", "exam has no parts", nil))
	}

	seenParts := make(map[int]bool)
	for _, part := range exam.Parts {
		if seenParts[part.PartNumber] {
			errs = append(errs, *errors.NewValidationError("parts",
				fmt.Sprintf("duplicate part number %d", part.PartNumber), part.PartNumber))
		}
		seenParts[part.PartNumber] = true

		if len(part.Questions) == 0 {
			errs = append(errs, *errors.NewValidationError(
				fmt.Sprintf("parts[%d].questions", part.PartNumber),
				"part has no questions", nil))
		}

		for _, q := range part.Questions {
			if err := v.ValidateQuestion(&q); err != nil {
				errs = append(errs, *errors.NewValidationError(
					fmt.Sprintf("parts[%d].questions[%d]", part.PartNumber, q.ID),
					err.Error(), string(q.Type)))
			}
		}
	}

	return errs
}

// ValidateQuestion validates one question's spec against its type.
func (v *ExamValidator) ValidateQuestion(q *models.Question) error {
	if !models.IsValidQuestionType(q.Type) {
		return fmt.Errorf("unsupported question type %q", q.Type)
	}
	if q.Points < 0 {
		return fmt.Errorf("points must not be negative")
	}

	sq := toScoringQuestion(q)

	switch q.Type {
	case models.GapFill, models.SentenceCompletion, models.SummaryCompletion,
		models.NoteCompletion, models.FlowChart:
		return v.validateGapFill(sq)

	case models.Table, models.TableCompletion, models.TableCompletionAlt,
		models.Form, models.FormCompletion:
		return v.validateGrid(sq)

	case models.MultipleChoice, models.SingleChoice, models.Radio,
		models.TrueFalse, models.TrueFalseNotGiven,
		models.ShortAnswer, models.ShortAnswerAlt:
		return v.validateSingleChoice(sq)

	case models.MultipleResponse, models.Checkbox, models.MultiSelect:
		return v.validateMultipleResponse(sq)

	case models.Matching:
		return v.validateMatching(sq)
	}
	return nil
}

func (v *ExamValidator) validateGapFill(q scoring.Question) error {
	gaps, ok := scoring.DecodeGaps(q)
	if !ok || len(gaps) == 0 {
		return fmt.Errorf("gap-fill question has no decodable gaps")
	}
	for _, gap := range gaps {
		if gap.Number <= 0 {
			return fmt.Errorf("gap number %d is not positive", gap.Number)
		}
		if scoring.Normalize(gap.Answer) == "" {
			return fmt.Errorf("gap %d has an empty answer", gap.Number)
		}
	}
	return nil
}

func (v *ExamValidator) validateGrid(q scoring.Question) error {
	grid, ok := scoring.DecodeGrid(q)
	if !ok || len(grid) == 0 {
		return fmt.Errorf("table question has no decodable cell grid")
	}
	answerCells := 0
	for _, row := range grid {
		for _, cell := range row {
			if !cell.IsAnswer {
				continue
			}
			answerCells++
			if scoring.Normalize(cell.Answer) == "" {
				return fmt.Errorf("answer cell has an empty expected answer")
			}
		}
	}
	if answerCells == 0 {
		return fmt.Errorf("table question has no answer cells")
	}
	return nil
}

func (v *ExamValidator) validateSingleChoice(q scoring.Question) error {
	label, ok := scoring.DecodeSingleLabel(q)
	if !ok || label == "" {
		return fmt.Errorf("choice question has no correct label")
	}
	if len(q.Options) > 0 && !hasOption(q.Options, label) {
		return fmt.Errorf("correct label %q is not among the options", label)
	}
	return nil
}

func (v *ExamValidator) validateMultipleResponse(q scoring.Question) error {
	labels := scoring.DecodeCorrectLabels(q)
	if len(labels) == 0 {
		return fmt.Errorf("multiple-response question has no correct labels")
	}
	for _, label := range labels {
		if len(q.Options) > 0 && !hasOption(q.Options, label) {
			return fmt.Errorf("correct label %q is not among the options", label)
		}
	}
	return nil
}

func (v *ExamValidator) validateMatching(q scoring.Question) error {
	pairs, ok := scoring.DecodePairs(q)
	if !ok || len(pairs) == 0 {
		return fmt.Errorf("matching question has no decodable pairs")
	}
	for i, pair := range pairs {
		if scoring.Normalize(pair.Right) == "" {
			return fmt.Errorf("matching pair %d has an empty right side", i+1)
		}
	}
	return nil
}

func hasOption(options []models.QuestionOption, label string) bool {
	want := scoring.Normalize(label)
	for _, opt := range options {
		if scoring.Normalize(opt.Label) == want {
			return true
		}
	}
	return false
}

func toScoringQuestion(q *models.Question) scoring.Question {
	var options []models.QuestionOption
	if len(q.Options) > 0 {
		// Undecodable options are treated as absent; label checks are
		// skipped for such questions.
		_ = json.Unmarshal(q.Options, &options)
	}
	return scoring.Question{
		ID:                q.ID,
		Type:              q.Type,
		Text:              q.Text,
		Options:           options,
		CorrectAnswerSpec: json.RawMessage(q.CorrectAnswerSpec),
		ExtraMetadata:     json.RawMessage(q.ExtraMetadata),
		Points:            q.Points,
		ScoringMode:       q.ScoringMode,
	}
}
