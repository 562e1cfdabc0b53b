package services

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/linguabridge/exam-grading-service/internal/models"
	"github.com/linguabridge/exam-grading-service/internal/scoring"
)

func marshalJSON(v interface{}) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

// buildScoringTest converts a loaded exam tree into the read-only view the
// grading core consumes.
func buildScoringTest(exam *models.Exam) scoring.Test {
	test := scoring.Test{Parts: make([]scoring.Part, 0, len(exam.Parts))}
	for _, part := range exam.Parts {
		sp := scoring.Part{
			Number:    part.PartNumber,
			Questions: make([]scoring.Question, 0, len(part.Questions)),
		}
		if part.Title != nil {
			sp.Title = *part.Title
		}
		if part.Instructions != nil {
			sp.Instructions = *part.Instructions
		}
		for _, q := range part.Questions {
			sp.Questions = append(sp.Questions, buildScoringQuestion(q))
		}
		test.Parts = append(test.Parts, sp)
	}
	return test
}

func buildScoringQuestion(q models.Question) scoring.Question {
	var options []models.QuestionOption
	if len(q.Options) > 0 {
		// Malformed option blobs grade as option-less; the activation
		// validator keeps them out of active exams.
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
