package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"github.com/linguabridge/exam-grading-service/internal/models"
)

func gapFillQuestion(metadata string) *models.Question {
	return &models.Question{
		ID:            1,
		Type:          models.GapFill,
		Points:        1,
		ExtraMetadata: datatypes.JSON(metadata),
	}
}

func TestValidateQuestion_GapFill(t *testing.T) {
	v := NewExamValidator()

	t.Run("valid gap list", func(t *testing.T) {
		q := gapFillQuestion(`{"gaps":[{"number":1,"answer":"rats"}]}`)
		assert.NoError(t, v.ValidateQuestion(q))
	})

	t.Run("no gaps anywhere", func(t *testing.T) {
		q := gapFillQuestion(`{}`)
		assert.Error(t, v.ValidateQuestion(q))
	})

	t.Run("empty answer", func(t *testing.T) {
		q := gapFillQuestion(`{"gaps":[{"number":1,"answer":"   "}]}`)
		assert.Error(t, v.ValidateQuestion(q))
	})

	t.Run("flat answer list in spec", func(t *testing.T) {
		q := &models.Question{
			ID:                2,
			Type:              models.SentenceCompletion,
			Points:            1,
			CorrectAnswerSpec: datatypes.JSON(`["rats","sugar"]`),
		}
		assert.NoError(t, v.ValidateQuestion(q))
	})
}

func TestValidateQuestion_Choice(t *testing.T) {
	v := NewExamValidator()

	t.Run("label among options", func(t *testing.T) {
		q := &models.Question{
			ID:                3,
			Type:              models.SingleChoice,
			Points:            1,
			CorrectAnswerSpec: datatypes.JSON(`"B"`),
			Options:           datatypes.JSON(`[{"label":"A"},{"label":"B"}]`),
		}
		assert.NoError(t, v.ValidateQuestion(q))
	})

	t.Run("label not among options", func(t *testing.T) {
		q := &models.Question{
			ID:                4,
			Type:              models.SingleChoice,
			Points:            1,
			CorrectAnswerSpec: datatypes.JSON(`"D"`),
			Options:           datatypes.JSON(`[{"label":"A"},{"label":"B"}]`),
		}
		assert.Error(t, v.ValidateQuestion(q))
	})

	t.Run("missing correct label", func(t *testing.T) {
		q := &models.Question{
			ID:     5,
			Type:   models.TrueFalse,
			Points: 1,
		}
		assert.Error(t, v.ValidateQuestion(q))
	})
}

func TestValidateQuestion_Matching(t *testing.T) {
	v := NewExamValidator()

	t.Run("valid pairs", func(t *testing.T) {
		q := &models.Question{
			ID:                6,
			Type:              models.Matching,
			Points:            1,
			CorrectAnswerSpec: datatypes.JSON(`[{"left":"Darwin","right":"B"},{"left":"Mendel","right":"C"}]`),
		}
		assert.NoError(t, v.ValidateQuestion(q))
	})

	t.Run("empty right side", func(t *testing.T) {
		q := &models.Question{
			ID:                7,
			Type:              models.Matching,
			Points:            1,
			CorrectAnswerSpec: datatypes.JSON(`[{"left":"Darwin","right":""}]`),
		}
		assert.Error(t, v.ValidateQuestion(q))
	})
}

func TestValidateQuestion_Table(t *testing.T) {
	v := NewExamValidator()

	t.Run("grid with answer cells", func(t *testing.T) {
		q := &models.Question{
			ID:            8,
			Type:          models.TableCompletion,
			Points:        1,
			ExtraMetadata: datatypes.JSON(`{"cells":[[{"text":"Port"},{"answer":"82","isAnswer":true}]]}`),
		}
		assert.NoError(t, v.ValidateQuestion(q))
	})

	t.Run("grid without answer cells", func(t *testing.T) {
		q := &models.Question{
			ID:            9,
			Type:          models.TableCompletion,
			Points:        1,
			ExtraMetadata: datatypes.JSON(`{"cells":[[{"text":"Port"}]]}`),
		}
		assert.Error(t, v.ValidateQuestion(q))
	})
}

func TestValidateQuestion_UnknownType(t *testing.T) {
	v := NewExamValidator()
	q := &models.Question{ID: 10, Type: "essay", Points: 1}
	assert.Error(t, v.ValidateQuestion(q))
}

func TestValidateExam_CollectsAllProblems(t *testing.T) {
	v := NewExamValidator()
	exam := &models.Exam{
		ID:     1,
		Title:  "Broken exam",
		Module: models.ModuleReading,
		Parts: []models.ExamPart{
			{
				PartNumber: 1,
				Questions: []models.Question{
					{ID: 1, Type: models.GapFill, Points: 1},
					{ID: 2, Type: models.SingleChoice, Points: 1},
				},
			},
			{PartNumber: 1},
		},
	}

	errs := v.ValidateExam(exam)
	// two bad questions, a duplicate part number, and an empty part
	assert.Len(t, errs, 4)
}

func TestStructValidator_CustomTags(t *testing.T) {
	v := New()

	type payload struct {
		Module models.ExamModule   `json:"module" validate:"required,exam_module"`
		Type   models.QuestionType `json:"type" validate:"required,question_type"`
	}

	assert.NoError(t, v.Validate(&payload{Module: models.ModuleListening, Type: models.GapFill}))
	assert.Error(t, v.Validate(&payload{Module: "speaking", Type: models.GapFill}))
	assert.Error(t, v.Validate(&payload{Module: models.ModuleReading, Type: "essay"}))
}
