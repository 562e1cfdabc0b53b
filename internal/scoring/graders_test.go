package scoring

import (
	"encoding/json"
	"testing"

	"github.com/linguabridge/exam-grading-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

// ===== GAP-FILL =====

func TestGapFillCorrectAnswer(t *testing.T) {
	q := Question{
		ID:                31,
		Type:              models.GapFill,
		CorrectAnswerSpec: json.RawMessage(`[{"number":1,"answer":"rats"}]`),
	}
	answers := AnswerMap{"31__gap1": "Rats"}

	qb, anomaly := GradeQuestion(q, answers)
	require.Nil(t, anomaly)
	assert.Equal(t, 1, qb.Correct)
	assert.Equal(t, 1, qb.Total)
	require.Len(t, qb.SubQuestions, 1)
	assert.True(t, qb.SubQuestions[0].IsCorrect)
	assert.True(t, qb.SubQuestions[0].IsAnswered)
	assert.Equal(t, "31__gap1", qb.SubQuestions[0].SubID)
}

func TestGapFillAlternates(t *testing.T) {
	q := Question{
		ID:                5,
		Type:              models.SummaryCompletion,
		CorrectAnswerSpec: json.RawMessage(`[{"number":1,"answer":"Kings|King's"}]`),
	}

	for _, user := range []string{"Kings", "King's", "kings"} {
		qb, anomaly := GradeQuestion(q, AnswerMap{"5__gap1": user})
		require.Nil(t, anomaly)
		assert.Equal(t, 1, qb.Correct, "answer %q should match", user)
	}

	qb, anomaly := GradeQuestion(q, AnswerMap{"5__gap1": "Kingz"})
	require.Nil(t, anomaly)
	assert.Equal(t, 0, qb.Correct)
}

func TestGapFillFlatListZipsPositions(t *testing.T) {
	q := Question{
		ID:                8,
		Type:              models.NoteCompletion,
		CorrectAnswerSpec: json.RawMessage(`["harbour","coal","1850"]`),
	}
	answers := AnswerMap{
		"8__gap1": "Harbour",
		"8__gap3": "1850",
	}

	qb, anomaly := GradeQuestion(q, answers)
	require.Nil(t, anomaly)
	assert.Equal(t, 3, qb.Total)
	assert.Equal(t, 2, qb.Correct)
	assert.False(t, qb.SubQuestions[1].IsAnswered)
}

func TestGapFillMetadataGapsPreferred(t *testing.T) {
	q := Question{
		ID:            3,
		Type:          models.FlowChart,
		ExtraMetadata: rawJSON(t, map[string]any{"gaps": []Gap{{Number: 2, Answer: "steam"}}}),
	}
	qb, anomaly := GradeQuestion(q, AnswerMap{"3__gap2": "STEAM."})
	require.Nil(t, anomaly)
	assert.Equal(t, 1, qb.Correct)
	assert.Equal(t, 1, qb.Total)
}

func TestGapFillMissingSpecDegrades(t *testing.T) {
	q := Question{ID: 4, Type: models.GapFill}
	_, anomaly := GradeQuestion(q, AnswerMap{})
	require.NotNil(t, anomaly)
	assert.Equal(t, uint(4), anomaly.QuestionID)
}

// ===== TABLE =====

func TestTableSingleAnswerCell(t *testing.T) {
	q := Question{
		ID:   10,
		Type: models.Table,
		CorrectAnswerSpec: rawJSON(t, [][]TableCell{
			{{Answer: "port", IsAnswer: true}, {Text: "label only"}},
		}),
	}
	answers := AnswerMap{"10__r0c0": "Port "}

	qb, anomaly := GradeQuestion(q, answers)
	require.Nil(t, anomaly)
	assert.Equal(t, 1, qb.Total)
	assert.Equal(t, 1, qb.Correct)
	assert.Equal(t, "10__r0c0", qb.SubQuestions[0].SubID)
}

func TestTableSkipsDisplayCells(t *testing.T) {
	q := Question{
		ID:   11,
		Type: models.FormCompletion,
		ExtraMetadata: rawJSON(t, map[string]any{"cells": [][]TableCell{
			{{Text: "Name"}, {Answer: "Smith", IsAnswer: true}},
			{{Text: "Year"}, {Answer: "1990", IsAnswer: true}},
		}}),
	}
	answers := AnswerMap{
		"11__r0c1": "smith",
		"11__r1c1": "1991",
	}

	qb, anomaly := GradeQuestion(q, answers)
	require.Nil(t, anomaly)
	assert.Equal(t, 2, qb.Total)
	assert.Equal(t, 1, qb.Correct)
}

func TestTableMissingGridDegrades(t *testing.T) {
	q := Question{ID: 12, Type: models.TableCompletion}
	_, anomaly := GradeQuestion(q, AnswerMap{})
	require.NotNil(t, anomaly)
}

// ===== SINGLE CHOICE =====

func TestSingleChoiceUnanswered(t *testing.T) {
	q := Question{
		ID:                20,
		Type:              models.MultipleChoice,
		CorrectAnswerSpec: json.RawMessage(`["B"]`),
	}
	qb, anomaly := GradeQuestion(q, AnswerMap{})
	require.Nil(t, anomaly)
	assert.Equal(t, 1, qb.Total)
	assert.Equal(t, 0, qb.Correct)
	require.Len(t, qb.SubQuestions, 1)
	assert.False(t, qb.SubQuestions[0].IsAnswered)
	assert.False(t, qb.SubQuestions[0].IsCorrect)
}

func TestSingleChoiceBooleanLikeValues(t *testing.T) {
	q := Question{
		ID:                21,
		Type:              models.TrueFalseNotGiven,
		CorrectAnswerSpec: json.RawMessage(`"NOT GIVEN"`),
	}

	for _, v := range []any{true, "true", "NOT GIVEN", "not given"} {
		qb, anomaly := GradeQuestion(q, AnswerMap{"21__NOT GIVEN": v})
		require.Nil(t, anomaly)
		assert.Equal(t, 1, qb.Correct, "value %v should count as selected", v)
	}

	qb, _ := GradeQuestion(q, AnswerMap{"21__NOT GIVEN": false})
	assert.Equal(t, 0, qb.Correct)
}

func TestSingleChoiceTakesFirstOfList(t *testing.T) {
	q := Question{
		ID:                22,
		Type:              models.ShortAnswer,
		CorrectAnswerSpec: json.RawMessage(`["oxygen","o2"]`),
	}
	qb, anomaly := GradeQuestion(q, AnswerMap{"22__oxygen": "oxygen"})
	require.Nil(t, anomaly)
	assert.Equal(t, 1, qb.Correct)
}

func TestSingleChoiceMissingLabelDegrades(t *testing.T) {
	q := Question{ID: 23, Type: models.Radio, CorrectAnswerSpec: json.RawMessage(`[]`)}
	_, anomaly := GradeQuestion(q, AnswerMap{})
	require.NotNil(t, anomaly)
}

// ===== MULTIPLE RESPONSE =====

func multiQuestion(t *testing.T, points int) Question {
	return Question{
		ID:                30,
		Type:              models.MultipleResponse,
		CorrectAnswerSpec: json.RawMessage(`["A","C"]`),
		Options: []models.QuestionOption{
			{Label: "A"}, {Label: "B"}, {Label: "C"}, {Label: "D"},
		},
		Points: points,
	}
}

func TestMultiResponseAllOrNothingExact(t *testing.T) {
	q := multiQuestion(t, 1)
	qb, anomaly := GradeQuestion(q, AnswerMap{"30__A": true, "30__C": true})
	require.Nil(t, anomaly)
	assert.Equal(t, 1, qb.Total)
	assert.Equal(t, 1, qb.Correct)
}

func TestMultiResponseAllOrNothingMissing(t *testing.T) {
	q := multiQuestion(t, 1)
	qb, _ := GradeQuestion(q, AnswerMap{"30__A": true})
	assert.Equal(t, 1, qb.Total)
	assert.Equal(t, 0, qb.Correct)
}

func TestMultiResponseAllOrNothingExtraPenalized(t *testing.T) {
	q := multiQuestion(t, 1)
	qb, _ := GradeQuestion(q, AnswerMap{"30__A": true, "30__B": true, "30__C": true})
	assert.Equal(t, 1, qb.Total)
	assert.Equal(t, 0, qb.Correct)
}

func TestMultiResponseAllOrNothingExtraPenalizedWithoutOptions(t *testing.T) {
	q := Question{
		ID:                30,
		Type:              models.MultipleResponse,
		CorrectAnswerSpec: json.RawMessage(`["A","C"]`),
		Points:            1,
	}
	qb, anomaly := GradeQuestion(q, AnswerMap{"30__A": true, "30__B": true, "30__C": true})
	require.Nil(t, anomaly)
	assert.Equal(t, 1, qb.Total)
	assert.Equal(t, 0, qb.Correct)
}

func TestMultiResponsePerOptionPartialCredit(t *testing.T) {
	q := Question{
		ID:                33,
		Type:              models.Checkbox,
		CorrectAnswerSpec: json.RawMessage(`["A","C","D"]`),
		Points:            3,
	}
	qb, anomaly := GradeQuestion(q, AnswerMap{"33__A": true, "33__D": "true"})
	require.Nil(t, anomaly)
	assert.Equal(t, 3, qb.Total)
	assert.Equal(t, 2, qb.Correct)
}

func TestMultiResponsePerOptionNoExtraPenalty(t *testing.T) {
	q := Question{
		ID:                34,
		Type:              models.MultiSelect,
		CorrectAnswerSpec: json.RawMessage(`["A","C","D"]`),
		Options: []models.QuestionOption{
			{Label: "A"}, {Label: "B"}, {Label: "C"}, {Label: "D"},
		},
		Points: 3,
	}
	// B is a wrong extra; per-option mode does not subtract for it
	qb, _ := GradeQuestion(q, AnswerMap{"34__A": true, "34__B": true, "34__D": true})
	assert.Equal(t, 3, qb.Total)
	assert.Equal(t, 2, qb.Correct)
}

func TestMultiResponseScoringModeOverridesPoints(t *testing.T) {
	q := multiQuestion(t, 5)
	q.ScoringMode = models.ScoringAllOrNothing
	qb, _ := GradeQuestion(q, AnswerMap{"30__A": true, "30__C": true})
	assert.Equal(t, 1, qb.Total)
	assert.Equal(t, 1, qb.Correct)
}

func TestMultiResponseLabelEchoSelection(t *testing.T) {
	q := multiQuestion(t, 1)
	qb, _ := GradeQuestion(q, AnswerMap{"30__A": "A", "30__C": "c"})
	assert.Equal(t, 1, qb.Correct)
}

func TestMultiResponseNoCorrectSetDegrades(t *testing.T) {
	q := Question{ID: 35, Type: models.MultipleResponse}
	_, anomaly := GradeQuestion(q, AnswerMap{})
	require.NotNil(t, anomaly)
}

// ===== MATCHING =====

func matchingQuestion(points int) Question {
	return Question{
		ID:   40,
		Type: models.Matching,
		CorrectAnswerSpec: json.RawMessage(
			`[{"left":"Dr Hill","right":"B"},{"left":"Prof Stone","right":"D"},{"left":"Ms Ray","right":"A"}]`),
		Points: points,
	}
}

func TestMatchingAllOrNothing(t *testing.T) {
	q := matchingQuestion(1)

	qb, anomaly := GradeQuestion(q, AnswerMap{"40__left1": "B", "40__left2": "D", "40__left3": "A"})
	require.Nil(t, anomaly)
	assert.Equal(t, 1, qb.Total)
	assert.Equal(t, 1, qb.Correct)

	qb, _ = GradeQuestion(q, AnswerMap{"40__left1": "B", "40__left2": "D", "40__left3": "C"})
	assert.Equal(t, 1, qb.Total)
	assert.Equal(t, 0, qb.Correct)
}

func TestMatchingPerPairCredit(t *testing.T) {
	q := matchingQuestion(3)
	qb, anomaly := GradeQuestion(q, AnswerMap{"40__left1": "b", "40__left3": "A"})
	require.Nil(t, anomaly)
	assert.Equal(t, 3, qb.Total)
	assert.Equal(t, 2, qb.Correct)
	assert.False(t, qb.SubQuestions[1].IsAnswered)
}

func TestMatchingMissingPairsDegrades(t *testing.T) {
	q := Question{ID: 41, Type: models.Matching}
	_, anomaly := GradeQuestion(q, AnswerMap{})
	require.NotNil(t, anomaly)
}

// ===== DISPATCH =====

func TestUnknownTypeIsAnomaly(t *testing.T) {
	q := Question{ID: 50, Type: models.QuestionType("essay")}
	_, anomaly := GradeQuestion(q, AnswerMap{})
	require.NotNil(t, anomaly)
	assert.Contains(t, anomaly.Reason, "unsupported")
}
