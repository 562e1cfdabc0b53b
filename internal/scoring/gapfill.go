package scoring

import "fmt"

// gradeGapFill scores every numbered gap of a completion-style question.
// Each gap reads the "{id}__gap{n}" key; the expected answer may carry
// |-separated alternates and a match against any of them counts.
func gradeGapFill(q Question, answers AnswerMap) (QuestionBreakdown, *Anomaly) {
	gaps, ok := DecodeGaps(q)
	if !ok {
		return QuestionBreakdown{}, newAnomaly(q, "missing or malformed gap list")
	}

	breakdown := QuestionBreakdown{
		QuestionID:   q.ID,
		QuestionType: q.Type,
		Total:        len(gaps),
		SubQuestions: make([]SubQuestionResult, 0, len(gaps)),
	}

	for _, gap := range gaps {
		key := GapKey(q.ID, gap.Number)
		raw, answered := answers[key]
		user := Normalize(raw)
		correct := answered && MatchesAny(raw, gap.Answer)
		if correct {
			breakdown.Correct++
		}
		breakdown.SubQuestions = append(breakdown.SubQuestions, SubQuestionResult{
			SubID:         key,
			Label:         fmt.Sprintf("gap %d", gap.Number),
			UserAnswer:    Stringify(raw),
			CorrectAnswer: gap.Answer,
			IsCorrect:     correct,
			IsAnswered:    user != "",
		})
	}

	return breakdown, nil
}
