package scoring

import "fmt"

// gradeTable scores the answer-flagged cells of a table/form completion
// grid. Cell (r, c) reads the "{id}__r{r}c{c}" key; display-only cells are
// skipped entirely.
func gradeTable(q Question, answers AnswerMap) (QuestionBreakdown, *Anomaly) {
	grid, ok := DecodeGrid(q)
	if !ok {
		return QuestionBreakdown{}, newAnomaly(q, "missing or malformed cell grid")
	}

	breakdown := QuestionBreakdown{
		QuestionID:   q.ID,
		QuestionType: q.Type,
	}

	for r, row := range grid {
		for c, cell := range row {
			if !cell.IsAnswer {
				continue
			}
			breakdown.Total++
			key := CellKey(q.ID, r, c)
			raw, _ := answers[key]
			user := Normalize(raw)
			correct := MatchesAny(raw, cell.Answer)
			if correct {
				breakdown.Correct++
			}
			breakdown.SubQuestions = append(breakdown.SubQuestions, SubQuestionResult{
				SubID:         key,
				Label:         fmt.Sprintf("row %d col %d", r, c),
				UserAnswer:    Stringify(raw),
				CorrectAnswer: cell.Answer,
				IsCorrect:     correct,
				IsAnswered:    user != "",
			})
		}
	}

	return breakdown, nil
}
