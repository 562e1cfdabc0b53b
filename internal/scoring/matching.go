package scoring

// gradeMatching scores pair-the-items questions. The pair list fixes the
// left-hand order; the answer for left item N is the chosen right-side label
// stored under "{id}__left{N}" (1-based). Scoring policy mirrors
// multiple-response: points <= 1 grades the whole question as one
// all-or-nothing unit, points > 1 gives per-pair credit.
func gradeMatching(q Question, answers AnswerMap) (QuestionBreakdown, *Anomaly) {
	pairs, ok := DecodePairs(q)
	if !ok {
		return QuestionBreakdown{}, newAnomaly(q, "missing or malformed pair list")
	}

	subs := make([]SubQuestionResult, 0, len(pairs))
	matched := 0
	for i, pair := range pairs {
		key := MatchKey(q.ID, i+1)
		raw, _ := answers[key]
		user := Normalize(raw)
		correct := MatchesAny(raw, pair.Right)
		if correct {
			matched++
		}
		subs = append(subs, SubQuestionResult{
			SubID:         key,
			Label:         pair.Left,
			UserAnswer:    Stringify(raw),
			CorrectAnswer: pair.Right,
			IsCorrect:     correct,
			IsAnswered:    user != "",
		})
	}

	breakdown := QuestionBreakdown{
		QuestionID:   q.ID,
		QuestionType: q.Type,
		SubQuestions: subs,
	}

	if allOrNothing(q) {
		breakdown.Total = 1
		if matched == len(pairs) {
			breakdown.Correct = 1
		}
		return breakdown, nil
	}

	breakdown.Total = len(pairs)
	breakdown.Correct = matched
	return breakdown, nil
}
