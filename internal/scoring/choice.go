package scoring

// gradeSingleChoice scores the one-answer family: multiple choice, radio,
// true/false(/not given), and short answers. The correct-answer spec resolves
// to a single canonical label; the answer map holds "{id}__{label}" with a
// boolean-like value (true, "true", or the label echoed back). Total is
// always one.
func gradeSingleChoice(q Question, answers AnswerMap) (QuestionBreakdown, *Anomaly) {
	label, ok := DecodeSingleLabel(q)
	if !ok {
		return QuestionBreakdown{}, newAnomaly(q, "missing correct answer label")
	}

	key := LabelKey(q.ID, label)
	raw, answered := answers[key]
	correct := answered && IsSelected(raw, label)

	sub := SubQuestionResult{
		SubID:         key,
		Label:         label,
		UserAnswer:    Stringify(raw),
		CorrectAnswer: label,
		IsCorrect:     correct,
		IsAnswered:    answered && Normalize(raw) != "",
	}

	breakdown := QuestionBreakdown{
		QuestionID:   q.ID,
		QuestionType: q.Type,
		Total:        1,
		SubQuestions: []SubQuestionResult{sub},
	}
	if correct {
		breakdown.Correct = 1
	}
	return breakdown, nil
}
