package scoring

import "strings"

// gradeMultipleResponse scores choose-several questions. Selection state for
// each candidate label lives under "{id}__{label}". Two policies apply:
//
//   - all-or-nothing (points <= 1): the question is one unit; full credit
//     only when the selected set exactly equals the correct set. An extra
//     wrong selection forfeits the point.
//   - per-option (points > 1): each correct label is its own unit and extra
//     wrong selections carry no penalty. The asymmetry with all-or-nothing
//     is deliberate and relied on by existing tests.
func gradeMultipleResponse(q Question, answers AnswerMap) (QuestionBreakdown, *Anomaly) {
	correctLabels := DecodeCorrectLabels(q)
	if len(correctLabels) == 0 {
		return QuestionBreakdown{}, newAnomaly(q, "no correct options defined")
	}

	correctSet := make(map[string]struct{}, len(correctLabels))
	for _, label := range correctLabels {
		correctSet[Normalize(label)] = struct{}{}
	}

	candidates := candidateLabels(q, correctLabels)

	selected := make(map[string]struct{})
	candidateSet := make(map[string]struct{}, len(candidates))
	subs := make([]SubQuestionResult, 0, len(candidates))
	for _, label := range candidates {
		key := LabelKey(q.ID, label)
		raw, present := answers[key]
		isSelected := present && IsSelected(raw, label)
		norm := Normalize(label)
		candidateSet[norm] = struct{}{}
		_, isCorrectLabel := correctSet[norm]
		if isSelected {
			selected[norm] = struct{}{}
		}
		subs = append(subs, SubQuestionResult{
			SubID:         key,
			Label:         label,
			UserAnswer:    Stringify(raw),
			CorrectAnswer: correctnessMark(isCorrectLabel),
			IsCorrect:     isSelected && isCorrectLabel,
			IsAnswered:    isSelected,
		})
	}

	breakdown := QuestionBreakdown{
		QuestionID:   q.ID,
		QuestionType: q.Type,
		SubQuestions: subs,
	}

	if allOrNothing(q) {
		// Selections stored outside the candidate labels still count against
		// the set comparison; without an options list the candidates are only
		// the correct labels, so extras would otherwise go unseen.
		for key, raw := range answers {
			sk, ok := ParseKey(key)
			if !ok || sk.QuestionID != q.ID {
				continue
			}
			norm := Normalize(sk.Suffix)
			if _, known := candidateSet[norm]; known {
				continue
			}
			if IsSelected(raw, sk.Suffix) {
				selected[norm] = struct{}{}
			}
		}
		breakdown.Total = 1
		if setsEqual(selected, correctSet) {
			breakdown.Correct = 1
		}
		return breakdown, nil
	}

	breakdown.Total = len(correctSet)
	for norm := range selected {
		if _, ok := correctSet[norm]; ok {
			breakdown.Correct++
		}
	}
	return breakdown, nil
}

// candidateLabels lists every label whose selection state must be checked:
// the question's options when present, else the correct labels alone.
func candidateLabels(q Question, correctLabels []string) []string {
	if len(q.Options) == 0 {
		return correctLabels
	}
	labels := make([]string, 0, len(q.Options))
	for _, opt := range q.Options {
		label := opt.Label
		if strings.TrimSpace(label) == "" {
			label = opt.Text
		}
		labels = append(labels, label)
	}
	return labels
}

func correctnessMark(isCorrect bool) string {
	if isCorrect {
		return "selected"
	}
	return "not selected"
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
