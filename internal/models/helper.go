package models

var validQuestionTypes = map[QuestionType]bool{
	GapFill:            true,
	SentenceCompletion: true,
	SummaryCompletion:  true,
	NoteCompletion:     true,
	FlowChart:          true,
	Table:              true,
	TableCompletion:    true,
	TableCompletionAlt: true,
	Form:               true,
	FormCompletion:     true,
	MultipleChoice:     true,
	SingleChoice:       true,
	Radio:              true,
	TrueFalse:          true,
	TrueFalseNotGiven:  true,
	ShortAnswer:        true,
	ShortAnswerAlt:     true,
	MultipleResponse:   true,
	Checkbox:           true,
	MultiSelect:        true,
	Matching:           true,
}

// IsValidQuestionType reports whether t is one of the supported question
// type aliases.
func IsValidQuestionType(t QuestionType) bool {
	return validQuestionTypes[t]
}

// IsMultiSubQuestion reports whether questions of type t expand into
// multiple independently-keyed sub-answers.
func IsMultiSubQuestion(t QuestionType) bool {
	switch t {
	case GapFill, SentenceCompletion, SummaryCompletion, NoteCompletion, FlowChart,
		Table, TableCompletion, TableCompletionAlt, Form, FormCompletion,
		MultipleResponse, Checkbox, MultiSelect, Matching:
		return true
	}
	return false
}

// CanTransitionExamStatus reports whether an exam may move from one
// status to another. Draft -> Active -> Archived, no way back to Draft.
func CanTransitionExamStatus(from, to ExamStatus) bool {
	switch from {
	case ExamStatusDraft:
		return to == ExamStatusActive || to == ExamStatusArchived
	case ExamStatusActive:
		return to == ExamStatusArchived
	}
	return false
}
