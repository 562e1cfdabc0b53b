package scoring

import "log/slog"

// PartBreakdown aggregates one part's question results.
type PartBreakdown struct {
	PartNumber int                 `json:"part_number"`
	Correct    int                 `json:"correct"`
	Total      int                 `json:"total"`
	Questions  []QuestionBreakdown `json:"questions"`
}

// Breakdown is the full grading output for a test: the per-part tree plus
// whole-test raw and total scores. It is derived, recomputed on every
// grading run, and never hand-edited.
type Breakdown struct {
	Parts      []PartBreakdown `json:"parts"`
	RawScore   int             `json:"raw_score"`
	TotalScore int             `json:"total_score"`
	Anomalies  []Anomaly       `json:"anomalies,omitempty"`
}

// Assembler walks the part/question tree and aggregates grader output. It is
// a pure computation over the in-memory tree and answer map; the logger only
// records degraded questions for operator visibility.
type Assembler struct {
	logger *slog.Logger
}

func NewAssembler(logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{logger: logger}
}

// Assemble grades every question of the test in stored order. A question
// whose definition cannot be graded contributes a zero-width placeholder
// entry (zero total, an explanatory note) and grading continues: one bad
// question must not block the rest of the submission.
func (a *Assembler) Assemble(test Test, answers AnswerMap) *Breakdown {
	result := &Breakdown{Parts: make([]PartBreakdown, 0, len(test.Parts))}

	for _, part := range test.Parts {
		pb := PartBreakdown{
			PartNumber: part.Number,
			Questions:  make([]QuestionBreakdown, 0, len(part.Questions)),
		}
		for _, q := range part.Questions {
			qb, anomaly := GradeQuestion(q, answers)
			if anomaly != nil {
				a.logger.Warn("question degraded during grading",
					"question_id", anomaly.QuestionID,
					"question_type", anomaly.Type,
					"reason", anomaly.Reason)
				qb = placeholderBreakdown(q, anomaly)
				result.Anomalies = append(result.Anomalies, *anomaly)
			}
			pb.Correct += qb.Correct
			pb.Total += qb.Total
			pb.Questions = append(pb.Questions, qb)
		}
		result.RawScore += pb.Correct
		result.TotalScore += pb.Total
		result.Parts = append(result.Parts, pb)
	}

	return result
}

// placeholderBreakdown is the deterministic zero-width entry an anomalous
// question collapses to. It keeps the question visible in the breakdown
// without contributing to either score.
func placeholderBreakdown(q Question, anomaly *Anomaly) QuestionBreakdown {
	return QuestionBreakdown{
		QuestionID:   q.ID,
		QuestionType: q.Type,
		Correct:      0,
		Total:        0,
		SubQuestions: []SubQuestionResult{},
		Note:         "not graded: " + anomaly.Reason,
	}
}

// ===== REVIEW PROJECTION =====

// ReviewOption pairs a displayable option with its selection/correctness
// state from the breakdown.
type ReviewOption struct {
	Label      string `json:"label"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct"`
	IsSelected bool   `json:"is_selected"`
}

// ReviewQuestion interleaves a question's display content with its graded
// sub-results so a review screen renders from one source.
type ReviewQuestion struct {
	ID         uint                `json:"id"`
	Type       string              `json:"type"`
	Text       string              `json:"text"`
	Options    []ReviewOption      `json:"options,omitempty"`
	Grid       [][]TableCell       `json:"grid,omitempty"`
	SubResults []SubQuestionResult `json:"sub_results"`
	Correct    int                 `json:"correct"`
	Total      int                 `json:"total"`
	Note       string              `json:"note,omitempty"`
}

// ReviewPart groups review questions by part.
type ReviewPart struct {
	PartNumber int              `json:"part_number"`
	Title      string           `json:"title,omitempty"`
	Questions  []ReviewQuestion `json:"questions"`
}

// Review is the render projection for review UIs.
type Review struct {
	Parts []ReviewPart `json:"parts"`
}

// Render builds the review projection from an already-assembled breakdown.
// It is strictly a view over the same grader output, there is no second
// grading path, so score and display cannot diverge.
func (a *Assembler) Render(test Test, breakdown *Breakdown) *Review {
	byQuestion := make(map[uint]QuestionBreakdown)
	for _, part := range breakdown.Parts {
		for _, qb := range part.Questions {
			byQuestion[qb.QuestionID] = qb
		}
	}

	review := &Review{Parts: make([]ReviewPart, 0, len(test.Parts))}
	for _, part := range test.Parts {
		rp := ReviewPart{
			PartNumber: part.Number,
			Title:      part.Title,
			Questions:  make([]ReviewQuestion, 0, len(part.Questions)),
		}
		for _, q := range part.Questions {
			qb := byQuestion[q.ID]
			rq := ReviewQuestion{
				ID:         q.ID,
				Type:       string(q.Type),
				Text:       q.Text,
				SubResults: qb.SubQuestions,
				Correct:    qb.Correct,
				Total:      qb.Total,
				Note:       qb.Note,
			}
			for _, opt := range q.Options {
				rq.Options = append(rq.Options, ReviewOption{
					Label:      opt.Label,
					Text:       opt.Text,
					IsCorrect:  opt.IsCorrect,
					IsSelected: subSelected(qb.SubQuestions, q.ID, opt.Label),
				})
			}
			if familyOf(q.Type) == familyTable {
				if grid, ok := DecodeGrid(q); ok {
					rq.Grid = grid
				}
			}
			rp.Questions = append(rp.Questions, rq)
		}
		review.Parts = append(review.Parts, rp)
	}
	return review
}

func subSelected(subs []SubQuestionResult, questionID uint, label string) bool {
	key := LabelKey(questionID, label)
	for _, sub := range subs {
		if sub.SubID == key {
			return sub.IsAnswered
		}
	}
	return false
}
