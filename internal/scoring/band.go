package scoring

import "github.com/linguabridge/exam-grading-service/internal/models"

// Band conversion maps a raw correctness count to the standardized 2.0–9.0
// band via a descending threshold table: the first threshold the score meets
// or exceeds wins. Tables are immutable values constructed at process start
// and passed in explicitly; Listening and Reading use distinct tables.

// bandStep is one threshold of a conversion table.
type bandStep struct {
	MinScore int
	Band     float64
}

// BandTable is an ordered (descending) threshold list. Raw scores are
// normalized to a 40-point scale before lookup when the test total differs
// from 40, so the same table serves shortened tests.
type BandTable struct {
	steps []bandStep
	floor float64
}

// ToBand converts a raw score out of total to a band. Total conversion is a
// pure function: every in-range raw score maps to exactly one band, and the
// mapping is non-decreasing in the raw score.
func (t BandTable) ToBand(rawScore, totalScore int) float64 {
	if totalScore <= 0 {
		return t.floor
	}
	normalized := rawScore
	if totalScore != 40 {
		normalized = rawScore * 40 / totalScore
	}
	for _, step := range t.steps {
		if normalized >= step.MinScore {
			return step.Band
		}
	}
	return t.floor
}

// ListeningBands is the Listening module conversion table.
var ListeningBands = BandTable{
	floor: 2.0,
	steps: []bandStep{
		{39, 9.0},
		{37, 8.5},
		{35, 8.0},
		{32, 7.5},
		{30, 7.0},
		{26, 6.5},
		{23, 6.0},
		{18, 5.5},
		{16, 5.0},
		{13, 4.5},
		{10, 4.0},
		{8, 3.5},
		{6, 3.0},
		{4, 2.5},
	},
}

// ReadingBands is the Reading module conversion table. This is the finer
// table with explicit low-end bands down to 2.0; the older variant that
// floored at 4.0 is superseded.
var ReadingBands = BandTable{
	floor: 2.0,
	steps: []bandStep{
		{39, 9.0},
		{37, 8.5},
		{35, 8.0},
		{33, 7.5},
		{30, 7.0},
		{27, 6.5},
		{23, 6.0},
		{19, 5.5},
		{15, 5.0},
		{13, 4.5},
		{10, 4.0},
		{8, 3.5},
		{6, 3.0},
		{4, 2.5},
	},
}

// TableFor selects the conversion table for an exam module. Unknown modules
// fall back to the Reading table.
func TableFor(module models.ExamModule) BandTable {
	switch module {
	case models.ModuleListening:
		return ListeningBands
	default:
		return ReadingBands
	}
}
