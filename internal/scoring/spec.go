package scoring

import (
	"encoding/json"
	"strings"
)

// Correct-answer specs arrive in several historical shapes per type: a list
// of {number, answer} objects, a flat answer list, a bare string, a cell
// grid, a pair list. Each decode helper converts every accepted shape into
// one canonical representation at the grader boundary so the grading logic
// itself only ever sees one form. Decode failures are reported, not raised,
// and the caller degrades the question.

// Gap is one numbered blank and its expected answer ("Kings|King's" style
// alternates allowed).
type Gap struct {
	Number int    `json:"number"`
	Answer string `json:"answer"`
}

// TableCell is one cell of a table/form grid. Only cells with IsAnswer set
// are gradable; the rest are display text.
type TableCell struct {
	Text     string `json:"text"`
	Answer   string `json:"answer"`
	IsAnswer bool   `json:"isAnswer"`
}

// MatchPair is one left/right pairing of a matching question.
type MatchPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

type gapMetadata struct {
	Gaps []Gap `json:"gaps"`
}

type gridMetadata struct {
	Cells [][]TableCell `json:"cells"`
	Rows  [][]TableCell `json:"rows"`
}

type pairMetadata struct {
	Pairs []MatchPair `json:"pairs"`
}

// DecodeGaps resolves the gap list for a gap-fill question from, in order:
// explicit {"gaps": [...]} metadata, a spec list of {number, answer} objects,
// or a flat answer list zipped with 1-based positions.
func DecodeGaps(q Question) ([]Gap, bool) {
	if len(q.ExtraMetadata) > 0 {
		var meta gapMetadata
		if err := json.Unmarshal(q.ExtraMetadata, &meta); err == nil && len(meta.Gaps) > 0 {
			return meta.Gaps, true
		}
	}
	if len(q.CorrectAnswerSpec) == 0 {
		return nil, false
	}
	var objs []Gap
	if err := json.Unmarshal(q.CorrectAnswerSpec, &objs); err == nil && len(objs) > 0 && objs[0].Number > 0 {
		return objs, true
	}
	var flat []string
	if err := json.Unmarshal(q.CorrectAnswerSpec, &flat); err == nil && len(flat) > 0 {
		gaps := make([]Gap, len(flat))
		for i, ans := range flat {
			gaps[i] = Gap{Number: i + 1, Answer: ans}
		}
		return gaps, true
	}
	return nil, false
}

// DecodeGrid resolves the 2-D cell grid for a table/form question from the
// metadata ("cells" or legacy "rows" key) or from the spec itself.
func DecodeGrid(q Question) ([][]TableCell, bool) {
	if len(q.ExtraMetadata) > 0 {
		var meta gridMetadata
		if err := json.Unmarshal(q.ExtraMetadata, &meta); err == nil {
			if len(meta.Cells) > 0 {
				return meta.Cells, true
			}
			if len(meta.Rows) > 0 {
				return meta.Rows, true
			}
		}
	}
	if len(q.CorrectAnswerSpec) > 0 {
		var grid [][]TableCell
		if err := json.Unmarshal(q.CorrectAnswerSpec, &grid); err == nil && len(grid) > 0 {
			return grid, true
		}
	}
	return nil, false
}

// DecodeCorrectLabels resolves the correct-label set for a multiple-response
// question: the spec's label list when present, otherwise the options marked
// correct (falling back to option text when a label is blank).
func DecodeCorrectLabels(q Question) []string {
	if len(q.CorrectAnswerSpec) > 0 {
		var labels []string
		if err := json.Unmarshal(q.CorrectAnswerSpec, &labels); err == nil && len(labels) > 0 {
			return labels
		}
	}
	var labels []string
	for _, opt := range q.Options {
		if !opt.IsCorrect {
			continue
		}
		label := opt.Label
		if strings.TrimSpace(label) == "" {
			label = opt.Text
		}
		labels = append(labels, label)
	}
	return labels
}

// DecodeSingleLabel resolves the one canonical correct label for the
// single-choice family: the first element of a list, or the raw string.
func DecodeSingleLabel(q Question) (string, bool) {
	if len(q.CorrectAnswerSpec) == 0 {
		return "", false
	}
	var labels []string
	if err := json.Unmarshal(q.CorrectAnswerSpec, &labels); err == nil {
		if len(labels) == 0 {
			return "", false
		}
		return labels[0], true
	}
	var label string
	if err := json.Unmarshal(q.CorrectAnswerSpec, &label); err == nil && strings.TrimSpace(label) != "" {
		return label, true
	}
	return "", false
}

// DecodePairs resolves the left/right pair list for a matching question from
// the metadata or the spec.
func DecodePairs(q Question) ([]MatchPair, bool) {
	if len(q.ExtraMetadata) > 0 {
		var meta pairMetadata
		if err := json.Unmarshal(q.ExtraMetadata, &meta); err == nil && len(meta.Pairs) > 0 {
			return meta.Pairs, true
		}
	}
	if len(q.CorrectAnswerSpec) > 0 {
		var pairs []MatchPair
		if err := json.Unmarshal(q.CorrectAnswerSpec, &pairs); err == nil && len(pairs) > 0 {
			return pairs, true
		}
	}
	return nil, false
}
