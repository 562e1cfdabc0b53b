package scoring

import (
	"fmt"
	"strconv"
	"strings"
)

// Sub-question addressing. The "{questionID}__{suffix}" string form is the
// storage and wire contract (review UIs and the session-sync endpoints key
// on it) so it is preserved exactly. Inside the graders keys are parsed into
// a structured pair immediately and never manipulated as raw strings.

const keySeparator = "__"

// SubKey is the parsed form of a composite answer-map key.
type SubKey struct {
	QuestionID uint
	Suffix     string
}

func (k SubKey) String() string {
	return fmt.Sprintf("%d%s%s", k.QuestionID, keySeparator, k.Suffix)
}

// ParseKey splits a composite key into its question ID and suffix. The suffix
// may itself contain "__" (option labels are free text), so only the first
// separator splits.
func ParseKey(key string) (SubKey, bool) {
	idx := strings.Index(key, keySeparator)
	if idx <= 0 {
		return SubKey{}, false
	}
	id, err := strconv.ParseUint(key[:idx], 10, 32)
	if err != nil {
		return SubKey{}, false
	}
	return SubKey{QuestionID: uint(id), Suffix: key[idx+len(keySeparator):]}, true
}

// GapKey addresses gap N of a gap-fill question: "{id}__gap{n}".
func GapKey(questionID uint, number int) string {
	return SubKey{QuestionID: questionID, Suffix: fmt.Sprintf("gap%d", number)}.String()
}

// CellKey addresses a table cell: "{id}__r{row}c{col}".
func CellKey(questionID uint, row, col int) string {
	return SubKey{QuestionID: questionID, Suffix: fmt.Sprintf("r%dc%d", row, col)}.String()
}

// LabelKey addresses one option of a choice question: "{id}__{label}".
func LabelKey(questionID uint, label string) string {
	return SubKey{QuestionID: questionID, Suffix: label}.String()
}

// MatchKey addresses the left-hand item N of a matching question:
// "{id}__left{n}". The value stored under it is the chosen right-side label.
func MatchKey(questionID uint, number int) string {
	return SubKey{QuestionID: questionID, Suffix: fmt.Sprintf("left%d", number)}.String()
}
