package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ExamModule string

const (
	ModuleListening ExamModule = "listening"
	ModuleReading   ExamModule = "reading"
)

type ExamStatus string

const (
	ExamStatusDraft    ExamStatus = "Draft"
	ExamStatusActive   ExamStatus = "Active"
	ExamStatusArchived ExamStatus = "Archived"
)

type QuestionType string

// Gap-fill family.
const (
	GapFill            QuestionType = "gap_fill"
	SentenceCompletion QuestionType = "sentence_completion"
	SummaryCompletion  QuestionType = "summary_completion"
	NoteCompletion     QuestionType = "note_completion"
	FlowChart          QuestionType = "flow_chart"
)

// Table/form family.
const (
	Table              QuestionType = "table"
	TableCompletion    QuestionType = "table_completion"
	TableCompletionAlt QuestionType = "tablecompletion"
	Form               QuestionType = "form"
	FormCompletion     QuestionType = "form_completion"
)

// Choice families.
const (
	MultipleChoice    QuestionType = "multiple_choice"
	SingleChoice      QuestionType = "single_choice"
	Radio             QuestionType = "radio"
	TrueFalse         QuestionType = "true_false"
	TrueFalseNotGiven QuestionType = "true_false_not_given"
	ShortAnswer       QuestionType = "short_answer"
	ShortAnswerAlt    QuestionType = "shortanswer"
	MultipleResponse  QuestionType = "multiple_response"
	Checkbox          QuestionType = "checkbox"
	MultiSelect       QuestionType = "multi_select"
	Matching          QuestionType = "matching"
)

type ScoringMode string

const (
	ScoringAllOrNothing ScoringMode = "all_or_nothing"
	ScoringPerOption    ScoringMode = "per_option"
)

// Exam is the test definition tree root: ordered parts, each with ordered
// questions. Read-only at grading time.
type Exam struct {
	ID       uint       `json:"id" gorm:"primaryKey"`
	Title    string     `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Module   ExamModule `json:"module" gorm:"not null;index" validate:"required,exam_module"`
	Status   ExamStatus `json:"status" gorm:"default:Draft;index" validate:"omitempty,oneof=Draft Active Archived"`
	Duration int        `json:"duration" gorm:"not null" validate:"required,min=5,max=300"`

	CreatedBy string         `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Version int `json:"version" gorm:"default:1"`

	// Relations
	Parts []ExamPart `json:"parts" gorm:"foreignKey:ExamID"`

	// Computed fields (not stored)
	QuestionCount int `json:"question_count" gorm:"-"`
	TotalPoints   int `json:"total_points" gorm:"-"`
}

func (Exam) TableName() string {
	return "exams"
}

type ExamPart struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	ExamID       uint    `json:"exam_id" gorm:"not null;index"`
	PartNumber   int     `json:"part_number" gorm:"not null"`
	Title        *string `json:"title" gorm:"size:200"`
	Instructions *string `json:"instructions" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Questions []Question `json:"questions" gorm:"foreignKey:PartID"`
}

func (ExamPart) TableName() string {
	return "exam_parts"
}

// Question carries a type-specific correct-answer spec as jsonb. The shape
// depends on Type: a list of {number, answer} gap objects, a 2-D cell grid
// with isAnswer flags, a list of correct labels, or a single label string.
// Structural consistency with Type is enforced by the exam validator at
// activation time, not at grading time.
type Question struct {
	ID     uint         `json:"id" gorm:"primaryKey"`
	PartID uint         `json:"part_id" gorm:"not null;index"`
	Order  int          `json:"order" gorm:"not null"`
	Type   QuestionType `json:"type" gorm:"not null;size:50" validate:"required,question_type"`
	Text   string       `json:"text" gorm:"type:text"`

	CorrectAnswerSpec datatypes.JSON `json:"correct_answer_spec" gorm:"type:jsonb"`
	Options           datatypes.JSON `json:"options" gorm:"type:jsonb"`        // []QuestionOption
	ExtraMetadata     datatypes.JSON `json:"extra_metadata" gorm:"type:jsonb"` // type-specific: gap list, cell grid, pair list

	Points      int         `json:"points" gorm:"default:1" validate:"points_range"`
	ScoringMode ScoringMode `json:"scoring_mode" gorm:"size:20" validate:"omitempty,scoring_mode"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// QuestionOption is one displayable choice for choice-based types.
type QuestionOption struct {
	Label     string `json:"label"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct,omitempty"`
}
