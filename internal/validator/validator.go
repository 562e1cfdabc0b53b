package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/linguabridge/exam-grading-service/internal/models"
)

// Validator combines struct-tag validation with exam content validation.
type Validator struct {
	structValidator *validator.Validate
	examValidator   *ExamValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
		examValidator:   NewExamValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates struct tags and converts failures to the shared
// validation error type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Exam returns the exam content validator
func (v *Validator) Exam() *ExamValidator {
	return v.examValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("exam_module", validateExamModule)
	validate.RegisterValidation("scoring_mode", validateScoringMode)
	validate.RegisterValidation("exam_status", validateExamStatus)
	validate.RegisterValidation("exam_duration", validateExamDuration)
	validate.RegisterValidation("exam_title", validateExamTitle)
	validate.RegisterValidation("points_range", validatePointsRange)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions

func validateQuestionType(fl validator.FieldLevel) bool {
	return models.IsValidQuestionType(models.QuestionType(fl.Field().String()))
}

func validateExamModule(fl validator.FieldLevel) bool {
	switch models.ExamModule(fl.Field().String()) {
	case models.ModuleListening, models.ModuleReading:
		return true
	}
	return false
}

func validateScoringMode(fl validator.FieldLevel) bool {
	switch models.ScoringMode(fl.Field().String()) {
	case "", models.ScoringAllOrNothing, models.ScoringPerOption:
		return true
	}
	return false
}

func validateExamStatus(fl validator.FieldLevel) bool {
	switch models.ExamStatus(fl.Field().String()) {
	case models.ExamStatusDraft, models.ExamStatusActive, models.ExamStatusArchived:
		return true
	}
	return false
}

func validateExamDuration(fl validator.FieldLevel) bool {
	minutes := fl.Field().Int()
	return minutes >= 5 && minutes <= 300
}

func validateExamTitle(fl validator.FieldLevel) bool {
	title := strings.TrimSpace(fl.Field().String())
	return len(title) >= 1 && len(title) <= 200
}

func validatePointsRange(fl validator.FieldLevel) bool {
	points := fl.Field().Float()
	return points >= 0 && points <= 100
}
