package postgres

import (
	"context"

	"github.com/linguabridge/exam-grading-service/internal/models"
	"github.com/linguabridge/exam-grading-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db}
}

// Upsert replaces the session's stored result on conflict. Grading is a pure
// function of the test definition and the current answer map, so the previous
// row carries no information worth keeping.
func (r ResultPostgreSQL) Upsert(ctx context.Context, result *models.SessionResult) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"raw_score", "total_score", "band_score", "breakdown", "graded_at", "updated_at",
			}),
		}).
		Create(result).Error
}

func (r ResultPostgreSQL) GetBySession(ctx context.Context, sessionID uint) (*models.SessionResult, error) {
	var result models.SessionResult
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r ResultPostgreSQL) DeleteBySession(ctx context.Context, sessionID uint) error {
	return r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&models.SessionResult{}).Error
}
