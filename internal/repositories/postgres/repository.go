package postgres

import (
	"context"

	"github.com/linguabridge/exam-grading-service/internal/repositories"
	"gorm.io/gorm"
)

type gormRepository struct {
	db      *gorm.DB
	exam    repositories.ExamRepository
	session repositories.SessionRepository
	result  repositories.ResultRepository
}

// NewRepository wires the PostgreSQL implementations behind the aggregate
// Repository interface.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &gormRepository{
		db:      db,
		exam:    NewExamPostgreSQL(db),
		session: NewSessionPostgreSQL(db),
		result:  NewResultPostgreSQL(db),
	}
}

func (r *gormRepository) Exam() repositories.ExamRepository       { return r.exam }
func (r *gormRepository) Session() repositories.SessionRepository { return r.session }
func (r *gormRepository) Result() repositories.ResultRepository   { return r.result }

func (r *gormRepository) WithTx(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
