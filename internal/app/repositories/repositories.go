package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	ExamRepository *ExamRepository
	SeatRepository *SeatRepository
	UserRepository *UserRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		ExamRepository: NewExamRepository(db),
		SeatRepository: NewSeatRepository(db),
		UserRepository: NewUserRepository(db),
	}
}
