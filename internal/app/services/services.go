package services

import (
	"github.com/kayra/examseat/internal/app/repositories"
	"github.com/kayra/examseat/internal/pkg/auth"
)

// Services holds all service instances
type Services struct {
	ExamService *ExamService
	SeatService *SeatService
	AuthService *AuthService
}

// NewServices creates and wires all services from the repository set
func NewServices(repos *repositories.Repositories, jwtService *auth.JWTService) *Services {
	examService := NewExamService(repos.ExamRepository)

	return &Services{
		ExamService: examService,
		SeatService: NewSeatService(repos.SeatRepository, examService),
		AuthService: NewAuthService(repos.UserRepository, jwtService),
	}
}
