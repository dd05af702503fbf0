package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Dosada05/athletics-meet/models"
	"github.com/Dosada05/athletics-meet/repositories"
)

type AthleteInput struct {
	Name         string        `json:"name"`
	BibNumber    string        `json:"bibNumber"`
	Gender       models.Gender `json:"gender"`
	Category     string        `json:"category"`
	School       *string       `json:"school"`
	PersonalBest *string       `json:"personalBest"`
}

type AthleteService interface {
	CreateAthlete(ctx context.Context, input AthleteInput) (*models.Athlete, error)
	GetAthlete(ctx context.Context, id int) (*models.Athlete, error)
	ListAthletes(ctx context.Context, filter repositories.AthleteFilter) ([]*models.Athlete, error)
}

type athleteService struct {
	athleteRepo repositories.AthleteRepository
	logger      *slog.Logger
}

func NewAthleteService(athleteRepo repositories.AthleteRepository, logger *slog.Logger) AthleteService {
	return &athleteService{athleteRepo: athleteRepo, logger: logger}
}

func (s *athleteService) CreateAthlete(ctx context.Context, input AthleteInput) (*models.Athlete, error) {
	athlete := &models.Athlete{
		Name:      strings.TrimSpace(input.Name),
		BibNumber: strings.TrimSpace(input.BibNumber),
		Gender:    input.Gender,
		Category:  strings.TrimSpace(input.Category),
		School:    input.School,
	}
	if athlete.Name == "" {
		return nil, validationError("name is required")
	}
	if athlete.BibNumber == "" {
		return nil, validationError("bibNumber is required")
	}
	if athlete.Gender != models.GenderMale && athlete.Gender != models.GenderFemale {
		return nil, validationError("gender must be MALE or FEMALE")
	}
	if athlete.Category == "" {
		return nil, validationError("category is required")
	}
	if hasText(input.PersonalBest) {
		pb := strings.TrimSpace(*input.PersonalBest)
		athlete.PersonalBest = &pb
	}

	if err := s.athleteRepo.Create(ctx, athlete); err != nil {
		return nil, handleRepositoryError(err)
	}
	s.logger.Info("athlete registered", slog.Int("athlete_id", athlete.ID), slog.String("bib", athlete.BibNumber))
	return athlete, nil
}

func (s *athleteService) GetAthlete(ctx context.Context, id int) (*models.Athlete, error) {
	athlete, err := s.athleteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return athlete, nil
}

func (s *athleteService) ListAthletes(ctx context.Context, filter repositories.AthleteFilter) ([]*models.Athlete, error) {
	if filter.Gender != nil && *filter.Gender != models.GenderMale && *filter.Gender != models.GenderFemale {
		return nil, validationError("gender must be MALE or FEMALE")
	}
	return s.athleteRepo.List(ctx, filter)
}
