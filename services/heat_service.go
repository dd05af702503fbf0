package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/athletics-meet/heats"
	"github.com/Dosada05/athletics-meet/metrics"
	"github.com/Dosada05/athletics-meet/models"
	"github.com/Dosada05/athletics-meet/notify"
	"github.com/Dosada05/athletics-meet/repositories"
	"github.com/Dosada05/athletics-meet/storage"
)

const startListUploadTimeout = 10 * time.Second

type GenerateHeatsRequest struct {
	SeedingStrategy heats.SeedingStrategy `json:"seedingStrategy"`
	LaneAssignment  heats.LaneAssignment  `json:"laneAssignment"`
}

type LaneSummary struct {
	LaneNumber   int     `json:"laneNumber"`
	AthleteID    int     `json:"athleteId"`
	AthleteName  string  `json:"athleteName"`
	BibNumber    string  `json:"bibNumber"`
	PersonalBest *string `json:"personalBest"`
}

type HeatSummary struct {
	HeatID     int           `json:"heatId"`
	HeatNumber int           `json:"heatNumber"`
	Lanes      []LaneSummary `json:"lanes"`
}

// HeatGenerationSummary - стартовый лист, возвращаемый после генерации забегов или потоков.
type HeatGenerationSummary struct {
	EventID       int           `json:"eventId"`
	TotalAthletes int           `json:"totalAthletes"`
	TotalHeats    int           `json:"totalHeats"`
	Heats         []HeatSummary `json:"heats"`
	StartListURL  string        `json:"startListUrl,omitempty"`
}

type HeatService interface {
	GenerateHeats(ctx context.Context, eventID int, req GenerateHeatsRequest) (*HeatGenerationSummary, error)
	GenerateFlights(ctx context.Context, eventID int) (*HeatGenerationSummary, error)
	ListHeats(ctx context.Context, eventID int) ([]*models.Heat, error)
}

type heatService struct {
	tx          repositories.TxManager
	eventRepo   repositories.EventRepository
	athleteRepo repositories.AthleteRepository
	heatRepo    repositories.HeatRepository
	shuffler    heats.Shuffler
	publisher   EventPublisher
	uploader    storage.FileUploader
	metrics     *metrics.Manager
	logger      *slog.Logger
}

type HeatServiceDeps struct {
	Tx          repositories.TxManager
	EventRepo   repositories.EventRepository
	AthleteRepo repositories.AthleteRepository
	HeatRepo    repositories.HeatRepository
	Shuffler    heats.Shuffler       // nil - math/rand
	Publisher   EventPublisher       // nil - без уведомлений
	Uploader    storage.FileUploader // nil - стартовые листы не публикуются
	Metrics     *metrics.Manager
	Logger      *slog.Logger
}

func NewHeatService(deps HeatServiceDeps) HeatService {
	return &heatService{
		tx:          deps.Tx,
		eventRepo:   deps.EventRepo,
		athleteRepo: deps.AthleteRepo,
		heatRepo:    deps.HeatRepo,
		shuffler:    deps.Shuffler,
		publisher:   publisherOrNoop(deps.Publisher),
		uploader:    deps.Uploader,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
	}
}

// generationPlan describes one of the two ways an event's athletes are split into groups.
type generationPlan struct {
	kind      models.EventKind
	generator heats.HeatGenerator
	seeding   heats.SeedingStrategy
	message   string
	// groupSize возвращает размер группы из rules события или ошибку invalid-state.
	groupSize func(event *models.Event) (int, error)
}

func (s *heatService) GenerateHeats(ctx context.Context, eventID int, req GenerateHeatsRequest) (*HeatGenerationSummary, error) {
	defer s.metrics.ObserveOperation("generate_heats", time.Now())

	seeding := req.SeedingStrategy
	if seeding == "" {
		seeding = heats.SeedingPBAsc
	}
	if seeding != heats.SeedingPBAsc && seeding != heats.SeedingRandom {
		return nil, validationError("seedingStrategy must be PB_ASC or RANDOM")
	}
	if req.LaneAssignment != "" && req.LaneAssignment != heats.LaneAssignmentStandard {
		return nil, validationError("laneAssignment must be STANDARD")
	}

	return s.generate(ctx, eventID, generationPlan{
		kind:      models.EventKindTrack,
		generator: heats.NewStandardHeatGenerator(s.shuffler),
		seeding:   seeding,
		message:   notify.MessageHeatsGenerated,
		groupSize: func(event *models.Event) (int, error) {
			rules, err := event.GetTrackRules()
			if err != nil || rules == nil || rules.MaxAthletesPerHeat == nil || *rules.MaxAthletesPerHeat <= 0 {
				return 0, ErrHeatSizeNotConfigured
			}
			return *rules.MaxAthletesPerHeat, nil
		},
	})
}

func (s *heatService) GenerateFlights(ctx context.Context, eventID int) (*HeatGenerationSummary, error) {
	defer s.metrics.ObserveOperation("generate_flights", time.Now())

	return s.generate(ctx, eventID, generationPlan{
		kind:      models.EventKindField,
		generator: heats.NewFlightGenerator(),
		message:   notify.MessageFlightsGenerated,
		groupSize: func(event *models.Event) (int, error) {
			rules, err := event.GetFieldRules()
			if err != nil || rules == nil || rules.MaxAthletesPerFlight == nil || *rules.MaxAthletesPerFlight <= 0 {
				return 0, ErrFlightSizeNotConfigured
			}
			return *rules.MaxAthletesPerFlight, nil
		},
	})
}

func (s *heatService) generate(ctx context.Context, eventID int, plan generationPlan) (*HeatGenerationSummary, error) {
	var summary *HeatGenerationSummary

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// Блокировка строки события: параллельный запрос ждёт здесь и затем видит уже созданные забеги.
		event, err := s.eventRepo.GetByIDForUpdate(ctx, exec, eventID)
		if err != nil {
			return handleRepositoryError(err)
		}
		if event.Kind != plan.kind {
			if plan.kind == models.EventKindTrack {
				return ErrFieldEventHasNoHeats
			}
			return ErrTrackEventHasNoFlights
		}

		existing, err := s.heatRepo.CountByEvent(ctx, exec, eventID)
		if err != nil {
			return err
		}
		if existing > 0 {
			return ErrHeatsAlreadyExist
		}

		size, err := plan.groupSize(event)
		if err != nil {
			return err
		}

		athletes, err := s.athleteRepo.ListEligible(ctx, exec, event.Gender, event.Category)
		if err != nil {
			return err
		}
		if len(athletes) == 0 {
			return fmt.Errorf("%w (%s, %s)", ErrNoEligibleAthletes, event.Gender, event.Category)
		}

		generated, err := plan.generator.GenerateHeats(ctx, heats.GenerateHeatsParams{
			Event:    event,
			Athletes: athletes,
			Seeding:  plan.seeding,
			HeatSize: size,
		})
		if err != nil {
			return fmt.Errorf("failed to generate %s groups for event %d: %w", plan.generator.GetName(), eventID, err)
		}

		summary = &HeatGenerationSummary{
			EventID:       eventID,
			TotalAthletes: len(athletes),
			TotalHeats:    len(generated),
			Heats:         make([]HeatSummary, 0, len(generated)),
		}
		for _, g := range generated {
			heat := &models.Heat{EventID: eventID, HeatNumber: g.HeatNumber, Lanes: make([]models.Lane, 0, len(g.Lanes))}
			for _, l := range g.Lanes {
				heat.Lanes = append(heat.Lanes, models.Lane{LaneNumber: l.LaneNumber, AthleteID: l.Athlete.ID})
			}
			if err := s.heatRepo.Create(ctx, exec, heat); err != nil {
				return handleRepositoryError(err)
			}
			summary.Heats = append(summary.Heats, summarizeHeat(heat.ID, g))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.HeatsGenerated(plan.generator.GetName(), summary.TotalHeats)
	s.logger.Info("start list generated",
		slog.Int("event_id", eventID),
		slog.String("generator", plan.generator.GetName()),
		slog.Int("athletes", summary.TotalAthletes),
		slog.Int("heats", summary.TotalHeats))

	s.publishStartList(ctx, summary)
	s.publisher.Publish(eventID, plan.message, summary)
	return summary, nil
}

// publishStartList загружает стартовый лист в объектное хранилище. Ошибка только логируется.
func (s *heatService) publishStartList(ctx context.Context, summary *HeatGenerationSummary) {
	if s.uploader == nil {
		return
	}
	uploadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), startListUploadTimeout)
	defer cancel()

	res, err := storage.PublishStartList(uploadCtx, s.uploader, summary.EventID, summary)
	if err != nil {
		s.logger.Warn("failed to publish start list",
			slog.Int("event_id", summary.EventID), slog.Any("error", err))
		return
	}
	summary.StartListURL = res.Location
}

func summarizeHeat(heatID int, g *heats.GeneratedHeat) HeatSummary {
	hs := HeatSummary{HeatID: heatID, HeatNumber: g.HeatNumber, Lanes: make([]LaneSummary, 0, len(g.Lanes))}
	for _, l := range g.Lanes {
		hs.Lanes = append(hs.Lanes, LaneSummary{
			LaneNumber:   l.LaneNumber,
			AthleteID:    l.Athlete.ID,
			AthleteName:  l.Athlete.Name,
			BibNumber:    l.Athlete.BibNumber,
			PersonalBest: l.Athlete.PersonalBest,
		})
	}
	return hs
}

func (s *heatService) ListHeats(ctx context.Context, eventID int) ([]*models.Heat, error) {
	if _, err := s.eventRepo.GetByID(ctx, nil, eventID); err != nil {
		return nil, handleRepositoryError(err)
	}
	return s.heatRepo.ListByEvent(ctx, nil, eventID)
}
