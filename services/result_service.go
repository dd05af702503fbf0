package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/athletics-meet/metrics"
	"github.com/Dosada05/athletics-meet/models"
	"github.com/Dosada05/athletics-meet/notify"
	"github.com/Dosada05/athletics-meet/ranking"
	"github.com/Dosada05/athletics-meet/repositories"
)

// rerankConcurrency ограничивает число событий, пересчитываемых одновременно.
const rerankConcurrency = 4

type ResultEntryInput struct {
	AthleteID   int                 `json:"athleteId"`
	BibNumber   string              `json:"bibNumber"`
	Status      models.ResultStatus `json:"status"`
	ResultValue *string             `json:"resultValue"`
	Notes       *string             `json:"notes"`
}

type SubmitResultsRequest struct {
	Results []ResultEntryInput `json:"results"`
}

type ResultsSummary struct {
	TotalAthletes int `json:"totalAthletes"`
	FinishedCount int `json:"finishedCount"`
	DNSCount      int `json:"dnsCount"`
	DNFCount      int `json:"dnfCount"`
	DQCount       int `json:"dqCount"`
}

type RankedResult struct {
	AthleteID   int                 `json:"athleteId"`
	BibNumber   string              `json:"bibNumber"`
	ResultValue *string             `json:"resultValue"`
	Status      models.ResultStatus `json:"status"`
	Rank        *int                `json:"rank"`
	Notes       *string             `json:"notes"`
	// Qualified is reserved; qualification rules are not evaluated.
	Qualified bool `json:"qualified"`
}

type SubmitResultsResponse struct {
	EventID int            `json:"eventId"`
	HeatID  int            `json:"heatId"`
	Summary ResultsSummary `json:"summary"`
	Results []RankedResult `json:"results"`
}

type ResultCorrection struct {
	HeatID      int                 `json:"heatId"`
	AthleteID   int                 `json:"athleteId"`
	Status      models.ResultStatus `json:"status"`
	ResultValue *string             `json:"resultValue"`
	Notes       *string             `json:"notes"`
}

type CorrectionReport struct {
	Updated          int   `json:"updated"`
	RerankedEventIDs []int `json:"rerankedEventIds"`
	FailedEventIDs   []int `json:"failedEventIds"`
}

type ResultService interface {
	SubmitResults(ctx context.Context, eventID, heatID int, req SubmitResultsRequest) (*SubmitResultsResponse, error)
	ListHeatResults(ctx context.Context, heatID int) ([]*models.Result, error)
	ApplyCorrections(ctx context.Context, corrections []ResultCorrection) (*CorrectionReport, error)
	RecalculateEventRanks(ctx context.Context, eventID int) error
}

type resultService struct {
	tx         repositories.TxManager
	eventRepo  repositories.EventRepository
	heatRepo   repositories.HeatRepository
	resultRepo repositories.ResultRepository
	publisher  EventPublisher
	metrics    *metrics.Manager
	logger     *slog.Logger
}

type ResultServiceDeps struct {
	Tx         repositories.TxManager
	EventRepo  repositories.EventRepository
	HeatRepo   repositories.HeatRepository
	ResultRepo repositories.ResultRepository
	Publisher  EventPublisher
	Metrics    *metrics.Manager
	Logger     *slog.Logger
}

func NewResultService(deps ResultServiceDeps) ResultService {
	return &resultService{
		tx:         deps.Tx,
		eventRepo:  deps.EventRepo,
		heatRepo:   deps.HeatRepo,
		resultRepo: deps.ResultRepo,
		publisher:  publisherOrNoop(deps.Publisher),
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// checkStatusValue enforces: FINISHED carries a value, every other status carries none.
func checkStatusValue(status models.ResultStatus, value *string, who string) error {
	if !status.IsValid() {
		return validationError("%s: unknown status %q", who, status)
	}
	if status == models.ResultStatusFinished && !hasText(value) {
		return validationError("%s: FINISHED result requires resultValue", who)
	}
	if status != models.ResultStatusFinished && hasText(value) {
		return validationError("%s: %s result must not carry resultValue", who, status)
	}
	return nil
}

func entryLabel(e ResultEntryInput) string {
	if e.BibNumber != "" {
		return "bib " + e.BibNumber
	}
	return "athlete " + strconv.Itoa(e.AthleteID)
}

func validateSubmission(req SubmitResultsRequest) error {
	if len(req.Results) == 0 {
		return validationError("results must not be empty")
	}
	seen := make(map[int]bool, len(req.Results))
	for _, e := range req.Results {
		if e.AthleteID <= 0 {
			return validationError("%s: athleteId is required", entryLabel(e))
		}
		if seen[e.AthleteID] {
			return validationError("%s: duplicate entry", entryLabel(e))
		}
		seen[e.AthleteID] = true
		if err := checkStatusValue(e.Status, e.ResultValue, entryLabel(e)); err != nil {
			return err
		}
	}
	return nil
}

func (s *resultService) SubmitResults(ctx context.Context, eventID, heatID int, req SubmitResultsRequest) (*SubmitResultsResponse, error) {
	defer s.metrics.ObserveOperation("submit_results", time.Now())

	if err := validateSubmission(req); err != nil {
		return nil, err
	}

	var resp *SubmitResultsResponse
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, exec, eventID)
		if err != nil {
			return handleRepositoryError(err)
		}
		heat, err := s.heatRepo.GetByID(ctx, exec, heatID)
		if err != nil {
			return handleRepositoryError(err)
		}
		if heat.EventID != eventID {
			return ErrHeatNotInEvent
		}

		existing, err := s.resultRepo.CountByHeat(ctx, exec, heatID)
		if err != nil {
			return err
		}
		if existing > 0 {
			return ErrResultsAlreadyExist
		}

		roster := make(map[int]*models.Athlete, len(heat.Lanes))
		for _, lane := range heat.Lanes {
			roster[lane.AthleteID] = lane.Athlete
		}

		entries := make([]ranking.Entry, 0, len(req.Results))
		for _, in := range req.Results {
			athlete, ok := roster[in.AthleteID]
			if !ok {
				return validationError("%s: athlete is not on the start list of heat %d", entryLabel(in), heatID)
			}
			bib := in.BibNumber
			if athlete != nil {
				if bib != "" && bib != athlete.BibNumber {
					return validationError("%s: bib does not match athlete %d", entryLabel(in), in.AthleteID)
				}
				bib = athlete.BibNumber
			}
			entries = append(entries, ranking.Entry{
				AthleteID:   in.AthleteID,
				BibNumber:   bib,
				Status:      in.Status,
				ResultValue: trimmed(in.ResultValue),
				Notes:       in.Notes,
			})
		}

		ranked := ranking.Rank(entries, event.Kind)

		rows := make([]*models.Result, 0, len(ranked))
		for _, r := range ranked {
			rows = append(rows, &models.Result{
				HeatID:      heatID,
				AthleteID:   r.AthleteID,
				Status:      r.Status,
				ResultValue: r.ResultValue,
				Rank:        r.Rank,
				Notes:       r.Notes,
			})
		}
		if err := s.resultRepo.BatchCreate(ctx, exec, rows); err != nil {
			return handleRepositoryError(err)
		}

		resp = &SubmitResultsResponse{
			EventID: eventID,
			HeatID:  heatID,
			Summary: summarize(ranked),
			Results: toRankedResults(ranked),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ResultsSubmitted(string(models.ResultStatusFinished), resp.Summary.FinishedCount)
	s.metrics.ResultsSubmitted(string(models.ResultStatusDNS), resp.Summary.DNSCount)
	s.metrics.ResultsSubmitted(string(models.ResultStatusDNF), resp.Summary.DNFCount)
	s.metrics.ResultsSubmitted(string(models.ResultStatusDQ), resp.Summary.DQCount)
	s.logger.Info("results submitted",
		slog.Int("event_id", eventID), slog.Int("heat_id", heatID), slog.Int("entries", resp.Summary.TotalAthletes))
	s.publisher.Publish(eventID, notify.MessageResultsSubmitted, resp)
	return resp, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func summarize(ranked []ranking.RankedEntry) ResultsSummary {
	sum := ResultsSummary{TotalAthletes: len(ranked)}
	for _, r := range ranked {
		switch r.Status {
		case models.ResultStatusFinished:
			sum.FinishedCount++
		case models.ResultStatusDNS:
			sum.DNSCount++
		case models.ResultStatusDNF:
			sum.DNFCount++
		case models.ResultStatusDQ:
			sum.DQCount++
		}
	}
	return sum
}

func toRankedResults(ranked []ranking.RankedEntry) []RankedResult {
	out := make([]RankedResult, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, RankedResult{
			AthleteID:   r.AthleteID,
			BibNumber:   r.BibNumber,
			ResultValue: r.ResultValue,
			Status:      r.Status,
			Rank:        r.Rank,
			Notes:       r.Notes,
		})
	}
	return out
}

func (s *resultService) ListHeatResults(ctx context.Context, heatID int) ([]*models.Result, error) {
	if _, err := s.heatRepo.GetByID(ctx, nil, heatID); err != nil {
		return nil, handleRepositoryError(err)
	}
	return s.resultRepo.ListByHeat(ctx, nil, heatID)
}

func (s *resultService) ApplyCorrections(ctx context.Context, corrections []ResultCorrection) (*CorrectionReport, error) {
	defer s.metrics.ObserveOperation("apply_corrections", time.Now())

	if len(corrections) == 0 {
		return nil, validationError("corrections must not be empty")
	}
	type key struct{ heat, athlete int }
	seen := make(map[key]bool, len(corrections))
	for i, c := range corrections {
		who := fmt.Sprintf("row %d (heat %d, athlete %d)", i+1, c.HeatID, c.AthleteID)
		if c.HeatID <= 0 || c.AthleteID <= 0 {
			return nil, validationError("%s: heatId and athleteId are required", who)
		}
		if seen[key{c.HeatID, c.AthleteID}] {
			return nil, validationError("%s: duplicate correction", who)
		}
		seen[key{c.HeatID, c.AthleteID}] = true
		if err := checkStatusValue(c.Status, c.ResultValue, who); err != nil {
			return nil, err
		}
	}

	var eventIDs []int
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		heatIDs := make([]int, 0, len(corrections))
		rosters := make(map[int]map[int]bool)
		for i, c := range corrections {
			who := fmt.Sprintf("row %d (heat %d, athlete %d)", i+1, c.HeatID, c.AthleteID)

			roster, ok := rosters[c.HeatID]
			if !ok {
				heat, err := s.heatRepo.GetByID(ctx, exec, c.HeatID)
				if err != nil {
					return fmt.Errorf("%s: %w", who, handleRepositoryError(err))
				}
				roster = make(map[int]bool, len(heat.Lanes))
				for _, lane := range heat.Lanes {
					roster[lane.AthleteID] = true
				}
				rosters[c.HeatID] = roster
			}
			if !roster[c.AthleteID] {
				return validationError("%s: athlete has no lane in this heat", who)
			}

			value := trimmed(c.ResultValue)
			if c.Status != models.ResultStatusFinished {
				value = nil
			}
			row := &models.Result{
				HeatID:      c.HeatID,
				AthleteID:   c.AthleteID,
				Status:      c.Status,
				ResultValue: value,
				Notes:       c.Notes,
			}
			// Исправлять можно только внесённый результат; первичный ввод идёт через SubmitResults.
			if err := s.resultRepo.Correct(ctx, exec, row); err != nil {
				return fmt.Errorf("%s: %w", who, handleRepositoryError(err))
			}
			heatIDs = append(heatIDs, c.HeatID)
		}

		byHeat, err := s.heatRepo.EventIDsByHeatIDs(ctx, exec, heatIDs)
		if err != nil {
			return err
		}
		unique := make(map[int]bool)
		for _, id := range byHeat {
			if !unique[id] {
				unique[id] = true
				eventIDs = append(eventIDs, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Ints(eventIDs)

	report := &CorrectionReport{
		Updated:          len(corrections),
		RerankedEventIDs: []int{},
		FailedEventIDs:   []int{},
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rerankConcurrency)
	for _, eventID := range eventIDs {
		g.Go(func() error {
			err := s.RecalculateEventRanks(gctx, eventID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Ошибка одного события не прерывает пересчёт остальных.
				s.metrics.RerankFailed()
				s.logger.Error("failed to recalculate ranks",
					slog.Int("event_id", eventID), slog.Any("error", err))
				report.FailedEventIDs = append(report.FailedEventIDs, eventID)
				return nil
			}
			report.RerankedEventIDs = append(report.RerankedEventIDs, eventID)
			return nil
		})
	}
	_ = g.Wait()

	sort.Ints(report.RerankedEventIDs)
	sort.Ints(report.FailedEventIDs)
	return report, nil
}

// RecalculateEventRanks re-ranks every heat of the event and rewrites only the rank column.
func (s *resultService) RecalculateEventRanks(ctx context.Context, eventID int) error {
	defer s.metrics.ObserveOperation("recalculate_ranks", time.Now())

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, exec, eventID)
		if err != nil {
			return handleRepositoryError(err)
		}
		eventHeats, err := s.heatRepo.ListByEvent(ctx, exec, eventID)
		if err != nil {
			return err
		}

		for _, heat := range eventHeats {
			results, err := s.resultRepo.ListByHeat(ctx, exec, heat.ID)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				continue
			}
			sort.SliceStable(results, func(i, j int) bool { return results[i].ID < results[j].ID })

			entries := make([]ranking.Entry, 0, len(results))
			for _, r := range results {
				entry := ranking.Entry{AthleteID: r.AthleteID, Status: r.Status, ResultValue: r.ResultValue, Notes: r.Notes}
				if r.Athlete != nil {
					entry.BibNumber = r.Athlete.BibNumber
				}
				entries = append(entries, entry)
			}
			for _, ranked := range ranking.Rank(entries, event.Kind) {
				if err := s.resultRepo.UpdateRank(ctx, exec, heat.ID, ranked.AthleteID, ranked.Rank); err != nil {
					if errors.Is(err, repositories.ErrResultNotFound) {
						continue
					}
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publisher.Publish(eventID, notify.MessageRanksRecalculated, map[string]int{"eventId": eventID})
	return nil
}
