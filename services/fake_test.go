package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/athletics-meet/models"
	"github.com/Dosada05/athletics-meet/repositories"
	"github.com/Dosada05/athletics-meet/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// fakeTx выполняет fn без транзакции. Состояние фейков не откатывается,
// поэтому тесты проверяют, что при ошибке до записи ничего не сохранено.
type fakeTx struct{}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[int]*models.Event
	nextID int
	err    error
}

func newFakeEventRepo(events ...*models.Event) *fakeEventRepo {
	r := &fakeEventRepo{events: map[int]*models.Event{}, nextID: 1}
	for _, e := range events {
		r.events[e.ID] = e
		if e.ID >= r.nextID {
			r.nextID = e.ID + 1
		}
	}
	return r
}

func (r *fakeEventRepo) Create(ctx context.Context, e *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.nextID
	e.CreatedAt = time.Now()
	r.nextID++
	r.events[e.ID] = e
	return nil
}

func (r *fakeEventRepo) Update(ctx context.Context, exec repositories.SQLExecutor, e *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[e.ID]; !ok {
		return repositories.ErrEventNotFound
	}
	r.events[e.ID] = e
	return nil
}

func (r *fakeEventRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	e, ok := r.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	return e, nil
}

func (r *fakeEventRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Event, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *fakeEventRepo) List(ctx context.Context) ([]*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Event, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeAthleteRepo struct {
	athletes []*models.Athlete
	bibs     map[string]bool
}

func newFakeAthleteRepo(athletes ...*models.Athlete) *fakeAthleteRepo {
	r := &fakeAthleteRepo{bibs: map[string]bool{}}
	for _, a := range athletes {
		r.athletes = append(r.athletes, a)
		r.bibs[a.BibNumber] = true
	}
	return r
}

func (r *fakeAthleteRepo) Create(ctx context.Context, a *models.Athlete) error {
	if r.bibs[a.BibNumber] {
		return repositories.ErrAthleteBibConflict
	}
	a.ID = len(r.athletes) + 1
	r.bibs[a.BibNumber] = true
	r.athletes = append(r.athletes, a)
	return nil
}

func (r *fakeAthleteRepo) GetByID(ctx context.Context, id int) (*models.Athlete, error) {
	for _, a := range r.athletes {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, repositories.ErrAthleteNotFound
}

func (r *fakeAthleteRepo) List(ctx context.Context, f repositories.AthleteFilter) ([]*models.Athlete, error) {
	out := []*models.Athlete{}
	for _, a := range r.athletes {
		if f.Gender != nil && a.Gender != *f.Gender {
			continue
		}
		if f.Category != nil && a.Category != *f.Category {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeAthleteRepo) ListEligible(ctx context.Context, exec repositories.SQLExecutor, gender models.Gender, category string) ([]*models.Athlete, error) {
	return r.List(ctx, repositories.AthleteFilter{Gender: &gender, Category: &category})
}

func (r *fakeAthleteRepo) GetByIDs(ctx context.Context, exec repositories.SQLExecutor, ids []int) (map[int]*models.Athlete, error) {
	out := map[int]*models.Athlete{}
	for _, id := range ids {
		if a, err := r.GetByID(ctx, id); err == nil {
			out[id] = a
		}
	}
	return out, nil
}

type fakeHeatRepo struct {
	mu       sync.Mutex
	heats    []*models.Heat
	athletes *fakeAthleteRepo
	// listErrFor заставляет ListByEvent падать для указанного события.
	listErrFor map[int]error
}

func (r *fakeHeatRepo) CountByEvent(ctx context.Context, exec repositories.SQLExecutor, eventID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, h := range r.heats {
		if h.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (r *fakeHeatRepo) Create(ctx context.Context, exec repositories.SQLExecutor, heat *models.Heat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.heats {
		if h.EventID == heat.EventID && h.HeatNumber == heat.HeatNumber {
			return repositories.ErrHeatNumberConflict
		}
	}
	heat.ID = len(r.heats) + 1
	for i := range heat.Lanes {
		heat.Lanes[i].HeatID = heat.ID
		heat.Lanes[i].ID = heat.ID*100 + i
		if r.athletes != nil {
			heat.Lanes[i].Athlete, _ = r.athletes.GetByID(ctx, heat.Lanes[i].AthleteID)
		}
	}
	r.heats = append(r.heats, heat)
	return nil
}

func (r *fakeHeatRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Heat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.heats {
		if h.ID == id {
			return h, nil
		}
	}
	return nil, repositories.ErrHeatNotFound
}

func (r *fakeHeatRepo) ListByEvent(ctx context.Context, exec repositories.SQLExecutor, eventID int) ([]*models.Heat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.listErrFor[eventID]; err != nil {
		return nil, err
	}
	out := []*models.Heat{}
	for _, h := range r.heats {
		if h.EventID == eventID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *fakeHeatRepo) EventIDsByHeatIDs(ctx context.Context, exec repositories.SQLExecutor, heatIDs []int) (map[int]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[int]int{}
	for _, id := range heatIDs {
		for _, h := range r.heats {
			if h.ID == id {
				out[id] = h.EventID
			}
		}
	}
	return out, nil
}

type fakeResultRepo struct {
	mu       sync.Mutex
	results  []*models.Result
	athletes *fakeAthleteRepo
}

func (r *fakeResultRepo) CountByHeat(ctx context.Context, exec repositories.SQLExecutor, heatID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, res := range r.results {
		if res.HeatID == heatID {
			n++
		}
	}
	return n, nil
}

func (r *fakeResultRepo) find(heatID, athleteID int) *models.Result {
	for _, res := range r.results {
		if res.HeatID == heatID && res.AthleteID == athleteID {
			return res
		}
	}
	return nil
}

func (r *fakeResultRepo) BatchCreate(ctx context.Context, exec repositories.SQLExecutor, results []*models.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range results {
		if r.find(res.HeatID, res.AthleteID) != nil {
			return repositories.ErrResultConflict
		}
		res.ID = len(r.results) + 1
		if r.athletes != nil {
			res.Athlete, _ = r.athletes.GetByID(ctx, res.AthleteID)
		}
		r.results = append(r.results, res)
	}
	return nil
}

func (r *fakeResultRepo) ListByHeat(ctx context.Context, exec repositories.SQLExecutor, heatID int) ([]*models.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Result{}
	for _, res := range r.results {
		if res.HeatID == heatID {
			cp := *res
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Rank, out[j].Rank
		switch {
		case a == nil && b == nil:
			return out[i].ID < out[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return *a < *b
	})
	return out, nil
}

func (r *fakeResultRepo) UpdateRank(ctx context.Context, exec repositories.SQLExecutor, heatID, athleteID int, rank *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := r.find(heatID, athleteID)
	if res == nil {
		return repositories.ErrResultNotFound
	}
	res.Rank = rank
	return nil
}

func (r *fakeResultRepo) Correct(ctx context.Context, exec repositories.SQLExecutor, in *models.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := r.find(in.HeatID, in.AthleteID)
	if res == nil {
		return repositories.ErrResultNotFound
	}
	res.Status, res.ResultValue, res.Notes = in.Status, in.ResultValue, in.Notes
	if in.Status != models.ResultStatusFinished {
		res.Rank = nil
	}
	*in = *res
	return nil
}

func (r *fakeResultRepo) rankOf(heatID, athleteID int) *int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.find(heatID, athleteID); res != nil {
		return res.Rank
	}
	return nil
}

type fakeOperatorRepo struct {
	operators map[string]*models.Operator
}

func (r *fakeOperatorRepo) Create(ctx context.Context, op *models.Operator) error {
	if _, ok := r.operators[op.Email]; ok {
		return repositories.ErrOperatorEmailConflict
	}
	op.ID = len(r.operators) + 1
	r.operators[op.Email] = op
	return nil
}

func (r *fakeOperatorRepo) GetByEmail(ctx context.Context, email string) (*models.Operator, error) {
	op, ok := r.operators[email]
	if !ok {
		return nil, repositories.ErrOperatorNotFound
	}
	return op, nil
}

type publishedMessage struct {
	EventID int
	Type    string
	Payload interface{}
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
}

func (p *fakePublisher) Publish(eventID int, msgType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, publishedMessage{eventID, msgType, payload})
}

type fakeUploader struct {
	keys []string
	err  error
}

func (u *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	if _, err := io.ReadAll(reader); err != nil {
		return nil, err
	}
	u.keys = append(u.keys, key)
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) GetPublicURL(key string) string { return "https://cdn.test/" + key }

var errBoom = errors.New("boom")
