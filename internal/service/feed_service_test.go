package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/unimatch/unimatch-backend/internal/model"
)

// ─── Fakes over the repository interfaces ───────────────────────────

type fakeInstitutionRepo struct {
	mu         sync.Mutex
	candidates []model.Candidate
	listErr    error
	listCalls  int
}

func (r *fakeInstitutionRepo) filter(spec model.FilterSpec) []model.Candidate {
	out := []model.Candidate{}
	for _, c := range r.candidates {
		switch spec.Kind {
		case model.FilterAll:
			out = append(out, c)
		case model.FilterByRegion:
			if spec.Region != nil && c.State == *spec.Region {
				out = append(out, c)
			}
		case model.FilterByField:
			// Field membership is not modeled in the fake; a nil field
			// still selects nothing, matching the impossible predicate.
			if spec.Field != nil {
				out = append(out, c)
			}
		case model.FilterCombined:
			if spec.Region == nil || c.State == *spec.Region {
				out = append(out, c)
			}
		case model.FilterHighAdmission:
			if c.AdmissionRate != nil && *c.AdmissionRate > 0.5 {
				out = append(out, c)
			}
		}
	}
	return out
}

func (r *fakeInstitutionRepo) List(ctx context.Context, spec model.FilterSpec, offset, limit int) ([]model.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}

	matched := r.filter(spec)
	if offset >= len(matched) {
		return []model.Candidate{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return append([]model.Candidate{}, matched[offset:end]...), nil
}

func (r *fakeInstitutionRepo) Count(ctx context.Context, spec model.FilterSpec) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.filter(spec))), nil
}

func (r *fakeInstitutionRepo) GetByID(ctx context.Context, id int64) (*model.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.candidates {
		if c.ID == id {
			cc := c
			return &cc, nil
		}
	}
	return nil, nil
}

func (r *fakeInstitutionRepo) ListByIDs(ctx context.Context, ids []int64) ([]model.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := []model.Candidate{}
	for _, c := range r.candidates {
		if _, ok := want[c.ID]; ok {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeInstitutionRepo) ListPrograms(ctx context.Context, institutionID int64) ([]model.ProgramOffered, error) {
	return []model.ProgramOffered{}, nil
}

type fakePreferenceRepo struct {
	prefs map[int64]*model.UserPreference
}

func (r *fakePreferenceRepo) Get(ctx context.Context, userID int64) (*model.UserPreference, error) {
	return r.prefs[userID], nil
}

func (r *fakePreferenceRepo) Upsert(ctx context.Context, pref *model.UserPreference) error {
	if r.prefs == nil {
		r.prefs = map[int64]*model.UserPreference{}
	}
	r.prefs[pref.UserID] = pref
	return nil
}

type fakeDecisionRepo struct {
	mu      sync.Mutex
	decided map[int64]map[int64]struct{}
	liked   map[int64]map[int64]struct{}
}

func newFakeDecisionRepo() *fakeDecisionRepo {
	return &fakeDecisionRepo{
		decided: map[int64]map[int64]struct{}{},
		liked:   map[int64]map[int64]struct{}{},
	}
}

func (r *fakeDecisionRepo) MarkDecided(ctx context.Context, userID, institutionID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.decided[userID] == nil {
		r.decided[userID] = map[int64]struct{}{}
	}
	r.decided[userID][institutionID] = struct{}{}
	return nil
}

func (r *fakeDecisionRepo) MarkLiked(ctx context.Context, userID, institutionID int64) error {
	if err := r.MarkDecided(ctx, userID, institutionID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.liked[userID] == nil {
		r.liked[userID] = map[int64]struct{}{}
	}
	r.liked[userID][institutionID] = struct{}{}
	return nil
}

func (r *fakeDecisionRepo) DecidedSet(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int64]struct{}, len(r.decided[userID]))
	for id := range r.decided[userID] {
		out[id] = struct{}{}
	}
	return out, nil
}

func (r *fakeDecisionRepo) LikedIDs(ctx context.Context, userID int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []int64{}
	for id := range r.liked[userID] {
		out = append(out, id)
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[int64]*model.User
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error { return nil }

// ─── Fixtures ───────────────────────────────────────────────────────

func candidate(id int64, name, state string, satAvg float64) model.Candidate {
	rate := 0.7
	c := model.Candidate{
		Institution: model.Institution{ID: id, Name: name, State: state, AdmissionRate: &rate},
	}
	if satAvg > 0 {
		c.SATAvg = &satAvg
	}
	return c
}

type feedFixture struct {
	svc          *FeedService
	institutions *fakeInstitutionRepo
	decisions    *fakeDecisionRepo
}

func newFeedFixture(batchSize int, candidates []model.Candidate) *feedFixture {
	instRepo := &fakeInstitutionRepo{candidates: candidates}
	prefRepo := &fakePreferenceRepo{}
	decRepo := newFakeDecisionRepo()
	userRepo := &fakeUserRepo{users: map[int64]*model.User{
		7: {ID: 7, Name: "Test User", SATScore: f(1300)},
	}}

	rec := NewRecommendationService(instRepo, prefRepo, zerolog.Nop())
	svc := NewFeedService(rec, instRepo, decRepo, userRepo, batchSize, zerolog.Nop())
	return &feedFixture{svc: svc, institutions: instRepo, decisions: decRepo}
}

func stackIDs(state *FeedState) []int64 {
	ids := make([]int64, 0, len(state.Candidates))
	for _, c := range state.Candidates {
		ids = append(ids, c.ID)
	}
	return ids
}

// ─── Tests ──────────────────────────────────────────────────────────

func TestStartSessionLoadsFirstBatch(t *testing.T) {
	fix := newFeedFixture(2, []model.Candidate{
		candidate(1, "Alpha", "CA", 1200),
		candidate(2, "Beta", "CA", 1200),
		candidate(3, "Gamma", "TX", 1200),
	})

	state, err := fix.svc.StartSession(context.Background(), 7, ModeAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := stackIDs(state); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("stack = %v, want [1 2]", got)
	}
	if !state.HasMore {
		t.Error("HasMore = false, want true with a full first page")
	}
}

func TestStartSessionSkipsDecidedCandidates(t *testing.T) {
	fix := newFeedFixture(2, []model.Candidate{
		candidate(1, "Alpha", "CA", 1200),
		candidate(2, "Beta", "CA", 1200),
		candidate(3, "Gamma", "TX", 1200),
	})
	fix.decisions.MarkDecided(context.Background(), 7, 1)

	state, err := fix.svc.StartSession(context.Background(), 7, ModeAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, id := range stackIDs(state) {
		if id == 1 {
			t.Error("decided institution 1 reappeared in the stack")
		}
	}
}

func TestStartSessionSkipsFullyDecidedPages(t *testing.T) {
	fix := newFeedFixture(2, []model.Candidate{
		candidate(1, "Alpha", "CA", 1200),
		candidate(2, "Beta", "CA", 1200),
		candidate(3, "Gamma", "TX", 1200),
		candidate(4, "Delta", "TX", 1200),
	})
	// The whole first page is already decided; the feed must walk past it.
	fix.decisions.MarkDecided(context.Background(), 7, 1)
	fix.decisions.MarkDecided(context.Background(), 7, 2)

	state, err := fix.svc.StartSession(context.Background(), 7, ModeAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := stackIDs(state); len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Errorf("stack = %v, want [3 4]", got)
	}
}

func TestStartSessionTerminatesWhenEverythingDecided(t *testing.T) {
	fix := newFeedFixture(2, []model.Candidate{
		candidate(1, "Alpha", "CA", 1200),
		candidate(2, "Beta", "CA", 1200),
	})
	fix.decisions.MarkDecided(context.Background(), 7, 1)
	fix.decisions.MarkDecided(context.Background(), 7, 2)

	state, err := fix.svc.StartSession(context.Background(), 7, ModeAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(state.Candidates) != 0 {
		t.Errorf("stack = %v, want empty", stackIDs(state))
	}
	if state.HasMore {
		t.Error("HasMore = true, want false when the catalog is exhausted")
	}
}

func TestStartSessionPreferencesFallBackToCatalog(t *testing.T) {
	ctx := context.Background()
	// Nothing in the catalog matches the preferred region; the session must
	// page the full catalog instead of starting empty.
	fix := newFeedFixture(2, []model.Candidate{
		candidate(1, "Alpha", "CA", 1200),
		candidate(2, "Beta", "CA", 1200),
	})
	fix.svc.recommendation.preferenceRepo.Upsert(ctx, &model.UserPreference{
		UserID:          7,
		PreferredRegion: strp("TX"),
	})

	state, err := fix.svc.StartSession(ctx, 7, ModePreferences)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := stackIDs(state); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("stack = %v, want the full catalog [1 2]", got)
	}
}

func TestStartSessionUnknownUser(t *testing.T) {
	fix := newFeedFixture(2, []model.Candidate{candidate(1, "Alpha", "CA", 1200)})

	if _, err := fix.svc.StartSession(context.Background(), 99, ModeAll); !errors.Is(err, ErrNotFound) {
		t.Errorf("got err %v, want ErrNotFound", err)
	}
}

func TestSwipeRightMatchRecordsLike(t *testing.T) {
	ctx := context.Background()
	// User SAT 1300 meets the 1200 average: a match.
	fix := newFeedFixture(2, []model.Candidate{
		candidate(1, "Alpha", "CA", 1200),
		candidate(2, "Beta", "CA", 1200),
	})

	state, err := fix.svc.StartSession(ctx, 7, ModeAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := fix.svc.Swipe(ctx, state.SessionID, SwipeRight)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.IsMatch {
		t.Error("IsMatch = false, want true")
	}
	if result.InstitutionID != 1 {
		t.Errorf("InstitutionID = %d, want 1", result.InstitutionID)
	}
	if result.Next == nil || result.Next.ID != 2 {
		t.Errorf("Next = %+v, want candidate 2", result.Next)
	}

	liked, _ := fix.decisions.LikedIDs(ctx, 7)
	if len(liked) != 1 || liked[0] != 1 {
		t.Errorf("liked = %v, want [1]", liked)
	}
	decided, _ := fix.decisions.DecidedSet(ctx, 7)
	if _, ok := decided[1]; !ok {
		t.Error("matched institution missing from decided set")
	}
}

func TestSwipeRightWithoutDataIsNotAMatchButStillDecided(t *testing.T) {
	ctx := context.Background()
	fix := newFeedFixture(2, []model.Candidate{
		candidate(1, "Alpha", "CA", 0), // no admission-test data
	})

	state, err := fix.svc.StartSession(ctx, 7, ModeAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := fix.svc.Swipe(ctx, state.SessionID, SwipeRight)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.IsMatch {
		t.Error("IsMatch = true for a candidate with no data")
	}
	liked, _ := fix.decisions.LikedIDs(ctx, 7)
	if len(liked) != 0 {
		t.Errorf("liked = %v, want empty", liked)
	}
	decided, _ := fix.decisions.DecidedSet(ctx, 7)
	if _, ok := decided[1]; !ok {
		t.Error("non-matching swipe-right must still mark the candidate decided")
	}
}

func TestSwipeLeftRecordsPassOnly(t *testing.T) {
	ctx := context.Background()
	fix := newFeedFixture(2, []model.Candidate{
		candidate(1, "Alpha", "CA", 1200),
	})

	state, err := fix.svc.StartSession(ctx, 7, ModeAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := fix.svc.Swipe(ctx, state.SessionID, SwipeLeft)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.IsMatch {
		t.Error("IsMatch = true on a swipe-left")
	}
	decided, _ := fix.decisions.DecidedSet(ctx, 7)
	if _, ok := decided[1]; !ok {
		t.Error("swiped-left institution missing from decided set")
	}
	liked, _ := fix.decisions.LikedIDs(ctx, 7)
	if len(liked) != 0 {
		t.Errorf("liked = %v, want empty", liked)
	}
}

func TestSwipeInvalidDirection(t *testing.T) {
	fix := newFeedFixture(2, []model.Candidate{candidate(1, "Alpha", "CA", 1200)})

	state, err := fix.svc.StartSession(context.Background(), 7, ModeAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := fix.svc.Swipe(context.Background(), state.SessionID, "up"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("got err %v, want ErrInvalidArgument", err)
	}
}

func TestSwipeUnknownSession(t *testing.T) {
	fix := newFeedFixture(2, nil)

	if _, err := fix.svc.Swipe(context.Background(), "no-such-session", SwipeLeft); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("got err %v, want ErrSessionNotFound", err)
	}
}

func TestSwipeExhaustsFeed(t *testing.T) {
	ctx := context.Background()
	fix := newFeedFixture(2, []model.Candidate{
		candidate(1, "Alpha", "CA", 1200),
	})

	state, err := fix.svc.StartSession(ctx, 7, ModeAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := fix.svc.Swipe(ctx, state.SessionID, SwipeLeft); err != nil {
		t.Fatalf("first swipe: %v", err)
	}
	if _, err := fix.svc.Swipe(ctx, state.SessionID, SwipeLeft); !errors.Is(err, ErrFeedExhausted) {
		t.Errorf("got err %v, want ErrFeedExhausted", err)
	}
}

func TestSwipeRefillsWhenStackRunsDry(t *testing.T) {
	ctx := context.Background()
	// Batch size 1 forces a refill on every swipe.
	fix := newFeedFixture(1, []model.Candidate{
		candidate(1, "Alpha", "CA", 1200),
		candidate(2, "Beta", "CA", 1200),
		candidate(3, "Gamma", "TX", 1200),
	})

	state, err := fix.svc.StartSession(ctx, 7, ModeAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := []int64{}
	for i := 0; i < 3; i++ {
		result, err := fix.svc.Swipe(ctx, state.SessionID, SwipeLeft)
		if err != nil {
			t.Fatalf("swipe %d: %v", i, err)
		}
		seen = append(seen, result.InstitutionID)
	}

	if seen[0] != 1 || seen[1] != 2 || seen[2] != 3 {
		t.Errorf("swiped %v, want [1 2 3]", seen)
	}
}

func TestSetModeResetsStack(t *testing.T) {
	ctx := context.Background()
	fix := newFeedFixture(2, []model.Candidate{
		candidate(1, "Alpha", "CA", 1200),
		candidate(2, "Beta", "TX", 1200),
	})
	fix.svc.recommendation.preferenceRepo.Upsert(ctx, &model.UserPreference{
		UserID:          7,
		PreferredRegion: strp("TX"),
	})

	state, err := fix.svc.StartSession(ctx, 7, ModeAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(state.Candidates) != 2 {
		t.Fatalf("stack = %v, want both candidates", stackIDs(state))
	}

	state, err = fix.svc.SetMode(ctx, state.SessionID, ModeRegion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := stackIDs(state); len(got) != 1 || got[0] != 2 {
		t.Errorf("stack after mode change = %v, want [2]", got)
	}
	if state.Mode != ModeRegion {
		t.Errorf("Mode = %d, want %d", state.Mode, ModeRegion)
	}
}

func TestCloseSessionKeepsDecisions(t *testing.T) {
	ctx := context.Background()
	fix := newFeedFixture(2, []model.Candidate{
		candidate(1, "Alpha", "CA", 1200),
		candidate(2, "Beta", "CA", 1200),
	})

	state, err := fix.svc.StartSession(ctx, 7, ModeAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := fix.svc.Swipe(ctx, state.SessionID, SwipeRight); err != nil {
		t.Fatalf("swipe: %v", err)
	}

	fix.svc.CloseSession(state.SessionID)

	if _, err := fix.svc.Swipe(ctx, state.SessionID, SwipeLeft); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("got err %v, want ErrSessionNotFound after close", err)
	}

	// A fresh session must not resurface the decided candidate.
	state, err = fix.svc.StartSession(ctx, 7, ModeAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range stackIDs(state) {
		if id == 1 {
			t.Error("decided institution survived the session close")
		}
	}
}

func TestLikedInstitutions(t *testing.T) {
	ctx := context.Background()
	fix := newFeedFixture(2, []model.Candidate{
		candidate(1, "Alpha", "CA", 1200),
		candidate(2, "Beta", "CA", 1200),
	})

	state, err := fix.svc.StartSession(ctx, 7, ModeAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := fix.svc.Swipe(ctx, state.SessionID, SwipeRight); err != nil {
		t.Fatalf("swipe: %v", err)
	}

	liked, err := fix.svc.LikedInstitutions(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(liked) != 1 || liked[0].ID != 1 {
		t.Errorf("liked = %v, want institution 1", liked)
	}
}

func strp(s string) *string { return &s }
