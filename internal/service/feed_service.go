package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/unimatch/unimatch-backend/internal/model"
	"github.com/unimatch/unimatch-backend/internal/repository"
)

// Swipe directions.
const (
	SwipeLeft  = "left"
	SwipeRight = "right"
)

// FeedSession is the server-side state of one discovery feed: the candidate
// stack, the paging offset into the active filter, and the cursor pointing at
// the candidate currently on top. The generation counter invalidates in-flight
// prefetches when the mode changes.
type FeedSession struct {
	ID     string
	UserID int64
	Mode   int

	user  *model.User
	spec  model.FilterSpec
	stack []model.Candidate

	cursor      int
	offset      int
	hasMore     bool
	generation  uint64
	prefetching bool
}

// FeedState is the client-visible snapshot of a session.
type FeedState struct {
	SessionID  string            `json:"session_id"`
	Mode       int               `json:"mode"`
	Candidates []model.Candidate `json:"candidates"`
	HasMore    bool              `json:"has_more"`
}

// SwipeResult reports the outcome of one swipe.
type SwipeResult struct {
	InstitutionID int64            `json:"uni_id"`
	Direction     string           `json:"direction"`
	IsMatch       bool             `json:"isMatch"`
	Next          *model.Candidate `json:"next,omitempty"`
	Remaining     int              `json:"remaining"`
	HasMore       bool             `json:"has_more"`
}

// FeedService owns every live feed session. Pages are fetched through the
// recommendation filter, candidates the user already decided on are dropped
// before they reach the stack, and the next page is prefetched in the
// background as the user nears the end of the current one.
type FeedService struct {
	recommendation  *RecommendationService
	institutionRepo repository.InstitutionRepository
	decisionRepo    repository.DecisionRepository
	userRepo        repository.UserRepository
	batchSize       int
	log             zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*FeedSession
}

func NewFeedService(
	recommendation *RecommendationService,
	institutionRepo repository.InstitutionRepository,
	decisionRepo repository.DecisionRepository,
	userRepo repository.UserRepository,
	batchSize int,
	log zerolog.Logger,
) *FeedService {
	return &FeedService{
		recommendation:  recommendation,
		institutionRepo: institutionRepo,
		decisionRepo:    decisionRepo,
		userRepo:        userRepo,
		batchSize:       batchSize,
		log:             log.With().Str("component", "feed_service").Logger(),
		sessions:        make(map[string]*FeedSession),
	}
}

// StartSession creates a feed session for the user in the given mode and
// loads its first batch of undecided candidates. The filter comes from the
// recommendation engine's effective resolution, so a mode-4 session with
// over-constrained preferences pages the full catalog like the HTTP listing
// does.
func (s *FeedService) StartSession(ctx context.Context, userID int64, mode int) (*FeedState, error) {
	spec, err := s.recommendation.EffectiveFilter(ctx, mode, userID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}

	sess := &FeedSession{
		ID:      uuid.NewString(),
		UserID:  userID,
		Mode:    mode,
		user:    user,
		spec:    spec,
		stack:   []model.Candidate{},
		hasMore: true,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	if err := s.refill(ctx, sess.ID); err != nil {
		s.CloseSession(sess.ID)
		return nil, err
	}

	s.log.Info().
		Str("session_id", sess.ID).
		Int64("user_id", userID).
		Int("mode", mode).
		Msg("Feed session started")
	return s.snapshot(sess.ID)
}

// Swipe records the user's decision on the candidate at the top of the stack,
// evaluates the match on a swipe-right, and advances the cursor. The candidate
// never reappears in any later session regardless of direction or match
// outcome.
func (s *FeedService) Swipe(ctx context.Context, sessionID, direction string) (*SwipeResult, error) {
	if direction != SwipeLeft && direction != SwipeRight {
		return nil, fmt.Errorf("%w: direction must be %q or %q", ErrInvalidArgument, SwipeLeft, SwipeRight)
	}

	var (
		sess *FeedSession
		ok   bool
	)
	for {
		s.mu.Lock()
		sess, ok = s.sessions[sessionID]
		if !ok {
			s.mu.Unlock()
			return nil, ErrSessionNotFound
		}
		if sess.cursor < len(sess.stack) || !sess.hasMore {
			break // lock held
		}
		s.mu.Unlock()
		// The prefetch did not keep up; refill synchronously. Every pass
		// either grows the stack or clears hasMore, so this terminates.
		if err := s.refill(ctx, sessionID); err != nil {
			return nil, err
		}
	}
	if sess.cursor >= len(sess.stack) {
		s.mu.Unlock()
		return nil, ErrFeedExhausted
	}

	candidate := sess.stack[sess.cursor]
	user := sess.user
	s.mu.Unlock()

	isMatch := false
	if direction == SwipeRight {
		isMatch = EvaluateMatch(user, &candidate)
	}

	var recordErr error
	if isMatch {
		recordErr = s.decisionRepo.MarkLiked(ctx, sess.UserID, candidate.ID)
	} else {
		recordErr = s.decisionRepo.MarkDecided(ctx, sess.UserID, candidate.ID)
	}
	if recordErr != nil {
		return nil, fmt.Errorf("record decision: %w", recordErr)
	}

	s.mu.Lock()
	sess, ok = s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	sess.cursor++

	result := &SwipeResult{
		InstitutionID: candidate.ID,
		Direction:     direction,
		IsMatch:       isMatch,
		Remaining:     len(sess.stack) - sess.cursor,
		HasMore:       sess.hasMore,
	}
	if sess.cursor < len(sess.stack) {
		next := sess.stack[sess.cursor]
		result.Next = &next
	}
	shouldPrefetch := sess.hasMore && !sess.prefetching && sess.cursor >= len(sess.stack)-2
	if shouldPrefetch {
		sess.prefetching = true
	}
	s.mu.Unlock()

	if shouldPrefetch {
		go s.prefetch(sessionID)
	}
	return result, nil
}

// SetMode switches the session to a new filter mode, discarding the current
// stack and any in-flight prefetch, and loads the first batch of the new mode.
func (s *FeedService) SetMode(ctx context.Context, sessionID string, mode int) (*FeedState, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	userID := sess.UserID
	s.mu.Unlock()

	spec, err := s.recommendation.EffectiveFilter(ctx, mode, userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	sess, ok = s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	sess.Mode = mode
	sess.spec = spec
	sess.stack = []model.Candidate{}
	sess.cursor = 0
	sess.offset = 0
	sess.hasMore = true
	sess.generation++ // orphans any prefetch issued against the old mode
	s.mu.Unlock()

	if err := s.refill(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.snapshot(sessionID)
}

// CloseSession drops the session. Decisions already recorded survive it.
func (s *FeedService) CloseSession(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// LikedInstitutions lists the institutions the user has matched with, ordered
// by name.
func (s *FeedService) LikedInstitutions(ctx context.Context, userID int64) ([]model.Candidate, error) {
	ids, err := s.decisionRepo.LikedIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load liked set: %w", err)
	}
	return s.institutionRepo.ListByIDs(ctx, ids)
}

func (s *FeedService) snapshot(sessionID string) (*FeedState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	remaining := make([]model.Candidate, len(sess.stack)-sess.cursor)
	copy(remaining, sess.stack[sess.cursor:])
	return &FeedState{
		SessionID:  sess.ID,
		Mode:       sess.Mode,
		Candidates: remaining,
		HasMore:    sess.hasMore,
	}, nil
}

// refill fetches the next batch of undecided candidates and appends it to the
// session stack. All data access happens outside the lock; the result is only
// applied if the session's generation has not moved, so a stale fetch can
// never pollute a mode the user switched to meanwhile.
func (s *FeedService) refill(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	spec := sess.spec
	userID := sess.UserID
	startOffset := sess.offset
	gen := sess.generation
	s.mu.Unlock()

	batch, newOffset, hasMore, err := s.fetchNextUndecided(ctx, spec, userID, startOffset)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok = s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if sess.generation != gen {
		return nil // mode changed while fetching; drop the stale page
	}
	if sess.offset != startOffset {
		return nil // a concurrent refill already consumed this range
	}
	sess.stack = append(sess.stack, batch...)
	sess.offset = newOffset
	sess.hasMore = hasMore
	return nil
}

// fetchNextUndecided pages through the filter starting at startOffset until it
// finds a page with at least one candidate the user has not decided on, the
// source runs dry, or the offset passes the catalog size. Returns the kept
// candidates, the offset the next fetch should start from, and whether more
// pages may exist.
func (s *FeedService) fetchNextUndecided(ctx context.Context, spec model.FilterSpec, userID int64, startOffset int) ([]model.Candidate, int, bool, error) {
	decided, err := s.decisionRepo.DecidedSet(ctx, userID)
	if err != nil {
		return nil, 0, false, fmt.Errorf("load decision set: %w", err)
	}

	// The catalog size bounds the walk even if every page filters to nothing.
	ceiling, err := s.institutionRepo.Count(ctx, model.AllInstitutions())
	if err != nil {
		return nil, 0, false, fmt.Errorf("count institutions: %w", err)
	}

	offset := startOffset
	for int64(offset) <= ceiling {
		page, err := s.institutionRepo.List(ctx, spec, offset, s.batchSize)
		if err != nil {
			return nil, 0, false, fmt.Errorf("list candidates: %w", err)
		}
		if len(page) == 0 {
			return []model.Candidate{}, offset, false, nil
		}

		kept := page[:0:0]
		for _, c := range page {
			if _, done := decided[c.ID]; !done {
				kept = append(kept, c)
			}
		}
		if len(kept) > 0 {
			return kept, offset + s.batchSize, len(page) == s.batchSize, nil
		}
		offset += s.batchSize
	}
	return []model.Candidate{}, offset, false, nil
}

// prefetch runs refill in the background with its own timeout-free context;
// the generation check inside refill discards the result if it is stale.
func (s *FeedService) prefetch(sessionID string) {
	defer func() {
		s.mu.Lock()
		if sess, ok := s.sessions[sessionID]; ok {
			sess.prefetching = false
		}
		s.mu.Unlock()
	}()

	if err := s.refill(context.Background(), sessionID); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("Feed prefetch failed")
	}
}
