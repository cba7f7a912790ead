package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"verum/academy-app/internal/domain"
	"verum/academy-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrMatchNotFound      = errors.New("match event not found")
	ErrMatchValidation    = errors.New("match validation failed")
	ErrMatchAccessDenied  = errors.New("access denied to modify this match event")
	ErrMatchAlreadyLogged = errors.New("match result has already been logged")
	ErrInvalidMatchRating = errors.New("match rating must be between 0 and 10")
)

// CreateMatchInput carries the agenda form fields.
type CreateMatchInput struct {
	Opponent   string
	Date       string // YYYY-MM-DD
	Time       string // HH:mm
	Location   string
	Type       domain.MatchType
	HomeOrAway domain.HomeOrAway
}

type MatchService interface {
	Create(ctx context.Context, userID primitive.ObjectID, input CreateMatchInput) (*domain.MatchEvent, error)

	// AgendaForUser lists the user's fixtures in chronological order.
	AgendaForUser(ctx context.Context, userID primitive.ObjectID) ([]domain.MatchEvent, error)

	// AllMatches is the admin view over every user's schedule.
	AllMatches(ctx context.Context) ([]domain.MatchEvent, error)

	// LogResult completes a scheduled fixture exactly once, storing the
	// result and the athlete's numbers and rolling them into the profile
	// stat counters.
	LogResult(ctx context.Context, actorID primitive.ObjectID, actorRole domain.Role, matchID primitive.ObjectID, result string, stats domain.MatchStats) (*domain.MatchEvent, error)

	// Delete removes a fixture; owners and admins only.
	Delete(ctx context.Context, actorID primitive.ObjectID, actorRole domain.Role, matchID primitive.ObjectID) error

	Subscribe(ctx context.Context, userID primitive.ObjectID, fn func([]domain.MatchEvent)) (repository.CancelFunc, error)
}

// matchService implements the MatchService interface.
type matchService struct {
	matchRepo repository.MatchRepository
	userRepo  repository.UserRepository
}

// NewMatchService creates a new instance of matchService.
func NewMatchService(matchRepo repository.MatchRepository, userRepo repository.UserRepository) MatchService {
	return &matchService{
		matchRepo: matchRepo,
		userRepo:  userRepo,
	}
}

// sortMatchesChronologically orders fixtures by date then kick-off time.
// The store returns them unordered (date+time ordering would need a
// composite index), so the sort happens here.
func sortMatchesChronologically(events []domain.MatchEvent) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].Time < events[j].Time
	})
}

func (s *matchService) Create(ctx context.Context, userID primitive.ObjectID, input CreateMatchInput) (*domain.MatchEvent, error) {
	if userID == primitive.NilObjectID {
		return nil, fmt.Errorf("%w: owner is required", ErrMatchValidation)
	}
	if strings.TrimSpace(input.Opponent) == "" {
		return nil, fmt.Errorf("%w: opponent is required", ErrMatchValidation)
	}
	if input.Date == "" {
		return nil, fmt.Errorf("%w: date is required", ErrMatchValidation)
	}
	switch input.Type {
	case domain.MatchLeague, domain.MatchFriendly, domain.MatchCup, domain.MatchTraining:
	default:
		return nil, fmt.Errorf("%w: unknown match type %q", ErrMatchValidation, input.Type)
	}
	if input.HomeOrAway != domain.Home && input.HomeOrAway != domain.Away {
		return nil, fmt.Errorf("%w: homeOrAway must be Home or Away", ErrMatchValidation)
	}

	event := &domain.MatchEvent{
		UserID:     userID,
		Opponent:   strings.TrimSpace(input.Opponent),
		Date:       input.Date,
		Time:       input.Time,
		Location:   input.Location,
		Type:       input.Type,
		HomeOrAway: input.HomeOrAway,
		Status:     domain.MatchScheduled,
	}

	id, err := s.matchRepo.Create(ctx, event)
	if err != nil {
		return nil, err
	}
	event.ID = id
	return event, nil
}

func (s *matchService) AgendaForUser(ctx context.Context, userID primitive.ObjectID) ([]domain.MatchEvent, error) {
	events, err := s.matchRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sortMatchesChronologically(events)
	return events, nil
}

func (s *matchService) AllMatches(ctx context.Context) ([]domain.MatchEvent, error) {
	events, err := s.matchRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	sortMatchesChronologically(events)
	return events, nil
}

// LogResult transitions scheduled -> completed. The transition happens
// once; a second attempt fails with ErrMatchAlreadyLogged.
func (s *matchService) LogResult(ctx context.Context, actorID primitive.ObjectID, actorRole domain.Role, matchID primitive.ObjectID, result string, stats domain.MatchStats) (*domain.MatchEvent, error) {
	if strings.TrimSpace(result) == "" {
		return nil, fmt.Errorf("%w: result is required", ErrMatchValidation)
	}
	if stats.Rating < 0 || stats.Rating > 10 {
		return nil, ErrInvalidMatchRating
	}
	if stats.Minutes < 0 || stats.Goals < 0 || stats.Assists < 0 {
		return nil, fmt.Errorf("%w: stats cannot be negative", ErrMatchValidation)
	}

	event, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if event.UserID != actorID && actorRole != domain.RoleAdmin {
		return nil, ErrMatchAccessDenied
	}
	if event.Status != domain.MatchScheduled {
		return nil, ErrMatchAlreadyLogged
	}

	trimmed := strings.TrimSpace(result)
	statsCopy := stats
	event.Status = domain.MatchCompleted
	event.Result = &trimmed
	event.UserStats = &statsCopy

	if err := s.matchRepo.Update(ctx, event); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	// Roll the numbers into the profile counters. Naive increments: the
	// profile and the fixture are separate documents with no transaction
	// spanning them, so a failure here leaves the fixture completed and
	// the counters behind by one.
	if err := s.userRepo.IncrementStats(ctx, event.UserID, stats.Minutes, stats.Goals, stats.Assists); err != nil {
		log.Printf("WARN: stat rollup failed for %s after match %s: %v", event.UserID.Hex(), matchID.Hex(), err)
	}

	return event, nil
}

func (s *matchService) Delete(ctx context.Context, actorID primitive.ObjectID, actorRole domain.Role, matchID primitive.ObjectID) error {
	event, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMatchNotFound
		}
		return err
	}
	if event.UserID != actorID && actorRole != domain.RoleAdmin {
		return ErrMatchAccessDenied
	}

	if err := s.matchRepo.Delete(ctx, matchID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMatchNotFound
		}
		return err
	}
	return nil
}

func (s *matchService) Subscribe(ctx context.Context, userID primitive.ObjectID, fn func([]domain.MatchEvent)) (repository.CancelFunc, error) {
	return s.matchRepo.SubscribeByUser(ctx, userID, func(events []domain.MatchEvent) {
		sortMatchesChronologically(events)
		fn(events)
	})
}
