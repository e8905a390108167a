package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/riskibarqy/fantasy-matchsim/internal/domain/match"
	"github.com/riskibarqy/fantasy-matchsim/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-matchsim/internal/platform/logging"
	"github.com/riskibarqy/fantasy-matchsim/internal/platform/resilience"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const defaultScoringWorkers = 8

// PerformanceSource returns frozen performances of a finalized match.
type PerformanceSource interface {
	FinalizePlayerRatings(ctx context.Context, matchID string) ([]match.PlayerPerformance, error)
}

type TeamPointsInput struct {
	LeagueID  string
	Roster    []string
	Stats     []scoring.GameweekPlayerStats
	Captaincy scoring.Captaincy
}

type PlayerMatchPoints struct {
	Stats  scoring.GameweekPlayerStats
	Points int
}

type MatchPoints struct {
	MatchID  string
	LeagueID string
	Bonus    []scoring.BonusAward
	Players  []PlayerMatchPoints
}

type ScoringService struct {
	rulesRepo   scoring.RulesRepository
	performance PerformanceSource
	workerCount int
	logger      *logging.Logger
}

func NewScoringService(
	rulesRepo scoring.RulesRepository,
	performance PerformanceSource,
	workerCount int,
	logger *logging.Logger,
) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}
	if workerCount <= 0 {
		workerCount = defaultScoringWorkers
	}

	return &ScoringService{
		rulesRepo:   rulesRepo,
		performance: performance,
		workerCount: workerCount,
		logger:      logger,
	}
}

// ResolveRules returns the league's rule table, or the default table for an
// empty league id or a league without overrides.
func (s *ScoringService) ResolveRules(ctx context.Context, leagueID string) (scoring.Rules, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ResolveRules")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" || s.rulesRepo == nil {
		return scoring.DefaultRules(), nil
	}

	rules, ok, err := s.rulesRepo.GetLeagueRules(ctx, leagueID)
	if err != nil {
		return scoring.Rules{}, fmt.Errorf("get scoring rules for league=%s: %w", leagueID, mapScoringError(err))
	}
	if !ok {
		return scoring.DefaultRules(), nil
	}
	return rules, nil
}

func (s *ScoringService) UpsertLeagueRules(ctx context.Context, leagueID string, rules scoring.Rules) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.UpsertLeagueRules")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if s.rulesRepo == nil {
		return fmt.Errorf("%w: scoring rules storage is not configured", ErrDependencyUnavailable)
	}
	if err := rules.Validate(); err != nil {
		return mapScoringError(err)
	}
	if err := s.rulesRepo.UpsertLeagueRules(ctx, leagueID, rules); err != nil {
		return fmt.Errorf("upsert scoring rules for league=%s: %w", leagueID, mapScoringError(err))
	}

	s.logger.InfoContext(ctx, "league scoring rules updated", "league_id", leagueID)
	return nil
}

func (s *ScoringService) CalculatePlayerPoints(ctx context.Context, leagueID string, stats scoring.GameweekPlayerStats) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.CalculatePlayerPoints")
	defer span.End()

	rules, err := s.ResolveRules(ctx, leagueID)
	if err != nil {
		return 0, err
	}
	points, err := scoring.CalculatePlayerPoints(stats, rules)
	if err != nil {
		return 0, mapScoringError(err)
	}
	return points, nil
}

func (s *ScoringService) CalculateTeamGameweekPoints(ctx context.Context, input TeamPointsInput) (scoring.TeamGameweekPoints, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.CalculateTeamGameweekPoints")
	defer span.End()

	if len(input.Roster) == 0 {
		return scoring.TeamGameweekPoints{}, fmt.Errorf("%w: roster is required", ErrInvalidInput)
	}

	statsByPlayer := make(map[string]scoring.GameweekPlayerStats, len(input.Stats))
	for _, item := range input.Stats {
		if _, exists := statsByPlayer[item.PlayerID]; exists {
			return scoring.TeamGameweekPoints{}, fmt.Errorf("%w: duplicate stats for player=%s", ErrInvalidInput, item.PlayerID)
		}
		statsByPlayer[item.PlayerID] = item
	}

	rules, err := s.ResolveRules(ctx, input.LeagueID)
	if err != nil {
		return scoring.TeamGameweekPoints{}, err
	}
	out, err := scoring.CalculateTeamGameweekBreakdown(input.Roster, statsByPlayer, input.Captaincy, rules)
	if err != nil {
		return scoring.TeamGameweekPoints{}, mapScoringError(err)
	}
	return out, nil
}

func (s *ScoringService) AssignBonusPoints(ctx context.Context, matchStats []scoring.GameweekPlayerStats) ([]scoring.BonusAward, error) {
	_, span := startUsecaseSpan(ctx, "usecase.ScoringService.AssignBonusPoints")
	defer span.End()

	awards, err := scoring.AssignBonusPoints(matchStats)
	if err != nil {
		return nil, mapScoringError(err)
	}
	return awards, nil
}

// ScoreMatch scores every player of a finalized simulation, bonus included.
// Players are ordered by points, ties by player id.
func (s *ScoringService) ScoreMatch(ctx context.Context, matchID, leagueID string) (MatchPoints, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ScoreMatch")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return MatchPoints{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	span.SetAttributes(attribute.String("match.id", matchID))
	if s.performance == nil {
		return MatchPoints{}, fmt.Errorf("%w: match results are not configured", ErrDependencyUnavailable)
	}

	performances, err := s.performance.FinalizePlayerRatings(ctx, matchID)
	if err != nil {
		return MatchPoints{}, err
	}
	rules, err := s.ResolveRules(ctx, leagueID)
	if err != nil {
		return MatchPoints{}, err
	}

	matchStats := scoring.FromPerformances(performances)
	awards, err := scoring.AssignBonusPoints(matchStats)
	if err != nil {
		return MatchPoints{}, mapScoringError(err)
	}
	matchStats = scoring.ApplyBonus(matchStats, awards)

	p := pool.NewWithResults[PlayerMatchPoints]().
		WithContext(ctx).
		WithCancelOnError().
		WithMaxGoroutines(s.workerCount)
	for _, stats := range matchStats {
		p.Go(func(ctx context.Context) (PlayerMatchPoints, error) {
			if err := ctx.Err(); err != nil {
				return PlayerMatchPoints{}, err
			}
			points, err := scoring.CalculatePlayerPoints(stats, rules)
			if err != nil {
				return PlayerMatchPoints{}, fmt.Errorf("score player=%s: %w", stats.PlayerID, err)
			}
			return PlayerMatchPoints{Stats: stats, Points: points}, nil
		})
	}
	players, err := p.Wait()
	if err != nil {
		return MatchPoints{}, mapScoringError(err)
	}

	sort.Slice(players, func(i, j int) bool {
		if players[i].Points != players[j].Points {
			return players[i].Points > players[j].Points
		}
		return players[i].Stats.PlayerID < players[j].Stats.PlayerID
	})

	s.logger.DebugContext(ctx, "match scored",
		"match_id", matchID,
		"league_id", leagueID,
		"players", len(players),
	)
	return MatchPoints{
		MatchID:  matchID,
		LeagueID: strings.TrimSpace(leagueID),
		Bonus:    awards,
		Players:  players,
	}, nil
}

func mapScoringError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, scoring.ErrInvalidRules), errors.Is(err, scoring.ErrInvalidStats), errors.Is(err, scoring.ErrInvalidCaptaincy):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, resilience.ErrCircuitOpen):
		return fmt.Errorf("%w: %w", ErrDependencyUnavailable, err)
	default:
		return err
	}
}
