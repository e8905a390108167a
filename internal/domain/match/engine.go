package match

import (
	"math"
	"math/rand/v2"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-matchsim/internal/domain/player"
)

const (
	homeSide = 0
	awaySide = 1
)

// Per-team, per-minute event rates at equal strength and full manpower.
const (
	shotRate          = 0.11
	penaltyRate       = 0.0025
	ownGoalRate       = 0.0006
	cardRate          = 0.02
	straightRedShare  = 0.06
	assistShare       = 0.72
	saveShare         = 0.35
	penaltyConversion = 0.76
	penaltySaveShare  = 0.65
	varReviewShare    = 0.06
	varOverturnShare  = 0.3
	substitutionRate  = 0.06
	substitutionFrom  = 55
)

const (
	baseRating      = 6.0
	minRating       = 0.0
	maxRating       = 10.0
	ratingPerMinute = 0.005
)

var shotPositionFactor = map[player.Position]float64{
	player.PositionGoalkeeper: 0,
	player.PositionDefender:   1,
	player.PositionMidfielder: 2,
	player.PositionForward:    3,
}

type Option func(*Engine)

// WithRand injects the random source, mainly for reproducible tests.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	}
}

type lineup struct {
	teamID   string
	starters int
	onPitch  []string
	bench    []string
	subsUsed int
}

func newLineup(team Team) lineup {
	out := lineup{teamID: team.ID}
	for idx, item := range team.Players {
		if idx < MaxStarters {
			out.onPitch = append(out.onPitch, item.ID)
			continue
		}
		out.bench = append(out.bench, item.ID)
	}
	out.starters = len(out.onPitch)
	return out
}

func (l lineup) clone() lineup {
	out := l
	out.onPitch = append([]string(nil), l.onPitch...)
	out.bench = append([]string(nil), l.bench...)
	return out
}

// Engine owns one match and advances it a minute at a time.
// It is not safe for concurrent use; callers serialize access.
type Engine struct {
	state   State
	rng     *rand.Rand
	players map[string]player.Player
	lineups [2]lineup
}

func NewEngine(id string, home, away Team, opts ...Option) (*Engine, error) {
	if strings.TrimSpace(id) == "" {
		return nil, crerr.New("match id is required")
	}
	if err := ValidateRosters(home, away); err != nil {
		return nil, err
	}

	e := &Engine{
		players: make(map[string]player.Player, len(home.Players)+len(away.Players)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	e.state = State{
		ID:           id,
		Home:         cloneTeam(home),
		Away:         cloneTeam(away),
		Status:       StatusNotStarted,
		Events:       []Event{},
		Performances: make(map[string]PlayerPerformance),
	}
	e.lineups[homeSide] = newLineup(e.state.Home)
	e.lineups[awaySide] = newLineup(e.state.Away)

	for _, team := range []Team{e.state.Home, e.state.Away} {
		for _, item := range team.Players {
			e.players[item.ID] = item
		}
	}
	for side := range e.lineups {
		for _, playerID := range e.lineups[side].onPitch {
			e.state.Performances[playerID] = e.newPerformance(playerID, e.lineups[side].teamID)
		}
	}

	return e, nil
}

func (e *Engine) ID() string {
	return e.state.ID
}

func (e *Engine) Status() Status {
	return e.state.Status
}

// State returns a snapshot; mutating it does not affect the engine.
func (e *Engine) State() State {
	return e.state.Clone()
}

func (e *Engine) Start() error {
	if e.state.Status != StatusNotStarted {
		return crerr.Wrapf(ErrInvalidState, "start match %s: status is %s", e.state.ID, e.state.Status)
	}
	e.state.Status = StatusInProgress
	return nil
}

// SimulateMinute plays the next minute and returns the events it produced.
// Once the match is completed it is a no-op returning no events.
func (e *Engine) SimulateMinute() []Event {
	if e.state.Status == StatusCompleted {
		return []Event{}
	}

	next := e.state.Clone()
	lineups := [2]lineup{e.lineups[homeSide].clone(), e.lineups[awaySide].clone()}
	if next.Status == StatusNotStarted {
		next.Status = StatusInProgress
	}
	next.Minute++

	s := &step{
		rng:     e.rng,
		players: e.players,
		state:   &next,
		lineups: &lineups,
		events:  make([]Event, 0, 2),
	}
	s.play()

	if next.Minute >= FullTime {
		next.Status = StatusCompleted
	}
	next.Events = append(next.Events, s.events...)

	e.state = next
	e.lineups = lineups
	return s.events
}

// FinalizePlayerRatings freezes performances after full time. Repeated calls
// return the same frozen records.
func (e *Engine) FinalizePlayerRatings() ([]PlayerPerformance, error) {
	if e.state.Status != StatusCompleted {
		return nil, crerr.Wrapf(ErrInvalidState, "finalize match %s: status is %s", e.state.ID, e.state.Status)
	}
	if e.state.Finalized {
		return e.state.OrderedPerformances(), nil
	}

	for id, perf := range e.state.Performances {
		perf.Rating = finalRating(perf, e.resultFor(perf.TeamID))
		e.state.Performances[id] = perf
	}
	e.state.Finalized = true

	return e.state.OrderedPerformances(), nil
}

func (e *Engine) resultFor(teamID string) int {
	scored := e.state.HomeScore
	conceded := e.state.AwayScore
	if teamID == e.state.Away.ID {
		scored, conceded = conceded, scored
	}
	switch {
	case scored > conceded:
		return 1
	case scored < conceded:
		return -1
	default:
		return 0
	}
}

func (e *Engine) newPerformance(playerID, teamID string) PlayerPerformance {
	return PlayerPerformance{
		PlayerID: playerID,
		TeamID:   teamID,
		Position: e.players[playerID].Position,
		Rating:   baseRating,
	}
}

func cloneTeam(t Team) Team {
	out := t
	out.Players = append([]player.Player(nil), t.Players...)
	return out
}

// step applies one minute to working copies that the engine commits afterwards.
type step struct {
	rng     *rand.Rand
	players map[string]player.Player
	state   *State
	lineups *[2]lineup
	events  []Event
}

func (s *step) play() {
	for side := range s.lineups {
		for _, playerID := range s.lineups[side].onPitch {
			perf := s.state.Performances[playerID]
			perf.MinutesPlayed++
			s.state.Performances[playerID] = perf
		}
	}

	for _, side := range []int{homeSide, awaySide} {
		s.playAttack(side)
		s.playDiscipline(side)
		s.playSubstitution(side)
	}

	for id, perf := range s.state.Performances {
		perf.Rating = runningRating(perf)
		s.state.Performances[id] = perf
	}
}

func (s *step) emit(eventType EventType, side int, playerID, assistID, detail string) {
	s.events = append(s.events, Event{
		Minute:         s.state.Minute,
		Type:           eventType,
		TeamID:         s.lineups[side].teamID,
		PlayerID:       playerID,
		AssistPlayerID: assistID,
		Detail:         detail,
	})
}

func (s *step) update(playerID string, fn func(*PlayerPerformance)) {
	perf := s.state.Performances[playerID]
	fn(&perf)
	s.state.Performances[playerID] = perf
}

func (s *step) playAttack(side int) {
	opp := 1 - side
	attack := s.attackStrength(side)
	defence := s.defenceStrength(opp)
	ratio := clamp(attack/defence, 0.5, 2.0)
	pressure := ratio * s.manpower(side) / math.Max(s.manpower(opp), 0.1)

	roll := s.rng.Float64()
	switch {
	case roll < penaltyRate*pressure:
		s.playPenalty(side)
	case roll < (penaltyRate+ownGoalRate)*pressure:
		s.playOwnGoal(side)
	case roll < (penaltyRate+ownGoalRate+shotRate)*pressure:
		s.playShot(side)
	}
}

func (s *step) playShot(side int) {
	opp := 1 - side
	shooterID, ok := s.pick(side, func(p player.Player) float64 {
		return float64(p.Attributes.Shooting) * shotPositionFactor[p.Position]
	})
	if !ok {
		return
	}
	shooter := s.players[shooterID]

	keeperID, hasKeeper := s.goalkeeper(opp)
	keeping := 50.0
	if hasKeeper {
		keeping = float64(s.players[keeperID].Attributes.Defence()) / 2
	}
	conversion := 0.06 + 0.14*float64(shooter.Attributes.Shooting)/player.MaxAttribute - 0.06*keeping/player.MaxAttribute

	roll := s.rng.Float64()
	if roll < conversion {
		assistID := ""
		if s.rng.Float64() < assistShare {
			assistID, _ = s.pick(side, func(p player.Player) float64 {
				if p.ID == shooterID {
					return 0
				}
				return float64(p.Attributes.Passing)
			})
		}
		if s.rng.Float64() < varReviewShare {
			if s.rng.Float64() < varOverturnShare {
				s.emit(EventVAR, side, shooterID, "", DetailGoalDisallowed)
				return
			}
			s.emit(EventVAR, side, shooterID, "", DetailGoalConfirmed)
		}
		s.scoreGoal(side, shooterID, assistID, DetailOpenPlay)
		return
	}

	if hasKeeper && roll < conversion+saveShare {
		s.update(keeperID, func(p *PlayerPerformance) { p.Saves++ })
		s.emit(EventOther, opp, keeperID, "", DetailSave)
	}
}

func (s *step) playPenalty(side int) {
	opp := 1 - side
	takerID, ok := s.penaltyTaker(side)
	if !ok {
		return
	}

	if s.rng.Float64() < penaltyConversion {
		s.scoreGoal(side, takerID, "", DetailPenalty)
		return
	}

	s.update(takerID, func(p *PlayerPerformance) { p.PenaltiesMissed++ })
	keeperID, hasKeeper := s.goalkeeper(opp)
	if hasKeeper && s.rng.Float64() < penaltySaveShare {
		s.update(keeperID, func(p *PlayerPerformance) { p.PenaltiesSaved++ })
		s.emit(EventOther, opp, keeperID, "", DetailPenaltySaved)
		return
	}
	s.emit(EventOther, side, takerID, "", DetailPenaltyMissed)
}

// penaltyTaker is the best finisher among the outfield players on the pitch.
func (s *step) penaltyTaker(side int) (string, bool) {
	takerID := ""
	best := -1
	for _, playerID := range s.lineups[side].onPitch {
		item := s.players[playerID]
		if !item.IsOutfield() {
			continue
		}
		if item.Attributes.Shooting > best {
			best = item.Attributes.Shooting
			takerID = playerID
		}
	}
	return takerID, takerID != ""
}

func (s *step) playOwnGoal(side int) {
	opp := 1 - side
	culpritID, ok := s.pickAny(opp, func(p player.Player) float64 {
		return float64(player.MaxAttribute + 1 - p.Attributes.Defending)
	})
	if !ok {
		return
	}
	s.update(culpritID, func(p *PlayerPerformance) { p.OwnGoals++ })
	s.concede(side)
	s.emit(EventGoal, side, culpritID, "", DetailOwnGoal)
}

func (s *step) scoreGoal(side int, scorerID, assistID, detail string) {
	s.update(scorerID, func(p *PlayerPerformance) { p.Goals++ })
	if assistID != "" {
		s.update(assistID, func(p *PlayerPerformance) { p.Assists++ })
	}
	s.concede(side)
	s.emit(EventGoal, side, scorerID, assistID, detail)
}

// concede credits the goal to side and charges everyone on the other side's pitch.
func (s *step) concede(side int) {
	if side == homeSide {
		s.state.HomeScore++
	} else {
		s.state.AwayScore++
	}
	for _, playerID := range s.lineups[1-side].onPitch {
		s.update(playerID, func(p *PlayerPerformance) { p.GoalsConceded++ })
	}
}

func (s *step) playDiscipline(side int) {
	if s.rng.Float64() >= cardRate*s.manpower(side) {
		return
	}
	offenderID, ok := s.pickAny(side, func(p player.Player) float64 {
		return float64(player.MaxAttribute + 1 - p.Attributes.Discipline())
	})
	if !ok {
		return
	}

	detail := DetailYellowCard
	sentOff := false
	s.update(offenderID, func(p *PlayerPerformance) {
		switch {
		case p.YellowCards > 0:
			p.YellowCards = 0
			p.RedCards = 1
			detail = DetailSecondYellow
			sentOff = true
		case s.rng.Float64() < straightRedShare:
			p.RedCards = 1
			detail = DetailRedCard
			sentOff = true
		default:
			p.YellowCards = 1
		}
		p.SentOff = sentOff
	})
	if sentOff {
		s.lineups[side].onPitch = without(s.lineups[side].onPitch, offenderID)
	}
	s.emit(EventCard, side, offenderID, "", detail)
}

func (s *step) playSubstitution(side int) {
	lu := &s.lineups[side]
	if s.state.Minute < substitutionFrom || s.state.Minute >= FullTime || lu.subsUsed >= MaxSubstitutions || len(lu.bench) == 0 {
		return
	}
	if s.rng.Float64() >= substitutionRate {
		return
	}

	outID := ""
	lowest := math.MaxFloat64
	for _, playerID := range lu.onPitch {
		if !s.players[playerID].IsOutfield() {
			continue
		}
		rating := runningRating(s.state.Performances[playerID])
		if rating < lowest {
			lowest = rating
			outID = playerID
		}
	}
	if outID == "" {
		return
	}

	inID := ""
	for _, playerID := range lu.bench {
		candidate := s.players[playerID]
		if !candidate.IsOutfield() {
			continue
		}
		if inID == "" || candidate.Position == s.players[outID].Position {
			inID = playerID
			if candidate.Position == s.players[outID].Position {
				break
			}
		}
	}
	if inID == "" {
		return
	}

	for idx, playerID := range lu.onPitch {
		if playerID == outID {
			lu.onPitch[idx] = inID
			break
		}
	}
	lu.bench = without(lu.bench, inID)
	lu.subsUsed++

	s.update(outID, func(p *PlayerPerformance) { p.SubbedOff = true })
	incoming := PlayerPerformance{
		PlayerID: inID,
		TeamID:   lu.teamID,
		Position: s.players[inID].Position,
		Rating:   baseRating,
		SubbedOn: true,
	}
	s.state.Performances[inID] = incoming
	s.emit(EventSubstitution, side, inID, "", "replaces "+outID)
}

func (s *step) attackStrength(side int) float64 {
	total, count := 0.0, 0
	for _, playerID := range s.lineups[side].onPitch {
		item := s.players[playerID]
		if !item.IsOutfield() {
			continue
		}
		total += float64(item.Attributes.Attack()) / 3
		count++
	}
	if count == 0 {
		return player.MinAttribute
	}
	return total / float64(count)
}

func (s *step) defenceStrength(side int) float64 {
	total, count := 0.0, 0
	for _, playerID := range s.lineups[side].onPitch {
		item := s.players[playerID]
		if !item.IsOutfield() {
			continue
		}
		total += float64(item.Attributes.Defence()) / 2
		count++
	}
	outfield := float64(player.MinAttribute)
	if count > 0 {
		outfield = total / float64(count)
	}

	keeping := outfield * 0.8
	if keeperID, ok := s.goalkeeper(side); ok {
		keeping = float64(s.players[keeperID].Attributes.Defence()) / 2
	}
	return 0.7*outfield + 0.3*keeping
}

func (s *step) manpower(side int) float64 {
	lu := s.lineups[side]
	if lu.starters == 0 {
		return 0
	}
	return float64(len(lu.onPitch)) / float64(lu.starters)
}

func (s *step) goalkeeper(side int) (string, bool) {
	for _, playerID := range s.lineups[side].onPitch {
		if s.players[playerID].Position == player.PositionGoalkeeper {
			return playerID, true
		}
	}
	return "", false
}

// pick chooses an on-pitch outfield player of side by weight.
func (s *step) pick(side int, weight func(player.Player) float64) (string, bool) {
	return s.pickAny(side, func(p player.Player) float64 {
		if !p.IsOutfield() {
			return 0
		}
		return weight(p)
	})
}

// pickAny chooses any on-pitch player of side by weight.
func (s *step) pickAny(side int, weight func(player.Player) float64) (string, bool) {
	candidates := s.lineups[side].onPitch
	total := 0.0
	for _, playerID := range candidates {
		if w := weight(s.players[playerID]); w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return "", false
	}

	target := s.rng.Float64() * total
	last := ""
	for _, playerID := range candidates {
		w := weight(s.players[playerID])
		if w <= 0 {
			continue
		}
		last = playerID
		target -= w
		if target < 0 {
			return playerID, true
		}
	}
	return last, last != ""
}

func runningRating(p PlayerPerformance) float64 {
	rating := baseRating +
		float64(p.MinutesPlayed)*ratingPerMinute +
		float64(p.Goals)*1.0 +
		float64(p.Assists)*0.6 +
		float64(p.Saves)*0.15 +
		float64(p.PenaltiesSaved)*0.8 -
		float64(p.YellowCards)*0.5 -
		float64(p.RedCards)*2.0 -
		float64(p.OwnGoals)*1.0 -
		float64(p.PenaltiesMissed)*0.7 -
		float64(p.GoalsConceded)*concededRatingPenalty(p.Position)
	return clamp(rating, minRating, maxRating)
}

// finalRating adds the team result to the running rating; result is -1, 0 or 1.
func finalRating(p PlayerPerformance, result int) float64 {
	rating := runningRating(p)
	if p.MinutesPlayed > 0 {
		rating += 0.3 * float64(result)
	}
	return math.Round(clamp(rating, minRating, maxRating)*100) / 100
}

func concededRatingPenalty(position player.Position) float64 {
	switch position {
	case player.PositionGoalkeeper, player.PositionDefender:
		return 0.25
	case player.PositionMidfielder:
		return 0.1
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func without(ids []string, target string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
