package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ArowuTest/skinjackpot-backend/internal/clock"
	"github.com/ArowuTest/skinjackpot-backend/internal/metrics"
	"github.com/ArowuTest/skinjackpot-backend/internal/models"
	"github.com/ArowuTest/skinjackpot-backend/internal/repositories"
	"github.com/ArowuTest/skinjackpot-backend/internal/utils"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/exp/slog"
)

var (
	_ JackpotService = (*JackpotServiceImpl)(nil)
	_ RoundListener  = (*JackpotServiceImpl)(nil)
)

// DefaultAvatar is shown for winners without a Steam avatar
const DefaultAvatar = "/default-avatar.png"

const (
	maxWriteAttempts = 5
	lastRoundsLimit  = 4
	timerOpTimeout   = 30 * time.Second
	expiryRetryDelay = time.Second
)

// PayoutDispatcher hands a completed round to the payout orchestrator
type PayoutDispatcher interface {
	Dispatch(st Settlement)
}

// JackpotOptions holds round timing and thresholds
type JackpotOptions struct {
	RoundDuration   time.Duration
	InterRoundDelay time.Duration
	SpinDelay       time.Duration
	SpinDuration    time.Duration
	MinParticipants int
	HistoryWindow   time.Duration
}

// JackpotServiceImpl is the round state machine. It owns the round
// scheduler and serialises joins and round completion in this process;
// conditional writes protect the round against other processes.
type JackpotServiceImpl struct {
	jackpotRepo repositories.JackpotRepository
	userRepo    repositories.UserRepository
	itemRepo    repositories.ItemRepository
	settings    SystemSettingsService
	payouts     PayoutDispatcher
	notifier    Notifier
	selector    *WeightedSelector
	clock       clock.Clock
	metrics     *metrics.Metrics
	opts        JackpotOptions
	scheduler   *RoundScheduler

	mu sync.Mutex
}

// NewJackpotService creates a new JackpotServiceImpl
func NewJackpotService(
	jackpotRepo repositories.JackpotRepository,
	userRepo repositories.UserRepository,
	itemRepo repositories.ItemRepository,
	settings SystemSettingsService,
	payouts PayoutDispatcher,
	notifier Notifier,
	selector *WeightedSelector,
	c clock.Clock,
	m *metrics.Metrics,
	opts JackpotOptions,
) *JackpotServiceImpl {
	if opts.MinParticipants < 1 {
		opts.MinParticipants = 2
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if selector == nil {
		selector = NewWeightedSelector(nil)
	}
	s := &JackpotServiceImpl{
		jackpotRepo: jackpotRepo,
		userRepo:    userRepo,
		itemRepo:    itemRepo,
		settings:    settings,
		payouts:     payouts,
		notifier:    notifier,
		selector:    selector,
		clock:       c,
		metrics:     m,
		opts:        opts,
	}
	s.scheduler = NewRoundScheduler(c, s)
	return s
}

// --- Join ---

// Join stakes a user's items into the open round, creating the round if
// none is open. Validation failures leave the round untouched.
func (s *JackpotServiceImpl) Join(ctx context.Context, req models.JoinRequest) (*models.Jackpot, error) {
	userID, itemIDs, err := parseJoinRequest(req)
	if err != nil {
		return nil, s.reject("invalid_request", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, s.reject("user_not_found", ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.TradeURL == "" {
		return nil, s.reject("no_trade_url", ErrNoTradeURL)
	}

	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if settings.JoinsPaused {
		return nil, s.reject("paused", ErrJoinsPaused)
	}
	if s.scheduler.InIntermission() {
		return nil, s.reject("intermission", ErrIntermission)
	}

	items, err := s.itemRepo.FindByIDs(ctx, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	if !stakeable(items, userID, len(itemIDs)) {
		return nil, s.reject("items_unavailable", ErrItemsUnavailable)
	}

	s.mu.Lock()
	jackpot, err := s.join(ctx, user, itemIDs, items, settings.CommissionPercentage)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, ErrItemsUnavailable) || errors.Is(err, ErrRoundNotActive) || errors.Is(err, ErrIntermission) {
			return nil, s.reject("conflict", err)
		}
		return nil, err
	}

	s.metrics.JoinAccepted()
	slog.Info("Participant joined", "jackpotId", jackpot.ID.Hex(), "userId", user.ID.Hex(), "items", len(itemIDs), "totalValue", jackpot.TotalValue, "status", jackpot.Status)
	s.publishParticipants(ctx, jackpot)
	return jackpot, nil
}

// join runs under s.mu
func (s *JackpotServiceImpl) join(ctx context.Context, user *models.User, itemIDs []primitive.ObjectID, items []*models.Item, commission int) (*models.Jackpot, error) {
	if s.scheduler.InIntermission() {
		return nil, ErrIntermission
	}
	jackpot, err := s.jackpotRepo.FindOrCreateActive(ctx, commission)
	if err != nil {
		return nil, fmt.Errorf("failed to load active round: %w", err)
	}

	participant := models.Participant{
		EntryID:  uuid.NewString(),
		User:     user.ID,
		Items:    itemIDs,
		Color:    utils.GenerateRandomColor(),
		JoinedAt: s.clock.Now(),
	}
	claimed, err := s.itemRepo.Claim(ctx, user.ID, itemIDs, jackpot.ID, participant.EntryID)
	if err != nil || claimed != int64(len(itemIDs)) {
		s.release(participant.EntryID)
		if err != nil {
			return nil, fmt.Errorf("failed to claim items: %w", err)
		}
		return nil, ErrItemsUnavailable
	}

	contribution := ContributionOf(items)
	for attempt := 1; ; attempt++ {
		total := decimal.NewFromFloat(jackpot.TotalValue).Add(contribution)
		updated, err := s.jackpotRepo.AppendParticipant(ctx, jackpot.ID, jackpot.Version, participant, total.InexactFloat64())
		if err == nil {
			jackpot = updated
			break
		}
		if !errors.Is(err, repositories.ErrConflict) || attempt >= maxWriteAttempts {
			s.release(participant.EntryID)
			if errors.Is(err, repositories.ErrConflict) {
				return nil, ErrTransitionConflict
			}
			return nil, fmt.Errorf("failed to append participant: %w", err)
		}
		s.metrics.TransitionConflict()
		jackpot, err = s.jackpotRepo.FindByID(ctx, jackpot.ID)
		if err != nil {
			s.release(participant.EntryID)
			return nil, fmt.Errorf("failed to reload round: %w", err)
		}
		if !jackpot.IsOpen() {
			s.release(participant.EntryID)
			return nil, ErrRoundNotActive
		}
	}

	if jackpot.Status == models.RoundStatusWaiting && len(jackpot.Participants) >= s.opts.MinParticipants {
		jackpot = s.startRound(ctx, jackpot)
	}
	return jackpot, nil
}

// startRound moves a waiting round to in_progress and starts its timer.
// Losing the transition to another writer returns the stored round.
func (s *JackpotServiceImpl) startRound(ctx context.Context, jackpot *models.Jackpot) *models.Jackpot {
	now := s.clock.Now()
	endsAt := now.Add(s.opts.RoundDuration)
	started, err := s.jackpotRepo.Transition(ctx, jackpot.ID, jackpot.Version, models.RoundStatusWaiting, repositories.RoundTransition{
		To:        models.RoundStatusInProgress,
		StartedAt: &now,
		EndsAt:    &endsAt,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			s.metrics.TransitionConflict()
		}
		slog.Warn("Could not start round", "jackpotId", jackpot.ID.Hex(), "error", err)
		if current, findErr := s.jackpotRepo.FindByID(ctx, jackpot.ID); findErr == nil {
			return current
		}
		return jackpot
	}
	slog.Info("Round started", "jackpotId", started.ID.Hex(), "endsAt", endsAt, "participants", len(started.Participants))
	s.scheduler.StartRound(started.ID, endsAt)
	return started
}

// --- Round completion ---

// EndRound seals an in_progress round: it aggregates contributions, draws
// the winner, persists the completed round, records every participant's
// outcome and hands the pot to the payout orchestrator. It returns
// ErrRoundNotActive if the round was already completed.
func (s *JackpotServiceImpl) EndRound(ctx context.Context, jackpotID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scheduler.StopRound(jackpotID)

	var (
		completed *models.Jackpot
		agg       Aggregate
		selection Selection
		itemIndex map[primitive.ObjectID]*models.Item
	)
	for attempt := 1; ; attempt++ {
		jackpot, err := s.jackpotRepo.FindByID(ctx, jackpotID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrRoundNotActive
			}
			return fmt.Errorf("failed to load round: %w", err)
		}
		if jackpot.Status != models.RoundStatusInProgress {
			return ErrRoundNotActive
		}

		items, err := s.itemRepo.FindByIDs(ctx, jackpot.ItemIDs())
		if err != nil {
			return fmt.Errorf("failed to load round items: %w", err)
		}
		itemIndex = lo.KeyBy(items, func(item *models.Item) primitive.ObjectID { return item.ID })
		agg = AggregateContributions(jackpot.Participants, itemIndex)

		now := s.clock.Now()
		t := repositories.RoundTransition{To: models.RoundStatusCompleted, CompletedAt: &now}
		if agg.Total.IsPositive() {
			selection, err = s.selector.Select(agg.Contributions, agg.Total)
			if err != nil {
				return fmt.Errorf("failed to select winner: %w", err)
			}
			entry := agg.Contributions[selection.Index].Participant
			winner := entry.User
			t.Winner = &winner
			t.Draw = &models.DrawAudit{
				Random:       selection.Random,
				OverallTotal: agg.Total.InexactFloat64(),
				WinnerIndex:  selection.Index,
				WinnerEntry:  entry.EntryID,
				DrawnAt:      now,
			}
		}

		completed, err = s.jackpotRepo.Transition(ctx, jackpot.ID, jackpot.Version, models.RoundStatusInProgress, t)
		if err == nil {
			break
		}
		if !errors.Is(err, repositories.ErrConflict) {
			return fmt.Errorf("failed to complete round: %w", err)
		}
		s.metrics.TransitionConflict()
		if attempt >= maxWriteAttempts {
			return ErrTransitionConflict
		}
		slog.Warn("Round changed while completing, re-reading", "jackpotId", jackpotID.Hex(), "attempt", attempt)
	}

	if completed.Winner == nil {
		slog.Warn("Round completed without winner", "jackpotId", completed.ID.Hex(), "participants", len(completed.Participants))
		s.metrics.RoundCompleted("no_winner", 0)
		s.notifier.Publish(EventRoundCompleted, RoundCompletedPayload{JackpotID: completed.ID, TotalValue: completed.TotalValue})
		s.beginIntermission()
		return nil
	}

	slog.Info("Round completed", "jackpotId", completed.ID.Hex(), "winner", completed.Winner.Hex(), "totalValue", agg.Total.StringFixed(2), "random", selection.Random)
	s.recordOutcomes(ctx, completed, agg)

	winnerEntry := agg.Contributions[selection.Index].Participant
	winner, err := s.userRepo.FindByID(ctx, *completed.Winner)
	if err != nil {
		slog.Error("Failed to load winner", "jackpotId", completed.ID.Hex(), "winner", completed.Winner.Hex(), "error", err)
		winner = &models.User{ID: *completed.Winner}
	}
	s.publishSpin(completed, agg, selection, winner, winnerEntry, itemIndex)

	if s.payouts != nil {
		roundItems := lo.FilterMap(completed.ItemIDs(), func(id primitive.ObjectID, _ int) (*models.Item, bool) {
			item, ok := itemIndex[id]
			return item, ok
		})
		s.payouts.Dispatch(Settlement{
			Jackpot:        completed,
			Items:          roundItems,
			WinnerID:       winner.ID,
			WinnerTradeURL: winner.TradeURL,
		})
	}

	s.metrics.RoundCompleted("winner", agg.Total.InexactFloat64())
	s.notifier.Publish(EventRoundCompleted, RoundCompletedPayload{
		JackpotID:  completed.ID,
		Winner:     completed.Winner,
		TotalValue: completed.TotalValue,
	})
	s.beginIntermission()
	return nil
}

// recordOutcomes applies one history entry per user. Failures are logged;
// the completed round stays the source of truth.
func (s *JackpotServiceImpl) recordOutcomes(ctx context.Context, jackpot *models.Jackpot, agg Aggregate) {
	now := s.clock.Now()
	for _, uc := range agg.ByUser() {
		isWinner := jackpot.Winner != nil && *jackpot.Winner == uc.UserID
		won := decimal.Zero
		if isWinner {
			won = agg.Total
		}
		entry := models.GameHistoryEntry{
			JackpotID: jackpot.ID,
			Deposited: uc.Value.InexactFloat64(),
			TotalWon:  won.InexactFloat64(),
			Profit:    won.Sub(uc.Value).InexactFloat64(),
			Chance:    Chance(uc.Value, agg.Total),
			Gamemode:  models.GamemodeClassic,
			IsWinner:  isWinner,
			Timestamp: now,
		}
		applied, err := s.userRepo.ApplyRoundOutcome(ctx, uc.UserID, entry)
		if err != nil {
			slog.Error("Failed to record round outcome", "jackpotId", jackpot.ID.Hex(), "userId", uc.UserID.Hex(), "error", err)
			continue
		}
		if !applied {
			slog.Debug("Round outcome already recorded", "jackpotId", jackpot.ID.Hex(), "userId", uc.UserID.Hex())
		}
	}
}

func (s *JackpotServiceImpl) publishSpin(jackpot *models.Jackpot, agg Aggregate, sel Selection, winner *models.User, entry models.Participant, itemIndex map[primitive.ObjectID]*models.Item) {
	var winnerItems []*models.Item
	winnerValue := decimal.Zero
	for _, c := range agg.Contributions {
		if c.Participant.User != winner.ID {
			continue
		}
		winnerValue = winnerValue.Add(c.Value)
		for _, id := range c.Participant.Items {
			if item, ok := itemIndex[id]; ok {
				winnerItems = append(winnerItems, item)
			}
		}
	}
	img := winner.Avatar.Small
	if img == "" {
		img = DefaultAvatar
	}
	now := s.clock.Now()
	s.notifier.Publish(EventSpin, SpinPayload{
		JackpotID: jackpot.ID,
		Winner: SpinWinner{
			ID:         winner.ID,
			Username:   winner.Username,
			Items:      winnerItems,
			TotalValue: winnerValue.InexactFloat64(),
			SkinCount:  len(winnerItems),
			Img:        img,
			Color:      entry.Color,
		},
		WinnerIndex: sel.Index,
		Angle:       utils.CalculateSpinAngle(sel.Index, len(agg.Contributions), utils.DefaultSpinRotations),
		StartTime:   now.Add(s.opts.SpinDelay).UnixMilli(),
		Duration:    s.opts.SpinDuration.Milliseconds(),
	})
}

func (s *JackpotServiceImpl) beginIntermission() {
	next := s.clock.Now().Add(s.opts.InterRoundDelay)
	s.notifier.Publish(EventNextRound, NextRoundPayload{StartTime: next.UnixMilli()})
	s.scheduler.StartIntermission(s.opts.InterRoundDelay)
}

// --- RoundListener ---

// OnRoundTick publishes the round countdown
func (s *JackpotServiceImpl) OnRoundTick(roundID primitive.ObjectID, timeLeft int) {
	s.notifier.Publish(EventTimer, TimerPayload{JackpotID: roundID, TimeLeft: timeLeft})
}

// OnRoundExpired completes the round. A failed completion is retried
// shortly; a round already completed elsewhere is left alone.
func (s *JackpotServiceImpl) OnRoundExpired(roundID primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), timerOpTimeout)
	defer cancel()
	err := s.EndRound(ctx, roundID)
	if err == nil || errors.Is(err, ErrRoundNotActive) {
		return
	}
	slog.Error("Failed to end round, retrying", "jackpotId", roundID.Hex(), "error", err)
	s.scheduler.StartRound(roundID, s.clock.Now().Add(expiryRetryDelay))
}

// OnIntermissionTick publishes the next-round countdown
func (s *JackpotServiceImpl) OnIntermissionTick(timeLeft int) {
	s.notifier.Publish(EventNextRoundTimer, CountdownPayload{TimeLeft: timeLeft})
}

// OnIntermissionElapsed opens the next waiting round
func (s *JackpotServiceImpl) OnIntermissionElapsed() {
	ctx, cancel := context.WithTimeout(context.Background(), timerOpTimeout)
	defer cancel()

	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		slog.Error("Failed to load settings for new round", "error", err)
		return
	}
	s.mu.Lock()
	jackpot, err := s.jackpotRepo.FindOrCreateActive(ctx, settings.CommissionPercentage)
	s.mu.Unlock()
	if err != nil {
		// The next join creates the round instead.
		slog.Error("Failed to create next round", "error", err)
		return
	}
	slog.Info("New round started", "jackpotId", jackpot.ID.Hex())
	s.notifier.Publish(EventNewRoundStarted, NewRoundPayload{JackpotID: jackpot.ID})
}

// --- Startup ---

// Recover resumes the open round after a restart. A running round keeps
// its original deadline; a waiting round that already has enough
// participants is started.
func (s *JackpotServiceImpl) Recover(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jackpot, err := s.jackpotRepo.FindActive(ctx)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load active round: %w", err)
	}

	switch jackpot.Status {
	case models.RoundStatusInProgress:
		deadline := s.clock.Now().Add(s.opts.RoundDuration)
		if jackpot.EndsAt != nil {
			deadline = *jackpot.EndsAt
		}
		slog.Info("Resuming round timer", "jackpotId", jackpot.ID.Hex(), "endsAt", deadline)
		s.scheduler.StartRound(jackpot.ID, deadline)
	case models.RoundStatusWaiting:
		if len(jackpot.Participants) >= s.opts.MinParticipants {
			slog.Info("Starting idle round", "jackpotId", jackpot.ID.Hex(), "participants", len(jackpot.Participants))
			s.startRound(ctx, jackpot)
		}
	}
	return nil
}

// Shutdown stops all countdowns
func (s *JackpotServiceImpl) Shutdown() {
	s.scheduler.Stop()
}

// --- Reads ---

// GetCurrent returns the open round with populated participants
func (s *JackpotServiceImpl) GetCurrent(ctx context.Context) (*models.JackpotView, error) {
	jackpot, err := s.jackpotRepo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRoundNotActive
		}
		return nil, fmt.Errorf("failed to load active round: %w", err)
	}
	views, err := s.buildViews(ctx, []*models.Jackpot{jackpot})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// History returns rounds completed within the history window, newest first
func (s *JackpotServiceImpl) History(ctx context.Context) ([]*models.JackpotView, error) {
	since := s.clock.Now().Add(-s.opts.HistoryWindow)
	jackpots, err := s.jackpotRepo.FindCompletedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return s.buildViews(ctx, jackpots)
}

// LastCompleted returns the four most recent completed rounds
func (s *JackpotServiceImpl) LastCompleted(ctx context.Context) ([]*models.JackpotView, error) {
	jackpots, err := s.jackpotRepo.FindLastCompleted(ctx, lastRoundsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load last rounds: %w", err)
	}
	return s.buildViews(ctx, jackpots)
}

// Timer reports the running countdowns
func (s *JackpotServiceImpl) Timer() models.TimerStatus {
	var status models.TimerStatus
	if id, left, ok := s.scheduler.RoundTimeLeft(); ok {
		status.RoundID = &id
		status.TimeLeft = left
	}
	status.Intermission = s.scheduler.InIntermission()
	status.NextRoundTimeLeft = s.scheduler.IntermissionTimeLeft()
	return status
}

func (s *JackpotServiceImpl) publishParticipants(ctx context.Context, jackpot *models.Jackpot) {
	views, err := s.buildViews(ctx, []*models.Jackpot{jackpot})
	if err != nil {
		slog.Error("Failed to build participants view", "jackpotId", jackpot.ID.Hex(), "error", err)
		return
	}
	s.notifier.Publish(EventParticipants, ParticipantsPayload{
		JackpotID:    jackpot.ID,
		Status:       jackpot.Status,
		Participants: views[0].Participants,
		TotalValue:   jackpot.TotalValue,
	})
}

// buildViews resolves users and items of several rounds with one query each
func (s *JackpotServiceImpl) buildViews(ctx context.Context, jackpots []*models.Jackpot) ([]*models.JackpotView, error) {
	var itemIDs, userIDs []primitive.ObjectID
	for _, j := range jackpots {
		itemIDs = append(itemIDs, j.ItemIDs()...)
		for _, p := range j.Participants {
			userIDs = append(userIDs, p.User)
		}
		if j.Winner != nil {
			userIDs = append(userIDs, *j.Winner)
		}
	}

	itemIndex := map[primitive.ObjectID]*models.Item{}
	if len(itemIDs) > 0 {
		items, err := s.itemRepo.FindByIDs(ctx, lo.Uniq(itemIDs))
		if err != nil {
			return nil, fmt.Errorf("failed to load items: %w", err)
		}
		itemIndex = lo.KeyBy(items, func(item *models.Item) primitive.ObjectID { return item.ID })
	}
	userIndex := map[primitive.ObjectID]*models.User{}
	if len(userIDs) > 0 {
		users, err := s.userRepo.FindByIDs(ctx, lo.Uniq(userIDs))
		if err != nil {
			return nil, fmt.Errorf("failed to load users: %w", err)
		}
		userIndex = lo.KeyBy(users, func(u *models.User) primitive.ObjectID { return u.ID })
	}

	card := func(id primitive.ObjectID) *models.UserCard {
		u, ok := userIndex[id]
		if !ok {
			return &models.UserCard{ID: id}
		}
		return &models.UserCard{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
	}

	views := make([]*models.JackpotView, 0, len(jackpots))
	for _, j := range jackpots {
		view := &models.JackpotView{
			ID:                   j.ID,
			Status:               j.Status,
			Participants:         make([]models.ParticipantView, 0, len(j.Participants)),
			TotalValue:           j.TotalValue,
			CommissionPercentage: j.CommissionPercentage,
			Draw:                 j.Draw,
			EndsAt:               j.EndsAt,
			CompletedAt:          j.CompletedAt,
			CreatedAt:            j.CreatedAt,
		}
		if j.Winner != nil {
			view.Winner = card(*j.Winner)
		}
		for _, p := range j.Participants {
			items := lo.FilterMap(p.Items, func(id primitive.ObjectID, _ int) (*models.Item, bool) {
				item, ok := itemIndex[id]
				return item, ok
			})
			view.Participants = append(view.Participants, models.ParticipantView{
				EntryID:      p.EntryID,
				User:         card(p.User),
				Items:        items,
				Color:        p.Color,
				Contribution: ContributionOf(items).InexactFloat64(),
			})
		}
		views = append(views, view)
	}
	return views, nil
}

// --- helpers ---

func (s *JackpotServiceImpl) reject(reason string, err error) error {
	s.metrics.JoinRejected(reason)
	return err
}

func (s *JackpotServiceImpl) release(entryID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.itemRepo.Release(ctx, entryID); err != nil {
		slog.Error("Failed to release claimed items", "entryId", entryID, "error", err)
	}
}

func parseJoinRequest(req models.JoinRequest) (primitive.ObjectID, []primitive.ObjectID, error) {
	if req.UserID == "" {
		return primitive.NilObjectID, nil, ErrMissingUserID
	}
	if len(req.ItemIDs) == 0 {
		return primitive.NilObjectID, nil, ErrNoItems
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return primitive.NilObjectID, nil, ErrUserNotFound
	}
	itemIDs := make([]primitive.ObjectID, 0, len(req.ItemIDs))
	for _, raw := range lo.Uniq(req.ItemIDs) {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return primitive.NilObjectID, nil, fmt.Errorf("%w: %q", ErrInvalidItemID, raw)
		}
		itemIDs = append(itemIDs, id)
	}
	return userID, itemIDs, nil
}

// stakeable reports whether every requested item exists, belongs to owner
// and is not staked in a round
func stakeable(items []*models.Item, owner primitive.ObjectID, want int) bool {
	if len(items) != want {
		return false
	}
	return lo.EveryBy(items, func(item *models.Item) bool {
		return item.Owner == owner && item.StakedIn == nil
	})
}
