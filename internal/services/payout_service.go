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
	"github.com/ArowuTest/skinjackpot-backend/pkg/tradebot"
	"github.com/cenkalti/backoff/v4"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/exp/slog"
)

var _ PayoutService = (*PayoutServiceImpl)(nil)

// TradeDispatcher is the escrow side of the trade bot
type TradeDispatcher interface {
	GetEscrowInventory(ctx context.Context) ([]tradebot.EscrowItem, error)
	Send(ctx context.Context, offer *tradebot.Offer) (*tradebot.SendResult, error)
	GetOfferState(ctx context.Context, offerID string) (tradebot.OfferState, error)
}

// PayoutOutcome is the coarse result of one payout attempt
type PayoutOutcome string

const (
	PayoutOutcomeSuccess PayoutOutcome = "success"
	PayoutOutcomePending PayoutOutcome = "pending"
	PayoutOutcomeFailed  PayoutOutcome = "failed"
)

// PayoutResult reports what happened to one offer
type PayoutResult struct {
	PayoutID primitive.ObjectID
	Kind     models.PayoutKind
	Outcome  PayoutOutcome
	OfferID  string
	Assets   int
	Err      error
}

// Settlement is everything needed to pay out a completed round
type Settlement struct {
	Jackpot        *models.Jackpot
	Items          []*models.Item
	WinnerID       primitive.ObjectID
	WinnerTradeURL string
}

// PayoutOptions configures the orchestrator
type PayoutOptions struct {
	HouseTradeURL  string
	OfferDelay     time.Duration
	PollInterval   time.Duration
	PollMaxElapsed time.Duration
	SendTimeout    time.Duration
}

var errOfferPending = errors.New("trade offer still pending")

// PayoutServiceImpl splits a round's pot and drives the trade offers
type PayoutServiceImpl struct {
	payoutRepo repositories.PayoutRepository
	userRepo   repositories.UserRepository
	trade      TradeDispatcher
	clock      clock.Clock
	metrics    *metrics.Metrics
	opts       PayoutOptions

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPayoutService creates a new PayoutServiceImpl
func NewPayoutService(
	payoutRepo repositories.PayoutRepository,
	userRepo repositories.UserRepository,
	trade TradeDispatcher,
	c clock.Clock,
	m *metrics.Metrics,
	opts PayoutOptions,
) *PayoutServiceImpl {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.PollMaxElapsed <= 0 {
		opts.PollMaxElapsed = 10 * time.Minute
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &PayoutServiceImpl{
		payoutRepo: payoutRepo,
		userRepo:   userRepo,
		trade:      trade,
		clock:      c,
		metrics:    m,
		opts:       opts,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// SplitForPayout gives the winner floor(n*(100-commission)/100) assets from
// the front of the list and the rest to the house.
func SplitForPayout(assets []models.PayoutAsset, commissionPercentage int) ([]models.PayoutAsset, []models.PayoutAsset) {
	if commissionPercentage < 0 {
		commissionPercentage = 0
	}
	if commissionPercentage > 100 {
		commissionPercentage = 100
	}
	n := decimal.NewFromInt(int64(len(assets)))
	share := decimal.NewFromInt(int64(100 - commissionPercentage)).Div(decimal.NewFromInt(100))
	winnerCount := int(n.Mul(share).Floor().IntPart())
	return assets[:winnerCount], assets[winnerCount:]
}

// Dispatch settles a round in the background. The caller does not wait
// for any offer to be sent.
func (s *PayoutServiceImpl) Dispatch(st Settlement) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		results := s.Settle(s.ctx, st)
		for _, r := range results {
			if r.Err != nil {
				slog.Error("Payout failed", "jackpotId", st.Jackpot.ID.Hex(), "kind", r.Kind, "payoutId", r.PayoutID.Hex(), "error", r.Err)
				continue
			}
			slog.Info("Payout dispatched", "jackpotId", st.Jackpot.ID.Hex(), "kind", r.Kind, "payoutId", r.PayoutID.Hex(), "offerId", r.OfferID, "outcome", r.Outcome, "assets", r.Assets)
		}
	}()
}

// Settle sends the winner's offer, waits the offer delay, then sends the
// house offer. Every offer is recorded as a Payout document.
func (s *PayoutServiceImpl) Settle(ctx context.Context, st Settlement) []PayoutResult {
	if st.Jackpot == nil {
		return nil
	}

	assets, escrowErr := s.roundAssets(ctx, st.Items)
	winnerAssets, houseAssets := SplitForPayout(assets, st.Jackpot.CommissionPercentage)

	winnerID := st.WinnerID
	winner := &models.Payout{
		JackpotID:   st.Jackpot.ID,
		Kind:        models.PayoutKindWinner,
		UserID:      &winnerID,
		Destination: st.WinnerTradeURL,
		Message:     models.WinnerOfferMessage,
		Assets:      winnerAssets,
	}
	house := &models.Payout{
		JackpotID:   st.Jackpot.ID,
		Kind:        models.PayoutKindHouse,
		Destination: s.opts.HouseTradeURL,
		Assets:      houseAssets,
	}

	if escrowErr != nil {
		err := fmt.Errorf("escrow inventory unavailable: %w", escrowErr)
		return []PayoutResult{s.recordFailure(ctx, winner, err), s.recordFailure(ctx, house, err)}
	}

	var results []PayoutResult
	if len(winnerAssets) == 0 {
		slog.Warn("No assets for winner payout", "jackpotId", st.Jackpot.ID.Hex(), "escrowAssets", len(assets))
	} else {
		results = append(results, s.open(ctx, winner))
	}

	if len(houseAssets) == 0 {
		return results
	}
	if s.opts.HouseTradeURL == "" {
		slog.Warn("House trade url not configured, skipping house payout", "jackpotId", st.Jackpot.ID.Hex(), "assets", len(houseAssets))
		return results
	}
	if len(results) > 0 && s.opts.OfferDelay > 0 {
		select {
		case <-s.clock.After(s.opts.OfferDelay):
		case <-ctx.Done():
			return append(results, s.recordFailure(context.WithoutCancel(ctx), house, ctx.Err()))
		}
	}
	return append(results, s.open(ctx, house))
}

// Retry re-sends a failed payout with its recorded assets. A payout that
// failed before it had a destination gets one from the winner's current
// trade url or the house url.
func (s *PayoutServiceImpl) Retry(ctx context.Context, id primitive.ObjectID) (PayoutResult, error) {
	payout, err := s.payoutRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return PayoutResult{}, ErrPayoutNotFound
		}
		return PayoutResult{}, fmt.Errorf("failed to load payout: %w", err)
	}
	if payout.Status != models.PayoutStatusFailed || len(payout.Assets) == 0 {
		return PayoutResult{}, ErrPayoutNotRetryable
	}
	if payout.Destination == "" {
		destination, err := s.resolveDestination(ctx, payout)
		if err != nil {
			return PayoutResult{}, err
		}
		if err := s.payoutRepo.SetDestination(ctx, id, destination); err != nil {
			return PayoutResult{}, fmt.Errorf("failed to record destination: %w", err)
		}
		payout.Destination = destination
	}
	if err := s.payoutRepo.IncrementAttempts(ctx, id); err != nil {
		return PayoutResult{}, fmt.Errorf("failed to record attempt: %w", err)
	}
	payout.Attempts++
	slog.Info("Retrying payout", "payoutId", id.Hex(), "jackpotId", payout.JackpotID.Hex(), "attempt", payout.Attempts)
	return s.deliver(s.ctx, payout), nil
}

func (s *PayoutServiceImpl) resolveDestination(ctx context.Context, payout *models.Payout) (string, error) {
	switch payout.Kind {
	case models.PayoutKindHouse:
		if s.opts.HouseTradeURL == "" {
			return "", ErrNoTradeURL
		}
		return s.opts.HouseTradeURL, nil
	case models.PayoutKindWinner:
		if payout.UserID == nil || s.userRepo == nil {
			return "", ErrPayoutNotRetryable
		}
		user, err := s.userRepo.FindByID(ctx, *payout.UserID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrUserNotFound
		}
		if err != nil {
			return "", fmt.Errorf("failed to load winner: %w", err)
		}
		if user.TradeURL == "" {
			return "", ErrNoTradeURL
		}
		return user.TradeURL, nil
	}
	return "", ErrPayoutNotRetryable
}

// List returns payouts in a given status
func (s *PayoutServiceImpl) List(ctx context.Context, status models.PayoutStatus, limit int64) ([]*models.Payout, error) {
	return s.payoutRepo.FindByStatus(ctx, status, limit)
}

// ListForJackpot returns every payout recorded for a round
func (s *PayoutServiceImpl) ListForJackpot(ctx context.Context, jackpotID primitive.ObjectID) ([]*models.Payout, error) {
	return s.payoutRepo.FindByJackpot(ctx, jackpotID)
}

// Wait blocks until every background dispatch and poll has finished
func (s *PayoutServiceImpl) Wait() {
	s.wg.Wait()
}

// Shutdown cancels pending delays and polls and waits for them to stop
func (s *PayoutServiceImpl) Shutdown(ctx context.Context) error {
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// roundAssets lists the escrow assets staked in this round, in escrow
// listing order. When escrow cannot be read the round's own items are
// returned so a failed payout can still be retried later.
func (s *PayoutServiceImpl) roundAssets(ctx context.Context, items []*models.Item) ([]models.PayoutAsset, error) {
	staked := make(map[models.PayoutAsset]struct{}, len(items))
	fallback := make([]models.PayoutAsset, 0, len(items))
	for _, item := range items {
		if item == nil || item.AssetID == "" {
			continue
		}
		key := models.PayoutAsset{AssetID: item.AssetID, AppID: item.AppID, ContextID: item.ContextID}
		if _, dup := staked[key]; dup {
			continue
		}
		staked[key] = struct{}{}
		fallback = append(fallback, key)
	}

	escrow, err := s.trade.GetEscrowInventory(ctx)
	if err != nil {
		return fallback, err
	}
	assets := lo.FilterMap(escrow, func(e tradebot.EscrowItem, _ int) (models.PayoutAsset, bool) {
		key := models.PayoutAsset{AssetID: e.AssetID, AppID: e.AppID, ContextID: e.ContextID}
		if !e.Tradable || e.AssetID == "" || e.ContextID == "" || e.AppID == 0 {
			return key, false
		}
		_, ok := staked[key]
		return key, ok
	})
	return lo.Uniq(assets), nil
}

func (s *PayoutServiceImpl) recordFailure(ctx context.Context, payout *models.Payout, cause error) PayoutResult {
	payout.Status = models.PayoutStatusFailed
	payout.Error = cause.Error()
	payout.Attempts = 1
	if err := s.payoutRepo.Create(ctx, payout); err != nil {
		slog.Error("Failed to record failed payout", "jackpotId", payout.JackpotID.Hex(), "kind", payout.Kind, "error", err)
	}
	s.metrics.Payout(string(payout.Kind), string(models.PayoutStatusFailed))
	return PayoutResult{PayoutID: payout.ID, Kind: payout.Kind, Outcome: PayoutOutcomeFailed, Assets: len(payout.Assets), Err: cause}
}

// open persists a new payout and sends it
func (s *PayoutServiceImpl) open(ctx context.Context, payout *models.Payout) PayoutResult {
	if payout.Destination == "" {
		return s.recordFailure(ctx, payout, ErrNoTradeURL)
	}
	payout.Status = models.PayoutStatusPending
	payout.Attempts = 1
	if err := s.payoutRepo.Create(ctx, payout); err != nil {
		return PayoutResult{Kind: payout.Kind, Outcome: PayoutOutcomeFailed, Assets: len(payout.Assets), Err: fmt.Errorf("failed to record payout: %w", err)}
	}
	return s.deliver(ctx, payout)
}

// deliver sends an already persisted payout. A sent offer cannot be
// recalled, so the send is detached from ctx and bounded by SendTimeout.
func (s *PayoutServiceImpl) deliver(ctx context.Context, payout *models.Payout) PayoutResult {
	result := PayoutResult{PayoutID: payout.ID, Kind: payout.Kind, Assets: len(payout.Assets)}

	offer := tradebot.NewOffer(payout.Destination)
	for _, a := range payout.Assets {
		offer.AddItem(a.AssetID, a.AppID, a.ContextID)
	}
	if payout.Message != "" {
		offer.SetMessage(payout.Message)
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.SendTimeout)
	sent, err := s.trade.Send(sendCtx, offer)
	cancel()
	if err != nil {
		s.setStatus(payout, models.PayoutStatusFailed, "", err.Error())
		result.Outcome = PayoutOutcomeFailed
		result.Err = fmt.Errorf("failed to send offer: %w", err)
		return result
	}

	result.OfferID = sent.OfferID
	if sent.State.IsFinal() {
		status := statusForOffer(sent.State)
		s.setStatus(payout, status, sent.OfferID, "")
		result.Outcome = outcomeForStatus(status)
		return result
	}

	s.setStatus(payout, models.PayoutStatusSent, sent.OfferID, "")
	result.Outcome = PayoutOutcomePending
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.poll(s.ctx, payout, sent.OfferID)
	}()
	return result
}

// poll follows an offer until it settles or the backoff gives up
func (s *PayoutServiceImpl) poll(ctx context.Context, payout *models.Payout, offerID string) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.opts.PollInterval
	b.MaxElapsedTime = s.opts.PollMaxElapsed

	var state tradebot.OfferState
	op := func() error {
		st, err := s.trade.GetOfferState(ctx, offerID)
		if errors.Is(err, tradebot.ErrNotFound) {
			return backoff.Permanent(err)
		}
		if err != nil {
			return err
		}
		state = st
		if !st.IsFinal() {
			return errOfferPending
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		if errors.Is(err, tradebot.ErrNotFound) {
			s.setStatus(payout, models.PayoutStatusFailed, offerID, err.Error())
			slog.Error("Trade offer disappeared", "payoutId", payout.ID.Hex(), "offerId", offerID)
			return
		}
		slog.Warn("Stopped polling trade offer", "payoutId", payout.ID.Hex(), "offerId", offerID, "lastState", state, "error", err)
		return
	}

	status := statusForOffer(state)
	s.setStatus(payout, status, offerID, "")
	slog.Info("Trade offer settled", "payoutId", payout.ID.Hex(), "offerId", offerID, "state", state)
}

func (s *PayoutServiceImpl) setStatus(payout *models.Payout, status models.PayoutStatus, offerID, errMsg string) {
	payout.Status = status
	payout.OfferID = offerID
	payout.Error = errMsg
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.payoutRepo.UpdateStatus(ctx, payout.ID, status, offerID, errMsg); err != nil {
		slog.Error("Failed to update payout status", "payoutId", payout.ID.Hex(), "status", status, "error", err)
	}
	s.metrics.Payout(string(payout.Kind), string(status))
}

func statusForOffer(state tradebot.OfferState) models.PayoutStatus {
	switch state {
	case tradebot.OfferStateAccepted:
		return models.PayoutStatusAccepted
	case tradebot.OfferStateDeclined, tradebot.OfferStateCanceled:
		return models.PayoutStatusDeclined
	case tradebot.OfferStateInvalid:
		return models.PayoutStatusFailed
	}
	return models.PayoutStatusSent
}

func outcomeForStatus(status models.PayoutStatus) PayoutOutcome {
	switch status {
	case models.PayoutStatusAccepted:
		return PayoutOutcomeSuccess
	case models.PayoutStatusFailed, models.PayoutStatusDeclined:
		return PayoutOutcomeFailed
	}
	return PayoutOutcomePending
}
