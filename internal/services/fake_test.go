package services

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/ArowuTest/skinjackpot-backend/internal/models"
	"github.com/ArowuTest/skinjackpot-backend/internal/repositories"
	"github.com/ArowuTest/skinjackpot-backend/pkg/codecache"
	"github.com/ArowuTest/skinjackpot-backend/pkg/steamapi"
	"github.com/ArowuTest/skinjackpot-backend/pkg/tradebot"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ------------------------
// Fake Jackpot Repo
// ------------------------

// FakeJackpotRepository keeps rounds in memory with the same conditional
// write rules as the Mongo repository.
type FakeJackpotRepository struct {
	mu          sync.Mutex
	rounds      map[primitive.ObjectID]*models.Jackpot
	order       []primitive.ObjectID
	completions int

	// BeforeTransitionFn runs before a transition is checked, with the lock
	// released. Tests use it to simulate other writers.
	BeforeTransitionFn func(id primitive.ObjectID, to models.RoundStatus)
	TransitionErr      error
	// BeforeAppendFn runs before an append is checked, with the lock released.
	BeforeAppendFn func(id primitive.ObjectID, p models.Participant)
}

func NewFakeJackpotRepository() *FakeJackpotRepository {
	return &FakeJackpotRepository{rounds: make(map[primitive.ObjectID]*models.Jackpot)}
}

func cloneJackpot(j *models.Jackpot) *models.Jackpot {
	c := *j
	c.Participants = make([]models.Participant, len(j.Participants))
	for i, p := range j.Participants {
		p.Items = append([]primitive.ObjectID(nil), p.Items...)
		c.Participants[i] = p
	}
	return &c
}

func (f *FakeJackpotRepository) EnsureIndexes(context.Context) error { return nil }

func (f *FakeJackpotRepository) findActiveLocked() *models.Jackpot {
	for _, id := range f.order {
		if j := f.rounds[id]; j.IsOpen() {
			return j
		}
	}
	return nil
}

func (f *FakeJackpotRepository) FindActive(context.Context) (*models.Jackpot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j := f.findActiveLocked(); j != nil {
		return cloneJackpot(j), nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *FakeJackpotRepository) FindOrCreateActive(_ context.Context, commission int) (*models.Jackpot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j := f.findActiveLocked(); j != nil {
		return cloneJackpot(j), nil
	}
	j := &models.Jackpot{
		ID:                   primitive.NewObjectID(),
		Status:               models.RoundStatusWaiting,
		Participants:         []models.Participant{},
		CommissionPercentage: commission,
		ActiveSlot:           models.ActiveSlotKey,
		CreatedAt:            time.Now(),
	}
	f.rounds[j.ID] = j
	f.order = append(f.order, j.ID)
	return cloneJackpot(j), nil
}

func (f *FakeJackpotRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Jackpot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.rounds[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return cloneJackpot(j), nil
}

func (f *FakeJackpotRepository) AppendParticipant(_ context.Context, id primitive.ObjectID, version int64, p models.Participant, total float64) (*models.Jackpot, error) {
	if f.BeforeAppendFn != nil {
		f.BeforeAppendFn(id, p)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.rounds[id]
	if !ok || j.Version != version || !j.IsOpen() {
		return nil, repositories.ErrConflict
	}
	j.Participants = append(j.Participants, p)
	j.TotalValue = total
	j.Version++
	return cloneJackpot(j), nil
}

func (f *FakeJackpotRepository) Transition(_ context.Context, id primitive.ObjectID, version int64, from models.RoundStatus, t repositories.RoundTransition) (*models.Jackpot, error) {
	if f.BeforeTransitionFn != nil {
		f.BeforeTransitionFn(id, t.To)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.TransitionErr != nil {
		return nil, f.TransitionErr
	}
	j, ok := f.rounds[id]
	if !ok || j.Version != version || j.Status != from {
		return nil, repositories.ErrConflict
	}
	j.Status = t.To
	if t.Winner != nil {
		w := *t.Winner
		j.Winner = &w
	}
	if t.Draw != nil {
		d := *t.Draw
		j.Draw = &d
	}
	if t.StartedAt != nil {
		j.StartedAt = t.StartedAt
	}
	if t.EndsAt != nil {
		j.EndsAt = t.EndsAt
	}
	if t.CompletedAt != nil {
		j.CompletedAt = t.CompletedAt
	}
	if t.To == models.RoundStatusCompleted {
		j.ActiveSlot = ""
		f.completions++
	}
	j.Version++
	return cloneJackpot(j), nil
}

func (f *FakeJackpotRepository) FindCompletedSince(_ context.Context, since time.Time) ([]*models.Jackpot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Jackpot{}
	for i := len(f.order) - 1; i >= 0; i-- {
		j := f.rounds[f.order[i]]
		if j.Status == models.RoundStatusCompleted && j.CompletedAt != nil && !j.CompletedAt.Before(since) {
			out = append(out, cloneJackpot(j))
		}
	}
	return out, nil
}

func (f *FakeJackpotRepository) FindLastCompleted(_ context.Context, limit int64) ([]*models.Jackpot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Jackpot{}
	for i := len(f.order) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if j := f.rounds[f.order[i]]; j.Status == models.RoundStatusCompleted {
			out = append(out, cloneJackpot(j))
		}
	}
	return out, nil
}

// Put stores a round as-is
func (f *FakeJackpotRepository) Put(j *models.Jackpot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rounds[j.ID]; !ok {
		f.order = append(f.order, j.ID)
	}
	f.rounds[j.ID] = cloneJackpot(j)
}

// Mutate applies fn to a stored round and bumps its version
func (f *FakeJackpotRepository) Mutate(id primitive.ObjectID, fn func(j *models.Jackpot)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.rounds[id])
	f.rounds[id].Version++
}

func (f *FakeJackpotRepository) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.order)
}

func (f *FakeJackpotRepository) Completions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completions
}

// ------------------------
// Fake User Repo
// ------------------------

type FakeUserRepository struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User

	ApplyRoundOutcomeErr error
}

func NewFakeUserRepository() *FakeUserRepository {
	return &FakeUserRepository{users: make(map[primitive.ObjectID]*models.User)}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.GameHistory = append([]models.GameHistoryEntry(nil), u.GameHistory...)
	return &c
}

func (f *FakeUserRepository) Put(u *models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = cloneUser(u)
}

func (f *FakeUserRepository) Get(id primitive.ObjectID) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneUser(f.users[id])
}

func (f *FakeUserRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return cloneUser(u), nil
}

func (f *FakeUserRepository) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (f *FakeUserRepository) FindBySteamID(_ context.Context, steamID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.SteamID == steamID {
			return cloneUser(u), nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *FakeUserRepository) UpsertSteamProfile(_ context.Context, p models.SteamProfile) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.SteamID == p.SteamID {
			u.Username, u.ProfileURL, u.Avatar = p.Username, p.ProfileURL, p.Avatar
			return cloneUser(u), nil
		}
	}
	u := &models.User{ID: primitive.NewObjectID(), SteamID: p.SteamID, Username: p.Username, ProfileURL: p.ProfileURL, Avatar: p.Avatar}
	f.users[u.ID] = u
	return cloneUser(u), nil
}

func (f *FakeUserRepository) SetTradeURL(_ context.Context, id primitive.ObjectID, tradeURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.TradeURL = tradeURL
	return nil
}

func (f *FakeUserRepository) ApplyRoundOutcome(_ context.Context, id primitive.ObjectID, entry models.GameHistoryEntry) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ApplyRoundOutcomeErr != nil {
		return false, f.ApplyRoundOutcomeErr
	}
	u, ok := f.users[id]
	if !ok {
		return false, nil
	}
	for _, h := range u.GameHistory {
		if h.JackpotID == entry.JackpotID {
			return false, nil
		}
	}
	u.Deposited += entry.Deposited
	u.TotalWon += entry.TotalWon
	u.Profit += entry.Profit
	u.GameHistory = append(u.GameHistory, entry)
	return true, nil
}

// ------------------------
// Fake Item Repo
// ------------------------

type FakeItemRepository struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Item
	order []primitive.ObjectID
}

func NewFakeItemRepository() *FakeItemRepository {
	return &FakeItemRepository{items: make(map[primitive.ObjectID]*models.Item)}
}

func cloneItem(i *models.Item) *models.Item {
	c := *i
	return &c
}

func (f *FakeItemRepository) Get(id primitive.ObjectID) *models.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneItem(f.items[id])
}

func (f *FakeItemRepository) EnsureIndexes(context.Context) error { return nil }

func (f *FakeItemRepository) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Item
	for _, id := range ids {
		if i, ok := f.items[id]; ok {
			out = append(out, cloneItem(i))
		}
	}
	return out, nil
}

func (f *FakeItemRepository) FindByOwner(_ context.Context, owner primitive.ObjectID) ([]*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Item{}
	for _, id := range f.order {
		if i := f.items[id]; i != nil && i.Owner == owner {
			out = append(out, cloneItem(i))
		}
	}
	return out, nil
}

func (f *FakeItemRepository) Claim(_ context.Context, owner primitive.ObjectID, ids []primitive.ObjectID, jackpotID primitive.ObjectID, entryID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, id := range ids {
		i, ok := f.items[id]
		if !ok || i.Owner != owner || i.StakedIn != nil {
			continue
		}
		jid := jackpotID
		i.StakedIn = &jid
		i.StakeEntry = entryID
		n++
	}
	return n, nil
}

func (f *FakeItemRepository) Release(_ context.Context, entryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, i := range f.items {
		if i.StakeEntry == entryID {
			i.StakedIn = nil
			i.StakeEntry = ""
		}
	}
	return nil
}

func (f *FakeItemRepository) InsertMany(_ context.Context, items []*models.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, i := range items {
		if i.ID.IsZero() {
			i.ID = primitive.NewObjectID()
		}
		f.items[i.ID] = cloneItem(i)
		f.order = append(f.order, i.ID)
	}
	return nil
}

func (f *FakeItemRepository) DeleteMissing(_ context.Context, owner primitive.ObjectID, keep []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := make(map[string]bool, len(keep))
	for _, k := range keep {
		kept[k] = true
	}
	var n int64
	for id, i := range f.items {
		if i.Owner == owner && i.StakedIn == nil && !kept[i.AssetID] {
			delete(f.items, id)
			n++
		}
	}
	return n, nil
}

// ------------------------
// Fake Payout Repo
// ------------------------

type FakePayoutRepository struct {
	mu      sync.Mutex
	payouts map[primitive.ObjectID]*models.Payout
	order   []primitive.ObjectID
}

func NewFakePayoutRepository() *FakePayoutRepository {
	return &FakePayoutRepository{payouts: make(map[primitive.ObjectID]*models.Payout)}
}

func clonePayout(p *models.Payout) *models.Payout {
	c := *p
	c.Assets = append([]models.PayoutAsset(nil), p.Assets...)
	return &c
}

func (f *FakePayoutRepository) Create(_ context.Context, p *models.Payout) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	f.payouts[p.ID] = clonePayout(p)
	f.order = append(f.order, p.ID)
	return nil
}

func (f *FakePayoutRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Payout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payouts[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return clonePayout(p), nil
}

func (f *FakePayoutRepository) FindByStatus(_ context.Context, status models.PayoutStatus, limit int64) ([]*models.Payout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Payout{}
	for _, id := range f.order {
		if p := f.payouts[id]; p.Status == status && (limit <= 0 || int64(len(out)) < limit) {
			out = append(out, clonePayout(p))
		}
	}
	return out, nil
}

func (f *FakePayoutRepository) FindByJackpot(_ context.Context, jackpotID primitive.ObjectID) ([]*models.Payout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Payout{}
	for _, id := range f.order {
		if p := f.payouts[id]; p.JackpotID == jackpotID {
			out = append(out, clonePayout(p))
		}
	}
	return out, nil
}

func (f *FakePayoutRepository) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.PayoutStatus, offerID, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payouts[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	p.Status, p.OfferID, p.Error = status, offerID, errMsg
	return nil
}

func (f *FakePayoutRepository) IncrementAttempts(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payouts[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	p.Attempts++
	return nil
}

func (f *FakePayoutRepository) SetDestination(_ context.Context, id primitive.ObjectID, destination string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payouts[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	p.Destination = destination
	return nil
}

// All returns every payout in creation order
func (f *FakePayoutRepository) All() []*models.Payout {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Payout, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, clonePayout(f.payouts[id]))
	}
	return out
}

// ------------------------
// Fake Settings / Prices / Admins
// ------------------------

type FakeSettingsRepository struct {
	mu       sync.Mutex
	settings *models.SystemSettings
	GetErr   error
}

func (f *FakeSettingsRepository) GetSettings(context.Context) (*models.SystemSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	if f.settings == nil {
		return nil, mongo.ErrNoDocuments
	}
	c := *f.settings
	return &c, nil
}

func (f *FakeSettingsRepository) UpdateSettings(_ context.Context, s *models.SystemSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *s
	f.settings = &c
	return nil
}

type FakeMarketPriceRepository struct {
	Prices map[string]float64
}

func (f *FakeMarketPriceRepository) FindByNames(_ context.Context, names []string) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, n := range names {
		if p, ok := f.Prices[n]; ok {
			out[n] = p
		}
	}
	return out, nil
}

func (f *FakeMarketPriceRepository) UpsertMany(_ context.Context, prices []models.MarketPrice) (int64, error) {
	if f.Prices == nil {
		f.Prices = make(map[string]float64)
	}
	for _, p := range prices {
		f.Prices[p.Name] = p.Price
	}
	return int64(len(prices)), nil
}

type FakeAdminUserRepository struct {
	admins []*models.AdminUser
}

func (f *FakeAdminUserRepository) Create(_ context.Context, a *models.AdminUser) (*models.AdminUser, error) {
	for _, existing := range f.admins {
		if existing.Email == a.Email {
			return nil, repositories.ErrDuplicate
		}
	}
	a.ID = primitive.NewObjectID()
	f.admins = append(f.admins, a)
	return a, nil
}

func (f *FakeAdminUserRepository) FindByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	for _, a := range f.admins {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

// ------------------------
// Fake Trade Bot
// ------------------------

type FakeTrade struct {
	mu     sync.Mutex
	escrow []tradebot.EscrowItem
	sent   []*tradebot.Offer
	seq    int

	EscrowErr   error
	SendErr     error
	SendState   tradebot.OfferState
	OfferStates map[string]tradebot.OfferState
}

func (f *FakeTrade) GetEscrowInventory(context.Context) ([]tradebot.EscrowItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.EscrowErr != nil {
		return nil, f.EscrowErr
	}
	return append([]tradebot.EscrowItem(nil), f.escrow...), nil
}

func (f *FakeTrade) Send(_ context.Context, offer *tradebot.Offer) (*tradebot.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return nil, f.SendErr
	}
	f.seq++
	f.sent = append(f.sent, offer)
	state := f.SendState
	if state == "" {
		state = tradebot.OfferStateAccepted
	}
	return &tradebot.SendResult{OfferID: fmt.Sprintf("offer-%d", f.seq), State: state}, nil
}

func (f *FakeTrade) GetOfferState(_ context.Context, offerID string) (tradebot.OfferState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.OfferStates[offerID]
	if !ok {
		return "", tradebot.ErrNotFound
	}
	return state, nil
}

func (f *FakeTrade) Sent() []*tradebot.Offer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*tradebot.Offer(nil), f.sent...)
}

// ------------------------
// Fake Notifier / Dispatcher / Random
// ------------------------

type publishedEvent struct {
	Event   string
	Payload interface{}
}

type RecordingNotifier struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (n *RecordingNotifier) Publish(event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, publishedEvent{event, payload})
}

func (n *RecordingNotifier) Named(event string) []interface{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []interface{}
	for _, e := range n.events {
		if e.Event == event {
			out = append(out, e.Payload)
		}
	}
	return out
}

func (n *RecordingNotifier) Names() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Event)
	}
	return out
}

type RecordingDispatcher struct {
	mu          sync.Mutex
	settlements []Settlement
}

func (d *RecordingDispatcher) Dispatch(st Settlement) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settlements = append(d.settlements, st)
}

func (d *RecordingDispatcher) Settlements() []Settlement {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Settlement(nil), d.settlements...)
}

// FixedRandom always returns Value and counts draws
type FixedRandom struct {
	mu    sync.Mutex
	Value float64
	calls int
}

func (r *FixedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.Value
}

func (r *FixedRandom) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// ------------------------
// Fake Auth Collaborators
// ------------------------

type FakeSteam struct {
	VerifyFn  func(params url.Values) (string, error)
	Summaries map[string]*steamapi.PlayerSummary
	Groups    map[string][]steamapi.InventoryGroup
	FetchErr  error
}

func (f *FakeSteam) LoginURL(returnTo, realm string) string {
	return "https://steam.example/login?return_to=" + url.QueryEscape(returnTo) + "&realm=" + url.QueryEscape(realm)
}

func (f *FakeSteam) VerifyAssertion(_ context.Context, params url.Values) (string, error) {
	return f.VerifyFn(params)
}

func (f *FakeSteam) GetPlayerSummary(_ context.Context, steamID string) (*steamapi.PlayerSummary, error) {
	if s, ok := f.Summaries[steamID]; ok {
		return s, nil
	}
	return &steamapi.PlayerSummary{SteamID: steamID, PersonaName: "anon"}, nil
}

func (f *FakeSteam) FetchInventory(_ context.Context, steamID string, _ int, _ string) ([]steamapi.InventoryGroup, error) {
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	return f.Groups[steamID], nil
}

type FakeCodeStore struct {
	mu    sync.Mutex
	codes map[string]string
	seq   int
}

func (f *FakeCodeStore) Issue(_ context.Context, value string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.codes == nil {
		f.codes = make(map[string]string)
	}
	f.seq++
	code := fmt.Sprintf("code-%d", f.seq)
	f.codes[code] = value
	return code, nil
}

func (f *FakeCodeStore) Redeem(_ context.Context, code string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.codes[code]
	if !ok {
		return "", codecache.ErrNotFound
	}
	delete(f.codes, code)
	return v, nil
}

type FakeTokens struct{}

func (FakeTokens) Issue(subject, role string) (string, error) {
	return role + ":" + subject, nil
}
