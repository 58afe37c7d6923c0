package services

import (
	"sync"
	"time"

	"github.com/ArowuTest/skinjackpot-backend/internal/clock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoundListener receives scheduler events. Calls are made without the
// scheduler lock held.
type RoundListener interface {
	OnRoundTick(roundID primitive.ObjectID, timeLeft int)
	OnRoundExpired(roundID primitive.ObjectID)
	OnIntermissionTick(timeLeft int)
	OnIntermissionElapsed()
}

type countdown struct {
	id       primitive.ObjectID
	deadline time.Time
	gen      uint64
	timer    clock.Timer
}

// RoundScheduler owns the round timer and the inter-round countdown. Each
// countdown ticks once per whole second left and fires its expiry once.
type RoundScheduler struct {
	clock    clock.Clock
	listener RoundListener

	mu           sync.Mutex
	gen          uint64
	round        *countdown
	intermission *countdown
}

// NewRoundScheduler creates a scheduler reporting to listener
func NewRoundScheduler(c clock.Clock, listener RoundListener) *RoundScheduler {
	return &RoundScheduler{clock: c, listener: listener}
}

// StartRound starts the timer for a round ending at deadline. It returns
// false if that round's timer is already running. A deadline in the past
// expires on the next clock callback, never inside the caller.
func (s *RoundScheduler) StartRound(roundID primitive.ObjectID, deadline time.Time) bool {
	s.mu.Lock()
	if s.round != nil && s.round.id == roundID {
		s.mu.Unlock()
		return false
	}
	if s.round != nil {
		s.round.timer.Stop()
	}
	s.gen++
	cd := &countdown{id: roundID, deadline: deadline, gen: s.gen}
	s.round = cd
	left := secondsLeft(s.clock.Now(), deadline)
	cd.timer = s.clock.AfterFunc(untilNextTick(s.clock.Now(), deadline), func() { s.roundTick(cd.gen) })
	s.mu.Unlock()

	if left > 0 {
		s.listener.OnRoundTick(roundID, left)
	}
	return true
}

// StopRound cancels the running round timer without firing its expiry
func (s *RoundScheduler) StopRound(roundID primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round != nil && s.round.id == roundID {
		s.round.timer.Stop()
		s.round = nil
	}
}

// RoundTimeLeft reports the running round and its whole seconds left
func (s *RoundScheduler) RoundTimeLeft() (primitive.ObjectID, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round == nil {
		return primitive.NilObjectID, 0, false
	}
	return s.round.id, secondsLeft(s.clock.Now(), s.round.deadline), true
}

func (s *RoundScheduler) roundTick(gen uint64) {
	s.mu.Lock()
	cd := s.round
	if cd == nil || cd.gen != gen {
		s.mu.Unlock()
		return
	}
	now := s.clock.Now()
	left := secondsLeft(now, cd.deadline)
	if left == 0 {
		// Clearing the handle before expiry makes a second fire a no-op.
		s.round = nil
		s.mu.Unlock()
		s.listener.OnRoundTick(cd.id, 0)
		s.listener.OnRoundExpired(cd.id)
		return
	}
	cd.timer = s.clock.AfterFunc(untilNextTick(now, cd.deadline), func() { s.roundTick(gen) })
	s.mu.Unlock()
	s.listener.OnRoundTick(cd.id, left)
}

// StartIntermission starts the inter-round countdown. It returns false if
// one is already running.
func (s *RoundScheduler) StartIntermission(d time.Duration) bool {
	s.mu.Lock()
	if s.intermission != nil {
		s.mu.Unlock()
		return false
	}
	s.gen++
	now := s.clock.Now()
	cd := &countdown{deadline: now.Add(d), gen: s.gen}
	s.intermission = cd
	left := secondsLeft(now, cd.deadline)
	cd.timer = s.clock.AfterFunc(untilNextTick(now, cd.deadline), func() { s.intermissionTick(cd.gen) })
	s.mu.Unlock()

	if left > 0 {
		s.listener.OnIntermissionTick(left)
	}
	return true
}

// InIntermission reports whether the inter-round countdown is running
func (s *RoundScheduler) InIntermission() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intermission != nil
}

// IntermissionTimeLeft reports the whole seconds until the next round
func (s *RoundScheduler) IntermissionTimeLeft() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.intermission == nil {
		return 0
	}
	return secondsLeft(s.clock.Now(), s.intermission.deadline)
}

func (s *RoundScheduler) intermissionTick(gen uint64) {
	s.mu.Lock()
	cd := s.intermission
	if cd == nil || cd.gen != gen {
		s.mu.Unlock()
		return
	}
	now := s.clock.Now()
	left := secondsLeft(now, cd.deadline)
	if left == 0 {
		s.intermission = nil
		s.mu.Unlock()
		s.listener.OnIntermissionTick(0)
		s.listener.OnIntermissionElapsed()
		return
	}
	cd.timer = s.clock.AfterFunc(untilNextTick(now, cd.deadline), func() { s.intermissionTick(gen) })
	s.mu.Unlock()
	s.listener.OnIntermissionTick(left)
}

// Stop cancels every pending countdown
func (s *RoundScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round != nil {
		s.round.timer.Stop()
		s.round = nil
	}
	if s.intermission != nil {
		s.intermission.timer.Stop()
		s.intermission = nil
	}
}

// secondsLeft rounds the remaining time up to whole seconds
func secondsLeft(now, deadline time.Time) int {
	d := deadline.Sub(now)
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// untilNextTick is the delay to the next whole-second boundary before deadline
func untilNextTick(now, deadline time.Time) time.Duration {
	d := deadline.Sub(now)
	if d <= 0 {
		return 0
	}
	if rem := d % time.Second; rem != 0 {
		return rem
	}
	return time.Second
}
