package services

import (
	"sync"
	"testing"
	"time"

	"github.com/ArowuTest/skinjackpot-backend/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type recordingListener struct {
	mu                sync.Mutex
	roundTicks        []int
	expired           []primitive.ObjectID
	intermissionTicks []int
	elapsed           int
}

func (l *recordingListener) OnRoundTick(_ primitive.ObjectID, timeLeft int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.roundTicks = append(l.roundTicks, timeLeft)
}

func (l *recordingListener) OnRoundExpired(id primitive.ObjectID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.expired = append(l.expired, id)
}

func (l *recordingListener) OnIntermissionTick(timeLeft int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.intermissionTicks = append(l.intermissionTicks, timeLeft)
}

func (l *recordingListener) OnIntermissionElapsed() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.elapsed++
}

func newTestScheduler() (*RoundScheduler, *clock.Fake, *recordingListener) {
	fc := clock.NewFake(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	l := &recordingListener{}
	return NewRoundScheduler(fc, l), fc, l
}

func TestRoundScheduler_TicksEverySecondThenExpiresOnce(t *testing.T) {
	s, fc, l := newTestScheduler()
	id := primitive.NewObjectID()

	require.True(t, s.StartRound(id, fc.Now().Add(10*time.Second)))
	fc.Advance(9 * time.Second)

	assert.Equal(t, []int{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}, l.roundTicks)
	assert.Empty(t, l.expired)

	fc.Advance(5 * time.Second)

	assert.Equal(t, []primitive.ObjectID{id}, l.expired)
	assert.Equal(t, 0, l.roundTicks[len(l.roundTicks)-1])
	assert.Equal(t, 0, fc.Pending())
}

func TestRoundScheduler_RestartSameRoundIsIgnored(t *testing.T) {
	s, fc, l := newTestScheduler()
	id := primitive.NewObjectID()

	require.True(t, s.StartRound(id, fc.Now().Add(10*time.Second)))
	fc.Advance(3 * time.Second)
	assert.False(t, s.StartRound(id, fc.Now().Add(10*time.Second)))
	fc.Advance(7 * time.Second)

	assert.Len(t, l.expired, 1)
}

func TestRoundScheduler_PastDeadlineExpiresOnNextCallback(t *testing.T) {
	s, fc, l := newTestScheduler()
	id := primitive.NewObjectID()

	s.StartRound(id, fc.Now().Add(-time.Second))
	assert.Empty(t, l.expired)

	fc.Advance(0)
	assert.Equal(t, []primitive.ObjectID{id}, l.expired)
}

func TestRoundScheduler_ResumeWithFractionalRemaining(t *testing.T) {
	s, fc, l := newTestScheduler()

	s.StartRound(primitive.NewObjectID(), fc.Now().Add(2500*time.Millisecond))
	fc.Advance(3 * time.Second)

	assert.Equal(t, []int{3, 2, 1, 0}, l.roundTicks)
	assert.Len(t, l.expired, 1)
}

func TestRoundScheduler_StopRound(t *testing.T) {
	s, fc, l := newTestScheduler()
	id := primitive.NewObjectID()

	s.StartRound(id, fc.Now().Add(10*time.Second))
	s.StopRound(id)
	fc.Advance(20 * time.Second)

	assert.Empty(t, l.expired)
	_, _, running := s.RoundTimeLeft()
	assert.False(t, running)
}

func TestRoundScheduler_RoundTimeLeft(t *testing.T) {
	s, fc, _ := newTestScheduler()
	id := primitive.NewObjectID()

	s.StartRound(id, fc.Now().Add(10*time.Second))
	fc.Advance(4 * time.Second)

	gotID, left, running := s.RoundTimeLeft()
	assert.True(t, running)
	assert.Equal(t, id, gotID)
	assert.Equal(t, 6, left)
}

func TestRoundScheduler_Intermission(t *testing.T) {
	s, fc, l := newTestScheduler()

	require.True(t, s.StartIntermission(10*time.Second))
	assert.True(t, s.InIntermission())
	assert.False(t, s.StartIntermission(10*time.Second))

	fc.Advance(4 * time.Second)
	assert.Equal(t, 6, s.IntermissionTimeLeft())

	fc.Advance(6 * time.Second)

	assert.Equal(t, []int{10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0}, l.intermissionTicks)
	assert.Equal(t, 1, l.elapsed)
	assert.False(t, s.InIntermission())
}

func TestRoundScheduler_Stop(t *testing.T) {
	s, fc, l := newTestScheduler()

	s.StartRound(primitive.NewObjectID(), fc.Now().Add(5*time.Second))
	s.StartIntermission(5 * time.Second)
	s.Stop()
	fc.Advance(10 * time.Second)

	assert.Empty(t, l.expired)
	assert.Zero(t, l.elapsed)
}
