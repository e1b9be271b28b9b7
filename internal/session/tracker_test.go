package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmzi67/cervical-posture-detection/internal/exercise"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, time.October, 27, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestEmptySessionStatsAreZeroed(t *testing.T) {
	tr := NewTracker()
	tr.Start()

	stats := tr.Stats()
	assert.Zero(t, stats.TotalMeasurements)
	assert.Zero(t, stats.SessionDuration)
	assert.Zero(t, stats.ExercisesPerformed)
	assert.Zero(t, stats.AverageAccuracy)
	assert.NotNil(t, stats.ByExercise)
	assert.Empty(t, stats.ByExercise)

	_, ok := tr.Progress()
	assert.False(t, ok)
}

func TestFlexionScenarioWithDisplayTargets(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(WithClock(clock.Now), WithTargets(map[string]exercise.Band{
		"Cervical Flexion": {Min: 25, Max: 45},
	}))
	tr.Start()

	clock.Advance(time.Second)
	tr.Log("Cervical Flexion", 40, exercise.StatusGood)
	clock.Advance(time.Second)
	tr.Log("Cervical Flexion", 20, exercise.StatusTooLittle)
	clock.Advance(time.Second)
	tr.Log("Cervical Flexion", 35, exercise.StatusGood)

	stats := tr.Stats()
	require.Equal(t, 3, stats.TotalMeasurements)
	assert.InDelta(t, 66.7, stats.AverageAccuracy, 0.05)
	assert.Equal(t, 1, stats.ExercisesPerformed)
	assert.InDelta(t, 3.0, stats.SessionDuration, 1e-9)

	flex := stats.ByExercise["Cervical Flexion"]
	assert.Equal(t, 3, flex.Count)
	assert.InDelta(t, 66.7, flex.Accuracy, 0.05)
	assert.InDelta(t, 31.6667, flex.AvgMeasurement, 1e-3)
	assert.Equal(t, 40.0, flex.BestMeasurement)
}

func TestAccuracyIsExactFraction(t *testing.T) {
	tr := NewTracker()
	const n, k = 17, 5
	for i := 0; i < n; i++ {
		value := 150.0
		if i < k {
			value = 50
		}
		tr.Log("ad-hoc", value, exercise.StatusGood)
	}
	assert.Equal(t, float64(k)/float64(n)*100, tr.Stats().AverageAccuracy)
}

func TestUnknownExerciseFallsBackToDefaultTarget(t *testing.T) {
	tr := NewTracker()
	rec := tr.Log("Shoulder Shrug", 99, exercise.StatusGood)
	assert.True(t, rec.InTargetRange)
	assert.Equal(t, DefaultTarget.Min, rec.TargetMin)
	assert.Equal(t, DefaultTarget.Max, rec.TargetMax)

	rec = tr.Log("Shoulder Shrug", 101, exercise.StatusGood)
	assert.False(t, rec.InTargetRange)
}

func TestDefaultTargetsFollowClassifierBands(t *testing.T) {
	tr := NewTracker()
	assert.True(t, tr.Log("Chin Tuck", 5, exercise.StatusGood).InTargetRange)
	assert.False(t, tr.Log("Chin Tuck", 10, exercise.StatusForwardHead).InTargetRange)
	assert.True(t, tr.Log("Cervical Flexion", 60, exercise.StatusGood).InTargetRange)
}

func TestInTargetRangeIsIndependentOfStatus(t *testing.T) {
	tr := NewTracker(WithTargets(map[string]exercise.Band{"Cervical Flexion": {Min: 25, Max: 45}}))
	rec := tr.Log("Cervical Flexion", 55, exercise.StatusGood)
	assert.False(t, rec.InTargetRange)
	assert.Equal(t, exercise.StatusGood, rec.Status)
}

func TestElapsedIsNonDecreasing(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(WithClock(clock.Now))
	tr.Start()

	clock.Advance(2 * time.Second)
	tr.Log("Neck Rotation", 40, exercise.StatusGood)
	clock.Advance(-time.Second)
	tr.Log("Neck Rotation", 41, exercise.StatusGood)
	clock.Advance(3 * time.Second)
	tr.Log("Neck Rotation", 42, exercise.StatusGood)

	records := tr.Records()
	require.Len(t, records, 3)
	for i := 1; i < len(records); i++ {
		assert.GreaterOrEqual(t, records[i].Elapsed, records[i-1].Elapsed)
	}
	assert.InDelta(t, 4.0, records[2].Elapsed, 1e-9)
}

func TestStartClearsLog(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(WithClock(clock.Now))
	tr.Log("Chin Tuck", 4, exercise.StatusGood)
	require.True(t, tr.Started())

	clock.Advance(10 * time.Second)
	tr.Start()
	assert.Empty(t, tr.Records())

	clock.Advance(time.Second)
	rec := tr.Log("Chin Tuck", 4, exercise.StatusGood)
	assert.InDelta(t, 1.0, rec.Elapsed, 1e-9)
}

func TestStartExerciseImplicitlyStartsSession(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(WithClock(clock.Now))
	require.False(t, tr.Started())

	tr.StartExercise("Chin Tuck")
	require.True(t, tr.Started())

	clock.Advance(5 * time.Second)
	name, running := tr.CurrentExercise()
	assert.Equal(t, "Chin Tuck", name)
	assert.Equal(t, 5*time.Second, running)
}

func TestConcurrentLogAndStats(t *testing.T) {
	tr := NewTracker()
	tr.Start()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			tr.Log("Neck Rotation", float64(i%100), exercise.StatusGood)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = tr.Stats()
		}
	}()
	wg.Wait()

	assert.Equal(t, 500, tr.Stats().TotalMeasurements)
}
