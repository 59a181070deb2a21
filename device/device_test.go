package device

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luhtfiimanal/go-ledmenu/pwm"
)

func newState(t *testing.T) (*State, *pwm.Memory) {
	t.Helper()
	mem := pwm.NewMemory()
	return New(mem, 0, 255), mem
}

func TestNew_Defaults(t *testing.T) {
	s, mem := newState(t)
	require.Equal(t, Snapshot{Brightness: 255}, s.Snapshot())
	require.Empty(t, mem.History())

	require.NoError(t, s.Apply())
	require.Equal(t, []pwm.Write{{Channel: 0, Value: 0}}, mem.History())
}

func TestToggle(t *testing.T) {
	s, mem := newState(t)

	on, err := s.Toggle()
	require.NoError(t, err)
	require.True(t, on)
	require.Equal(t, uint8(255), mem.Value(0))

	on, err = s.Toggle()
	require.NoError(t, err)
	require.False(t, on)
	require.Equal(t, uint8(0), mem.Value(0))
}

func TestSetBrightness_RoundTrip(t *testing.T) {
	for _, n := range []uint8{0, 1, 128, 150, 254, 255} {
		s, mem := newState(t)
		_, err := s.Toggle()
		require.NoError(t, err)

		require.NoError(t, s.SetBrightness(n))
		require.NoError(t, s.Apply())
		require.Equal(t, n, mem.Value(0))
		require.Equal(t, n, s.Snapshot().Level)
		require.Equal(t, n, s.Brightness())
	}
}

func TestSetBrightness_OffStaysDark(t *testing.T) {
	s, mem := newState(t)
	require.NoError(t, s.SetBrightness(90))
	require.Equal(t, uint8(0), mem.Value(0))

	_, err := s.Toggle()
	require.NoError(t, err)
	require.Equal(t, uint8(90), mem.Value(0))
}

func TestBlinkToggle_OnlyWhileBlinking(t *testing.T) {
	s, mem := newState(t)

	toggled, err := s.BlinkToggle()
	require.NoError(t, err)
	require.False(t, toggled)
	require.Empty(t, mem.History())

	s.SetInterval(Fast)
	require.Equal(t, Fast, s.Interval())
	toggled, err = s.BlinkToggle()
	require.NoError(t, err)
	require.True(t, toggled)
	require.True(t, s.Snapshot().On)
}

func TestStopBlinking(t *testing.T) {
	s, mem := newState(t)
	s.SetInterval(Slow)
	_, err := s.Toggle()
	require.NoError(t, err)

	require.NoError(t, s.StopBlinking())
	snap := s.Snapshot()
	require.Equal(t, Off, snap.Interval)
	require.False(t, snap.On)
	require.Equal(t, uint8(0), mem.Value(0))
}

func TestInterval_Duration(t *testing.T) {
	require.Equal(t, 200*time.Millisecond, Fast.Duration())
	require.Equal(t, 500*time.Millisecond, Medium.Duration())
	require.Equal(t, time.Second, Slow.Duration())
	require.Zero(t, Off.Duration())
}

type brokenOutput struct{}

func (brokenOutput) SetOutput(int, uint8) error { return errors.New("gone") }

func TestToggle_WriteErrorStillChangesState(t *testing.T) {
	s := New(brokenOutput{}, 0, 10)
	on, err := s.Toggle()
	require.Error(t, err)
	require.True(t, on)
	require.True(t, s.Snapshot().On)
}

// Menu and blink goroutines hammer the state; the output must never
// disagree with the state it was derived from.
func TestConcurrentTogglesKeepInvariant(t *testing.T) {
	s, mem := newState(t)
	s.SetInterval(Fast)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_, _ = s.BlinkToggle()
				_, _ = s.Toggle()
				_ = s.SetBrightness(200)
			}
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	want := uint8(0)
	if snap.On {
		want = snap.Brightness
	}
	require.Equal(t, want, snap.Level)
	require.Equal(t, want, mem.Value(0))
}
