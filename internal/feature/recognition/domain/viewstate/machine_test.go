package viewstate_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hanzi_backend/internal/feature/recognition/domain/viewstate"
)

func TestMachine_HappyPath(t *testing.T) {
	t.Parallel()

	m := viewstate.New()
	assert.Equal(t, viewstate.Welcome, m.View())

	assert.Equal(t, viewstate.Camera, m.Start(true))
	require.NoError(t, m.BeginCapture())
	assert.Equal(t, viewstate.Loading, m.View())
	require.NoError(t, m.Succeed())
	assert.Equal(t, viewstate.Result, m.View())
	require.NoError(t, m.Retake())
	assert.Equal(t, viewstate.Camera, m.View())
}

func TestMachine_StartWithoutBackend(t *testing.T) {
	t.Parallel()

	m := viewstate.New()
	assert.Equal(t, viewstate.Settings, m.Start(false))
	assert.ErrorIs(t, m.BeginCapture(), viewstate.ErrInvalidTransition)

	// 設定後に再開
	assert.Equal(t, viewstate.Camera, m.Start(true))
}

func TestMachine_FailReturnsToCamera(t *testing.T) {
	t.Parallel()

	m := viewstate.New()
	m.Start(true)
	require.NoError(t, m.BeginCapture())
	require.NoError(t, m.Fail("网络请求失败"))

	assert.Equal(t, viewstate.Camera, m.View())
	assert.Equal(t, "网络请求失败", m.Message())

	require.NoError(t, m.BeginCapture())
	assert.Empty(t, m.Message())
}

func TestMachine_InvalidTransitions(t *testing.T) {
	t.Parallel()

	m := viewstate.New()
	assert.ErrorIs(t, m.Succeed(), viewstate.ErrInvalidTransition)
	assert.ErrorIs(t, m.Fail("x"), viewstate.ErrInvalidTransition)
	assert.ErrorIs(t, m.Retake(), viewstate.ErrInvalidTransition)

	m.Start(true)
	require.NoError(t, m.BeginCapture())
	assert.ErrorIs(t, m.OpenSettings(), viewstate.ErrBusy)
	assert.Equal(t, viewstate.Loading, m.Start(true))
}

func TestMachine_OneCaptureInFlight(t *testing.T) {
	t.Parallel()

	m := viewstate.New()
	m.Start(true)

	var (
		wg      sync.WaitGroup
		started atomic.Int32
		busy    atomic.Int32
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.BeginCapture(); err == nil {
				started.Add(1)
			} else if assert.ErrorIs(t, err, viewstate.ErrBusy) {
				busy.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), started.Load())
	assert.Equal(t, int32(9), busy.Load())
}
