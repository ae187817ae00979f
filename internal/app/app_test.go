package app

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softswan/softswan/internal/progression"
	"github.com/softswan/softswan/internal/store"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func progressAt(points int) ProgressMsg {
	return ProgressMsg{Progress: progression.Default().Evaluate(points)}
}

func update(t *testing.T, m Dashboard, msg tea.Msg) (Dashboard, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	d, ok := next.(Dashboard)
	require.True(t, ok)
	return d, cmd
}

func TestDashboard_InitLoads(t *testing.T) {
	calls := 0
	m := NewDashboard(context.Background(), "ada", func(context.Context) ProgressMsg {
		calls++
		return progressAt(150)
	})

	cmd := m.Init()
	require.NotNil(t, cmd)

	msg, ok := cmd().(ProgressMsg)
	require.True(t, ok)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 150, msg.Progress.Points)
}

func TestDashboard_NilLoader(t *testing.T) {
	m := NewDashboard(context.Background(), "ada", nil)
	assert.Nil(t, m.Init())
}

func TestDashboard_RendersProgress(t *testing.T) {
	m := NewDashboard(context.Background(), "ada", nil)
	assert.Contains(t, m.Render(60), "Loading")

	m, _ = update(t, m, progressAt(150))
	out := m.Render(60)
	assert.Contains(t, out, "ada")
	assert.Contains(t, out, "Silver 1")
	assert.Contains(t, out, "50 XP to")
	assert.Contains(t, out, "Silver 2")
}

func TestDashboard_MaxTier(t *testing.T) {
	m := NewDashboard(context.Background(), "ada", nil)
	m, _ = update(t, m, progressAt(5000))
	assert.Contains(t, m.Render(60), "Max level reached!")
}

func TestDashboard_LevelUpFlash(t *testing.T) {
	m := NewDashboard(context.Background(), "ada", nil)

	m, _ = update(t, m, progressAt(90))
	assert.NotContains(t, m.Render(60), "Reached")

	m, _ = update(t, m, progressAt(120))
	assert.Contains(t, m.Render(60), "Reached 🥈 Silver 1!")
}

func TestDashboard_NoFlashOnFirstLoad(t *testing.T) {
	m := NewDashboard(context.Background(), "ada", nil)
	m, _ = update(t, m, progressAt(450))
	assert.NotContains(t, m.Render(60), "Reached")
}

func TestDashboard_LatestCertificate(t *testing.T) {
	m := NewDashboard(context.Background(), "ada", nil)

	msg := progressAt(420)
	msg.Latest = &store.CertificateRecord{
		Tier:      "Gold 1",
		Icon:      "🥇",
		AwardedAt: time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC),
	}
	m, _ = update(t, m, msg)
	assert.Contains(t, m.Render(60), "Latest certificate:")
	assert.Contains(t, m.Render(60), "Gold 1")

	// A refresh without a certificate keeps the previous one.
	m, _ = update(t, m, progressAt(430))
	assert.Contains(t, m.Render(60), "Gold 1")
}

func TestDashboard_Error(t *testing.T) {
	m := NewDashboard(context.Background(), "ada", nil)
	m, _ = update(t, m, progressAt(10))
	m, _ = update(t, m, ProgressMsg{Err: errors.New("database is locked")})

	out := m.Render(60)
	assert.Contains(t, out, "database is locked")
	assert.Contains(t, out, "10 XP", "last good progress stays on screen")
}

func TestDashboard_Keys(t *testing.T) {
	loads := 0
	m := NewDashboard(context.Background(), "ada", func(context.Context) ProgressMsg {
		loads++
		return progressAt(0)
	})

	_, cmd := update(t, m, keyPress('r'))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, 1, loads)

	_, cmd = update(t, m, keyPress('x'))
	assert.Nil(t, cmd)

	_, cmd = update(t, m, keyPress('q'))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestDashboard_WindowSize(t *testing.T) {
	m := NewDashboard(context.Background(), "ada", nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Equal(t, 80, m.width)
	assert.Equal(t, 24, m.height)
	assert.True(t, m.View().AltScreen)
}

func TestKeyMap_Hints(t *testing.T) {
	hints := defaultKeyMap().hints()
	require.Len(t, hints, 2)
	assert.Equal(t, "r", hints[0].Key)
	assert.Equal(t, "q", hints[1].Key)
}
