package terminal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/magicmove/internal/engine"
	"github.com/zjrosen/magicmove/internal/highlight"
	"github.com/zjrosen/magicmove/internal/host"
	"github.com/zjrosen/magicmove/internal/layout"
	"github.com/zjrosen/magicmove/internal/plan"
	"github.com/zjrosen/magicmove/internal/pubsub"
	"github.com/zjrosen/magicmove/internal/token"
)

var testSteps = []host.Payload{
	{Path: "one.go", Source: "x := 1\n", Language: "go"},
	{Path: "two.go", Source: "y := 2\nx := 1\n", Language: "go"},
}

func newTestStage() *host.Stage {
	return host.NewStage(engine.New(plan.DefaultConfig()), highlight.New("monokai"), layout.TerminalGrid(0))
}

func newTestModel(t *testing.T, steps ...host.Payload) Model {
	t.Helper()
	if len(steps) == 0 {
		steps = testSteps
	}
	m := NewModel(context.Background(), newTestStage(), steps, Options{
		ColorProfile: "none",
		Width:        80,
		Height:       10,
	})
	require.NoError(t, m.Err())
	return m
}

func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// finish plays ticks until the animation stops.
func finish(t *testing.T, m Model) Model {
	t.Helper()
	for i := 0; m.Animating(); i++ {
		require.Less(t, i, 1000, "animation never finished")
		next, _ := m.Update(tickMsg{gen: m.gen})
		m = next.(Model)
	}
	return m
}

func TestNewModel_MountsFirstStep(t *testing.T) {
	m := newTestModel(t)

	require.Equal(t, 0, m.Index())
	require.True(t, m.Transition().HasChanges)
	require.Equal(t, 3, m.Transition().Counts.Added)
	require.True(t, m.Animating())
	require.Equal(t, 8, m.stage.Grid().MaxLines, "height minus footer")
}

func TestModel_Stepping(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, 1, m.Index())
	require.Equal(t, 3, m.Transition().Counts.Added, "y := 2")
	c := m.Transition().Counts
	require.Zero(t, c.Removed)
	require.Equal(t, 3, c.Moved+c.Unchanged, "x := 1 is kept")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, 1, m.Index(), "no step past the last")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	require.Equal(t, 0, m.Index())
	require.Equal(t, 3, m.Transition().Counts.Removed, "stepping back removes y := 2")

	m = press(t, m, runes("G"))
	require.Equal(t, 1, m.Index())
	m = press(t, m, runes("g"))
	require.Equal(t, 0, m.Index())
}

func TestModel_TicksUntilDone(t *testing.T) {
	m := newTestModel(t)
	total := m.Transition().TotalDuration

	next, cmd := m.Update(tickMsg{gen: m.gen})
	m = next.(Model)
	require.NotNil(t, cmd)
	require.Equal(t, time.Second/DefaultFPS, m.elapsed)

	m = finish(t, m)
	require.Equal(t, total, m.elapsed)

	next, cmd = m.Update(tickMsg{gen: m.gen})
	require.Nil(t, cmd)
	require.Equal(t, total, next.(Model).elapsed)
}

func TestModel_StaleTickIgnored(t *testing.T) {
	m := newTestModel(t)
	stale := m.gen

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	require.NotEqual(t, stale, m.gen)

	next, cmd := m.Update(tickMsg{gen: stale})
	require.Nil(t, cmd)
	require.Zero(t, next.(Model).elapsed)
}

func TestModel_PauseAndSpeed(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.paused)
	require.False(t, m.Animating())

	next, cmd := m.Update(tickMsg{gen: m.gen})
	require.Nil(t, cmd)
	require.Zero(t, next.(Model).elapsed)

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.False(t, m.paused)
	require.NotNil(t, cmd, "resuming restarts the tick loop")

	m = press(t, m, runes("+"))
	require.Equal(t, 2.0, m.speed)
	for range 5 {
		m = press(t, m, runes("+"))
	}
	require.Equal(t, float64(maxSpeed), m.speed)
	for range 10 {
		m = press(t, m, runes("-"))
	}
	require.Equal(t, minSpeed, m.speed)
}

func TestModel_Replay(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = finish(t, m)
	first := m.Transition().Counts

	m = press(t, m, runes("r"))
	require.Equal(t, 1, m.Index())
	require.Zero(t, m.elapsed)
	require.True(t, m.Animating())
	require.Equal(t, first, m.Transition().Counts, "replay plays the same transition")
}

func TestModel_UpdateEventAppendsStep(t *testing.T) {
	m := newTestModel(t, testSteps[0])

	next, _ := m.Update(pubsub.Event[host.Payload]{Type: pubsub.UpdateEvent, Payload: testSteps[1]})
	m = next.(Model)

	require.Len(t, m.steps, 2)
	require.Equal(t, 1, m.Index())
	require.Equal(t, 3, m.Transition().Counts.Added)
}

func TestModel_ErrorEventShownInStatus(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(pubsub.Event[host.Payload]{Type: pubsub.ErrorEvent, Err: errors.New("file vanished")})
	m = next.(Model)

	require.EqualError(t, m.Err(), "file vanished")
	require.Contains(t, m.View(), "file vanished")
}

func TestModel_ViewDrawsFinalFrame(t *testing.T) {
	m := finish(t, newTestModel(t))

	view := m.View()
	lines := strings.Split(view, "\n")
	require.Len(t, lines, 10)
	require.True(t, strings.HasPrefix(lines[0], "x := 1"), "got %q", lines[0])
	require.Contains(t, view, "one.go")
	require.Contains(t, view, "1/2")
	require.Contains(t, view, "0 moved · 3 added · 0 removed")
	require.Contains(t, view, "next ▶")
}

func TestModel_ResizeChangesGrid(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(Model)

	require.Equal(t, 28, m.stage.Grid().MaxLines)
	require.Equal(t, 100, m.help.Width)
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_Program(t *testing.T) {
	tm := teatest.NewTestModel(t, newTestModel(t), teatest.WithInitialTermSize(40, 10))

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("1/2"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRight})
	tm.Send(runes("q"))

	fm := tm.FinalModel(t, teatest.WithFinalTimeout(3*time.Second))
	require.Equal(t, 1, fm.(Model).Index())
}

func TestPlayer_Lifecycle(t *testing.T) {
	ctx := context.Background()
	p := NewPlayer(newTestStage(), Options{ColorProfile: "none"},
		tea.WithInput(nil), tea.WithOutput(io.Discard), tea.WithoutSignalHandler())

	require.ErrorIs(t, p.Update(ctx, testSteps[1]), host.ErrNotMounted)
	require.NoError(t, p.Mount(ctx, testSteps[0]))
	require.NoError(t, p.Update(ctx, testSteps[1]))
	require.NoError(t, p.Dispose())
	require.NoError(t, p.Dispose())

	select {
	case <-p.Done():
	default:
		t.Fatal("program still running after Dispose")
	}
	require.ErrorIs(t, p.Update(ctx, testSteps[0]), host.ErrDisposed)
	require.ErrorIs(t, p.Mount(ctx, testSteps[0]), host.ErrDisposed)
}

func TestParseColorProfile(t *testing.T) {
	tests := []struct {
		name    string
		want    termenv.Profile
		ok      bool
		wantErr bool
	}{
		{name: "", ok: false},
		{name: "auto", ok: false},
		{name: "truecolor", want: termenv.TrueColor, ok: true},
		{name: "256", want: termenv.ANSI256, ok: true},
		{name: " ANSI ", want: termenv.ANSI, ok: true},
		{name: "none", want: termenv.Ascii, ok: true},
		{name: "sepia", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ParseColorProfile(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.ok, ok)
			if ok {
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCanvas_RemovedPaintedUnderneath(t *testing.T) {
	at := func(kind plan.Kind, text string) plan.Instruction {
		st := plan.State{X: 1, Y: 0, Width: 1, Height: 1, Opacity: 1}
		return plan.Instruction{Kind: kind, Text: text, Start: st, End: st}
	}
	// Removed instructions come last in a plan.
	instructions := []plan.Instruction{at(plan.KindUnchanged, "b"), at(plan.KindRemoved, "a")}

	c := newCanvas(3, 1, token.Color{})
	paint(c, instructions, 0, nil, token.Color{})

	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	require.Equal(t, []string{" b "}, c.render(r))
}

func TestCanvas_Draw(t *testing.T) {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)

	tests := []struct {
		name  string
		text  string
		state plan.State
		want  string
	}{
		{name: "plain", text: "ab", state: plan.State{X: 1, Opacity: 1}, want: " ab  "},
		{name: "rounded position", text: "a", state: plan.State{X: 2.6, Opacity: 1}, want: "   a "},
		{name: "faded out", text: "a", state: plan.State{X: 0, Opacity: 0.01}, want: "     "},
		{name: "wide cluster", text: "界", state: plan.State{X: 0, Opacity: 1}, want: "界   "},
		{name: "clipped right", text: "abc", state: plan.State{X: 3, Opacity: 1}, want: "   ab"},
		{name: "off canvas", text: "a", state: plan.State{Y: 4, Opacity: 1}, want: "     "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCanvas(5, 1, token.Color{})
			c.draw(tt.text, token.Style{}, tt.state, token.Color{})
			require.Equal(t, []string{tt.want}, c.render(r))
		})
	}
}
