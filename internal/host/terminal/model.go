// Package terminal plays transitions in the terminal with Bubble Tea.
package terminal

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/termenv"
	"go.uber.org/multierr"

	"github.com/zjrosen/magicmove/internal/emit"
	"github.com/zjrosen/magicmove/internal/host"
	"github.com/zjrosen/magicmove/internal/interp"
	"github.com/zjrosen/magicmove/internal/keys"
	"github.com/zjrosen/magicmove/internal/log"
	"github.com/zjrosen/magicmove/internal/pubsub"
	"github.com/zjrosen/magicmove/internal/token"
	"github.com/zjrosen/magicmove/internal/ui/styles"
)

const (
	// DefaultFPS is the frame rate used when Options.FPS is unset.
	DefaultFPS = 30

	defaultWidth  = 80
	defaultHeight = 24

	// footerLines is reserved below the code for the status and button rows.
	footerLines = 2

	minSpeed = 0.25
	maxSpeed = 4
)

// Zone IDs for the clickable footer buttons.
const (
	zonePrev   = "player-prev"
	zoneReplay = "player-replay"
	zoneNext   = "player-next"
)

// Options configures the player model.
type Options struct {
	FPS    int
	KeyMap keys.PlayerKeyMap
	// Foreground paints tokens without a colour of their own. Background
	// fills the canvas; unset leaves the terminal's background.
	Foreground token.Color
	Background token.Color
	// ColorProfile forces a colour profile, see ParseColorProfile. Empty
	// detects it from the environment.
	ColorProfile string
	// Width and Height are used until the first WindowSizeMsg.
	Width  int
	Height int
	// Listener delivers Update events from a Player.
	Listener *pubsub.Listener[host.Payload]
}

// ParseColorProfile maps a profile name to termenv. Accepted names are
// "truecolor", "256", "16" and "none"; "" and "auto" detect from the
// environment and report ok=false.
func ParseColorProfile(name string) (profile termenv.Profile, ok bool, err error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return termenv.Ascii, false, nil
	case "truecolor", "24bit":
		return termenv.TrueColor, true, nil
	case "256", "ansi256":
		return termenv.ANSI256, true, nil
	case "16", "ansi":
		return termenv.ANSI, true, nil
	case "none", "ascii":
		return termenv.Ascii, true, nil
	default:
		return termenv.Ascii, false, fmt.Errorf("unknown color profile %q", name)
	}
}

type tickMsg struct {
	gen int
}

// Model is the player state.
type Model struct {
	ctx        context.Context
	stage      *host.Stage
	keys       keys.PlayerKeyMap
	help       help.Model
	zones      *zone.Manager
	zonePrefix string
	renderer   *lipgloss.Renderer
	listener   *pubsub.Listener[host.Payload]

	steps []host.Payload
	index int

	tr       emit.Transition
	ease     interp.Func
	elapsed  time.Duration
	warnings int
	err      error

	fps    int
	speed  float64
	paused bool
	// gen invalidates ticks scheduled for a superseded animation.
	gen int

	width  int
	height int
	fg, bg token.Color
}

// NewModel returns a player over steps and advances the stage to the first
// one. Check Err before running the program.
func NewModel(ctx context.Context, stage *host.Stage, steps []host.Payload, opts Options) Model {
	m := Model{
		ctx:      ctx,
		stage:    stage,
		keys:     opts.KeyMap,
		help:     help.New(),
		zones:    zone.New(),
		renderer: lipgloss.NewRenderer(os.Stdout),
		listener: opts.Listener,
		steps:    steps,
		fps:      opts.FPS,
		speed:    1,
		width:    opts.Width,
		height:   opts.Height,
		fg:       opts.Foreground,
		bg:       opts.Background,
	}
	if !m.keys.Next.Enabled() {
		m.keys = keys.Player
	}
	if m.fps <= 0 {
		m.fps = DefaultFPS
	}
	if m.width <= 0 {
		m.width = defaultWidth
	}
	if m.height <= 0 {
		m.height = defaultHeight
	}
	profile, ok, err := ParseColorProfile(opts.ColorProfile)
	if err != nil {
		log.Warn(log.CatRender, "ignoring color profile", "error", err)
	}
	if ok {
		m.renderer.SetColorProfile(profile)
	}
	m.help.Width = m.width
	m.zonePrefix = m.zones.NewPrefix()
	m.resizeGrid()

	if len(steps) > 0 {
		m, _ = m.goTo(0)
	}
	return m
}

// Err returns the error of the last step change, if any.
func (m Model) Err() error {
	return m.err
}

// Index returns the current step.
func (m Model) Index() int {
	return m.index
}

// Transition returns the transition being played.
func (m Model) Transition() emit.Transition {
	return m.tr
}

// Animating reports whether frames are still being produced.
func (m Model) Animating() bool {
	return !m.paused && m.elapsed < m.tr.TotalDuration
}

// Init starts the first animation and the update subscription.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.Animating() {
		cmds = append(cmds, m.tick())
	}
	if m.listener != nil {
		cmds = append(cmds, m.listener.Listen())
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resizeGrid()
		return m, nil

	case tickMsg:
		if msg.gen != m.gen || m.paused {
			return m, nil
		}
		m.elapsed += time.Duration(float64(m.interval()) * m.speed)
		if m.elapsed >= m.tr.TotalDuration {
			m.elapsed = m.tr.TotalDuration
			return m, nil
		}
		return m, m.tick()

	case pubsub.Event[host.Payload]:
		return m.handleEvent(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m Model) handleEvent(ev pubsub.Event[host.Payload]) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch ev.Type {
	case pubsub.MountEvent, pubsub.UpdateEvent:
		m.steps = append(m.steps, ev.Payload)
		m, cmd = m.goTo(len(m.steps) - 1)
	case pubsub.ErrorEvent:
		m.err = ev.Err
	}
	if m.listener != nil {
		cmd = tea.Batch(cmd, m.listener.Listen())
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		return m.step(m.index + 1)
	case key.Matches(msg, m.keys.Prev):
		return m.step(m.index - 1)
	case key.Matches(msg, m.keys.First):
		return m.step(0)
	case key.Matches(msg, m.keys.Last):
		return m.step(len(m.steps) - 1)
	case key.Matches(msg, m.keys.Replay):
		return m.replay()
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		if m.paused {
			m.gen++
			return m, nil
		}
		return m, m.startTicking()
	case key.Matches(msg, m.keys.Faster):
		m.speed = min(m.speed*2, maxSpeed)
	case key.Matches(msg, m.keys.Slower):
		m.speed = max(m.speed/2, minSpeed)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	switch {
	case m.clicked(zonePrev, msg):
		return m.step(m.index - 1)
	case m.clicked(zoneNext, msg):
		return m.step(m.index + 1)
	case m.clicked(zoneReplay, msg):
		return m.replay()
	}
	return m, nil
}

func (m Model) clicked(id string, msg tea.MouseMsg) bool {
	z := m.zones.Get(m.zonePrefix + id)
	return z != nil && z.InBounds(msg)
}

// step moves to step i when it exists and differs from the current one.
func (m Model) step(i int) (tea.Model, tea.Cmd) {
	if i < 0 || i >= len(m.steps) || i == m.index {
		return m, nil
	}
	return m.goTo(i)
}

// replay rebuilds the state before the current step and animates into it
// again.
func (m Model) replay() (tea.Model, tea.Cmd) {
	if len(m.steps) == 0 {
		return m, nil
	}
	m.stage.Reset()
	if m.index > 0 {
		if _, err := m.stage.Advance(m.ctx, m.steps[m.index-1]); err != nil {
			m.err = err
			return m, nil
		}
	}
	return m.goTo(m.index)
}

// goTo advances the stage to step i and restarts the animation. The stage
// animates from whatever it showed last, so stepping backwards plays the
// reverse transition.
func (m Model) goTo(i int) (Model, tea.Cmd) {
	p := m.steps[i]
	tr, err := m.stage.Advance(m.ctx, p)
	if err != nil {
		log.ErrorErr(log.CatRender, "advancing player", err, "path", p.Path)
		m.err = err
		return m, nil
	}

	m.index = i
	m.tr = tr
	m.err = nil
	m.ease = interp.Easing(tr.Easing)
	m.elapsed = 0
	m.warnings = len(multierr.Errors(tr.Warnings))
	if tr.Warnings != nil {
		log.Warn(log.CatRender, "transition has warnings", "path", p.Path, "count", m.warnings)
	}
	return m, m.startTicking()
}

func (m *Model) startTicking() tea.Cmd {
	m.gen++
	if m.paused || m.elapsed >= m.tr.TotalDuration {
		return nil
	}
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.interval(), func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m Model) interval() time.Duration {
	return time.Second / time.Duration(m.fps)
}

func (m *Model) resizeGrid() {
	grid := m.stage.Grid()
	grid.MaxLines = max(m.canvasHeight(), 1)
	m.stage.SetGrid(grid)
}

func (m Model) canvasHeight() int {
	return m.height - footerLines
}

// View renders the current frame and the footer.
func (m Model) View() string {
	c := newCanvas(m.width, m.canvasHeight(), m.bg)
	paint(c, m.tr.Instructions, m.elapsed, m.ease, m.fg)
	frame := strings.Join(c.render(m.renderer), "\n")

	view := lipgloss.JoinVertical(lipgloss.Left, frame, m.statusLine(), m.controls())
	return m.zones.Scan(view)
}

func (m Model) statusLine() string {
	var parts []string
	if len(m.steps) > 0 {
		if path := m.steps[m.index].Path; path != "" {
			parts = append(parts, path)
		}
	}
	parts = append(parts, styles.StepIndicatorCurrentStyle.Render(styles.FormatStep(m.index, len(m.steps))))

	c := m.tr.Counts
	parts = append(parts, styles.FormatCounts(c.Moved, c.Added, c.Removed))
	if m.speed != 1 {
		parts = append(parts, fmt.Sprintf("%gx", m.speed))
	}
	if m.paused {
		parts = append(parts, "paused")
	}
	if w := styles.FormatWarnings(m.warnings); w != "" {
		parts = append(parts, styles.WarningStyle.Render(w))
	}
	if m.err != nil {
		parts = append(parts, styles.ErrorStyle.Render(m.err.Error()))
	}
	return styles.TruncateString(styles.StatusBarStyle.Render(strings.Join(parts, "  ")), m.width)
}

func (m Model) controls() string {
	button := func(id, label string, style lipgloss.Style, enabled bool) string {
		if !enabled {
			style = styles.DisabledButtonStyle
		}
		return m.zones.Mark(m.zonePrefix+id, style.Render(label))
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		button(zonePrev, "◀ prev", styles.SecondaryButtonStyle, m.index > 0), " ",
		button(zoneReplay, "↻ replay", styles.SecondaryButtonStyle, len(m.steps) > 0), " ",
		button(zoneNext, "next ▶", styles.PrimaryButtonStyle, m.index < len(m.steps)-1),
	)
	h := m.help
	h.Width = max(m.width-lipgloss.Width(buttons)-2, 0)
	return lipgloss.JoinHorizontal(lipgloss.Top, buttons, "  ", h.View(m.keys))
}
