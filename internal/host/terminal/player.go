package terminal

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/magicmove/internal/host"
	"github.com/zjrosen/magicmove/internal/log"
	"github.com/zjrosen/magicmove/internal/pubsub"
)

// Player is the terminal host.Renderer. Mount starts a Bubble Tea program
// showing the first state; each Update is delivered to it as an event.
type Player struct {
	stage       *host.Stage
	opts        Options
	programOpts []tea.ProgramOption
	broker      *pubsub.Broker[host.Payload]

	mu       sync.Mutex
	program  *tea.Program
	cancel   context.CancelFunc
	done     chan struct{}
	runErr   error
	disposed bool
}

var _ host.Renderer = (*Player)(nil)

// NewPlayer returns an unmounted player. programOpts are passed to
// tea.NewProgram, defaulting to the alternate screen with mouse support.
func NewPlayer(stage *host.Stage, opts Options, programOpts ...tea.ProgramOption) *Player {
	if len(programOpts) == 0 {
		programOpts = []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
	}
	return &Player{
		stage:       stage,
		opts:        opts,
		programOpts: programOpts,
		broker:      pubsub.NewBroker[host.Payload](),
		done:        make(chan struct{}),
	}
}

// Mount starts the program on p. A second Mount behaves like Update.
func (pl *Player) Mount(ctx context.Context, p host.Payload) error {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	if pl.disposed {
		return host.ErrDisposed
	}
	if pl.program != nil {
		pl.broker.Publish(pubsub.UpdateEvent, p)
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	opts := pl.opts
	opts.Listener = pubsub.NewListener[host.Payload](ctx, pl.broker)
	m := NewModel(ctx, pl.stage, []host.Payload{p}, opts)
	if err := m.Err(); err != nil {
		cancel()
		return err
	}

	pl.cancel = cancel
	pl.program = tea.NewProgram(m, append(pl.programOpts, tea.WithContext(ctx))...)
	go pl.run(pl.program)

	log.Info(log.CatRender, "terminal player mounted", "path", p.Path)
	return nil
}

func (pl *Player) run(program *tea.Program) {
	_, err := program.Run()
	pl.mu.Lock()
	pl.runErr = err
	pl.mu.Unlock()
	close(pl.done)
}

// Update animates to p.
func (pl *Player) Update(_ context.Context, p host.Payload) error {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	if pl.disposed {
		return host.ErrDisposed
	}
	if pl.program == nil {
		return host.ErrNotMounted
	}
	pl.broker.Publish(pubsub.UpdateEvent, p)
	return nil
}

// ReportError shows err in the status line without changing the state.
func (pl *Player) ReportError(err error) {
	pl.broker.PublishError(err)
}

// Done is closed once the program exits, for example when the user quits.
func (pl *Player) Done() <-chan struct{} {
	return pl.done
}

// Dispose stops the program and waits for it to exit. It is safe to call
// more than once.
func (pl *Player) Dispose() error {
	pl.mu.Lock()
	if pl.disposed {
		pl.mu.Unlock()
		return nil
	}
	pl.disposed = true
	program := pl.program
	pl.mu.Unlock()

	if program != nil {
		program.Quit()
		<-pl.done
		pl.cancel()
	}
	pl.broker.Close()

	pl.mu.Lock()
	defer pl.mu.Unlock()
	if errors.Is(pl.runErr, tea.ErrProgramKilled) {
		return nil
	}
	return pl.runErr
}

// Run plays steps as a slideshow and blocks until the user quits.
func Run(ctx context.Context, stage *host.Stage, steps []host.Payload, opts Options, programOpts ...tea.ProgramOption) error {
	m := NewModel(ctx, stage, steps, opts)
	if err := m.Err(); err != nil {
		return err
	}
	if len(programOpts) == 0 {
		programOpts = []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
	}
	_, err := tea.NewProgram(m, append(programOpts, tea.WithContext(ctx))...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
