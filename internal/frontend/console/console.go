// Package console is the terminal frontend: it reads the player's commands,
// prints narration and renders the tables shown around each turn.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/command"
	"github.com/cory-johannsen/skirmish/internal/game/fuzzy"
	"github.com/cory-johannsen/skirmish/internal/game/scene"
)

// Prompt is shown before each command is read.
const Prompt = "What would you like to do on your turn? (-h for help): "

// Option configures a Console.
type Option func(*Console)

// WithColor enables ANSI colors.
func WithColor(on bool) Option { return func(c *Console) { c.color = on } }

// WithPause waits for enter before the first turn and between turns.
func WithPause(on bool) Option { return func(c *Console) { c.pause = on } }

// WithLogger sets the logger; the default discards.
func WithLogger(l *zap.Logger) Option { return func(c *Console) { c.logger = l } }

type line struct {
	text string
	err  error
}

// Console implements scene.Commander and scene.Narrator over a reader and a
// writer. Input is read on a background goroutine so a blocked read still
// honors context cancellation.
type Console struct {
	in       io.Reader
	out      io.Writer
	registry *command.Registry
	color    bool
	pause    bool
	logger   *zap.Logger

	once      sync.Once
	lines     chan line
	closeOnce sync.Once
	done      chan struct{}
}

// New creates a Console.
//
// Precondition: in, out and registry must be non-nil.
func New(in io.Reader, out io.Writer, registry *command.Registry, opts ...Option) *Console {
	if in == nil || out == nil || registry == nil {
		panic("console: New precondition violated: in, out and registry must be non-nil")
	}
	c := &Console{in: in, out: out, registry: registry, logger: zap.NewNop(), done: make(chan struct{})}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Narrate prints one narration line.
func (c *Console) Narrate(text string) {
	c.println(text)
}

// NextCommand prompts until the player enters a turn action. help prints the
// command list and unknown tokens print a hint; both re-prompt. exit and end
// of input return command.ErrExit.
func (c *Console) NextCommand(ctx context.Context, v scene.View) (string, error) {
	for {
		c.print("\n" + c.paint(Cyan, Prompt))
		text, err := c.readLine(ctx)
		if err != nil {
			return "", err
		}

		cmd, err := c.registry.Lookup(text)
		if err != nil {
			c.logger.Debug("unrecognized command", zap.String("input", text), zap.Int("turn", v.Turn))
			c.println(c.paint(Yellow, `Unrecognized command. Enter "-h" to see help.`))
			continue
		}
		if args := command.Parse(text).Args; len(args) > 0 {
			c.println(c.paint(Dim, fmt.Sprintf("(ignoring %q)", strings.Join(args, " "))))
		}

		switch {
		case cmd.Handler == command.HandlerHelp:
			c.print(c.registry.HelpText())
		case cmd.Handler == command.HandlerExit:
			return "", command.ErrExit
		case cmd.IsAction():
			return cmd.Handler, nil
		}
	}
}

// AskKnowledge asks how much the ally knows. Unrecognized answers clamp to
// fuzzy.KnowledgeLow.
func (c *Console) AskKnowledge(ctx context.Context) (fuzzy.KnowledgeLevel, error) {
	c.println("How knowledgeable should the sidekick be?")
	c.println("\t0 for LOW - the sidekick doesn't know the player's class or the monster's tier")
	c.println("\t1 for PLAYER ONLY - the sidekick knows the player's class, but not the monster's tier")
	c.println("\t2 for ENEMY ONLY - the sidekick knows the monster's tier, but not the player's class")
	c.println("\t3 for HIGH - the sidekick knows both")
	c.print("Sidekick knowledge level: ")
	text, err := c.readLine(ctx)
	if err != nil {
		return fuzzy.KnowledgeLow, err
	}
	level, ok := fuzzy.ParseKnowledgeLevel(text)
	if !ok {
		c.println(c.paint(Yellow, "Unrecognized level, the sidekick knows nothing."))
	}
	return level, nil
}

// Intro prints the initiative table and, when pausing, waits for enter.
func (c *Console) Intro(ctx context.Context, s *scene.Scene) error {
	c.print(RenderInitiative(s.View(s.Player()).Actors, c.color))
	return c.wait(ctx, "Press enter to begin combat!")
}

// TurnHook prints the state of every actor after a turn and, when pausing,
// waits for enter. It is meant for scene.WithTurnHook.
func (c *Console) TurnHook(ctx context.Context, s *scene.Scene) error {
	if s.Over() {
		return nil
	}
	c.print(RenderState(s.StateLines(), c.color))
	return c.wait(ctx, "Press enter to begin the next turn")
}

// Summary prints the closing table.
func (c *Console) Summary(res scene.Result) {
	c.print(RenderSummary(res, c.color))
}

func (c *Console) wait(ctx context.Context, msg string) error {
	if !c.pause {
		return nil
	}
	c.print("\n" + c.paint(Dim, msg))
	_, err := c.readLine(ctx)
	return err
}

// readLine returns the next input line, or command.ErrExit at end of input.
func (c *Console) readLine(ctx context.Context) (string, error) {
	c.once.Do(func() {
		c.lines = make(chan line)
		go c.scan()
	})
	select {
	case <-c.done:
		return "", command.ErrExit
	default:
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.done:
		return "", command.ErrExit
	case l, ok := <-c.lines:
		if !ok {
			return "", command.ErrExit
		}
		if l.err != nil {
			return "", fmt.Errorf("console: reading input: %w", l.err)
		}
		return l.text, nil
	}
}

// Close releases the background reader. A read already blocked on the
// underlying reader finishes before the goroutine exits; later reads return
// command.ErrExit.
func (c *Console) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Console) scan() {
	defer close(c.lines)
	sc := bufio.NewScanner(c.in)
	for sc.Scan() {
		if !c.send(line{text: sc.Text()}) {
			return
		}
	}
	if err := sc.Err(); err != nil {
		c.send(line{err: err})
	}
}

// send hands l to readLine, giving up once the Console is closed.
func (c *Console) send(l line) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.lines <- l:
		return true
	case <-c.done:
		return false
	}
}

func (c *Console) paint(color, text string) string { return paint(c.color, color, text) }

func (c *Console) print(s string) {
	if _, err := io.WriteString(c.out, s); err != nil {
		c.logger.Warn("console write failed", zap.Error(err))
	}
}

func (c *Console) println(s string) { c.print(s + "\n") }
