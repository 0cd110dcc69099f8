package scripting

import (
	"context"
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/command"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/scene"
)

// Hook is the Lua global an autopilot script must define. It receives the
// turn view as a table and returns a command token.
const Hook = "choose_command"

// Autopilot is a scene.Commander backed by a Lua script. It owns one
// sandboxed VM and is not safe for concurrent use.
type Autopilot struct {
	L         *lua.LState
	cancel    context.CancelFunc
	registry  *command.Registry
	instLimit int
	logger    *zap.Logger
}

// LoadFile reads path and builds an Autopilot from it.
//
// Postcondition: Returns an error when the file cannot be read or the script
// fails to load.
func LoadFile(path string, instLimit int, roller *dice.Roller, logger *zap.Logger) (*Autopilot, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading %q: %w", path, err)
	}
	ap, err := LoadString(string(src), instLimit, roller, logger)
	if err != nil {
		return nil, fmt.Errorf("scripting: loading %q: %w", path, err)
	}
	return ap, nil
}

// LoadString builds an Autopilot from Lua source.
//
// Precondition: logger must be non-nil; instLimit >= 0 (0 uses DefaultInstructionLimit).
// Postcondition: Returns an error on a Lua load failure or when the script
// does not define Hook as a function.
func LoadString(src string, instLimit int, roller *dice.Roller, logger *zap.Logger) (*Autopilot, error) {
	if logger == nil {
		panic("scripting: LoadString precondition violated: logger must be non-nil")
	}
	L, cancel := NewSandboxedState(instLimit)
	RegisterModules(L, roller, logger)

	if err := L.DoString(src); err != nil {
		cancel()
		L.Close()
		return nil, err
	}
	if _, ok := L.GetGlobal(Hook).(*lua.LFunction); !ok {
		cancel()
		L.Close()
		return nil, fmt.Errorf("script does not define function %s", Hook)
	}
	return &Autopilot{
		L:         L,
		cancel:    cancel,
		registry:  command.DefaultRegistry(),
		instLimit: instLimit,
		logger:    logger,
	}, nil
}

// NextCommand calls the script with the view and resolves its answer through
// the command registry, so aliases work. "exit" stops the encounter with
// command.ErrExit. Anything else the script gets wrong falls back to wait
// with a warning.
//
// Postcondition: Returns a turn-action handler, or ctx's error, or command.ErrExit.
func (a *Autopilot) NextCommand(ctx context.Context, v scene.View) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	a.cancel()
	a.cancel = withBudget(a.L, ctx, a.instLimit)

	err := a.L.CallByParam(lua.P{
		Fn:      a.L.GetGlobal(Hook),
		NRet:    1,
		Protect: true,
	}, ViewTable(a.L, v))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		a.logger.Warn("scripting: Lua runtime error, waiting",
			zap.Int("turn", v.Turn),
			zap.Error(err),
		)
		return command.HandlerWait, nil
	}
	ret := a.L.Get(-1)
	a.L.Pop(1)

	token := lua.LVAsString(ret)
	cmd, lookupErr := a.registry.Lookup(token)
	switch {
	case lookupErr != nil:
		a.logger.Warn("scripting: invalid command from script, waiting",
			zap.Int("turn", v.Turn),
			zap.String("token", token),
			zap.Error(lookupErr),
		)
		return command.HandlerWait, nil
	case cmd.Handler == command.HandlerExit:
		return "", command.ErrExit
	case !cmd.IsAction():
		a.logger.Warn("scripting: script chose a non-action command, waiting",
			zap.Int("turn", v.Turn),
			zap.String("token", token),
		)
		return command.HandlerWait, nil
	}
	a.logger.Debug("autopilot command",
		zap.Int("turn", v.Turn),
		zap.String("token", token),
		zap.String("handler", cmd.Handler),
	)
	return cmd.Handler, nil
}

// Close releases the VM.
func (a *Autopilot) Close() {
	a.cancel()
	a.L.Close()
}

// ViewTable converts v into the table passed to the hook:
//
//	{ encounter_id, turn, self = actor, opponent = actor, actors = {actor...}, nearby = {name...} }
//
// where actor is { name, kind, initiative, position, status, hp, max_hp, ac,
// to_hit, damage, damage_dealt, bloodied }.
func ViewTable(L *lua.LState, v scene.View) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "encounter_id", lua.LString(v.EncounterID))
	L.SetField(t, "turn", lua.LNumber(v.Turn))
	L.SetField(t, "self", actorTable(L, v.Self))
	L.SetField(t, "opponent", actorTable(L, v.Opponent))

	actors := L.NewTable()
	for _, av := range v.Actors {
		actors.Append(actorTable(L, av))
	}
	L.SetField(t, "actors", actors)

	nearby := L.NewTable()
	for _, n := range v.Nearby {
		nearby.Append(lua.LString(n))
	}
	L.SetField(t, "nearby", nearby)
	return t
}

func actorTable(L *lua.LState, av scene.ActorView) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "name", lua.LString(av.Name))
	L.SetField(t, "kind", lua.LString(av.Kind))
	L.SetField(t, "initiative", lua.LNumber(av.Initiative))
	L.SetField(t, "position", lua.LString(av.Position))
	L.SetField(t, "status", lua.LString(av.Status))
	L.SetField(t, "hp", lua.LNumber(av.HP))
	L.SetField(t, "max_hp", lua.LNumber(av.MaxHP))
	L.SetField(t, "ac", lua.LNumber(av.AC))
	L.SetField(t, "to_hit", lua.LNumber(av.ToHit))
	L.SetField(t, "damage", lua.LString(av.Damage))
	L.SetField(t, "damage_dealt", lua.LNumber(av.DamageDealt))
	L.SetField(t, "bloodied", lua.LBool(av.Bloodied))
	return t
}
