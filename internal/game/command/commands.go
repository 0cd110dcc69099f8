// Package command provides the human participant's command set, its parser
// and the registry that resolves tokens and aliases.
package command

import "errors"

// ErrUnknown is returned, wrapped, for a token that names no command.
var ErrUnknown = errors.New("unrecognized command")

// ErrExit is returned by command sources when the human asks to stop.
var ErrExit = errors.New("exit requested")

// Categories for organizing commands.
const (
	CategoryCombat   = "combat"
	CategoryMovement = "movement"
	CategorySystem   = "system"
)

// Handler identifiers. The first six are the actions that reach the scheduler.
const (
	HandlerAttack    = "attack"
	HandlerDisengage = "disengage"
	HandlerDodge     = "dodge"
	HandlerHarry     = "harry"
	HandlerHinder    = "hinder"
	HandlerWait      = "wait"
	HandlerHelp      = "help"
	HandlerExit      = "exit"
)

// Command defines a human-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text.
	Help string
	// Category groups the command.
	Category string
	// Handler identifies what the command does.
	Handler string
}

// IsAction reports whether the command is a turn action rather than a
// console control such as help or exit.
func (c *Command) IsAction() bool {
	return IsActionHandler(c.Handler)
}

// IsActionHandler reports whether handler names a turn action.
func IsActionHandler(handler string) bool {
	switch handler {
	case HandlerAttack, HandlerDisengage, HandlerDodge, HandlerHarry, HandlerHinder, HandlerWait:
		return true
	default:
		return false
	}
}

// BuiltinCommands returns the closed command set in help order.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "attack", Aliases: []string{"a", "att"}, Help: "Attack the enemy monster. Moves you NEAR first if needed.", Category: CategoryCombat, Handler: HandlerAttack},
		{Name: "disengage", Aliases: []string{"retreat"}, Help: "Move FAR. Nobody can attack you until they close the distance.", Category: CategoryMovement, Handler: HandlerDisengage},
		{Name: "dodge", Aliases: []string{"evade"}, Help: "Take evasive action: attacks against you roll with disadvantage until your next turn.", Category: CategoryCombat, Handler: HandlerDodge},
		{Name: "harry", Aliases: []string{"hr"}, Help: "Disrupt the enemy's attacks, throwing off their next strike.", Category: CategoryCombat, Handler: HandlerHarry},
		{Name: "hinder", Aliases: []string{"hd"}, Help: "Break the enemy's guard: the next attack against it rolls with advantage.", Category: CategoryCombat, Handler: HandlerHinder},
		{Name: "wait", Aliases: []string{"w", "pass"}, Help: "Do nothing this turn.", Category: CategoryCombat, Handler: HandlerWait},
		{Name: "help", Aliases: []string{"-h", "h", "?"}, Help: "Show available commands.", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "exit", Aliases: []string{"quit", "q"}, Help: "Stop the simulation.", Category: CategorySystem, Handler: HandlerExit},
	}
}
