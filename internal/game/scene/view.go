package scene

import (
	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// ActorView is a read-only snapshot of one actor.
type ActorView struct {
	Name        string
	Kind        string
	Initiative  int
	Position    string
	Status      string
	HP          int
	MaxHP       int
	AC          int
	ToHit       int
	Damage      string
	DamageDealt int
	Bloodied    bool
}

// View is what a Commander sees when choosing the player's command.
type View struct {
	EncounterID string
	Turn        int
	Self        ActorView
	Opponent    ActorView
	// Actors lists everyone in initiative order.
	Actors []ActorView
	Nearby []string
}

// View snapshots the encounter from self's perspective.
func (s *Scene) View(self *Actor) View {
	v := View{
		EncounterID: s.id.String(),
		Turn:        s.turns + 1,
		Self:        s.actorView(self),
		Opponent:    s.actorView(s.opponent),
		Nearby:      s.Nearby(self),
	}
	for _, a := range s.order {
		v.Actors = append(v.Actors, s.actorView(a))
	}
	return v
}

func (s *Scene) actorView(a *Actor) ActorView {
	e := s.Entity(a)
	return ActorView{
		Name:        e.String(),
		Kind:        a.Kind.String(),
		Initiative:  a.Initiative,
		Position:    a.Position.String(),
		Status:      a.Status.String(),
		HP:          e.CurrentHP,
		MaxHP:       e.MaxHP,
		AC:          e.AC,
		ToHit:       e.ToHit,
		Damage:      e.Damage.Raw,
		DamageDealt: a.DamageDealt,
		Bloodied:    e.Bloodied(),
	}
}

// Outcome is how an encounter ended.
type Outcome int

const (
	// OutcomeUnfinished means Run stopped early: exit, cancellation or an error.
	OutcomeUnfinished Outcome = iota
	OutcomeVictory
	OutcomeDefeat
	OutcomeStalemate
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	case OutcomeStalemate:
		return "stalemate"
	default:
		return "unfinished"
	}
}

// Summary is one row of the closing table.
type Summary struct {
	Name        string
	Kind        combat.Kind
	Status      Status
	DamageDealt int
	Downed      bool
	Killed      bool
}

// Result is the state of an encounter when Run returns.
type Result struct {
	EncounterID string
	Outcome     Outcome
	Turns       int
	// Summaries follows initiative order.
	Summaries []Summary
}

// Result summarizes the encounter so far.
func (s *Scene) Result() Result {
	r := Result{EncounterID: s.id.String(), Turns: s.turns}
	switch {
	case s.player.Status == StatusDead:
		r.Outcome = OutcomeDefeat
	case s.opponent.Status == StatusDead:
		r.Outcome = OutcomeVictory
	case s.stalemate:
		r.Outcome = OutcomeStalemate
	}
	for _, a := range s.order {
		r.Summaries = append(r.Summaries, Summary{
			Name:        s.name(a),
			Kind:        a.Kind,
			Status:      a.Status,
			DamageDealt: a.DamageDealt,
			Downed:      a.Downed,
			Killed:      a.Killed,
		})
	}
	return r
}
