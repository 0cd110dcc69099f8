package combat

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// links is one row of the relation table. Every field holds an entity ID or NoOne.
type links struct {
	harrying     int
	harriedBy    int
	hindering    int
	hinderedBy   int
	lastStruckBy int
}

func unlinked() links {
	return links{harrying: NoOne, harriedBy: NoOne, hindering: NoOne, hinderedBy: NoOne, lastStruckBy: NoOne}
}

// Arena owns the entities of one encounter and the relation table between them.
// It is not safe for concurrent use; one scheduler step mutates it at a time.
type Arena struct {
	entities []*Entity
	links    []links
	roller   *dice.Roller
	sink     EventSink
}

// NewArena creates an empty Arena that rolls with roller and reports to sink.
// A nil sink discards events.
//
// Precondition: roller must be non-nil.
func NewArena(roller *dice.Roller, sink EventSink) *Arena {
	if roller == nil {
		panic("combat: NewArena precondition violated: roller must be non-nil")
	}
	if sink == nil {
		sink = func(Event) {}
	}
	return &Arena{roller: roller, sink: sink}
}

// Add registers e, assigns its ID and returns it.
//
// Precondition: e must be non-nil and not registered with another Arena.
// Postcondition: Returns an error if e fails validation; otherwise e.ID == returned ID.
func (a *Arena) Add(e *Entity) (int, error) {
	if e == nil {
		panic("combat: Arena.Add precondition violated: entity must be non-nil")
	}
	if err := e.validate(); err != nil {
		return NoOne, fmt.Errorf("combat: invalid entity: %w", err)
	}
	e.ID = len(a.entities)
	a.entities = append(a.entities, e)
	a.links = append(a.links, unlinked())
	return e.ID, nil
}

// Len returns the number of registered entities.
func (a *Arena) Len() int { return len(a.entities) }

// Entity returns the entity with the given ID.
//
// Precondition: 0 <= id < Len().
func (a *Arena) Entity(id int) *Entity {
	a.mustHave(id)
	return a.entities[id]
}

// Roller returns the arena's dice roller.
func (a *Arena) Roller() *dice.Roller { return a.roller }

// Harrying returns the ID id is harrying, or NoOne.
func (a *Arena) Harrying(id int) int { a.mustHave(id); return a.links[id].harrying }

// HarriedBy returns the ID harrying id, or NoOne.
func (a *Arena) HarriedBy(id int) int { a.mustHave(id); return a.links[id].harriedBy }

// Hindering returns the ID id is hindering, or NoOne.
func (a *Arena) Hindering(id int) int { a.mustHave(id); return a.links[id].hindering }

// HinderedBy returns the ID hindering id, or NoOne.
func (a *Arena) HinderedBy(id int) int { a.mustHave(id); return a.links[id].hinderedBy }

// LastStruckBy returns the ID of the last entity to land a strike on id, or NoOne.
func (a *Arena) LastStruckBy(id int) int { a.mustHave(id); return a.links[id].lastStruckBy }

func (a *Arena) mustHave(id int) {
	if id < 0 || id >= len(a.entities) {
		panic(fmt.Sprintf("combat: precondition violated: unknown entity id %d", id))
	}
}

func (a *Arena) emit(ev Event) {
	a.sink(ev)
}
