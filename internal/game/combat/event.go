package combat

// EventKind identifies a narrated combat event.
type EventKind int

const (
	EventHit EventKind = iota
	EventCritical
	EventMiss
	EventMultiHit
	EventMultiCritical
	EventMultiMiss
	EventMassiveDeath
	EventUnconscious
	EventSlain
	EventDied
	EventStruckWhileDown
	EventDeathSaveFailure
	EventDeathSaveSuccess
	EventDeathSaveCriticalFailure
	EventRevived
	EventStabilized
	EventHarry
	EventHinder
	EventDodge
)

var eventNames = map[EventKind]string{
	EventHit:                      "hit",
	EventCritical:                 "critical",
	EventMiss:                     "miss",
	EventMultiHit:                 "multiattack_hit",
	EventMultiCritical:            "multiattack_critical",
	EventMultiMiss:                "multiattack_miss",
	EventMassiveDeath:             "massive_death",
	EventUnconscious:              "unconscious",
	EventSlain:                    "slain",
	EventDied:                     "died",
	EventStruckWhileDown:          "struck_while_down",
	EventDeathSaveFailure:         "death_save_failure",
	EventDeathSaveSuccess:         "death_save_success",
	EventDeathSaveCriticalFailure: "death_save_critical_failure",
	EventRevived:                  "revived",
	EventStabilized:               "stabilized",
	EventHarry:                    "harry",
	EventHinder:                   "hinder",
	EventDodge:                    "dodge",
}

// String returns the snake_case event name used in structured logs.
func (k EventKind) String() string {
	if n, ok := eventNames[k]; ok {
		return n
	}
	return "unknown"
}

// Event records one resolved state change.
type Event struct {
	Kind   EventKind
	Actor  int
	Target int // NoOne when the event has no target
	// Roll is the attack total or death-save face; 0 when not applicable.
	Roll int
	// Amount is the damage involved; 0 when not applicable.
	Amount    int
	Narrative string
}

// EventSink receives every Event in the order it happens.
type EventSink func(Event)
