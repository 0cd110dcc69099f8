package fuzzy

import "strings"

// UnknownHitDie marks a player tier the ally knows nothing about.
const UnknownHitDie = 0

// UnknownTier marks an opponent difficulty tier the ally knows nothing about.
const UnknownTier = ""

// Knowledge selects the membership tables used to fuzzify an Observation Frame.
// PlayerHitDie drives the player-health table; EnemyTier drives the
// ally-health and damage-dealt tables. Values outside the known tables are
// treated as unknown.
type Knowledge struct {
	PlayerHitDie int
	EnemyTier    string
}

// KnowledgeLevel is the coarse "how smart is the ally" selector.
type KnowledgeLevel int

const (
	KnowledgeLow KnowledgeLevel = iota
	KnowledgePlayerOnly
	KnowledgeEnemyOnly
	KnowledgeHigh
)

var knowledgeNames = [...]string{"low", "player_only", "enemy_only", "high"}

// String returns the config name of the level.
func (k KnowledgeLevel) String() string {
	if k < KnowledgeLow || k > KnowledgeHigh {
		return "unknown"
	}
	return knowledgeNames[k]
}

// ParseKnowledgeLevel maps a config name or digit ("0".."3") to a level.
// Anything else clamps to KnowledgeLow; ok reports whether s was recognised.
func ParseKnowledgeLevel(s string) (level KnowledgeLevel, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range knowledgeNames {
		if s == n || (len(s) == 1 && s[0] == byte('0'+i)) {
			return KnowledgeLevel(i), true
		}
	}
	return KnowledgeLow, false
}

// Resolve builds the Knowledge the level grants, given the real player hit
// die and opponent tier.
func (k KnowledgeLevel) Resolve(playerHitDie int, enemyTier string) Knowledge {
	switch k {
	case KnowledgePlayerOnly:
		return Knowledge{PlayerHitDie: playerHitDie}
	case KnowledgeEnemyOnly:
		return Knowledge{EnemyTier: enemyTier}
	case KnowledgeHigh:
		return Knowledge{PlayerHitDie: playerHitDie, EnemyTier: enemyTier}
	default:
		return Knowledge{}
	}
}

// Tables holds the membership sets for each signal keyed by knowledge tier.
// The unknown entry of every map must be present.
type Tables struct {
	PlayerHealth map[int]Set
	AllyHealth   map[string]Set
	DamageDealt  map[string]Set
}

// player returns the player-health set for hitDie, clamping to unknown.
func (t Tables) player(hitDie int) Set {
	if s, ok := t.PlayerHealth[hitDie]; ok {
		return s
	}
	return t.PlayerHealth[UnknownHitDie]
}

func (t Tables) ally(tier string) Set {
	if s, ok := t.AllyHealth[tier]; ok {
		return s
	}
	return t.AllyHealth[UnknownTier]
}

func (t Tables) damage(tier string) Set {
	if s, ok := t.DamageDealt[tier]; ok {
		return s
	}
	return t.DamageDealt[UnknownTier]
}

// DefaultTables returns the tuned tables for class hit dice d8/d10/d12 and
// opponent tiers 1/8, 1/4 and 1/2.
//
// Player max HP runs 8..28 (barbarian 12..28, fighter/paladin 10..24,
// rogue/warlock 8..20). Opponent damage per turn and HP grow with tier.
func DefaultTables() Tables {
	return Tables{
		PlayerHealth: map[int]Set{
			UnknownHitDie: {
				Low:    Trap(0, 0, 6, 10),
				Medium: Trap(6, 12, 16, 20),
				High:   Trap(16, 20, 28, 28),
			},
			8: { // expected max HP ~13
				Low:    Trap(0, 0, 6, 10),
				Medium: Triangle(8, 10, 14),
				High:   Trap(12, 20, 20, 20),
			},
			10: { // expected max HP ~16
				Low:    Trap(0, 0, 6, 8),
				Medium: Trap(7, 8, 12, 16),
				High:   Trap(14, 20, 24, 24),
			},
			12: { // expected max HP ~19
				Low:    Trap(0, 0, 6, 10),
				Medium: Trap(7, 10, 15, 19),
				High:   Trap(17, 20, 28, 28),
			},
		},
		AllyHealth: map[string]Set{
			UnknownTier: { // opponent expected damage 2.5..13
				Low:    Trap(0, 0, 8, 10),
				Medium: Trap(8, 14, 19, 22),
				High:   Trap(20, 24, 32, 32),
			},
			"1/8": {
				Low:    Trap(0, 0, 6, 9),
				Medium: Trap(8, 11, 14, 18),
				High:   Trap(16, 20, 32, 32),
			},
			"1/4": {
				Low:    Trap(0, 0, 7, 9),
				Medium: Trap(7, 9, 12, 16),
				High:   Trap(14, 18, 32, 32),
			},
			"1/2": {
				Low:    Trap(0, 0, 8, 11),
				Medium: Trap(10, 13, 19, 24),
				High:   Trap(22, 27, 32, 32),
			},
		},
		DamageDealt: map[string]Set{
			UnknownTier: { // opponent HP 5..32
				Low:    Trap(0, 0, 6, 10),
				Medium: Trap(6, 12, 16, 20),
				High:   Trap(16, 20, 28, 28),
			},
			"1/8": { // opponent HP 5..11
				Low:    Trap(0, 0, 3, 5),
				Medium: Triangle(4, 5, 6),
				High:   Trap(5, 7, 11, 11),
			},
			"1/4": { // opponent HP 7..22
				Low:    Trap(0, 0, 7, 9),
				Medium: Trap(7, 9, 12, 16),
				High:   Trap(14, 18, 22, 22),
			},
			"1/2": { // opponent HP 15..32
				Low:    Trap(0, 0, 6, 11),
				Medium: Trap(9, 12, 20, 24),
				High:   Trap(22, 25, 32, 32),
			},
		},
	}
}
