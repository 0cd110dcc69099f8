package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/content"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// tierFile is the layout of one monsters/*.yaml file.
type tierFile struct {
	Tier     string     `yaml:"tier"`
	Monsters []*Monster `yaml:"monsters"`
}

// Catalog indexes classes and monsters by ID and monsters by tier.
// A Catalog is read-only after Load.
type Catalog struct {
	classes  map[string]*Class
	monsters map[string]*Monster
	tiers    map[string][]string
	// sorted for deterministic random picks
	classIDs  []string
	tierNames []string
}

// Default loads the embedded catalog.
func Default() (*Catalog, error) {
	return Load(content.FS)
}

// LoadDir loads a catalog laid out like the embedded one from dir.
//
// Precondition: dir must be a readable directory with classes/ and monsters/.
func LoadDir(dir string) (*Catalog, error) {
	return Load(os.DirFS(dir))
}

// Load reads classes/*.yaml and monsters/*.yaml from fsys.
//
// Postcondition: Returns a Catalog with at least one class and one monster, or
// an error on the first read, parse, validation or duplicate-ID failure.
func Load(fsys fs.FS) (*Catalog, error) {
	c := &Catalog{
		classes:  make(map[string]*Class),
		monsters: make(map[string]*Monster),
		tiers:    make(map[string][]string),
	}

	classFiles, err := yamlFiles(fsys, "classes")
	if err != nil {
		return nil, err
	}
	for _, p := range classFiles {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		var cl Class
		if err := yaml.Unmarshal(data, &cl); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", p, err)
		}
		if err := cl.Validate(); err != nil {
			return nil, fmt.Errorf("loading %q: %w", p, err)
		}
		id := NormalizeID(cl.ID)
		if _, dup := c.classes[id]; dup {
			return nil, fmt.Errorf("loading %q: duplicate class id %q", p, id)
		}
		c.classes[id] = &cl
		c.classIDs = append(c.classIDs, id)
	}

	monsterFiles, err := yamlFiles(fsys, "monsters")
	if err != nil {
		return nil, err
	}
	for _, p := range monsterFiles {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		var tf tierFile
		if err := yaml.Unmarshal(data, &tf); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", p, err)
		}
		if tf.Tier == "" {
			return nil, fmt.Errorf("loading %q: tier must not be empty", p)
		}
		if _, dup := c.tiers[tf.Tier]; dup {
			return nil, fmt.Errorf("loading %q: tier %q defined twice", p, tf.Tier)
		}
		ids := make([]string, 0, len(tf.Monsters))
		for _, m := range tf.Monsters {
			if err := m.Validate(); err != nil {
				return nil, fmt.Errorf("loading %q: %w", p, err)
			}
			id := NormalizeID(m.ID)
			if _, dup := c.monsters[id]; dup {
				return nil, fmt.Errorf("loading %q: duplicate monster id %q", p, id)
			}
			m.Tier = tf.Tier
			c.monsters[id] = m
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			return nil, fmt.Errorf("loading %q: tier %q has no monsters", p, tf.Tier)
		}
		sort.Strings(ids)
		c.tiers[tf.Tier] = ids
		c.tierNames = append(c.tierNames, tf.Tier)
	}

	if len(c.classes) == 0 || len(c.monsters) == 0 {
		return nil, fmt.Errorf("catalog: need at least one class and one monster, got %d and %d", len(c.classes), len(c.monsters))
	}
	sort.Strings(c.classIDs)
	sort.Strings(c.tierNames)
	return c, nil
}

func yamlFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s dir: %w", dir, err)
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		out = append(out, path.Join(dir, entry.Name()))
	}
	return out, nil
}

// Class returns the class with the given ID.
//
// Postcondition: Returns an error wrapping ErrNotFound when id is unknown.
func (c *Catalog) Class(id string) (*Class, error) {
	cl, ok := c.classes[NormalizeID(id)]
	if !ok {
		return nil, fmt.Errorf("class %q: %w", id, ErrNotFound)
	}
	return cl, nil
}

// Monster returns the monster with the given ID.
//
// Postcondition: Returns an error wrapping ErrNotFound when id is unknown.
func (c *Catalog) Monster(id string) (*Monster, error) {
	m, ok := c.monsters[NormalizeID(id)]
	if !ok {
		return nil, fmt.Errorf("monster %q: %w", id, ErrNotFound)
	}
	return m, nil
}

// Tier returns the difficulty tier of the monster with the given ID.
//
// Postcondition: Returns an error wrapping ErrNotFound when id is unknown.
func (c *Catalog) Tier(monsterID string) (string, error) {
	m, err := c.Monster(monsterID)
	if err != nil {
		return "", err
	}
	return m.Tier, nil
}

// Tiers returns every tier name in sorted order.
func (c *Catalog) Tiers() []string {
	return append([]string(nil), c.tierNames...)
}

// ClassIDs returns every class ID in sorted order.
func (c *Catalog) ClassIDs() []string {
	return append([]string(nil), c.classIDs...)
}

// MonstersInTier returns the monsters of tier sorted by ID.
//
// Postcondition: Returns an error wrapping ErrNotFound when tier is unknown.
func (c *Catalog) MonstersInTier(tier string) ([]*Monster, error) {
	ids, ok := c.tiers[strings.TrimSpace(tier)]
	if !ok {
		return nil, fmt.Errorf("tier %q: %w", tier, ErrNotFound)
	}
	out := make([]*Monster, len(ids))
	for i, id := range ids {
		out[i] = c.monsters[id]
	}
	return out, nil
}

// RandomClass picks a class uniformly at random.
func (c *Catalog) RandomClass(src dice.Source) *Class {
	return c.classes[c.classIDs[src.Intn(len(c.classIDs))]]
}

// RandomMonster picks a monster uniformly from tier. An empty tier first picks
// a tier uniformly, then a monster within it.
//
// Postcondition: Returns an error wrapping ErrNotFound when tier is unknown.
func (c *Catalog) RandomMonster(src dice.Source, tier string) (*Monster, error) {
	if tier == "" {
		tier = c.tierNames[src.Intn(len(c.tierNames))]
	}
	ms, err := c.MonstersInTier(tier)
	if err != nil {
		return nil, err
	}
	return ms[src.Intn(len(ms))], nil
}
