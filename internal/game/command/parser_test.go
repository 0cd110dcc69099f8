package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestParse_Empty(t *testing.T) {
	result := Parse("")
	assert.Equal(t, "", result.Command)
	assert.Nil(t, result.Args)

	assert.Equal(t, "", Parse("   \t").Command)
}

func TestParse_SingleWord(t *testing.T) {
	result := Parse("attack")
	assert.Equal(t, "attack", result.Command)
	assert.Nil(t, result.Args)
}

func TestParse_Lowercase(t *testing.T) {
	assert.Equal(t, "harry", Parse("HaRRy").Command)
}

func TestParse_TrailingWordsBecomeArgs(t *testing.T) {
	result := Parse("  attack   the   goblin ")
	assert.Equal(t, "attack", result.Command)
	assert.Equal(t, []string{"the", "goblin"}, result.Args)
}

func TestParse_DashAlias(t *testing.T) {
	assert.Equal(t, "-h", Parse("-H").Command)
}

func TestPropertyParseAlwaysLowercasesCommand(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[A-Za-z]{1,20}`).Draw(t, "word")
		result := Parse(word)
		for _, c := range result.Command {
			if c >= 'A' && c <= 'Z' {
				t.Fatalf("command %q contains uppercase char in Parse result %q", word, result.Command)
			}
		}
	})
}

func TestPropertyParseNonEmptyInputHasCommand(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[a-z]{1,10}`).Draw(t, "word")
		pad := rapid.StringMatching(`[ \t]{0,3}`).Draw(t, "pad")
		result := Parse(pad + word + pad)
		if result.Command != word {
			t.Fatalf("input %q produced command %q", pad+word+pad, result.Command)
		}
	})
}
