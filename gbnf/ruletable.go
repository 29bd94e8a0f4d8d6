package gbnf

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/emirpasic/gods/v2/maps/linkedhashmap"
)

var invalidRuleChars = regexp.MustCompile(`[^A-Za-z0-9-]+`)

// ruleTable is the insertion-ordered name -> RHS mapping described in
// spec.md §4.5. It backs the final emitted "name ::= rhs" lines.
type ruleTable struct {
	m *linkedhashmap.Map[string, string]
}

func newRuleTable() *ruleTable {
	return &ruleTable{m: linkedhashmap.New[string, string]()}
}

func (t *ruleTable) get(name string) (string, bool) { return t.m.Get(name) }

func (t *ruleTable) keys() []string { return t.m.Keys() }

// add installs rhs under a sanitized form of name, returning the name it
// was actually installed under. Re-adding the same (name, rhs) pair is a
// no-op; a different rhs colliding on the same sanitized name is
// disambiguated with an integer suffix.
func (t *ruleTable) add(name, rhs string) string {
	key := invalidRuleChars.ReplaceAllString(name, "-")
	if existing, ok := t.m.Get(key); !ok || existing == rhs {
		t.m.Put(key, rhs)
		return key
	}
	for i := 0; ; i++ {
		candidate := key + strconv.Itoa(i)
		if existing, ok := t.m.Get(candidate); !ok || existing == rhs {
			t.m.Put(candidate, rhs)
			return candidate
		}
	}
}

// format renders every installed rule as "name ::= rhs\n", in insertion
// order.
func (t *ruleTable) format() string {
	var b strings.Builder
	for _, name := range t.m.Keys() {
		rhs, _ := t.m.Get(name)
		b.WriteString(name)
		b.WriteString(" ::= ")
		b.WriteString(rhs)
		b.WriteByte('\n')
	}
	return b.String()
}
