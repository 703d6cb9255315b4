package featureflags

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	for _, name := range []string{"a", "c", "e"} {
		assert.True(t, m.Enabled(name, 1), name)
	}
	for _, name := range []string{"b", "d", "f", "missing"} {
		assert.False(t, m.Enabled(name, 1), name)
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,broken=abc%")

	assert.True(t, m.Enabled("always", 1))
	assert.True(t, m.Enabled("always", 0), "100% includes anonymous callers")
	assert.False(t, m.Enabled("never", 1))
	assert.False(t, m.Enabled("broken", 1))
	assert.False(t, m.Enabled("canary", 0), "partial rollout excludes anonymous callers")

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", 42), "rollout is deterministic per user")
	}

	enabled := 0
	for uid := uint(1); uid <= 1000; uid++ {
		if m.Enabled("canary", uid) {
			enabled++
		}
	}
	assert.InDelta(t, 250, enabled, 80)
}

func TestDefaults(t *testing.T) {
	m := NewManager("")
	assert.False(t, m.Enabled(ReadOnly, 0))
	assert.True(t, m.Enabled(Search, 0))

	m = NewManager("READ_ONLY = On, search=off")
	assert.True(t, m.Enabled(ReadOnly, 0))
	assert.False(t, m.Enabled(Search, 0))
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,x=on, y = 20% ,z=off,=on,w=")

	assert.Equal(t, []string{"read_only", "search", "x", "y", "z"}, m.Names())

	snap := m.Snapshot(123)
	assert.Len(t, snap, 5)
	assert.True(t, snap["x"])
	assert.False(t, snap["z"])
}

func TestSetIsConcurrencySafe(t *testing.T) {
	m := NewManager("")
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); m.Set(ReadOnly, "on") }()
		go func() { defer wg.Done(); _ = m.Snapshot(1) }()
	}
	wg.Wait()
	assert.True(t, m.Enabled(ReadOnly, 7))
}
