package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	for input, want := range map[string]Category{
		"mouse":    CategoryMouse,
		"fare":     CategoryMouse,
		"keyboard": CategoryKeyboard,
		"klavye":   CategoryKeyboard,
		"headset":  CategoryHeadset,
		"kulaklık": CategoryHeadset,
	} {
		got, ok := ParseCategory(input)
		require.True(t, ok, input)
		assert.Equal(t, want, got, input)
	}

	_, ok := ParseCategory("monitor")
	assert.False(t, ok)
}

func TestExtendPriceOnlyWidens(t *testing.T) {
	p := NewProduct("G502", "https://x.com/p/1")
	_, ok := p.PriceMin()
	assert.False(t, ok)

	p.ExtendPrice(1500)
	p.ExtendPrice(1200)
	p.ExtendPrice(1800)
	p.ExtendPrice(1400) // inside the range, must change nothing

	require.NotNil(t, p.Price.Min)
	require.NotNil(t, p.Price.Max)
	assert.Equal(t, 1200, *p.Price.Min)
	assert.Equal(t, 1800, *p.Price.Max)
	assert.Equal(t, "TRY", p.Price.Currency)
}

func TestSpecsAccessors(t *testing.T) {
	s := Specs{"dpi": 16000, "weight_g": 58.0, "connection": "kablosuz", "anc": true}

	dpi, ok := s.Int("dpi")
	require.True(t, ok)
	assert.Equal(t, 16000, dpi)

	// JSON-decoded numbers arrive as float64
	w, ok := s.Int("weight_g")
	require.True(t, ok)
	assert.Equal(t, 58, w)

	conn, ok := s.Str("connection")
	require.True(t, ok)
	assert.Equal(t, "kablosuz", conn)

	anc, ok := s.Bool("anc")
	require.True(t, ok)
	assert.True(t, anc)

	_, ok = s.Int("missing")
	assert.False(t, ok)
}

func TestTaskLifecycle(t *testing.T) {
	task := NewSearchTask("kablosuz mouse", CategoryMouse, true)
	assert.Equal(t, TaskStatusQueued, task.Status)
	assert.True(t, task.IsActive())

	task.Start()
	assert.Equal(t, TaskStatusProcessing, task.Status)

	task.Complete(&SearchResponse{Query: "kablosuz mouse"})
	assert.Equal(t, TaskStatusCompleted, task.Status)
	assert.True(t, task.IsCompleted())
	assert.Equal(t, 100, task.Progress)

	failed := NewSearchTask("mouse", CategoryMouse, false)
	failed.Fail("backend down")
	assert.Equal(t, TaskStatusFailed, failed.Status)
	assert.Equal(t, "backend down", failed.Error)
}

func TestTaskIDsAreUnique(t *testing.T) {
	a := NewSearchTask("a", CategoryMouse, true)
	b := NewSearchTask("b", CategoryMouse, true)
	assert.NotEqual(t, a.ID, b.ID)
}
