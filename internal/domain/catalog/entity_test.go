package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntry_HasName(t *testing.T) {
	assert.True(t, Entry{Name: "华为 Mate 60"}.HasName())
	assert.False(t, Entry{Name: "  \t"}.HasName())
	assert.False(t, Entry{}.HasName())
}

func TestBrand_Forms(t *testing.T) {
	assert.Equal(t, []string{"华为", "HUAWEI"}, Brand{Name: "华为", Spell: "HUAWEI"}.Forms())
	assert.Equal(t, []string{"vivo"}, Brand{Name: "vivo", Spell: "VIVO"}.Forms())
	assert.Equal(t, []string{"OPPO"}, Brand{Name: "OPPO"}.Forms())
	assert.Empty(t, Brand{}.Forms())
}

func TestEnrichedEntry_VariantByID(t *testing.T) {
	e := &EnrichedEntry{Entry: Entry{Variants: []Variant{{ID: "a", Color: "黑"}, {ID: "b", Color: "白"}}}}
	v, ok := e.VariantByID("b")
	assert.True(t, ok)
	assert.Equal(t, "白", v.Color)
	_, ok = e.VariantByID("z")
	assert.False(t, ok)
}

//Personal.AI order the ending
