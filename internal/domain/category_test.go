package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorySet_AddRemove(t *testing.T) {
	set := NewCategorySet(nil)

	assert.True(t, set.Add("cinematic"))
	assert.False(t, set.Add("cinematic"), "duplicate custom name")
	assert.False(t, set.Add(CategoryUncategorized), "default names are taken")
	assert.True(t, set.Contains("cinematic"))

	assert.True(t, set.Remove("cinematic"))
	assert.False(t, set.Remove("cinematic"), "already removed")
	assert.False(t, set.Contains("cinematic"))

	for _, def := range DefaultCategories {
		assert.False(t, set.Remove(def), "default %q must not be removable", def)
	}
}

func TestCategorySet_All(t *testing.T) {
	set := NewCategorySet([]string{"cinematic", "retro"})

	all := set.All()
	assert.Equal(t, len(DefaultCategories)+2, len(all))
	assert.Equal(t, DefaultCategories, all[:len(DefaultCategories)],
		"defaults come first in a stable order")
	assert.Equal(t, []string{"cinematic", "retro"}, all[len(DefaultCategories):])
}

func TestCategorySet_CustomReturnsCopy(t *testing.T) {
	set := NewCategorySet([]string{"cinematic"})

	got := set.Custom()
	got[0] = "mutated"

	assert.Equal(t, []string{"cinematic"}, set.Custom())
}

func TestIsDefaultCategory(t *testing.T) {
	assert.True(t, IsDefaultCategory(CategoryUncategorized))
	assert.True(t, IsDefaultCategory("impacts"))
	assert.False(t, IsDefaultCategory("cinematic"))
	assert.False(t, IsDefaultCategory(""))
}
