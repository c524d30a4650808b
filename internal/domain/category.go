package domain

import "slices"

// CategoryUncategorized is the default label new and orphaned records fall
// back to. It is always present and can never be deleted.
const CategoryUncategorized = "uncategorized"

// DefaultCategories is the fixed built-in category list. Custom categories
// live alongside these in a CategorySet.
var DefaultCategories = []string{
	CategoryUncategorized,
	"ambience",
	"foley",
	"impacts",
	"music",
	"ui",
	"voice",
}

// CategorySet is the union of the fixed defaults and a mutable custom list.
type CategorySet struct {
	custom []string
}

// NewCategorySet builds a set from persisted custom categories.
func NewCategorySet(custom []string) *CategorySet {
	return &CategorySet{custom: slices.Clone(custom)}
}

// Custom returns a copy of the custom category list.
func (c *CategorySet) Custom() []string {
	return slices.Clone(c.custom)
}

// All returns defaults followed by custom categories.
func (c *CategorySet) All() []string {
	out := make([]string, 0, len(DefaultCategories)+len(c.custom))
	out = append(out, DefaultCategories...)
	out = append(out, c.custom...)
	return out
}

// Contains reports whether name is a default or custom category.
func (c *CategorySet) Contains(name string) bool {
	return IsDefaultCategory(name) || slices.Contains(c.custom, name)
}

// Add appends a custom category. Returns false if the name already exists
// in the combined default+custom set.
func (c *CategorySet) Add(name string) bool {
	if c.Contains(name) {
		return false
	}
	c.custom = append(c.custom, name)
	return true
}

// Remove deletes a custom category. Returns false for defaults and for
// names not present in the custom list.
func (c *CategorySet) Remove(name string) bool {
	if IsDefaultCategory(name) {
		return false
	}
	i := slices.Index(c.custom, name)
	if i < 0 {
		return false
	}
	c.custom = slices.Delete(c.custom, i, i+1)
	return true
}

// IsDefaultCategory reports whether name is one of the built-ins.
func IsDefaultCategory(name string) bool {
	return slices.Contains(DefaultCategories, name)
}
