package model

import "strings"

// Category buckets a task by expected duration.
type Category string

const (
	CategoryShort5   Category = "short_5"   // up to 5 minutes
	CategoryShort30  Category = "short_30"  // up to 30 minutes
	CategoryShort120 Category = "short_120" // up to 2 hours
	CategoryLong     Category = "long"      // longer or complex
)

// DefaultCategory is assumed when the interpreter omits the bucket or
// returns one outside the enum.
const DefaultCategory = CategoryShort30

var categoryLabels = map[Category]string{
	CategoryShort5:   "⚡️ До 5 минут",
	CategoryShort30:  "⏳ До 30 минут",
	CategoryShort120: "🕒 До 2 часов",
	CategoryLong:     "🐘 Сложная/долгая",
}

// ParseCategory validates a raw category string, falling back to the default.
func ParseCategory(raw string) Category {
	c := Category(strings.TrimSpace(raw))
	if c.Valid() {
		return c
	}
	return DefaultCategory
}

func (c Category) Valid() bool {
	switch c {
	case CategoryShort5, CategoryShort30, CategoryShort120, CategoryLong:
		return true
	}
	return false
}

// Label returns the human-readable form shown to users.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// AllCategories lists the buckets in ascending duration order.
func AllCategories() []Category {
	return []Category{CategoryShort5, CategoryShort30, CategoryShort120, CategoryLong}
}
