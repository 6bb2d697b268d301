// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// Category groups posts by medium.
type Category string

// Known categories.
const (
	CategoryLiteral Category = "literal"
	CategoryVisual  Category = "visual"
	CategoryVocal   Category = "vocal"
)

// Categories lists every category in ranking output order.
var Categories = []Category{CategoryLiteral, CategoryVisual, CategoryVocal}

// ParseCategory validates s against the known categories.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, err := ParseCategory(string(c))
	return err == nil
}

// Post is a creative work submitted by a user. Posts are owned by the
// content service; the ranking core only reads them.
type Post struct {
	ID        string
	OwnerID   string
	Title     string
	Category  Category
	Likes     []string // liker ids, unique
	CreatedAt time.Time
}

// LikeCount returns the number of distinct likers.
func (p Post) LikeCount() int {
	return len(p.Likes)
}

// UniqueLikes returns likes with duplicates removed, first occurrence kept.
func UniqueLikes(likes []string) []string {
	if len(likes) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(likes))
	out := make([]string, 0, len(likes))
	for _, id := range likes {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
