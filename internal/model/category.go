package model

import "fmt"

// Category identifies an object class in the track table.
type Category string

const (
	CategoryPlayers  Category = "players"
	CategoryReferees Category = "referees"
	CategoryBall     Category = "ball"
)

// BallTrackID is the id under which the engine stores the single ball track.
const BallTrackID = 1

// DefaultCategories lists the categories produced by the tracking engine.
func DefaultCategories() []Category {
	return []Category{CategoryPlayers, CategoryReferees, CategoryBall}
}

// ParseCategory accepts the engine's category names, folding goalkeepers into players.
func ParseCategory(name string) (Category, error) {
	switch name {
	case "players", "player", "goalkeeper", "goalkeepers":
		return CategoryPlayers, nil
	case "referees", "referee":
		return CategoryReferees, nil
	case "ball":
		return CategoryBall, nil
	}
	return "", fmt.Errorf("unknown category %q", name)
}
