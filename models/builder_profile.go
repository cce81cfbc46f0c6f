package models

import (
	"time"

	"gorm.io/gorm"
)

// BuilderProfile is the public marketplace card for a builder.
type BuilderProfile struct {
	gorm.Model
	BuilderID   uint   `json:"builder_id" gorm:"uniqueIndex"`
	DisplayName string `json:"display_name"`
	Headline    string `json:"headline"`
	Bio         string `json:"bio"`
	City        string `json:"city"`
	Country     string `json:"country"`
	AvatarURL   string `json:"avatar_url"`
	Timezone    string `json:"timezone" gorm:"default:UTC"` // IANA name, e.g. "Europe/Berlin"
	IsPublished bool   `json:"is_published" gorm:"default:false"`
}

// Location returns the builder's timezone, falling back to UTC when the
// stored name is empty or unknown.
func (p *BuilderProfile) Location() *time.Location {
	if p == nil || p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
