// Package messageset resolves campaign track names and schedule positions.
//
// ResolveName builds the canonical short name of a track from a subscriber's
// stage, role and delivery preferences. Resolver turns a short name and an
// elapsed week count into the track id, schedule id and the next sequence
// number, reading the catalog through a per-job Cache.
package messageset

import (
	"context"
	"strings"
)

// MessageSet is a campaign track as the catalog describes it
type MessageSet struct {
	ID              int    `json:"id"`
	ShortName       string `json:"short_name"`
	DefaultSchedule int    `json:"default_schedule"`
}

// Schedule is a weekly cadence
type Schedule struct {
	ID        int    `json:"id"`
	DayOfWeek string `json:"day_of_week"`
}

// MessagesPerWeek counts the weekday markers in DayOfWeek
func (s Schedule) MessagesPerWeek() int {
	n := 0
	for _, d := range strings.Split(s.DayOfWeek, ",") {
		if strings.TrimSpace(d) != "" {
			n++
		}
	}
	return n
}

// Catalog is the read side of the external track catalog
type Catalog interface {
	// FindMessageSets returns every message set whose short name equals name
	FindMessageSets(ctx context.Context, shortName string) ([]MessageSet, error)
	// GetMessageSet returns a message set by id
	GetMessageSet(ctx context.Context, id int) (MessageSet, error)
	// GetSchedule returns a schedule by id
	GetSchedule(ctx context.Context, id int) (Schedule, error)
}
