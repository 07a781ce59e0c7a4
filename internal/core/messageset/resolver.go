package messageset

import (
	"context"
	"strings"

	perr "hellomama/internal/platform/errors"
	"hellomama/internal/platform/logger"
)

// DefaultPrebirthMinWeeks is the gestational week prebirth tracks start at
const DefaultPrebirthMinWeeks = 10

// Position is where a subscriber lands on a track
type Position struct {
	MessageSetID       int
	ScheduleID         int
	NextSequenceNumber int
}

// Resolver maps a canonical name and week count to a Position
type Resolver struct {
	Catalog          Catalog
	PrebirthMinWeeks int
}

// NewResolver builds a resolver reading through c
func NewResolver(c Catalog, prebirthMinWeeks int) Resolver {
	if prebirthMinWeeks <= 0 {
		prebirthMinWeeks = DefaultPrebirthMinWeeks
	}
	return Resolver{Catalog: c, PrebirthMinWeeks: prebirthMinWeeks}
}

// Lookup returns the single message set named shortName
func (r Resolver) Lookup(ctx context.Context, shortName string) (MessageSet, error) {
	sets, err := r.Catalog.FindMessageSets(ctx, shortName)
	if err != nil {
		return MessageSet{}, perr.WrapKeep(err, perr.ErrorCodeUnavailable, "catalog lookup "+shortName)
	}
	switch len(sets) {
	case 0:
		return MessageSet{}, perr.WithOp(perr.NotFoundf("message set %s not found", shortName), "catalog")
	case 1:
		return sets[0], nil
	}
	logger.C(ctx).Error().
		Str("short_name", shortName).
		Int("matches", len(sets)).
		Msg("catalog returned more than one message set")
	return MessageSet{}, perr.WithOp(perr.Integrityf("message set %s matched %d tracks", shortName, len(sets)), "catalog")
}

// Resolve returns the track, schedule and next sequence number for shortName at weeks
func (r Resolver) Resolve(ctx context.Context, shortName string, weeks int) (Position, error) {
	ms, err := r.Lookup(ctx, shortName)
	if err != nil {
		return Position{}, err
	}
	sched, err := r.Catalog.GetSchedule(ctx, ms.DefaultSchedule)
	if err != nil {
		return Position{}, perr.WrapKeep(err, perr.ErrorCodeUnavailable, "catalog schedule")
	}
	return Position{
		MessageSetID:       ms.ID,
		ScheduleID:         sched.ID,
		NextSequenceNumber: r.Sequence(shortName, weeks, sched.MessagesPerWeek()),
	}, nil
}

// Sequence applies the week arithmetic for a track; the first matching rule wins
// and a zero result is clamped to 1
func (r Resolver) Sequence(shortName string, weeks, perWeek int) int {
	offset := r.PrebirthMinWeeks
	if offset <= 0 {
		offset = DefaultPrebirthMinWeeks
	}
	var n int
	switch {
	case strings.Contains(shortName, StageMiscarriage):
		return 1
	case strings.Contains(shortName, StagePrebirth):
		n = perWeek * (weeks - offset)
	case strings.Contains(shortName, BucketPostbirthLate):
		n = perWeek * (weeks - 13)
	default:
		n = perWeek * weeks
	}
	if n == 0 {
		return 1
	}
	return n
}
