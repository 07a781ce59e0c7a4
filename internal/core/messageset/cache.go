package messageset

import "context"

// Cache memoises catalog reads for the lifetime of one job.
// It is not safe for concurrent use and must not outlive the job that made it
type Cache struct {
	inner     Catalog
	sets      map[string][]MessageSet
	byID      map[int]MessageSet
	schedules map[int]Schedule
	misses    int
}

// NewCache wraps c for a single job
func NewCache(c Catalog) *Cache {
	return &Cache{
		inner:     c,
		sets:      map[string][]MessageSet{},
		byID:      map[int]MessageSet{},
		schedules: map[int]Schedule{},
	}
}

// FindMessageSets implements Catalog
func (c *Cache) FindMessageSets(ctx context.Context, shortName string) ([]MessageSet, error) {
	if v, ok := c.sets[shortName]; ok {
		return v, nil
	}
	c.misses++
	v, err := c.inner.FindMessageSets(ctx, shortName)
	if err != nil {
		return nil, err
	}
	c.sets[shortName] = v
	return v, nil
}

// GetMessageSet implements Catalog
func (c *Cache) GetMessageSet(ctx context.Context, id int) (MessageSet, error) {
	if v, ok := c.byID[id]; ok {
		return v, nil
	}
	c.misses++
	v, err := c.inner.GetMessageSet(ctx, id)
	if err != nil {
		return MessageSet{}, err
	}
	c.byID[id] = v
	return v, nil
}

// GetSchedule implements Catalog
func (c *Cache) GetSchedule(ctx context.Context, id int) (Schedule, error) {
	if v, ok := c.schedules[id]; ok {
		return v, nil
	}
	c.misses++
	v, err := c.inner.GetSchedule(ctx, id)
	if err != nil {
		return Schedule{}, err
	}
	c.schedules[id] = v
	return v, nil
}

// Misses reports how many reads went through to the catalog
func (c *Cache) Misses() int { return c.misses }
