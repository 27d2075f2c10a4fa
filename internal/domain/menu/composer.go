package menu

import (
	"errors"
	"sort"
)

// Composer errors. These are recoverable, user-visible rejections: the
// handler renders them as messages and the composer state is untouched.
var (
	ErrSlotFull       = errors.New("slot is already at capacity for this category")
	ErrDuplicateDish  = errors.New("dish is already assigned to this slot")
	ErrInvalidWeekday = errors.New("weekday must be between Monday and Friday")
	ErrInvalidBucket  = errors.New("unknown menu bucket")
	ErrExcludedDish   = errors.New("beverages cannot be assigned to menus")
)

// DishRef is the minimal dish information the composer carries: enough to
// render the grid and to flatten into assignments.
type DishRef struct {
	ID       string
	Name     string
	Category string
}

// Composer accumulates dish assignments into a weekday × bucket grid under
// fixed capacity limits. It is transient authoring state: never persisted
// directly, flattened to SlotAssignment rows only at submit time.
// Not safe for concurrent use; callers serialize access per authoring session.
type Composer struct {
	slots map[int]map[string][]DishRef
}

// NewComposer creates an empty composer.
func NewComposer() *Composer {
	return &Composer{slots: make(map[int]map[string][]DishRef)}
}

// AddDish appends a dish to the (weekday, bucket) slot.
// PRE: weekday in [FirstWeekday, LastWeekday], bucket is a valid bucket
// POST: On success the dish is appended at the end of the slot's ordered
// list. On any rejection the composer state is unchanged.
func (c *Composer) AddDish(d DishRef, weekday int, bucket string) error {
	if weekday < FirstWeekday || weekday > LastWeekday {
		return ErrInvalidWeekday
	}
	capacity, ok := BucketCapacity[bucket]
	if !ok {
		return ErrInvalidBucket
	}
	slot := c.slots[weekday][bucket]
	if len(slot) >= capacity {
		return ErrSlotFull
	}
	for _, existing := range slot {
		if existing.ID == d.ID {
			return ErrDuplicateDish
		}
	}
	if c.slots[weekday] == nil {
		c.slots[weekday] = make(map[string][]DishRef)
	}
	c.slots[weekday][bucket] = append(slot, d)
	return nil
}

// RemoveDish removes the matching dish from the (weekday, bucket) slot.
// Idempotent: removing an absent dish is a no-op.
// POST: The dish id no longer appears in that slot
func (c *Composer) RemoveDish(dishID string, weekday int, bucket string) {
	slot := c.slots[weekday][bucket]
	for i, d := range slot {
		if d.ID == dishID {
			c.slots[weekday][bucket] = append(slot[:i:i], slot[i+1:]...)
			return
		}
	}
}

// Snapshot returns a deep copy of the full weekday→bucket→dish structure
// for rendering and submission.
// INVARIANT: Mutating the snapshot does not affect the composer
func (c *Composer) Snapshot() map[int]map[string][]DishRef {
	out := make(map[int]map[string][]DishRef, len(c.slots))
	for weekday, buckets := range c.slots {
		out[weekday] = make(map[string][]DishRef, len(buckets))
		for bucket, dishes := range buckets {
			out[weekday][bucket] = append([]DishRef(nil), dishes...)
		}
	}
	return out
}

// Count returns the total number of dishes assigned across the whole grid.
func (c *Composer) Count() int {
	total := 0
	for _, buckets := range c.slots {
		for _, dishes := range buckets {
			total += len(dishes)
		}
	}
	return total
}

// Flatten converts the current state into SlotAssignment rows for the
// given menu. Position is the 1-based index within the (weekday, bucket)
// list at flatten time. Rows are emitted in (weekday, bucket, position)
// order so persistence is deterministic.
// POST: The returned rows' (weekday, bucket, dish id) triples are exactly
// the snapshot's contents
func (c *Composer) Flatten(menuID string) []SlotAssignment {
	var rows []SlotAssignment
	weekdays := make([]int, 0, len(c.slots))
	for weekday := range c.slots {
		weekdays = append(weekdays, weekday)
	}
	sort.Ints(weekdays)
	for _, weekday := range weekdays {
		for _, bucket := range ValidBuckets {
			for i, d := range c.slots[weekday][bucket] {
				rows = append(rows, SlotAssignment{
					MenuID:   menuID,
					DishID:   d.ID,
					Weekday:  weekday,
					Bucket:   bucket,
					Position: i + 1,
				})
			}
		}
	}
	return rows
}

// FromAssignments rebuilds a composer from stored assignment rows, used
// when re-opening an existing menu for edit. Dishes are re-bucketed from
// their current catalog category via BucketForCategory, so a dish whose
// tag is no longer recognized lands in principales rather than erroring.
// Rows referencing a dish missing from the catalog map are skipped.
// PRE: dishes maps dish id → DishRef for every dish still in the catalog
// POST: Returns a composer whose slots mirror the stored rows
func FromAssignments(rows []SlotAssignment, dishes map[string]DishRef) *Composer {
	sorted := append([]SlotAssignment(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Weekday != sorted[j].Weekday {
			return sorted[i].Weekday < sorted[j].Weekday
		}
		if sorted[i].Bucket != sorted[j].Bucket {
			return sorted[i].Bucket < sorted[j].Bucket
		}
		return sorted[i].Position < sorted[j].Position
	})

	c := NewComposer()
	for _, row := range sorted {
		d, ok := dishes[row.DishID]
		if !ok {
			continue
		}
		bucket, ok := BucketForCategory(d.Category)
		if !ok {
			continue
		}
		// Capacity and duplicate rules still hold on reload; rows that no
		// longer fit (e.g. after a capacity change) are dropped silently.
		_ = c.AddDish(d, row.Weekday, bucket)
	}
	return c
}
