package report

import "sort"

// Counter tallies string keys while remembering first-encounter order, so
// that equal counts render in a stable order.
type Counter struct {
	counts map[string]int
	order  []string
}

// NewCounter creates an empty counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

// Add increments the count for key.
func (c *Counter) Add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// Entry is a key with its tally.
type Entry struct {
	Key   string
	Count int
}

// MostCommon returns entries sorted by count descending. Ties keep
// first-encounter order. n <= 0 returns all entries.
func (c *Counter) MostCommon(n int) []Entry {
	entries := make([]Entry, 0, len(c.order))
	for _, key := range c.order {
		entries = append(entries, Entry{Key: key, Count: c.counts[key]})
	}

	// Stable sort keeps the first-encounter order for equal counts.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

// Len returns the number of distinct keys.
func (c *Counter) Len() int {
	return len(c.order)
}
