package domain

// DayCounts is an ordered day -> count mapping. Iteration follows insertion
// order; both sources insert in ascending day order.
type DayCounts struct {
	days   []string
	counts map[string]int64
}

func NewDayCounts() *DayCounts {
	return &DayCounts{counts: make(map[string]int64)}
}

func (d *DayCounts) Add(day string, n int64) {
	if _, ok := d.counts[day]; !ok {
		d.days = append(d.days, day)
	}
	d.counts[day] += n
}

func (d *DayCounts) Get(day string) int64 {
	return d.counts[day]
}

func (d *DayCounts) Days() []string {
	return d.days
}

func (d *DayCounts) Len() int {
	return len(d.days)
}

// IdentityCounts is an ordered user -> count mapping. First-seen insertion
// order is preserved and used as the tie-break when ranking.
type IdentityCounts struct {
	order   []int64
	entries map[int64]*LeaderboardEntry
}

func NewIdentityCounts() *IdentityCounts {
	return &IdentityCounts{entries: make(map[int64]*LeaderboardEntry)}
}

func (c *IdentityCounts) Add(userID int64, username string, n int64) {
	e, ok := c.entries[userID]
	if !ok {
		e = &LeaderboardEntry{UserID: userID}
		c.entries[userID] = e
		c.order = append(c.order, userID)
	}
	if username != "" {
		e.Username = username
	}
	e.Count += n
}

// Entries returns the accumulated entries in first-seen order.
func (c *IdentityCounts) Entries() []LeaderboardEntry {
	out := make([]LeaderboardEntry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.entries[id])
	}
	return out
}

func (c *IdentityCounts) Len() int {
	return len(c.order)
}

// WordCounts is an ordered word -> count mapping, same discipline as
// IdentityCounts.
type WordCounts struct {
	order  []string
	counts map[string]int64
}

func NewWordCounts() *WordCounts {
	return &WordCounts{counts: make(map[string]int64)}
}

func (c *WordCounts) Add(word string, n int64) {
	if _, ok := c.counts[word]; !ok {
		c.order = append(c.order, word)
	}
	c.counts[word] += n
}

func (c *WordCounts) Entries() []WordEntry {
	out := make([]WordEntry, 0, len(c.order))
	for _, w := range c.order {
		out = append(out, WordEntry{Word: w, Count: c.counts[w]})
	}
	return out
}

func (c *WordCounts) Len() int {
	return len(c.order)
}
