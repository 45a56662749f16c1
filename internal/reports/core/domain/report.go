package domain

// ChartPoint is one labeled bucket in a chart series. Buckets with no
// activity are zero-valued, never omitted, so chart axes stay stable.
type ChartPoint struct {
	Label string
	Value int64
}

type LeaderboardEntry struct {
	UserID   int64
	Username string
	Count    int64
}

type WordEntry struct {
	Word  string
	Count int64
}
