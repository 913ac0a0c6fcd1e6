package reports

import (
	"math"
	"sort"
	"time"
)

// Counts are the four outreach tallies.
type Counts struct {
	Heard      int `json:"heard"`
	Interested int `json:"interested"`
	Accepted   int `json:"accepted"`
	Repented   int `json:"repented"`
}

func (c *Counts) add(r Report) {
	c.Heard += r.HeardCount
	c.Interested += r.InterestedCount
	c.Accepted += r.AcceptedCount
	c.Repented += r.RepentedCount
}

// Month is one row of the timeline.
type Month struct {
	Month time.Time `json:"month"` // first day of the month, UTC
	Counts
}

func (m Month) Label() string {
	return m.Month.Format("Jan 2006")
}

// Conversion is the share of people who heard and went on to show interest or
// commit, for one month.
type Conversion struct {
	Month          time.Time `json:"month"`
	InterestRate   float64   `json:"interest_rate"`
	CommitmentRate float64   `json:"commitment_rate"`
}

func Totals(reports []Report) Counts {
	var c Counts
	for _, r := range reports {
		c.add(r)
	}
	return c
}

// Timeline groups reports by calendar month, oldest first. Reports whose date
// can't be parsed are skipped.
func Timeline(reports []Report) []Month {
	byMonth := make(map[time.Time]*Month)
	for _, r := range reports {
		d, ok := parseDate(r.Date)
		if !ok {
			continue
		}
		key := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		row, ok := byMonth[key]
		if !ok {
			row = &Month{Month: key}
			byMonth[key] = row
		}
		row.add(r)
	}

	out := make([]Month, 0, len(byMonth))
	for _, row := range byMonth {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Month.Before(out[j].Month)
	})
	return out
}

// ConversionTrend gives interested/heard and accepted/heard per month,
// rounded to two decimals. A month where nobody heard has rates of 0.
func ConversionTrend(timeline []Month) []Conversion {
	out := make([]Conversion, 0, len(timeline))
	for _, m := range timeline {
		c := Conversion{Month: m.Month}
		if m.Heard > 0 {
			c.InterestRate = round2(float64(m.Interested) / float64(m.Heard))
			c.CommitmentRate = round2(float64(m.Accepted) / float64(m.Heard))
		}
		out = append(out, c)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.DateOnly, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
