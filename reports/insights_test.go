package reports_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/evangelism-tracker/reports"
	"github.com/stretchr/testify/require"
)

func report(date string, heard, interested, accepted, repented int) reports.Report {
	return reports.Report{Date: date, HeardCount: heard, InterestedCount: interested, AcceptedCount: accepted, RepentedCount: repented}
}

func TestTotals(t *testing.T) {
	got := reports.Totals([]reports.Report{
		report("2026-01-04", 40, 16, 8, 4),
		report("2026-02-11", 55, 20, 12, 6),
	})
	require.Equal(t, reports.Counts{Heard: 95, Interested: 36, Accepted: 20, Repented: 10}, got)
	require.Equal(t, reports.Counts{}, reports.Totals(nil))
}

func TestTimeline_GroupsByMonthInOrder(t *testing.T) {
	timeline := reports.Timeline([]reports.Report{
		report("2026-03-20", 10, 2, 1, 0),
		report("2025-12-01", 5, 1, 0, 0),
		report("2026-03-02", 30, 6, 3, 1),
		report("2026-03-02T09:30:00Z", 1, 1, 1, 1),
		report("not a date", 100, 100, 100, 100),
	})

	require.Len(t, timeline, 2)
	require.Equal(t, time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), timeline[0].Month)
	require.Equal(t, "Dec 2025", timeline[0].Label())
	require.Equal(t, "Mar 2026", timeline[1].Label())
	require.Equal(t, reports.Counts{Heard: 41, Interested: 9, Accepted: 5, Repented: 2}, timeline[1].Counts)
}

func TestConversionTrend(t *testing.T) {
	trend := reports.ConversionTrend(reports.Timeline([]reports.Report{
		report("2026-01-10", 3, 1, 2, 0),
		report("2026-02-10", 0, 0, 0, 0),
	}))

	require.Len(t, trend, 2)
	require.Equal(t, 0.33, trend[0].InterestRate)
	require.Equal(t, 0.67, trend[0].CommitmentRate)
	require.Zero(t, trend[1].InterestRate)
	require.Zero(t, trend[1].CommitmentRate)
}
