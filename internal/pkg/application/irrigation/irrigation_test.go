package irrigation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/florax/florax-dashboard/pkg/types"
	"github.com/matryer/is"
)

func record(id int64, zone, trigger string, water float64, duration int64, start *time.Time) types.IrrigationLog {
	l := types.IrrigationLog{
		LogID:           id,
		ZoneName:        zone,
		TriggerType:     trigger,
		WaterVolumeUsed: &water,
		DurationMinutes: &duration,
	}
	if start != nil {
		l.StartTime = types.NewTimestamp(*start)
	}
	return l
}

func day(d, hour int) *time.Time {
	t := time.Date(2024, 5, d, hour, 0, 0, 0, time.Local)
	return &t
}

func monthFixture() []types.IrrigationLog {
	return []types.IrrigationLog{
		record(1, "North Bed", "MANUAL", 10, 20, day(1, 8)),
		record(2, "South Lawn", "SCHEDULED", 5, 10, day(1, 18)),
		record(3, "north orchard", "SCHEDULED", 15, 30, day(2, 7)),
	}
}

func TestMonthlyStatisticsForThreeRecords(t *testing.T) {
	is := is.New(t)

	stats, ok := MonthlyStatistics(monthFixture())
	is.True(ok)

	f := stats.Formatted()
	is.Equal(3, f.TotalSessions)
	is.Equal("30.0", f.TotalWaterL)
	is.Equal(2, f.ActiveDays)
	is.Equal("1.5", f.AvgSessionsPerDay)
	is.Equal("10.0", f.AvgWaterPerSession)
	is.Equal("20.0", f.AvgDurationMin)
}

func TestMonthlyStatisticsIsIdempotent(t *testing.T) {
	is := is.New(t)

	logs := monthFixture()
	first, _ := MonthlyStatistics(logs)
	second, _ := MonthlyStatistics(logs)
	is.Equal(first, second)
	is.Equal(monthFixture(), logs)
}

func TestMonthlyStatisticsOnEmptyCollection(t *testing.T) {
	is := is.New(t)

	stats, ok := MonthlyStatistics(nil)
	is.True(!ok)
	is.Equal(Statistics{}, stats)
}

func TestActiveDaysFloorsAtOneWithoutStartTimes(t *testing.T) {
	is := is.New(t)

	logs := []types.IrrigationLog{
		record(1, "A", "MANUAL", 4, 2, nil),
		record(2, "B", "MANUAL", 2, 4, nil),
	}

	stats, ok := MonthlyStatistics(logs)
	is.True(ok)
	is.Equal(1, stats.ActiveDays)
	is.Equal("2.0", stats.Formatted().AvgSessionsPerDay)
	is.Equal("3.0", stats.Formatted().AvgWaterPerSession)
}

func TestMissingVolumesCountAsZero(t *testing.T) {
	is := is.New(t)

	logs := []types.IrrigationLog{
		{LogID: 1, StartTime: types.NewTimestamp(*day(3, 9))},
		record(2, "A", "MANUAL", 8, 6, day(3, 10)),
	}

	stats, _ := MonthlyStatistics(logs)
	is.Equal(8.0, stats.TotalWater)
	is.Equal(4.0, stats.AvgWaterPerSession)
	is.Equal(3.0, stats.AvgDuration)
}

func TestTriggerFilterExcludesOtherTriggersFromDisplayAndTotals(t *testing.T) {
	is := is.New(t)

	logs := monthFixture()
	displayed := Filter(logs, Criteria{Trigger: "SCHEDULED"})

	is.Equal(2, len(displayed))
	for _, l := range displayed {
		is.True(l.TriggerType != "MANUAL")
	}

	totals := Totals(displayed)
	is.Equal(2, totals.Count)
	is.Equal(20.0, totals.Water)
	is.Equal(int64(40), totals.Duration)
	is.Equal(10.0, totals.AvgWater)
}

func TestZoneFilterIsCaseInsensitiveAndTrimmed(t *testing.T) {
	is := is.New(t)

	displayed := Filter(monthFixture(), Criteria{Zone: "  NORTH ", Trigger: AllTriggers})
	is.Equal(2, len(displayed))
	is.Equal(int64(1), displayed[0].LogID)
	is.Equal(int64(3), displayed[1].LogID)
}

func TestFilterMatchesExactlyTheExpectedRecords(t *testing.T) {
	is := is.New(t)

	logs := monthFixture()
	zones := []string{"", "north", "LAWN", "x"}
	triggers := []string{AllTriggers, "MANUAL", "SCHEDULED", "THRESHOLD"}

	for _, z := range zones {
		for _, tr := range triggers {
			got := Filter(logs, Criteria{Zone: z, Trigger: tr})

			var want []types.IrrigationLog
			for _, l := range logs {
				zoneOK := z == "" || strings.Contains(strings.ToLower(l.ZoneName), strings.ToLower(z))
				triggerOK := tr == AllTriggers || l.TriggerType == tr
				if zoneOK && triggerOK {
					want = append(want, l)
				}
			}

			is.Equal(len(want), len(got))
			for i := range want {
				is.Equal(want[i].LogID, got[i].LogID)
			}
		}
	}
}

func TestTotalsOfEmptySet(t *testing.T) {
	is := is.New(t)

	totals := Totals(nil)
	is.Equal(PeriodTotals{}, totals)
}

func TestTriggerTypesInFirstSeenOrder(t *testing.T) {
	is := is.New(t)

	logs := append(monthFixture(), record(4, "C", "", 1, 1, nil), record(5, "C", "THRESHOLD", 1, 1, nil))
	is.Equal([]string{"ALL", "MANUAL", "SCHEDULED", "THRESHOLD"}, TriggerTypes(logs))
	is.Equal([]string{"ALL"}, TriggerTypes(nil))
}

func TestSelectReturnsPrefetchedBucket(t *testing.T) {
	is := is.New(t)

	b := Buckets{
		Today: monthFixture()[:1],
		Week:  monthFixture()[:2],
		Month: monthFixture(),
	}

	is.Equal(1, len(Select(Today, b)))
	is.Equal(2, len(Select(Week, b)))
	is.Equal(3, len(Select(Month, b)))
}

func TestParsePeriod(t *testing.T) {
	is := is.New(t)

	p, err := ParsePeriod("Month")
	is.NoErr(err)
	is.Equal(Month, p)

	p, err = ParsePeriod("weekly")
	is.NoErr(err)
	is.Equal(Week, p)

	_, err = ParsePeriod("year")
	is.True(errors.Is(err, ErrUnknownPeriod))
}
