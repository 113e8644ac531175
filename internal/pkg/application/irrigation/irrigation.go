package irrigation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/florax/florax-dashboard/pkg/types"
	"github.com/samber/lo"
)

// Period selects which server side window is displayed.
type Period string

const (
	Today Period = "today"
	Week  Period = "week"
	Month Period = "month"
)

// AllTriggers matches every trigger type.
const AllTriggers string = "ALL"

var ErrUnknownPeriod = errors.New("unknown period")

var Periods = []Period{Today, Week, Month}

func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case Today, Week, Month:
		return p, nil
	case "weekly":
		return Week, nil
	case "monthly":
		return Month, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
}

func (p Period) Label() string {
	switch p {
	case Week:
		return "This Week"
	case Month:
		return "This Month"
	default:
		return "Today"
	}
}

// Buckets holds the three collections exactly as the backend returned them.
type Buckets struct {
	Today []types.IrrigationLog
	Week  []types.IrrigationLog
	Month []types.IrrigationLog
}

// Select returns the collection for p. No re-bucketing is done.
func Select(p Period, b Buckets) []types.IrrigationLog {
	switch p {
	case Week:
		return b.Week
	case Month:
		return b.Month
	default:
		return b.Today
	}
}

type Criteria struct {
	Zone    string `json:"zone"`
	Trigger string `json:"trigger"`
}

func (c Criteria) Active() bool {
	return strings.TrimSpace(c.Zone) != "" || (c.Trigger != "" && c.Trigger != AllTriggers)
}

func (c Criteria) Matches(l types.IrrigationLog) bool {
	zone := strings.ToLower(strings.TrimSpace(c.Zone))
	zoneMatch := zone == "" || strings.Contains(strings.ToLower(l.ZoneName), zone)
	triggerMatch := c.Trigger == "" || c.Trigger == AllTriggers || l.TriggerType == c.Trigger
	return zoneMatch && triggerMatch
}

// Filter keeps the records matching c, in input order.
func Filter(logs []types.IrrigationLog, c Criteria) []types.IrrigationLog {
	return lo.Filter(logs, func(l types.IrrigationLog, _ int) bool {
		return c.Matches(l)
	})
}

// TriggerTypes lists AllTriggers followed by each distinct non-empty trigger
// type in the order it first appears.
func TriggerTypes(logs []types.IrrigationLog) []string {
	triggers := lo.FilterMap(logs, func(l types.IrrigationLog, _ int) (string, bool) {
		return l.TriggerType, l.TriggerType != ""
	})
	return append([]string{AllTriggers}, lo.Uniq(triggers)...)
}

func water(l types.IrrigationLog) float64 {
	if l.WaterVolumeUsed == nil {
		return 0
	}
	return *l.WaterVolumeUsed
}

func duration(l types.IrrigationLog) int64 {
	if l.DurationMinutes == nil {
		return 0
	}
	return *l.DurationMinutes
}

func sumWater(logs []types.IrrigationLog) float64 {
	return lo.Reduce(logs, func(sum float64, l types.IrrigationLog, _ int) float64 {
		return sum + water(l)
	}, 0)
}

func sumDuration(logs []types.IrrigationLog) int64 {
	return lo.Reduce(logs, func(sum int64, l types.IrrigationLog, _ int) int64 {
		return sum + duration(l)
	}, 0)
}

type Statistics struct {
	TotalSessions      int
	TotalWater         float64
	ActiveDays         int
	AvgSessionsPerDay  float64
	AvgWaterPerSession float64
	AvgDuration        float64
}

type FormattedStatistics struct {
	TotalSessions      int    `json:"totalSessions"`
	TotalWaterL        string `json:"totalWaterL"`
	ActiveDays         int    `json:"activeDays"`
	AvgSessionsPerDay  string `json:"avgSessionsPerDay"`
	AvgWaterPerSession string `json:"avgWaterPerSession"`
	AvgDurationMin     string `json:"avgDurationMin"`
}

// MonthlyStatistics aggregates the unfiltered month collection. ok is false
// when there is nothing to aggregate.
func MonthlyStatistics(monthLogs []types.IrrigationLog) (stats Statistics, ok bool) {
	total := len(monthLogs)
	if total == 0 {
		return Statistics{}, false
	}

	totalWater := sumWater(monthLogs)
	totalDuration := sumDuration(monthLogs)

	days := lo.Uniq(lo.FilterMap(monthLogs, func(l types.IrrigationLog, _ int) (string, bool) {
		if l.StartTime == nil {
			return "", false
		}
		return l.StartTime.Local().Format("2006-01-02"), true
	}))

	activeDays := len(days)
	if activeDays == 0 {
		activeDays = 1
	}

	return Statistics{
		TotalSessions:      total,
		TotalWater:         totalWater,
		ActiveDays:         activeDays,
		AvgSessionsPerDay:  float64(total) / float64(activeDays),
		AvgWaterPerSession: totalWater / float64(total),
		AvgDuration:        float64(totalDuration) / float64(total),
	}, true
}

func (s Statistics) Formatted() FormattedStatistics {
	return FormattedStatistics{
		TotalSessions:      s.TotalSessions,
		TotalWaterL:        oneDecimal(s.TotalWater),
		ActiveDays:         s.ActiveDays,
		AvgSessionsPerDay:  oneDecimal(s.AvgSessionsPerDay),
		AvgWaterPerSession: oneDecimal(s.AvgWaterPerSession),
		AvgDurationMin:     oneDecimal(s.AvgDuration),
	}
}

// PeriodTotals is the footer of the displayed table.
type PeriodTotals struct {
	Count    int     `json:"count"`
	Water    float64 `json:"water"`
	Duration int64   `json:"duration"`
	AvgWater float64 `json:"avgWater"`
}

func Totals(displayed []types.IrrigationLog) PeriodTotals {
	t := PeriodTotals{
		Count:    len(displayed),
		Water:    sumWater(displayed),
		Duration: sumDuration(displayed),
	}
	if t.Count > 0 {
		t.AvgWater = t.Water / float64(t.Count)
	}
	return t
}

func oneDecimal(f float64) string {
	return fmt.Sprintf("%.1f", f)
}
