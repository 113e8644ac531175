package views

import (
	"fmt"
	"strconv"
)

const noValue string = "—"

func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Cards derives the overview stat cards. Summary figures win, the user
// snapshot fills in where the summary could not be loaded.
func (v *OverviewView) Cards() []StatCard {
	me := v.Me.Result()
	summary := v.Summary.Result()
	active := v.ActiveAlerts.Result()

	s := summary.Data
	haveSummary := !summary.Failed() && v.Summary.Status() == Ready
	d := me.Data
	haveMe := !me.Failed() && v.Me.Status() == Ready

	pick := func(fromSummary int, fromMe *int) string {
		if haveSummary {
			return strconv.Itoa(fromSummary)
		}
		if haveMe && fromMe != nil {
			return strconv.Itoa(*fromMe)
		}
		return noValue
	}

	liters := func(f *float64) string {
		if haveSummary && f != nil {
			return number(*f) + "L"
		}
		return noValue
	}

	activeAlerts := pick(s.ActiveAlerts, d.ActiveAlerts)
	if !haveSummary && !active.Failed() && v.ActiveAlerts.Status() == Ready {
		activeAlerts = strconv.Itoa(len(active.Data))
	}

	moisture := noValue
	if haveSummary && s.AvgMoistureLevel != nil {
		moisture = number(*s.AvgMoistureLevel) + "%"
	} else if haveMe && d.AvgMoistureLevel != nil {
		moisture = number(*d.AvgMoistureLevel) + "%"
	}

	sensors, openValves := noValue, noValue
	if haveSummary {
		sensors = strconv.Itoa(s.TotalSensors)
		openValves = strconv.Itoa(s.OpenValves)
	}

	return []StatCard{
		{Label: "Gardens", Value: pick(s.TotalGardens, d.TotalGardens), Sub: "Total gardens"},
		{Label: "Zones", Value: pick(s.TotalZones, d.TotalZones), Sub: "Irrigation zones"},
		{Label: "Sensors", Value: sensors, Sub: fmt.Sprintf("%d active", s.ActiveSensors)},
		{Label: "Active Alerts", Value: activeAlerts, Sub: fmt.Sprintf("%d resolved today", s.ResolvedAlertsToday)},
		{Label: "Water Today", Value: liters(s.TotalWaterUsedToday), Sub: fmt.Sprintf("%d irrigations", s.TotalIrrigationsToday)},
		{Label: "Water This Week", Value: liters(s.TotalWaterUsedThisWeek), Sub: fmt.Sprintf("%d sessions", s.TotalIrrigationsThisWeek)},
		{Label: "Avg Moisture", Value: moisture, Sub: "Across all zones"},
		{Label: "Open Valves", Value: openValves, Sub: fmt.Sprintf("of %d total", s.TotalValves)},
	}
}
