package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/florax/florax-dashboard/internal/pkg/application/irrigation"
	"github.com/florax/florax-dashboard/internal/pkg/application/views"
	"github.com/florax/florax-dashboard/pkg/types"
	"github.com/olekukonko/tablewriter"
)

const (
	dash       string = "—"
	timeLayout string = "2006-01-02 15:04"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func title(w io.Writer, name, badge string) {
	fmt.Fprintf(w, "\n%s (%s)\n", name, badge)
}

// failure prints the reason a section could not be loaded. It reports
// whether there was one.
func failure(w io.Writer, err error, message string) bool {
	if err == nil {
		return false
	}
	fmt.Fprintf(w, "! could not load data: %s\n", message)
	return true
}

func noData(w io.Writer, what string) {
	fmt.Fprintf(w, "No %s found.\n", what)
}

func float(f *float64, unit string) string {
	if f == nil {
		return dash
	}
	return fmt.Sprintf("%.1f%s", *f, unit)
}

func timestamp(ts *types.Timestamp) string {
	if ts == nil || ts.IsZero() {
		return dash
	}
	return ts.Local().Format(timeLayout)
}

func text(s string) string {
	if strings.TrimSpace(s) == "" {
		return dash
	}
	return s
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func RenderOverview(w io.Writer, v *views.OverviewView) {
	fmt.Fprintln(w, "\nOverview")

	for _, s := range []struct {
		name string
		err  error
		msg  string
	}{
		{"profile", v.Me.Result().Err, v.Me.Model().Error},
		{"summary", v.Summary.Result().Err, v.Summary.Model().Error},
		{"active alerts", v.ActiveAlerts.Result().Err, v.ActiveAlerts.Model().Error},
	} {
		if s.err != nil {
			fmt.Fprintf(w, "! could not load %s: %s\n", s.name, s.msg)
		}
	}

	cards := newTable(w, "Stat", "Value", "")
	for _, c := range v.Cards() {
		cards.Append([]string{c.Label, c.Value, c.Sub})
	}
	cards.Render()

	me := v.Me.Result().Data
	if len(me.Gardens) == 0 {
		return
	}

	fmt.Fprintln(w, "\nYour Gardens")
	gardens := newTable(w, "Garden", "Location", "Zones", "Alerts", "Area")
	for _, g := range me.Gardens {
		location := g.Location
		if location == "" {
			location = "No location set"
		}
		area := ""
		if g.TotalArea != nil && *g.TotalArea != 0 {
			area = strconv.FormatFloat(*g.TotalArea, 'f', -1, 64) + " m²"
		}
		alerts := ""
		if g.ActiveAlerts > 0 {
			alerts = plural(int(g.ActiveAlerts), "alert")
		}
		gardens.Append([]string{g.GardenName, location, plural(g.TotalZones, "zone"), alerts, area})
	}
	gardens.Render()
}

func RenderZones(w io.Writer, v *views.ZonesView) {
	m := v.Model()
	title(w, "Irrigation Zones", fmt.Sprintf("%d total", len(m.Data)))

	if failure(w, v.Result().Err, m.Error) || len(m.Data) == 0 {
		noData(w, "zones")
		return
	}

	table := newTable(w, "Zone", "Plant", "Soil", "Moisture", "Status", "Last irrigated")
	for _, z := range m.Data {
		table.Append([]string{
			z.ZoneName,
			text(z.PlantType),
			text(z.SoilType),
			float(z.LatestMoistureReading, "%"),
			text(z.IrrigationStatus),
			timestamp(z.LastIrrigated),
		})
	}
	table.Render()
}

func RenderSensors(w io.Writer, v *views.SensorsView) {
	m := v.Snapshot().(views.SensorsModel)

	badge := fmt.Sprintf("%d total, %d faulty", m.Total, m.Faulty)
	if m.ShowFaulty {
		badge += ", showing faulty"
	}
	title(w, "Sensors", badge)

	if failure(w, v.Result().Err, m.Error) || len(m.Displayed) == 0 {
		noData(w, "sensors")
		return
	}

	table := newTable(w, "ID", "Type", "Serial", "Status", "Reading", "Recorded")
	for _, s := range m.Displayed {
		recorded := s.RecordedAt
		if recorded == "" {
			recorded = "No readings yet"
		}
		table.Append([]string{
			strconv.FormatInt(s.SensorID, 10),
			text(s.SensorType),
			text(s.SerialNumber),
			text(s.Status),
			float(s.LatestReading, ""),
			recorded,
		})
	}
	table.Render()
}

func RenderIrrigation(w io.Writer, v *views.IrrigationView) {
	m := v.Snapshot().(views.IrrigationModel)

	if m.Monthly != nil {
		fmt.Fprintln(w, "\nMonthly Averages")
		stats := newTable(w, "Sessions", "Water", "Active days", "Avg sessions / day", "Avg water / session", "Avg duration")
		stats.Append([]string{
			strconv.Itoa(m.Monthly.TotalSessions),
			m.Monthly.TotalWaterL + "L",
			strconv.Itoa(m.Monthly.ActiveDays),
			m.Monthly.AvgSessionsPerDay + "/day",
			m.Monthly.AvgWaterPerSession + "L",
			m.Monthly.AvgDurationMin + " min",
		})
		stats.Render()
	}

	badge := plural(len(m.Displayed), "record")
	if m.Filter.Zone != "" || (m.Filter.Trigger != "" && m.Filter.Trigger != irrigation.AllTriggers) {
		badge += fmt.Sprintf(", filtered by zone %q trigger %s", m.Filter.Zone, m.Filter.Trigger)
	}
	title(w, "Irrigation Logs: "+m.Period.Label(), badge)

	if failure(w, v.Result().Err, m.Error) || len(m.Displayed) == 0 {
		noData(w, "irrigation logs")
		return
	}

	table := newTable(w, "Zone", "Start", "End", "Duration", "Water", "Trigger")
	for _, l := range m.Displayed {
		end := timestamp(l.EndTime)
		if l.InProgress() {
			end = "In progress"
		}
		duration := dash
		if l.DurationMinutes != nil {
			duration = fmt.Sprintf("%d min", *l.DurationMinutes)
		}
		table.Append([]string{
			text(l.ZoneName),
			timestamp(l.StartTime),
			end,
			duration,
			float(l.WaterVolumeUsed, "L"),
			text(l.TriggerType),
		})
	}

	table.SetFooter([]string{
		"Total",
		plural(m.Totals.Count, "session"),
		"",
		fmt.Sprintf("%d min", m.Totals.Duration),
		fmt.Sprintf("%.1fL", m.Totals.Water),
		fmt.Sprintf("avg %.1fL", m.Totals.AvgWater),
	})
	table.Render()
}

func RenderAlerts(w io.Writer, v *views.AlertsView) {
	m := v.Snapshot().(views.AlertsModel)
	title(w, "Alerts", fmt.Sprintf("%d active", m.Active))

	if failure(w, v.Result().Err, m.Error) || len(m.Data) == 0 {
		noData(w, "alerts")
		return
	}

	table := newTable(w, "ID", "Zone", "Type", "Message", "Status", "Created")
	for _, a := range m.Data {
		status := a.Status
		if v.Resolving(a.AlertID) {
			status = "Resolving…"
		}
		table.Append([]string{
			strconv.FormatInt(a.AlertID, 10),
			text(a.ZoneName),
			text(a.Type),
			text(a.Message),
			text(status),
			timestamp(a.CreatedAt),
		})
	}
	table.Render()
}

func RenderTanks(w io.Writer, v *views.TanksView) {
	m := v.Model()
	title(w, "Water Tanks", plural(len(m.Data), "tank"))

	if failure(w, v.Result().Err, m.Error) || len(m.Data) == 0 {
		noData(w, "water tanks")
		return
	}

	table := newTable(w, "ID", "Status", "Level", "Fill", "Capacity")
	for _, t := range m.Data {
		pct := 0.0
		if t.FillPercentage != nil {
			pct = *t.FillPercentage
		}
		capacity := dash
		if t.CapacityLiters != nil {
			capacity = fmt.Sprintf("%.0fL", *t.CapacityLiters)
		}
		table.Append([]string{
			strconv.FormatInt(t.TankID, 10),
			text(t.Status),
			float(t.CurrentLevelLiters, "L"),
			fmt.Sprintf("%.0f%% %s", pct, bar(pct)),
			capacity,
		})
	}
	table.Render()
}

// bar draws a ten step gauge of a percentage.
func bar(pct float64) string {
	steps := int(pct / 10)
	if steps < 0 {
		steps = 0
	}
	if steps > 10 {
		steps = 10
	}
	return "[" + strings.Repeat("#", steps) + strings.Repeat(".", 10-steps) + "]"
}

func RenderValves(w io.Writer, v *views.ValvesView) {
	m := v.Model()
	title(w, "Valves", fmt.Sprintf("%d open", v.OpenCount()))

	if failure(w, v.Result().Err, m.Error) || len(m.Data) == 0 {
		noData(w, "valves")
		return
	}

	table := newTable(w, "ID", "Zone", "Status", "Power", "Last activated")
	for _, valve := range m.Data {
		table.Append([]string{
			strconv.FormatInt(valve.ValveID, 10),
			text(valve.ZoneName),
			text(valve.ValveStatus),
			text(valve.PowerSource),
			timestamp(valve.LastActivatedAt),
		})
	}
	table.Render()
}

func RenderRecentIrrigation(w io.Writer, logs []types.IrrigationLog) {
	title(w, "Recent Irrigation", plural(len(logs), "record"))

	if len(logs) == 0 {
		noData(w, "irrigation logs")
		return
	}

	table := newTable(w, "ID", "Zone", "Start", "Water", "Trigger")
	for _, l := range logs {
		table.Append([]string{
			strconv.FormatInt(l.LogID, 10),
			text(l.ZoneName),
			timestamp(l.StartTime),
			float(l.WaterVolumeUsed, "L"),
			text(l.TriggerType),
		})
	}
	table.Render()
}
