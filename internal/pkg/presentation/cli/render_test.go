package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/florax/florax-dashboard/internal/pkg/application/dashboard"
	"github.com/florax/florax-dashboard/internal/pkg/application/irrigation"
	"github.com/florax/florax-dashboard/internal/pkg/application/views"
	"github.com/florax/florax-dashboard/pkg/client"
	"github.com/florax/florax-dashboard/pkg/types"
	"github.com/matryer/is"
)

const monthLogs = `[
	{"logId":1,"zoneName":"North Bed","startTime":"2024-05-01T08:00:00","endTime":"2024-05-01T08:20:00","waterVolumeUsed":10,"durationMinutes":20,"triggerType":"MANUAL"},
	{"logId":2,"zoneName":"South Lawn","startTime":"2024-05-01T18:00:00","waterVolumeUsed":5,"durationMinutes":10,"triggerType":"SCHEDULED"},
	{"logId":3,"zoneName":"North Orchard","startTime":"2024-05-02T07:00:00","waterVolumeUsed":15,"durationMinutes":30,"triggerType":"SCHEDULED"}
]`

func testSetup(t *testing.T, responses map[string]string) dashboard.Service {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"backend exploded"}`))
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return dashboard.New(client.New(srv.URL))
}

func TestRenderIrrigationWithFooterAndAverages(t *testing.T) {
	is := is.New(t)

	svc := testSetup(t, map[string]string{
		"/dashboard/irrigation/today":   `[]`,
		"/dashboard/irrigation/weekly":  `[]`,
		"/dashboard/irrigation/monthly": monthLogs,
	})

	v := views.NewIrrigation(svc)
	is.NoErr(v.Mount(context.Background()))
	v.SetPeriod(irrigation.Month)
	v.SetFilter(irrigation.Criteria{Trigger: "SCHEDULED"})

	buf := &bytes.Buffer{}
	RenderIrrigation(buf, v)
	out := buf.String()

	is.True(strings.Contains(out, "Monthly Averages"))
	is.True(strings.Contains(out, "30.0L"))
	is.True(strings.Contains(out, "1.5/day"))
	is.True(strings.Contains(out, "This Month"))
	is.True(strings.Contains(out, "2 records"))
	is.True(strings.Contains(out, "In progress"))
	is.True(strings.Contains(out, "20.0L"))
	is.True(!strings.Contains(out, "North Bed"))
}

func TestRenderShowsFailureInsteadOfSilentEmptyTable(t *testing.T) {
	is := is.New(t)

	svc := testSetup(t, map[string]string{})

	v := views.NewZones(svc)
	is.True(v.Mount(context.Background()) != nil)

	buf := &bytes.Buffer{}
	RenderZones(buf, v)

	is.True(strings.Contains(buf.String(), "! could not load data: backend exploded"))
	is.True(strings.Contains(buf.String(), "No zones found."))
}

func TestRenderAlertsAndValves(t *testing.T) {
	is := is.New(t)

	svc := testSetup(t, map[string]string{
		"/dashboard/alerts/recent": `[{"alertId":7,"zoneName":"North Bed","type":"DRY_SOIL","status":"ACTIVE","message":"Soil is dry"},{"alertId":6,"status":"RESOLVED"}]`,
		"/dashboard/valves":        `[{"valveId":1,"zoneName":"North Bed","valveStatus":"OPEN","powerSource":"SOLAR"}]`,
	})
	ctx := context.Background()

	alerts := views.NewAlerts(svc, 20)
	is.NoErr(alerts.Mount(ctx))
	valves := views.NewValves(svc)
	is.NoErr(valves.Mount(ctx))

	buf := &bytes.Buffer{}
	RenderAlerts(buf, alerts)
	RenderValves(buf, valves)
	out := buf.String()

	is.True(strings.Contains(out, "Alerts (1 active)"))
	is.True(strings.Contains(out, "Soil is dry"))
	is.True(strings.Contains(out, "Valves (1 open)"))
	is.True(strings.Contains(out, "SOLAR"))
}

func TestRenderOverviewCards(t *testing.T) {
	is := is.New(t)

	svc := testSetup(t, map[string]string{
		"/dashboard/me":      `{"userId":1,"userName":"Ada","gardens":[{"gardenId":1,"gardenName":"Home","totalZones":1,"activeAlerts":2,"totalArea":120}]}`,
		"/dashboard/summary": `{"totalGardens":1,"totalZones":1,"totalSensors":4,"activeSensors":3,"totalWaterUsedToday":12.5,"totalValves":2,"openValves":1}`,
		"/dashboard/alerts":  `[]`,
	})

	o := views.NewOverview(svc, nil, nil)
	is.NoErr(o.Mount(context.Background()))

	buf := &bytes.Buffer{}
	RenderOverview(buf, o)
	out := buf.String()

	is.True(strings.Contains(out, "12.5L"))
	is.True(strings.Contains(out, "3 active"))
	is.True(strings.Contains(out, "of 2 total"))
	is.True(strings.Contains(out, "Home"))
	is.True(strings.Contains(out, "1 zone"))
	is.True(strings.Contains(out, "2 alerts"))
	is.True(strings.Contains(out, "120 m²"))
}

func TestRenderTanksGauge(t *testing.T) {
	is := is.New(t)

	is.Equal("[######....]", bar(64))
	is.Equal("[..........]", bar(-5))
	is.Equal("[##########]", bar(140))

	buf := &bytes.Buffer{}
	RenderRecentIrrigation(buf, []types.IrrigationLog{})
	is.True(strings.Contains(buf.String(), "No irrigation logs found."))
}
