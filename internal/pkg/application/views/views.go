package views

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/florax/florax-dashboard/internal/pkg/application/dashboard"
)

const (
	OverviewSection   string = "overview"
	ZonesSection      string = "zones"
	SensorsSection    string = "sensors"
	IrrigationSection string = "irrigation"
	AlertsSection     string = "alerts"
	TanksSection      string = "tanks"
	ValvesSection     string = "valves"
)

const DefaultRecentAlertsLimit int = 20

var ErrUnknownSection = errors.New("unknown section")

// View is what the presentation layer and the poller need from a section.
type View interface {
	Name() string
	Mount(ctx context.Context) error
	Refresh(ctx context.Context) error
	Mounted() bool
	// Snapshot returns the JSON view model of the section.
	Snapshot() any
}

// TokenChecker reports whether a session token is present.
type TokenChecker interface {
	Authenticated() bool
}

type Config struct {
	RecentAlertsLimit int
}

// Dashboard groups every section of the signed in user's dashboard. Each
// section fetches lazily, when it is first mounted.
type Dashboard struct {
	Overview   *OverviewView
	Zones      *ZonesView
	Sensors    *SensorsView
	Irrigation *IrrigationView
	Alerts     *AlertsView
	Tanks      *TanksView
	Valves     *ValvesView

	views map[string]View
}

func New(svc dashboard.Service, tokens TokenChecker, onUnauthorized func(context.Context), cfg Config) *Dashboard {
	d := &Dashboard{
		Overview:   NewOverview(svc, tokens, onUnauthorized),
		Zones:      NewZones(svc),
		Sensors:    NewSensors(svc),
		Irrigation: NewIrrigation(svc),
		Alerts:     NewAlerts(svc, cfg.RecentAlertsLimit),
		Tanks:      NewTanks(svc),
		Valves:     NewValves(svc),
	}

	d.views = map[string]View{
		OverviewSection:   d.Overview,
		ZonesSection:      d.Zones,
		SensorsSection:    d.Sensors,
		IrrigationSection: d.Irrigation,
		AlertsSection:     d.Alerts,
		TanksSection:      d.Tanks,
		ValvesSection:     d.Valves,
	}

	return d
}

func (d *Dashboard) View(name string) (View, error) {
	v, ok := d.views[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSection, name)
	}
	return v, nil
}

func (d *Dashboard) Names() []string {
	names := make([]string, 0, len(d.views))
	for n := range d.views {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Mounted returns the sections that have been displayed at least once.
func (d *Dashboard) Mounted() []View {
	mounted := []View{}
	for _, n := range d.Names() {
		if v := d.views[n]; v.Mounted() {
			mounted = append(mounted, v)
		}
	}
	return mounted
}

func errorMessage(err error) string {
	var svcErr *dashboard.Error
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	return err.Error()
}
