package views

import (
	"context"
	"sync"

	"github.com/florax/florax-dashboard/internal/pkg/application/dashboard"
	"github.com/florax/florax-dashboard/internal/pkg/application/irrigation"
	"github.com/florax/florax-dashboard/pkg/types"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type ZonesView struct {
	*Section[[]types.Zone]
}

func NewZones(svc dashboard.Service) *ZonesView {
	return &ZonesView{NewSection(ZonesSection, []types.Zone{}, svc.Zones)}
}

func (v *ZonesView) Snapshot() any {
	return v.Model()
}

type TanksView struct {
	*Section[[]types.WaterTank]
}

func NewTanks(svc dashboard.Service) *TanksView {
	return &TanksView{NewSection(TanksSection, []types.WaterTank{}, svc.Tanks)}
}

func (v *TanksView) Snapshot() any {
	return v.Model()
}

type ValvesView struct {
	*Section[[]types.Valve]
}

func NewValves(svc dashboard.Service) *ValvesView {
	return &ValvesView{NewSection(ValvesSection, []types.Valve{}, svc.Valves)}
}

func (v *ValvesView) OpenCount() int {
	return lo.CountBy(v.Result().Data, func(valve types.Valve) bool {
		return valve.Open()
	})
}

type ValvesModel struct {
	Model[[]types.Valve]
	Open int `json:"open"`
}

func (v *ValvesView) Snapshot() any {
	return ValvesModel{Model: v.Model(), Open: v.OpenCount()}
}

type SensorSet struct {
	All    []types.Sensor `json:"all"`
	Faulty []types.Sensor `json:"faulty"`
}

// SensorsView loads all and faulty sensors together. Either both lists are
// applied or the load fails as a whole.
type SensorsView struct {
	*Section[SensorSet]

	mu         sync.RWMutex
	showFaulty bool
}

func NewSensors(svc dashboard.Service) *SensorsView {
	load := func(ctx context.Context) (SensorSet, error) {
		set := SensorSet{}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			set.All, err = svc.Sensors(ctx)
			return
		})
		g.Go(func() (err error) {
			set.Faulty, err = svc.FaultySensors(ctx)
			return
		})

		if err := g.Wait(); err != nil {
			return SensorSet{}, err
		}

		return set, nil
	}

	empty := SensorSet{All: []types.Sensor{}, Faulty: []types.Sensor{}}
	return &SensorsView{Section: NewSection(SensorsSection, empty, load)}
}

func (v *SensorsView) ShowFaulty(show bool) {
	v.mu.Lock()
	v.showFaulty = show
	v.mu.Unlock()
}

func (v *SensorsView) ShowingFaulty() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.showFaulty
}

func (v *SensorsView) Displayed() []types.Sensor {
	set := v.Result().Data
	if v.ShowingFaulty() {
		return set.Faulty
	}
	return set.All
}

type SensorsModel struct {
	Name       string         `json:"name"`
	Status     Status         `json:"status"`
	Error      string         `json:"error,omitempty"`
	ShowFaulty bool           `json:"showFaulty"`
	Total      int            `json:"total"`
	Faulty     int            `json:"faulty"`
	Displayed  []types.Sensor `json:"displayed"`
}

func (v *SensorsView) Snapshot() any {
	m := v.Model()
	return SensorsModel{
		Name:       m.Name,
		Status:     m.Status,
		Error:      m.Error,
		ShowFaulty: v.ShowingFaulty(),
		Total:      len(m.Data.All),
		Faulty:     len(m.Data.Faulty),
		Displayed:  v.Displayed(),
	}
}

// IrrigationView holds the three period collections plus the period and
// filter the user picked. Everything shown is derived on read.
type IrrigationView struct {
	*Section[irrigation.Buckets]

	mu       sync.RWMutex
	period   irrigation.Period
	criteria irrigation.Criteria
}

func NewIrrigation(svc dashboard.Service) *IrrigationView {
	load := func(ctx context.Context) (irrigation.Buckets, error) {
		b := irrigation.Buckets{}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			b.Today, err = svc.IrrigationToday(ctx)
			return
		})
		g.Go(func() (err error) {
			b.Week, err = svc.IrrigationWeekly(ctx)
			return
		})
		g.Go(func() (err error) {
			b.Month, err = svc.IrrigationMonthly(ctx)
			return
		})

		if err := g.Wait(); err != nil {
			return irrigation.Buckets{}, err
		}

		return b, nil
	}

	empty := irrigation.Buckets{
		Today: []types.IrrigationLog{},
		Week:  []types.IrrigationLog{},
		Month: []types.IrrigationLog{},
	}

	return &IrrigationView{
		Section:  NewSection(IrrigationSection, empty, load),
		period:   irrigation.Today,
		criteria: irrigation.Criteria{Trigger: irrigation.AllTriggers},
	}
}

func (v *IrrigationView) SetPeriod(p irrigation.Period) {
	v.mu.Lock()
	v.period = p
	v.mu.Unlock()
}

func (v *IrrigationView) Period() irrigation.Period {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.period
}

func (v *IrrigationView) SetFilter(c irrigation.Criteria) {
	if c.Trigger == "" {
		c.Trigger = irrigation.AllTriggers
	}

	v.mu.Lock()
	v.criteria = c
	v.mu.Unlock()
}

func (v *IrrigationView) ClearFilter() {
	v.SetFilter(irrigation.Criteria{})
}

func (v *IrrigationView) Filter() irrigation.Criteria {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.criteria
}

func (v *IrrigationView) Displayed() []types.IrrigationLog {
	raw := irrigation.Select(v.Period(), v.Result().Data)
	return irrigation.Filter(raw, v.Filter())
}

func (v *IrrigationView) Totals() irrigation.PeriodTotals {
	return irrigation.Totals(v.Displayed())
}

func (v *IrrigationView) Monthly() (irrigation.Statistics, bool) {
	return irrigation.MonthlyStatistics(v.Result().Data.Month)
}

func (v *IrrigationView) TriggerTypes() []string {
	return irrigation.TriggerTypes(v.Result().Data.Month)
}

type IrrigationModel struct {
	Name         string                          `json:"name"`
	Status       Status                          `json:"status"`
	Error        string                          `json:"error,omitempty"`
	Period       irrigation.Period               `json:"period"`
	Filter       irrigation.Criteria             `json:"filter"`
	TriggerTypes []string                        `json:"triggerTypes"`
	Displayed    []types.IrrigationLog           `json:"displayed"`
	Totals       irrigation.PeriodTotals         `json:"totals"`
	Monthly      *irrigation.FormattedStatistics `json:"monthly,omitempty"`
}

func (v *IrrigationView) Snapshot() any {
	m := v.Model()

	model := IrrigationModel{
		Name:         m.Name,
		Status:       m.Status,
		Error:        m.Error,
		Period:       v.Period(),
		Filter:       v.Filter(),
		TriggerTypes: v.TriggerTypes(),
		Displayed:    v.Displayed(),
		Totals:       v.Totals(),
	}

	if stats, ok := v.Monthly(); ok {
		f := stats.Formatted()
		model.Monthly = &f
	}

	return model
}
