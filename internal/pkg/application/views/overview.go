package views

import (
	"context"
	"errors"
	"sync"

	"github.com/florax/florax-dashboard/internal/pkg/application/dashboard"
	"github.com/florax/florax-dashboard/internal/pkg/application/session"
	"github.com/florax/florax-dashboard/internal/pkg/infrastructure/logging"
	"github.com/florax/florax-dashboard/pkg/types"
	"golang.org/x/sync/errgroup"
)

// OverviewView combines the user snapshot, the summary and the active alerts.
// Each source keeps its own result so one failing call does not blank the
// other two.
type OverviewView struct {
	Me           *Section[types.UserDashboard]
	Summary      *Section[types.DashboardSummary]
	ActiveAlerts *Section[[]types.Alert]

	tokens         TokenChecker
	onUnauthorized func(context.Context)

	mu      sync.Mutex
	mounted bool
}

func NewOverview(svc dashboard.Service, tokens TokenChecker, onUnauthorized func(context.Context)) *OverviewView {
	return &OverviewView{
		Me:             NewSection(OverviewSection+".me", types.UserDashboard{Gardens: []types.Garden{}}, svc.Me),
		Summary:        NewSection(OverviewSection+".summary", types.DashboardSummary{}, svc.Summary),
		ActiveAlerts:   NewSection(OverviewSection+".activeAlerts", []types.Alert{}, svc.ActiveAlerts),
		tokens:         tokens,
		onUnauthorized: onUnauthorized,
	}
}

func (v *OverviewView) Name() string {
	return OverviewSection
}

// Mount requires a session token. Without one the unauthorized handler is
// invoked and nothing is fetched.
func (v *OverviewView) Mount(ctx context.Context) error {
	if v.tokens != nil && !v.tokens.Authenticated() {
		log := logging.GetLoggerFromContext(ctx)
		log.Info().Msg("no session token, redirecting to login")
		if v.onUnauthorized != nil {
			v.onUnauthorized(ctx)
		}
		return session.ErrNoToken
	}

	v.mu.Lock()
	if v.mounted {
		v.mu.Unlock()
		return v.err()
	}
	v.mounted = true
	v.mu.Unlock()

	return v.Refresh(ctx)
}

func (v *OverviewView) Mounted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mounted
}

// Refresh loads all three sources concurrently and waits for every one of
// them. The returned error joins the failures of the individual sources.
func (v *OverviewView) Refresh(ctx context.Context) error {
	v.mu.Lock()
	v.mounted = true
	v.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error { return v.Me.Refresh(ctx) })
	g.Go(func() error { return v.Summary.Refresh(ctx) })
	g.Go(func() error { return v.ActiveAlerts.Refresh(ctx) })
	_ = g.Wait()

	return v.err()
}

func (v *OverviewView) err() error {
	return errors.Join(v.Me.Result().Err, v.Summary.Result().Err, v.ActiveAlerts.Result().Err)
}

func (v *OverviewView) Status() Status {
	statuses := []Status{v.Me.Status(), v.Summary.Status(), v.ActiveAlerts.Status()}

	for _, s := range statuses {
		if s == Loading {
			return Loading
		}
	}

	failed := 0
	for _, s := range statuses {
		switch s {
		case Idle:
			return Idle
		case Failed:
			failed++
		}
	}

	if failed == len(statuses) {
		return Failed
	}
	return Ready
}

// StatCard is one of the headline figures of the overview.
type StatCard struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Sub   string `json:"sub"`
}

type OverviewModel struct {
	Status       Status                        `json:"status"`
	Me           Model[types.UserDashboard]    `json:"me"`
	Summary      Model[types.DashboardSummary] `json:"summary"`
	ActiveAlerts Model[[]types.Alert]          `json:"activeAlerts"`
	Cards        []StatCard                    `json:"cards"`
}

func (v *OverviewView) Snapshot() any {
	return OverviewModel{
		Status:       v.Status(),
		Me:           v.Me.Model(),
		Summary:      v.Summary.Model(),
		ActiveAlerts: v.ActiveAlerts.Model(),
		Cards:        v.Cards(),
	}
}
