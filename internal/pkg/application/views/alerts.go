package views

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/florax/florax-dashboard/internal/pkg/application/dashboard"
	"github.com/florax/florax-dashboard/internal/pkg/infrastructure/logging"
	"github.com/florax/florax-dashboard/pkg/types"
	"github.com/samber/lo"
)

var ErrResolveInFlight = errors.New("alert is already being resolved")

// AlertsView shows the most recent alerts and drives the resolve command.
type AlertsView struct {
	*Section[[]types.Alert]

	svc   dashboard.Service
	limit int

	mu        sync.Mutex
	resolving map[int64]struct{}
}

func NewAlerts(svc dashboard.Service, limit int) *AlertsView {
	if limit <= 0 {
		limit = DefaultRecentAlertsLimit
	}

	load := func(ctx context.Context) ([]types.Alert, error) {
		return svc.RecentAlerts(ctx, limit)
	}

	return &AlertsView{
		Section:   NewSection(AlertsSection, []types.Alert{}, load),
		svc:       svc,
		limit:     limit,
		resolving: map[int64]struct{}{},
	}
}

func (v *AlertsView) ActiveCount() int {
	return lo.CountBy(v.Result().Data, func(a types.Alert) bool {
		return a.Active()
	})
}

// Resolve sends the resolve command for alertID and then reloads the alert
// list once, whatever the outcome of the command. A failed command is
// returned to the caller, the reloaded list is still applied.
func (v *AlertsView) Resolve(ctx context.Context, alertID int64) error {
	v.mu.Lock()
	if _, busy := v.resolving[alertID]; busy {
		v.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrResolveInFlight, alertID)
	}
	v.resolving[alertID] = struct{}{}
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		delete(v.resolving, alertID)
		v.mu.Unlock()
	}()

	log := logging.GetLoggerFromContext(ctx).With().Int64("alert_id", alertID).Logger()

	resolveErr := v.svc.ResolveAlert(ctx, alertID)
	if resolveErr != nil {
		log.Error().Err(resolveErr).Msg("resolve command failed, reloading alerts anyway")
	} else {
		log.Info().Msg("alert resolved")
	}

	reloadErr := v.Refresh(ctx)

	if resolveErr != nil {
		return resolveErr
	}

	return reloadErr
}

// Resolving reports whether a resolve command for alertID is outstanding.
func (v *AlertsView) Resolving(alertID int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	_, busy := v.resolving[alertID]
	return busy
}

func (v *AlertsView) resolvingIDs() []int64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	ids := lo.Keys(v.resolving)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type AlertsModel struct {
	Model[[]types.Alert]
	Active    int     `json:"active"`
	Limit     int     `json:"limit"`
	Resolving []int64 `json:"resolving"`
}

func (v *AlertsView) Snapshot() any {
	return AlertsModel{
		Model:     v.Model(),
		Active:    v.ActiveCount(),
		Limit:     v.limit,
		Resolving: v.resolvingIDs(),
	}
}
