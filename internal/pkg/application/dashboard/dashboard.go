package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/florax/florax-dashboard/internal/pkg/infrastructure/logging"
	"github.com/florax/florax-dashboard/pkg/client"
	"github.com/florax/florax-dashboard/pkg/types"
)

const BasePath string = "/dashboard"

const DefaultLimit int = 10

// Service has one method per read endpoint of the dashboard API plus the
// resolve command. Every method issues exactly one call and never retries.
type Service interface {
	Me(ctx context.Context) (types.UserDashboard, error)
	Summary(ctx context.Context) (types.DashboardSummary, error)

	Gardens(ctx context.Context) ([]types.Garden, error)
	Garden(ctx context.Context, gardenID int64) (types.Garden, error)
	GardenZones(ctx context.Context, gardenID int64) ([]types.Zone, error)
	GardenAlerts(ctx context.Context, gardenID int64) ([]types.Alert, error)
	GardenTanks(ctx context.Context, gardenID int64) ([]types.WaterTank, error)

	Zones(ctx context.Context) ([]types.Zone, error)
	Zone(ctx context.Context, zoneID int64) (types.Zone, error)
	ZoneSensors(ctx context.Context, zoneID int64) ([]types.Sensor, error)
	ZoneValves(ctx context.Context, zoneID int64) ([]types.Valve, error)
	ZoneIrrigation(ctx context.Context, zoneID int64, limit int) ([]types.IrrigationLog, error)
	AlertZones(ctx context.Context) ([]types.Zone, error)
	ActiveZones(ctx context.Context) ([]types.Zone, error)

	Sensors(ctx context.Context) ([]types.Sensor, error)
	FaultySensors(ctx context.Context) ([]types.Sensor, error)

	IrrigationToday(ctx context.Context) ([]types.IrrigationLog, error)
	IrrigationWeekly(ctx context.Context) ([]types.IrrigationLog, error)
	IrrigationMonthly(ctx context.Context) ([]types.IrrigationLog, error)
	RecentIrrigation(ctx context.Context, limit int) ([]types.IrrigationLog, error)

	WaterUsageToday(ctx context.Context) (float64, error)
	WaterUsageWeekly(ctx context.Context) (float64, error)
	WaterUsageMonthly(ctx context.Context) (float64, error)

	ActiveAlerts(ctx context.Context) ([]types.Alert, error)
	ResolvedAlertsToday(ctx context.Context) ([]types.Alert, error)
	RecentAlerts(ctx context.Context, limit int) ([]types.Alert, error)
	AlertCountByType(ctx context.Context) (map[string]int, error)
	ResolveAlert(ctx context.Context, alertID int64) error

	Tanks(ctx context.Context) ([]types.WaterTank, error)
	LowTanks(ctx context.Context) ([]types.WaterTank, error)
	Valves(ctx context.Context) ([]types.Valve, error)
	OpenValves(ctx context.Context) ([]types.Valve, error)
}

// Error is returned by every Service method. Message is meant for display,
// the transport or http error stays reachable through errors.Unwrap.
type Error struct {
	Message string
	err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

func NewError(err error) *Error {
	return &Error{Message: client.Message(err), err: err}
}

type service struct {
	c client.APIClient
}

func New(c client.APIClient) Service {
	return &service{c: c}
}

func get[T any](ctx context.Context, c client.APIClient, path string, query url.Values) (T, error) {
	var result T

	err := c.Do(ctx, http.MethodGet, BasePath+path, client.Params{Query: query}, &result)
	if err != nil {
		log := logging.GetLoggerFromContext(ctx)
		log.Error().Err(err).Msgf("could not fetch %s", path)

		var zero T
		return zero, NewError(err)
	}

	return result, nil
}

// list is get for collections, an absent payload becomes an empty slice.
func list[T any](ctx context.Context, c client.APIClient, path string, query url.Values) ([]T, error) {
	result, err := get[[]T](ctx, c, path, query)
	if err != nil {
		return nil, err
	}

	if result == nil {
		result = []T{}
	}

	return result, nil
}

func limitQuery(limit int) url.Values {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return url.Values{"limit": []string{strconv.Itoa(limit)}}
}

func (s *service) Me(ctx context.Context) (types.UserDashboard, error) {
	return get[types.UserDashboard](ctx, s.c, "/me", nil)
}

func (s *service) Summary(ctx context.Context) (types.DashboardSummary, error) {
	return get[types.DashboardSummary](ctx, s.c, "/summary", nil)
}

func (s *service) Gardens(ctx context.Context) ([]types.Garden, error) {
	return list[types.Garden](ctx, s.c, "/gardens", nil)
}

func (s *service) Garden(ctx context.Context, gardenID int64) (types.Garden, error) {
	return get[types.Garden](ctx, s.c, fmt.Sprintf("/gardens/%d", gardenID), nil)
}

func (s *service) GardenZones(ctx context.Context, gardenID int64) ([]types.Zone, error) {
	return list[types.Zone](ctx, s.c, fmt.Sprintf("/gardens/%d/zones", gardenID), nil)
}

func (s *service) GardenAlerts(ctx context.Context, gardenID int64) ([]types.Alert, error) {
	return list[types.Alert](ctx, s.c, fmt.Sprintf("/gardens/%d/alerts", gardenID), nil)
}

func (s *service) GardenTanks(ctx context.Context, gardenID int64) ([]types.WaterTank, error) {
	return list[types.WaterTank](ctx, s.c, fmt.Sprintf("/gardens/%d/tanks", gardenID), nil)
}

func (s *service) Zones(ctx context.Context) ([]types.Zone, error) {
	return list[types.Zone](ctx, s.c, "/zones", nil)
}

func (s *service) Zone(ctx context.Context, zoneID int64) (types.Zone, error) {
	return get[types.Zone](ctx, s.c, fmt.Sprintf("/zones/%d", zoneID), nil)
}

func (s *service) ZoneSensors(ctx context.Context, zoneID int64) ([]types.Sensor, error) {
	return list[types.Sensor](ctx, s.c, fmt.Sprintf("/zones/%d/sensors", zoneID), nil)
}

func (s *service) ZoneValves(ctx context.Context, zoneID int64) ([]types.Valve, error) {
	return list[types.Valve](ctx, s.c, fmt.Sprintf("/zones/%d/valves", zoneID), nil)
}

func (s *service) ZoneIrrigation(ctx context.Context, zoneID int64, limit int) ([]types.IrrigationLog, error) {
	return list[types.IrrigationLog](ctx, s.c, fmt.Sprintf("/zones/%d/irrigation", zoneID), limitQuery(limit))
}

func (s *service) AlertZones(ctx context.Context) ([]types.Zone, error) {
	return list[types.Zone](ctx, s.c, "/zones/alert", nil)
}

func (s *service) ActiveZones(ctx context.Context) ([]types.Zone, error) {
	return list[types.Zone](ctx, s.c, "/zones/active", nil)
}

func (s *service) Sensors(ctx context.Context) ([]types.Sensor, error) {
	return list[types.Sensor](ctx, s.c, "/sensors", nil)
}

func (s *service) FaultySensors(ctx context.Context) ([]types.Sensor, error) {
	return list[types.Sensor](ctx, s.c, "/sensors/faulty", nil)
}

func (s *service) IrrigationToday(ctx context.Context) ([]types.IrrigationLog, error) {
	return list[types.IrrigationLog](ctx, s.c, "/irrigation/today", nil)
}

func (s *service) IrrigationWeekly(ctx context.Context) ([]types.IrrigationLog, error) {
	return list[types.IrrigationLog](ctx, s.c, "/irrigation/weekly", nil)
}

func (s *service) IrrigationMonthly(ctx context.Context) ([]types.IrrigationLog, error) {
	return list[types.IrrigationLog](ctx, s.c, "/irrigation/monthly", nil)
}

func (s *service) RecentIrrigation(ctx context.Context, limit int) ([]types.IrrigationLog, error) {
	return list[types.IrrigationLog](ctx, s.c, "/irrigation/recent", limitQuery(limit))
}

func (s *service) WaterUsageToday(ctx context.Context) (float64, error) {
	return get[float64](ctx, s.c, "/water-usage/today", nil)
}

func (s *service) WaterUsageWeekly(ctx context.Context) (float64, error) {
	return get[float64](ctx, s.c, "/water-usage/weekly", nil)
}

func (s *service) WaterUsageMonthly(ctx context.Context) (float64, error) {
	return get[float64](ctx, s.c, "/water-usage/monthly", nil)
}

func (s *service) ActiveAlerts(ctx context.Context) ([]types.Alert, error) {
	return list[types.Alert](ctx, s.c, "/alerts", nil)
}

func (s *service) ResolvedAlertsToday(ctx context.Context) ([]types.Alert, error) {
	return list[types.Alert](ctx, s.c, "/alerts/resolved-today", nil)
}

func (s *service) RecentAlerts(ctx context.Context, limit int) ([]types.Alert, error) {
	return list[types.Alert](ctx, s.c, "/alerts/recent", limitQuery(limit))
}

func (s *service) AlertCountByType(ctx context.Context) (map[string]int, error) {
	counts, err := get[map[string]int](ctx, s.c, "/alerts/count-by-type", nil)
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = map[string]int{}
	}
	return counts, nil
}

func (s *service) ResolveAlert(ctx context.Context, alertID int64) error {
	path := fmt.Sprintf("%s/alerts/%d/resolve", BasePath, alertID)

	err := s.c.Do(ctx, http.MethodPut, path, client.Params{}, nil)
	if err != nil {
		log := logging.GetLoggerFromContext(ctx)
		log.Error().Err(err).Int64("alert_id", alertID).Msg("could not resolve alert")
		return NewError(err)
	}

	return nil
}

func (s *service) Tanks(ctx context.Context) ([]types.WaterTank, error) {
	return list[types.WaterTank](ctx, s.c, "/tanks", nil)
}

func (s *service) LowTanks(ctx context.Context) ([]types.WaterTank, error) {
	return list[types.WaterTank](ctx, s.c, "/tanks/low", nil)
}

func (s *service) Valves(ctx context.Context) ([]types.Valve, error) {
	return list[types.Valve](ctx, s.c, "/valves", nil)
}

func (s *service) OpenValves(ctx context.Context) ([]types.Valve, error) {
	return list[types.Valve](ctx, s.c, "/valves/open", nil)
}
