package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	test "github.com/diwise/service-chassis/pkg/test/http"
	"github.com/diwise/service-chassis/pkg/test/http/expects"
	"github.com/diwise/service-chassis/pkg/test/http/response"
	"github.com/florax/florax-dashboard/pkg/client"
	"github.com/matryer/is"
)

func TestRecentIrrigationUsesDefaultLimit(t *testing.T) {
	is := is.New(t)

	c := &client.APIClientMock{
		DoFunc: func(ctx context.Context, method, path string, params client.Params, out any) error {
			return json.Unmarshal([]byte(`[{"logId":1,"zoneName":"North","triggerType":"MANUAL"}]`), out)
		},
	}

	logs, err := New(c).RecentIrrigation(context.Background(), 0)
	is.NoErr(err)
	is.Equal(1, len(logs))
	is.Equal("North", logs[0].ZoneName)

	is.Equal(1, len(c.DoCalls()))
	call := c.DoCalls()[0]
	is.Equal(http.MethodGet, call.Method)
	is.Equal("/dashboard/irrigation/recent", call.Path)
	is.Equal("10", call.Params.Query.Get("limit"))
}

func TestRecentAlertsPassesLimit(t *testing.T) {
	is := is.New(t)

	c := &client.APIClientMock{
		DoFunc: func(ctx context.Context, method, path string, params client.Params, out any) error {
			return nil
		},
	}

	alerts, err := New(c).RecentAlerts(context.Background(), 20)
	is.NoErr(err)
	is.Equal(0, len(alerts))
	is.True(alerts != nil)

	is.Equal("/dashboard/alerts/recent", c.DoCalls()[0].Path)
	is.Equal("20", c.DoCalls()[0].Params.Query.Get("limit"))
}

func TestScopedPaths(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	c := &client.APIClientMock{
		DoFunc: func(ctx context.Context, method, path string, params client.Params, out any) error {
			return nil
		},
	}
	svc := New(c)

	_, _ = svc.GardenZones(ctx, 3)
	_, _ = svc.ZoneSensors(ctx, 5)
	_, _ = svc.ZoneIrrigation(ctx, 5, 0)
	_, _ = svc.WaterUsageWeekly(ctx)
	_, _ = svc.OpenValves(ctx)

	calls := c.DoCalls()
	is.Equal(5, len(calls))
	is.Equal("/dashboard/gardens/3/zones", calls[0].Path)
	is.Equal("/dashboard/zones/5/sensors", calls[1].Path)
	is.Equal("/dashboard/zones/5/irrigation", calls[2].Path)
	is.Equal("10", calls[2].Params.Query.Get("limit"))
	is.Equal("/dashboard/water-usage/weekly", calls[3].Path)
	is.Equal("/dashboard/valves/open", calls[4].Path)
}

func TestResolveAlertIssuesOnePut(t *testing.T) {
	is := is.New(t)

	c := &client.APIClientMock{
		DoFunc: func(ctx context.Context, method, path string, params client.Params, out any) error {
			return nil
		},
	}

	err := New(c).ResolveAlert(context.Background(), 7)
	is.NoErr(err)

	is.Equal(1, len(c.DoCalls()))
	is.Equal(http.MethodPut, c.DoCalls()[0].Method)
	is.Equal("/dashboard/alerts/7/resolve", c.DoCalls()[0].Path)
	is.Equal(nil, c.DoCalls()[0].Out)
}

func TestServerMessageIsUsedForErrors(t *testing.T) {
	is := is.New(t)

	s := test.NewMockServiceThat(
		test.Expects(is,
			expects.RequestPath("/dashboard/zones/99"),
			expects.RequestMethod(http.MethodGet),
		),
		test.Returns(
			response.ContentType("application/json"),
			response.Code(http.StatusNotFound),
			response.Body([]byte(`{"message":"Zone not found"}`)),
		),
	)
	defer s.Close()

	_, err := New(client.New(s.URL())).Zone(context.Background(), 99)
	is.True(err != nil)

	var svcErr *Error
	is.True(errors.As(err, &svcErr))
	is.Equal("Zone not found", svcErr.Message)

	var httpErr *client.HTTPError
	is.True(errors.As(err, &httpErr))
	is.Equal(http.StatusNotFound, httpErr.StatusCode)
}

func TestTransportFailureKeepsCause(t *testing.T) {
	is := is.New(t)

	s := test.NewMockServiceThat(test.Expects(is), test.Returns(response.Code(http.StatusOK)))
	url := s.URL()
	s.Close()

	_, err := New(client.New(url)).Summary(context.Background())
	is.True(errors.Is(err, client.ErrNetwork))
	is.True(err.Error() != "")
}

func TestAlertCountByTypeDecodesMap(t *testing.T) {
	is := is.New(t)

	s := test.NewMockServiceThat(
		test.Expects(is,
			expects.RequestPath("/dashboard/alerts/count-by-type"),
		),
		test.Returns(
			response.ContentType("application/json"),
			response.Code(http.StatusOK),
			response.Body([]byte(`{"LOW_WATER":2,"DRY_SOIL":1}`)),
		),
	)
	defer s.Close()

	counts, err := New(client.New(s.URL())).AlertCountByType(context.Background())
	is.NoErr(err)
	is.Equal(2, counts["LOW_WATER"])
	is.Equal(1, counts["DRY_SOIL"])
}
