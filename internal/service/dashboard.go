package service

import (
	"context"
	"net/url"

	"github.com/dataservice/chat2query/internal/client"
	"github.com/dataservice/chat2query/pkg/log"
)

// DataAPI is the part of the Data API client used by DashboardService.
type DataAPI interface {
	Query(ctx context.Context, endpoint string, params url.Values) (*client.SQLEndpointResponse, error)
}

// DashboardService proxies the SQL endpoints of a Data API application.
type DashboardService struct {
	dataAPI DataAPI
	logger  *log.StructuredLogger
}

// NewDashboardService accepts a nil client; every query then fails with
// ErrDataAPIDisabled.
func NewDashboardService(dataAPI DataAPI) *DashboardService {
	return &DashboardService{
		dataAPI: dataAPI,
		logger:  log.NewDebugLogger("dashboard_service"),
	}
}

func (ds *DashboardService) Query(ctx context.Context, endpoint string, params url.Values) (*client.SQLEndpointResponse, error) {
	tracer := ds.logger.WithContext(ctx).Operation("query_endpoint").WithString("endpoint", endpoint).Build()

	if ds.dataAPI == nil {
		return nil, NewErrDataAPIDisabled()
	}

	resp, err := ds.dataAPI.Query(ctx, endpoint, params)
	if err != nil {
		tracer.Error(err).Log()
		return nil, err
	}

	tracer.Success().WithInt("rows", len(resp.Data.Rows)).Log()
	return resp, nil
}
