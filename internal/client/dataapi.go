package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dataservice/chat2query/pkg/metrics"
	"go.uber.org/zap"
)

const dataAPIEndpointLabel = "data_api"

// DataAPI queries the SQL endpoints published by a Data API application.
type DataAPI struct {
	service    DataAPIService
	httpClient *http.Client
}

func NewDataAPI(service DataAPIService, httpClient *http.Client) *DataAPI {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &DataAPI{service: service, httpClient: httpClient}
}

type EndpointColumn struct {
	Col      string `json:"col"`
	DataType string `json:"data_type"`
	Nullable bool   `json:"nullable"`
}

type EndpointResult struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Latency   string `json:"latency,omitempty"`
	RowCount  int    `json:"row_count,omitempty"`
	RowAffect int    `json:"row_affect,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

type EndpointData struct {
	Columns []EndpointColumn `json:"columns"`
	Rows    []map[string]any `json:"rows"`
	Result  EndpointResult   `json:"result"`
}

// SQLEndpointResponse is the body returned by a SQL endpoint.
type SQLEndpointResponse struct {
	Type string       `json:"type"`
	Data EndpointData `json:"data"`
}

func (r *SQLEndpointResponse) ColumnNames() []string {
	names := make([]string, 0, len(r.Data.Columns))
	for _, c := range r.Data.Columns {
		names = append(names, c.Col)
	}
	return names
}

// Query calls GET <server>/<endpoint>?params. A result code other than 200 is
// returned as an *ApplicationFailure.
func (d *DataAPI) Query(ctx context.Context, endpoint string, params url.Values) (*SQLEndpointResponse, error) {
	resp, err := d.query(ctx, endpoint, params)
	metrics.IncreaseRemoteRequestsMetric(dataAPIEndpointLabel, outcome(err))
	if err != nil {
		zap.S().Named("data_api_client").Debugw("query failed", "endpoint", endpoint, "error", err)
	}
	return resp, err
}

func (d *DataAPI) query(ctx context.Context, endpoint string, params url.Values) (*SQLEndpointResponse, error) {
	path := "/" + strings.TrimLeft(endpoint, "/")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	raw, err := send(ctx, d.httpClient, http.MethodGet, d.service.Server, path, d.service.Credentials, nil)
	if err != nil {
		return nil, err
	}

	var resp SQLEndpointResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if resp.Data.Result.Code != http.StatusOK {
		return nil, &ApplicationFailure{Code: resp.Data.Result.Code, Message: resp.Data.Result.Message}
	}
	return &resp, nil
}
