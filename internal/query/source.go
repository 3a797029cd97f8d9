package query

import (
	"context"
	"encoding/json"
	"time"
)

// Data-source endpoints.
const (
	EndpointAirQuality    = "/air-quality"
	EndpointAirTrends     = "/air-quality-trends"
	EndpointWaterQuality  = "/water-quality"
	EndpointWaste         = "/waste-statistics"
	EndpointStationStatus = "/station-status"
	EndpointNoise         = "/noise-data"
	EndpointEnvIndicators = "/environmental-indicators"
)

const (
	defaultFailureMessage  = "無資料"
	defaultSuccessMessage  = "資料載入成功"
	unknownEndpointMessage = "端點不存在"
)

// Endpoints lists every endpoint a data source is expected to serve.
var Endpoints = []string{
	EndpointAirQuality,
	EndpointAirTrends,
	EndpointWaterQuality,
	EndpointWaste,
	EndpointStationStatus,
	EndpointNoise,
	EndpointEnvIndicators,
}

// UnknownEndpoint is the response a data source returns for an endpoint it
// does not serve.
func UnknownEndpoint() Response {
	return Response{Success: false, Message: unknownEndpointMessage, Data: json.RawMessage(`[]`)}
}

// Params are optional filter parameters passed through to the data source.
type Params map[string]string

// Response is the envelope every data source returns.
type Response struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`
	Version   string          `json:"version,omitempty"`
}

// DataSource fetches raw payloads by endpoint. An error means the source
// could not be reached; a reachable source reporting no data returns a
// Response with Success false.
type DataSource interface {
	Get(ctx context.Context, endpoint string, params Params) (Response, error)
}
