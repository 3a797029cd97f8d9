package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/envmon-service/internal/domain"
	"github.com/couchcryptid/envmon-service/internal/observability"
	"github.com/couchcryptid/envmon-service/internal/query"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gorilla/mux"
)

const (
	defaultNearestLimit = 5
	maxNearestLimit     = 50

	sourceUnavailableMessage = "資料來源暫時無法使用"
)

// Metric domain labels.
const (
	domainAir      = "air_quality"
	domainWater    = "water_quality"
	domainWaste    = "waste"
	domainStations = "stations"
	domainOverview = "overview"
)

// errBadRequest marks a query the caller got wrong; it maps to 400.
var errBadRequest = errors.New("bad request")

type api struct {
	services *query.Services
	metrics  *observability.Metrics
	logger   *slog.Logger
}

func (a *api) routes(r *mux.Router) {
	get := func(path string, h http.HandlerFunc) {
		r.HandleFunc(path, h).Methods(http.MethodGet)
	}

	air := a.services.Air
	get("/air-quality", handle(a, domainAir, func(r *http.Request, p query.Params) (query.Result[[]domain.Record], error) {
		q := r.URL.Query()
		switch {
		case q.Get("county") != "":
			return air.ByCounty(r.Context(), q.Get("county"), p)
		case q.Get("site") != "":
			return air.BySite(r.Context(), q.Get("site"), p)
		default:
			return air.Current(r.Context(), p)
		}
	}))
	get("/air-quality/stations", handle(a, domainAir, func(r *http.Request, p query.Params) (query.Result[[]domain.Record], error) {
		return air.Stations(r.Context(), p)
	}))
	get("/air-quality/summary", handle(a, domainAir, func(r *http.Request, p query.Params) (query.Result[[]query.CountySummary], error) {
		return air.CountySummaries(r.Context(), p)
	}))
	get("/air-quality/statistics", handle(a, domainAir, func(r *http.Request, p query.Params) (query.Result[query.AirStatistics], error) {
		return air.Statistics(r.Context(), p)
	}))
	get("/air-quality/trends", handle(a, domainAir, func(r *http.Request, p query.Params) (query.Result[query.AirTrends], error) {
		return air.Trends(r.Context(), p)
	}))

	water := a.services.Water
	get("/water-quality", handle(a, domainWater, func(r *http.Request, p query.Params) (query.Result[[]domain.Record], error) {
		q := r.URL.Query()
		switch {
		case q.Get("county") != "":
			return water.ByCounty(r.Context(), q.Get("county"), p)
		case q.Get("site") != "":
			return water.BySite(r.Context(), q.Get("site"), p)
		default:
			return water.Rivers(r.Context(), p)
		}
	}))
	get("/water-quality/rivers", handle(a, domainWater, func(r *http.Request, p query.Params) (query.Result[map[string][]domain.Record], error) {
		return water.GroupByRiver(r.Context(), p)
	}))
	get("/water-quality/locations", handle(a, domainWater, func(r *http.Request, p query.Params) (query.Result[map[string][]domain.Record], error) {
		return water.GroupByLocation(r.Context(), p)
	}))
	get("/water-quality/statistics", handle(a, domainWater, func(r *http.Request, p query.Params) (query.Result[query.WaterStatistics], error) {
		return water.Statistics(r.Context(), p)
	}))

	waste := a.services.Waste
	get("/waste", handle(a, domainWaste, func(r *http.Request, p query.Params) (query.Result[query.WasteStatistics], error) {
		return waste.Statistics(r.Context(), p)
	}))
	get("/waste/monthly", handle(a, domainWaste, func(r *http.Request, p query.Params) (query.Result[[]domain.MonthlyWaste], error) {
		return waste.Monthly(r.Context(), p)
	}))
	get("/waste/regions", handle(a, domainWaste, func(r *http.Request, p query.Params) (query.Result[[]domain.RegionalWaste], error) {
		if region := r.URL.Query().Get("region"); region != "" {
			return waste.ByRegion(r.Context(), region, p)
		}
		return waste.Regional(r.Context(), p)
	}))
	get("/waste/regions/summary", handle(a, domainWaste, func(r *http.Request, p query.Params) (query.Result[query.RegionalSummary], error) {
		return waste.RegionalSummary(r.Context(), p)
	}))

	stations := a.services.Stations
	get("/stations", handle(a, domainStations, func(r *http.Request, p query.Params) (query.Result[[]domain.Record], error) {
		if t := r.URL.Query().Get("type"); t != "" {
			return stations.ByType(r.Context(), t, p)
		}
		return stations.All(r.Context(), p)
	}))
	get("/stations/statistics", handle(a, domainStations, func(r *http.Request, p query.Params) (query.Result[domain.StationStatistics], error) {
		return stations.Statistics(r.Context(), p)
	}))
	get("/stations/density", handle(a, domainStations, func(r *http.Request, p query.Params) (query.Result[[]query.CountyDensity], error) {
		return stations.Density(r.Context(), p)
	}))
	get("/stations/nearest", handle(a, domainStations, func(r *http.Request, p query.Params) (query.Result[[]domain.NearbyRecord], error) {
		lat, lng, limit, err := nearestArgs(r)
		if err != nil {
			return query.Result[[]domain.NearbyRecord]{}, err
		}
		return stations.Nearest(r.Context(), lat, lng, limit, p)
	}))
	get("/stations/{id}", handle(a, domainStations, func(r *http.Request, p query.Params) (query.Result[[]query.StationDetail], error) {
		return stations.Detail(r.Context(), mux.Vars(r)["id"], p)
	}))

	overview := a.services.Overview
	get("/noise", handle(a, domainOverview, func(r *http.Request, p query.Params) (query.Result[[]query.NoiseReading], error) {
		return overview.Noise(r.Context(), p)
	}))
	get("/indicators", handle(a, domainOverview, func(r *http.Request, p query.Params) (query.Result[query.Indicators], error) {
		return overview.Indicators(r.Context(), p)
	}))
}

// handle runs a façade query and writes its result. Source failures become
// 502, caller mistakes 400; an unsuccessful result is still a 200 carrying
// the source's message.
func handle[T any](a *api, domainName string, fn func(*http.Request, query.Params) (query.Result[T], error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		res, err := fn(r, paramsFrom(r))
		a.metrics.QueryDuration.WithLabelValues(domainName).Observe(time.Since(start).Seconds())

		switch {
		case errors.Is(err, errBadRequest):
			a.metrics.QueryRequests.WithLabelValues(domainName, "bad_request").Inc()
			sharedobs.WriteJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		case err != nil:
			a.metrics.QueryRequests.WithLabelValues(domainName, "error").Inc()
			a.logger.Error("query failed",
				"domain", domainName,
				"path", r.URL.Path,
				"request_id", RequestIDFrom(r.Context()),
				"error", err,
			)
			sharedobs.WriteJSON(w, http.StatusBadGateway, errorBody(sourceUnavailableMessage))
		default:
			a.metrics.QueryRequests.WithLabelValues(domainName, outcome(res.Success, res.Total)).Inc()
			sharedobs.WriteJSON(w, http.StatusOK, res)
		}
	}
}

func outcome(success bool, total int) string {
	switch {
	case !success:
		return "unavailable"
	case total == 0:
		return "empty"
	default:
		return "success"
	}
}

func errorBody(message string) map[string]any {
	return map[string]any{"success": false, "message": message}
}

// paramsFrom forwards the first value of every query parameter to the data source.
func paramsFrom(r *http.Request) query.Params {
	q := r.URL.Query()
	if len(q) == 0 {
		return nil
	}
	p := make(query.Params, len(q))
	for k, v := range q {
		if len(v) > 0 {
			p[k] = v[0]
		}
	}
	return p
}

func nearestArgs(r *http.Request) (lat, lng float64, limit int, err error) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	if errLat != nil || errLng != nil || !domain.ValidCoordinates(lat, lng) {
		return 0, 0, 0, fmt.Errorf("%w: lat and lng must be valid WGS-84 coordinates", errBadRequest)
	}

	limit = defaultNearestLimit
	if s := q.Get("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 1 || limit > maxNearestLimit {
			return 0, 0, 0, fmt.Errorf("%w: limit must be 1-%d", errBadRequest, maxNearestLimit)
		}
	}
	return lat, lng, limit, nil
}
