package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/citypath/service-routing/internal/application"
	"github.com/citypath/service-routing/internal/config"
	"github.com/citypath/service-routing/internal/domain/errs"
	"github.com/citypath/service-routing/internal/domain/geo"
	routeDomain "github.com/citypath/service-routing/internal/domain/route"
	"github.com/citypath/service-routing/internal/domain/streetgraph"
)

type stubProvider struct {
	graph *streetgraph.Graph
	err   error
}

func (s *stubProvider) FetchGraph(_ context.Context, _, _ geo.Coordinate) (*streetgraph.Graph, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.graph, nil
}

type memoryHistory struct {
	records []*routeDomain.Record
}

func (m *memoryHistory) Save(_ context.Context, rec *routeDomain.Record) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memoryHistory) FindByID(_ context.Context, id uuid.UUID) (*routeDomain.Record, error) {
	for _, rec := range m.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, errs.NewNotFoundError("route", id.String())
}

func (m *memoryHistory) ListAll(_ context.Context, _, _ int) ([]*routeDomain.Record, int64, error) {
	return m.records, int64(len(m.records)), nil
}

func milanGraph() *streetgraph.Graph {
	g := streetgraph.New(geo.BoundingBox{North: 90, South: -90, East: 180, West: -180})
	g.AddNode(1, 45.4642, 9.19)
	g.AddNode(2, 45.4720, 9.22)
	g.AddNode(3, 45.4800, 9.25)
	g.AddEdge(1, 2, 1000, 30)
	g.AddEdge(2, 1, 1000, 30)
	g.AddEdge(2, 3, 1500, 30)
	g.AddEdge(3, 2, 1500, 30)
	return g
}

func newTestRouter(provider application.GraphProvider, history routeDomain.HistoryRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := config.RoutingConfig{
		MaxGraphRadiusM:  15000,
		SnapMaxDistanceM: 500,
		DefaultSpeedKMH:  40,
	}
	svc := application.NewRoutingService(provider, history, nil, cfg, zap.NewNop())

	router := gin.New()
	NewRouteHandler(svc).RegisterRoutes(&router.RouterGroup)
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const validRouteBody = `{
  "origin": {"lat": 45.4642, "lon": 9.19},
  "destination": {"lat": 45.48, "lon": 9.25}
}`

func TestComputeRouteEndpoint(t *testing.T) {
	router := newTestRouter(&stubProvider{graph: milanGraph()}, nil)

	w := doRequest(router, http.MethodPost, "/api/v1/routes", validRouteBody)
	require.Equal(t, http.StatusOK, w.Code)

	var result application.RouteResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	assert.InDelta(t, 2500, result.DistanceM, 1e-9)
	assert.Equal(t, "LineString", result.Geometry.Type)
	require.Len(t, result.Geometry.Coordinates, 3)
	assert.Equal(t, []float64{45.4642, 9.19}, result.Geometry.Coordinates[0])
	assert.Len(t, result.Steps, 2)
}

func TestComputeRouteEndpointMalformedBody(t *testing.T) {
	router := newTestRouter(&stubProvider{graph: milanGraph()}, nil)

	w := doRequest(router, http.MethodPost, "/api/v1/routes", `{"origin": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestComputeRouteEndpointMissingDestination(t *testing.T) {
	router := newTestRouter(&stubProvider{graph: milanGraph()}, nil)

	w := doRequest(router, http.MethodPost, "/api/v1/routes",
		`{"origin": {"lat": 45.4642, "lon": 9.19}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestComputeRouteEndpointInvalidCoordinate(t *testing.T) {
	router := newTestRouter(&stubProvider{graph: milanGraph()}, nil)

	w := doRequest(router, http.MethodPost, "/api/v1/routes", `{
	  "origin": {"lat": 91, "lon": 9.19},
	  "destination": {"lat": 45.48, "lon": 9.25}
	}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "latitude")
}

func TestComputeRouteEndpointNoRoute(t *testing.T) {
	g := milanGraph()
	g.AddNode(4, 45.49, 9.30) // isolated
	router := newTestRouter(&stubProvider{graph: g}, nil)

	w := doRequest(router, http.MethodPost, "/api/v1/routes", `{
	  "origin": {"lat": 45.4642, "lon": 9.19},
	  "destination": {"lat": 45.49, "lon": 9.30}
	}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestComputeRouteEndpointUpstreamFailure(t *testing.T) {
	provider := &stubProvider{err: errs.NewDependencyError("overpass unavailable", nil)}
	router := newTestRouter(provider, nil)

	w := doRequest(router, http.MethodPost, "/api/v1/routes", validRouteBody)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHistoryEndpointsHiddenWithoutPersistence(t *testing.T) {
	router := newTestRouter(&stubProvider{graph: milanGraph()}, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/routes", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListRoutesEndpoint(t *testing.T) {
	history := &memoryHistory{}
	router := newTestRouter(&stubProvider{graph: milanGraph()}, history)

	w := doRequest(router, http.MethodPost, "/api/v1/routes", validRouteBody)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/routes?page=1&limit=500", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data       []application.RouteRecordDTO `json:"data"`
		Pagination struct {
			Total int64 `json:"total"`
			Page  int   `json:"page"`
			Limit int   `json:"limit"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, int64(1), body.Pagination.Total)
	assert.Equal(t, 1, body.Pagination.Page)
	// Oversized limits are capped.
	assert.Equal(t, 100, body.Pagination.Limit)
	require.Len(t, body.Data, 1)
	assert.InDelta(t, 2500, body.Data[0].DistanceM, 1e-9)
}

func TestGetRouteEndpoint(t *testing.T) {
	history := &memoryHistory{}
	router := newTestRouter(&stubProvider{graph: milanGraph()}, history)

	w := doRequest(router, http.MethodPost, "/api/v1/routes", validRouteBody)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, history.records, 1)

	id := history.records[0].ID
	w = doRequest(router, http.MethodGet, "/api/v1/routes/"+id.String(), "")
	require.Equal(t, http.StatusOK, w.Code)

	var dto application.RouteRecordDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dto))
	assert.Equal(t, id, dto.ID)
	assert.Equal(t, "distance", dto.Mode)
}

func TestGetRouteEndpointInvalidID(t *testing.T) {
	router := newTestRouter(&stubProvider{graph: milanGraph()}, &memoryHistory{})

	w := doRequest(router, http.MethodGet, "/api/v1/routes/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRouteEndpointUnknownID(t *testing.T) {
	router := newTestRouter(&stubProvider{graph: milanGraph()}, &memoryHistory{})

	w := doRequest(router, http.MethodGet, "/api/v1/routes/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHealthHandler(nil, "service-routing", "0.1.0", "test").RegisterRoutes(router)

	w := doRequest(router, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "service-routing", body["service"])
}
