package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/citypath/service-routing/internal/config"
	"github.com/citypath/service-routing/internal/domain/errs"
	"github.com/citypath/service-routing/internal/domain/geo"
	routeDomain "github.com/citypath/service-routing/internal/domain/route"
	"github.com/citypath/service-routing/internal/domain/streetgraph"
	"github.com/citypath/service-routing/internal/events"
)

// GraphProvider is the narrow port for street-network extraction, so the
// concrete data source can be swapped without touching this service.
type GraphProvider interface {
	FetchGraph(ctx context.Context, origin, destination geo.Coordinate) (*streetgraph.Graph, error)
}

// RoutingService orchestrates one routing request: validate, ensure a graph,
// snap the endpoints, compute the shortest path and assemble the result.
// History persistence and event publishing are byproducts and never fail a
// request.
type RoutingService struct {
	provider  GraphProvider
	history   routeDomain.HistoryRepository
	publisher *events.Publisher
	cfg       config.RoutingConfig
	logger    *zap.Logger
}

// NewRoutingService creates a new RoutingService. history and publisher may
// be nil when persistence or event streaming is not configured.
func NewRoutingService(
	provider GraphProvider,
	history routeDomain.HistoryRepository,
	publisher *events.Publisher,
	cfg config.RoutingConfig,
	logger *zap.Logger,
) *RoutingService {
	return &RoutingService{
		provider:  provider,
		history:   history,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// HistoryEnabled reports whether route history persistence is configured.
func (s *RoutingService) HistoryEnabled() bool {
	return s.history != nil
}

// ComputeRoute computes the shortest path between the request's origin and
// destination. Each call is handled independently and statelessly.
func (s *RoutingService) ComputeRoute(ctx context.Context, req RouteRequest) (*RouteResult, error) {
	start := time.Now()

	origin, destination, mode, err := validateRequest(req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("routing request received",
		zap.Float64("origin_lat", origin.Lat),
		zap.Float64("origin_lon", origin.Lon),
		zap.Float64("destination_lat", destination.Lat),
		zap.Float64("destination_lon", destination.Lon),
		zap.String("mode", string(mode)),
	)

	g, err := s.provider.FetchGraph(ctx, origin, destination)
	if err != nil {
		return nil, err
	}

	originNode, err := s.snap(g, origin, "origin")
	if err != nil {
		return nil, err
	}
	destNode, err := s.snap(g, destination, "destination")
	if err != nil {
		return nil, err
	}

	path, found := g.ShortestPath(originNode, destNode, mode)
	if !found {
		return nil, errs.NewNotFoundError("route", "no path between origin and destination")
	}

	result := s.assembleResult(g, path)

	s.logger.Info("route computed",
		zap.Int("path_nodes", len(path)),
		zap.Float64("distance_m", result.DistanceM),
		zap.Float64("duration_s", result.DurationS),
		zap.Duration("elapsed", time.Since(start)),
	)

	s.recordRoute(ctx, origin, destination, mode, result, len(path))
	return result, nil
}

// GetRouteRecord retrieves a single history record by ID.
func (s *RoutingService) GetRouteRecord(ctx context.Context, id uuid.UUID) (*RouteRecordDTO, error) {
	if s.history == nil {
		return nil, errs.NewNotFoundError("route", id.String())
	}
	rec, err := s.history.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toRouteRecordDTO(rec)
	return &dto, nil
}

// ListRouteRecords retrieves paginated history records, newest first.
func (s *RoutingService) ListRouteRecords(ctx context.Context, page, limit int) ([]RouteRecordDTO, int64, error) {
	if s.history == nil {
		return nil, 0, nil
	}
	records, total, err := s.history.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list route records: %w", err)
	}

	dtos := make([]RouteRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toRouteRecordDTO(rec)
	}
	return dtos, total, nil
}

// --- Helpers ---

func validateRequest(req RouteRequest) (geo.Coordinate, geo.Coordinate, streetgraph.Mode, error) {
	var zero geo.Coordinate
	if req.Origin == nil {
		return zero, zero, "", errs.NewValidationError("origin is required")
	}
	if req.Destination == nil {
		return zero, zero, "", errs.NewValidationError("destination is required")
	}
	if err := req.Origin.Validate(); err != nil {
		return zero, zero, "", err
	}
	if err := req.Destination.Validate(); err != nil {
		return zero, zero, "", err
	}

	mode := streetgraph.Mode(req.Mode)
	if req.Mode == "" {
		mode = streetgraph.ModeDistance
	}
	if !mode.IsValid() {
		return zero, zero, "", errs.NewValidationError(
			fmt.Sprintf("unknown routing mode %q", req.Mode))
	}
	return *req.Origin, *req.Destination, mode, nil
}

func (s *RoutingService) snap(g *streetgraph.Graph, c geo.Coordinate, role string) (streetgraph.NodeID, error) {
	node, distM, ok := g.NearestNode(c)
	if !ok {
		return 0, errs.NewNotFoundError("route", "street network contains no nodes")
	}
	if distM > s.cfg.SnapMaxDistanceM {
		return 0, errs.NewNotFoundError("route",
			fmt.Sprintf("%s is %.0f m from the nearest street, beyond the %.0f m snap limit",
				role, distM, s.cfg.SnapMaxDistanceM))
	}

	s.logger.Debug("coordinate snapped",
		zap.String("role", role),
		zap.Int64("node", int64(node)),
		zap.Float64("snap_distance_m", distM),
	)
	return node, nil
}

func (s *RoutingService) assembleResult(g *streetgraph.Graph, path []streetgraph.NodeID) *RouteResult {
	coords := make([][]float64, 0, len(path))
	for _, id := range path {
		n := g.Nodes[id]
		coords = append(coords, []float64{n.Lat, n.Lon})
	}

	steps := make([]RouteStep, 0, len(path))
	var distanceM, durationS float64
	for i := 0; i+1 < len(path); i++ {
		edge, ok := g.EdgeBetween(path[i], path[i+1])
		if !ok {
			continue
		}
		dur := edge.DurationS()
		distanceM += edge.LengthM
		durationS += dur
		steps = append(steps, RouteStep{
			FromNode:  int64(path[i]),
			ToNode:    int64(path[i+1]),
			DistanceM: edge.LengthM,
			DurationS: dur,
		})
	}

	warnings := []string{}
	if distanceM > 2*s.cfg.MaxGraphRadiusM {
		warnings = append(warnings, fmt.Sprintf(
			"route distance (%.0f m) exceeds twice the maximum graph radius (%.0f m); the network extent may truncate the route",
			distanceM, s.cfg.MaxGraphRadiusM))
	}

	return &RouteResult{
		DistanceM: distanceM,
		DurationS: durationS,
		Geometry: RouteGeometry{
			Type:        "LineString",
			Coordinates: coords,
		},
		Summary: RouteSummary{
			DistanceM: distanceM,
			DurationS: durationS,
			Geometry:  coords,
		},
		Steps:    steps,
		Warnings: warnings,
	}
}

// recordRoute persists the history row and publishes the route.computed
// event. Failures here are logged, never surfaced: the route was already
// computed successfully.
func (s *RoutingService) recordRoute(
	ctx context.Context,
	origin, destination geo.Coordinate,
	mode streetgraph.Mode,
	result *RouteResult,
	nodeCount int,
) {
	routeID := uuid.New()

	if s.history != nil {
		rec := routeDomain.NewRecord(origin, destination, string(mode),
			result.DistanceM, result.DurationS, nodeCount)
		rec.ID = routeID
		if err := s.history.Save(ctx, rec); err != nil {
			s.logger.Error("failed to persist route record",
				zap.String("route_id", routeID.String()),
				zap.Error(err),
			)
		}
	}

	if s.publisher != nil {
		evt := events.RouteComputedEvent{
			RouteID:     routeID,
			Origin:      origin,
			Destination: destination,
			Mode:        string(mode),
			DistanceM:   result.DistanceM,
			DurationS:   result.DurationS,
			NodeCount:   nodeCount,
			OccurredAt:  time.Now().UTC(),
		}
		ce, err := events.NewCloudEvent("service-routing", events.RouteComputed, evt)
		if err != nil {
			s.logger.Error("failed to create cloud event", zap.Error(err))
			return
		}
		if err := s.publisher.Publish(ctx, routeID.String(), ce); err != nil {
			s.logger.Error("failed to publish route.computed event",
				zap.String("route_id", routeID.String()),
				zap.Error(err),
			)
		}
	}
}

func toRouteRecordDTO(rec *routeDomain.Record) RouteRecordDTO {
	return RouteRecordDTO{
		ID:          rec.ID,
		Origin:      rec.Origin,
		Destination: rec.Destination,
		Mode:        rec.Mode,
		DistanceM:   rec.DistanceM,
		DurationS:   rec.DurationS,
		NodeCount:   rec.NodeCount,
		CreatedAt:   rec.CreatedAt,
	}
}
