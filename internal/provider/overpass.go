// Package provider fetches street networks from the Overpass API, scoped to
// a bounding area sized for one origin/destination pair. Extraction results
// are stored in the graph cache so overlapping requests skip the upstream
// round trip.
package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/paulmach/osm"
	"go.uber.org/zap"

	"github.com/citypath/service-routing/internal/cache"
	"github.com/citypath/service-routing/internal/config"
	"github.com/citypath/service-routing/internal/domain/errs"
	"github.com/citypath/service-routing/internal/domain/geo"
	"github.com/citypath/service-routing/internal/domain/streetgraph"
)

// quantizeStepDeg is the grid step for cache keys, roughly 1.1 km of
// latitude. Requests whose padded areas quantize to the same box share one
// cached graph.
const quantizeStepDeg = 0.01

// graphRadiusPaddingM is added to the scaled OD distance so short trips
// still get a workable surrounding network.
const graphRadiusPaddingM = 2000.0

// OverpassProvider extracts routable street graphs around an OD pair.
type OverpassProvider struct {
	cfg    config.RoutingConfig
	cache  *cache.GraphCache
	client *http.Client
	log    *zap.Logger
}

// NewOverpassProvider creates a provider backed by the given cache.
func NewOverpassProvider(cfg config.RoutingConfig, graphCache *cache.GraphCache, log *zap.Logger) *OverpassProvider {
	return &OverpassProvider{
		cfg:   cfg,
		cache: graphCache,
		client: &http.Client{
			Timeout: cfg.OverpassTimeout,
		},
		log: log,
	}
}

// FetchGraph returns a street graph covering both endpoints, consulting the
// cache before querying Overpass. The bounding area is a box around the OD
// midpoint with radius min(1.5*distance + padding, MaxGraphRadiusM): scope is
// kept as tight as possible because extraction latency and memory grow with
// area.
func (p *OverpassProvider) FetchGraph(ctx context.Context, origin, destination geo.Coordinate) (*streetgraph.Graph, error) {
	distanceM := origin.DistanceM(destination)

	// A circle of radius R can only contain both endpoints if their
	// separation is at most 2R.
	if distanceM > 2*p.cfg.MaxGraphRadiusM {
		p.log.Warn("OD distance exceeds maximum coverable separation",
			zap.Float64("distance_m", distanceM),
			zap.Float64("max_radius_m", p.cfg.MaxGraphRadiusM),
		)
	}

	radiusM := 1.5*distanceM + graphRadiusPaddingM
	if radiusM > p.cfg.MaxGraphRadiusM {
		radiusM = p.cfg.MaxGraphRadiusM
	}

	scope := geo.BoxFromCenter(origin.Midpoint(destination), radiusM).Quantized(quantizeStepDeg)
	key := scope.Key()

	if g, ok := p.cache.Get(key, scope); ok {
		p.log.Debug("graph cache hit", zap.String("key", key))
		return g, nil
	}

	p.log.Info("extracting street network",
		zap.String("key", key),
		zap.Float64("radius_m", radiusM),
	)

	data, err := p.query(ctx, scope)
	if err != nil {
		return nil, err
	}

	g, err := p.buildGraph(data, scope)
	if err != nil {
		return nil, err
	}

	p.log.Info("street network ready",
		zap.String("key", key),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
	)

	p.cache.Put(key, g)
	return g, nil
}

func (p *OverpassProvider) query(ctx context.Context, scope geo.BoundingBox) (*osm.OSM, error) {
	// Ways tagged highway within the box, plus the nodes they reference.
	q := fmt.Sprintf(
		`[out:json];way["highway"](%f,%f,%f,%f);(._;>;);out body;`,
		scope.South, scope.West, scope.North, scope.East,
	)

	form := url.Values{"data": {q}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.OverpassURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errs.NewDependencyError("failed to build overpass request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errs.NewDependencyError("street network extraction failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.NewDependencyError(
			fmt.Sprintf("overpass returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.NewDependencyError("failed to read overpass response", err)
	}

	var data osm.OSM
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, errs.NewDependencyError("failed to decode overpass response", err)
	}
	return &data, nil
}

func (p *OverpassProvider) buildGraph(data *osm.OSM, scope geo.BoundingBox) (*streetgraph.Graph, error) {
	coords := make(map[osm.NodeID]geo.Coordinate, len(data.Nodes))
	for _, n := range data.Nodes {
		coords[n.ID] = geo.Coordinate{Lat: n.Lat, Lon: n.Lon}
	}

	g := streetgraph.New(scope)

	for _, way := range data.Ways {
		highway := way.Tags.Find("highway")
		if !routableHighway(highway) {
			continue
		}

		speed := p.waySpeedKMH(way, highway)
		forward, backward := wayDirections(way)

		for i := 0; i+1 < len(way.Nodes); i++ {
			fromID := way.Nodes[i].ID
			toID := way.Nodes[i+1].ID

			from, okFrom := coords[fromID]
			to, okTo := coords[toID]
			if !okFrom || !okTo {
				continue
			}

			g.AddNode(streetgraph.NodeID(fromID), from.Lat, from.Lon)
			g.AddNode(streetgraph.NodeID(toID), to.Lat, to.Lon)

			lengthM := from.DistanceM(to)
			if forward {
				g.AddEdge(streetgraph.NodeID(fromID), streetgraph.NodeID(toID), lengthM, speed)
			}
			if backward {
				g.AddEdge(streetgraph.NodeID(toID), streetgraph.NodeID(fromID), lengthM, speed)
			}
		}
	}

	if g.NodeCount() == 0 || g.EdgeCount() == 0 {
		return nil, errs.NewDependencyError("no street network data for the requested area", nil)
	}
	return g, nil
}

// wayDirections resolves the oneway tagging into forward/backward edge
// directions along the way's node order.
func wayDirections(way *osm.Way) (forward, backward bool) {
	switch way.Tags.Find("oneway") {
	case "yes", "true", "1":
		return true, false
	case "-1":
		return false, true
	}
	if way.Tags.Find("junction") == "roundabout" {
		return true, false
	}
	return true, true
}

// routableHighway filters for the drivable street classes.
func routableHighway(value string) bool {
	switch value {
	case "motorway", "motorway_link",
		"trunk", "trunk_link",
		"primary", "primary_link",
		"secondary", "secondary_link",
		"tertiary", "tertiary_link",
		"unclassified", "residential",
		"living_street", "service":
		return true
	}
	return false
}

// defaultClassSpeedKMH maps highway classes to an assumed speed when no
// usable maxspeed tag is present.
var defaultClassSpeedKMH = map[string]float64{
	"motorway":       100,
	"motorway_link":  60,
	"trunk":          80,
	"trunk_link":     50,
	"primary":        60,
	"primary_link":   40,
	"secondary":      50,
	"secondary_link": 40,
	"tertiary":       40,
	"residential":    30,
	"living_street":  10,
	"service":        20,
}

func (p *OverpassProvider) waySpeedKMH(way *osm.Way, highway string) float64 {
	if s, ok := parseMaxspeed(way.Tags.Find("maxspeed")); ok {
		return s
	}
	if s, ok := defaultClassSpeedKMH[highway]; ok {
		return s
	}
	return p.cfg.DefaultSpeedKMH
}

func parseMaxspeed(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	mph := false
	if strings.HasSuffix(raw, "mph") {
		mph = true
		raw = strings.TrimSpace(strings.TrimSuffix(raw, "mph"))
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	if mph {
		v *= 1.609344
	}
	return v, true
}
