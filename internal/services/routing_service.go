package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/saferoute-backend/internal/config"
	"github.com/smarttransit/saferoute-backend/internal/models"
	"github.com/smarttransit/saferoute-backend/internal/routing"
	"github.com/smarttransit/saferoute-backend/internal/utils"
)

// NetworkSource provides the four upstream relations a graph is built from
type NetworkSource interface {
	Name() string
	FetchNetwork(ctx context.Context) (*models.NetworkData, error)
}

// Service states reported by Health
const (
	StateUnloaded = "unloaded"
	StateLoading  = "loading"
	StateReady    = "ready"
)

// RouteOutcome is the result of a route query. Result is nil when no route was
// found, in which case Reason says why.
type RouteOutcome struct {
	Result *models.RouteResult
	Reason models.NotFoundReason
}

// Found reports whether the query produced a route
func (o RouteOutcome) Found() bool {
	return o.Result != nil
}

type pathKey struct {
	start, end string
}

type cachedPath struct {
	path  routing.Path
	found bool
}

// snapshot is an immutable graph plus the path cache computed against it
type snapshot struct {
	graph    *routing.Graph
	cache    *lru.Cache[pathKey, cachedPath]
	loadedAt time.Time
}

// RoutingService owns the current graph snapshot. Queries read the snapshot
// without locking; loads are serialized and publish a fully built snapshot.
type RoutingService struct {
	source NetworkSource
	logger *logrus.Logger
	cfg    config.RoutingConfig

	current atomic.Pointer[snapshot]
	loadMu  sync.Mutex

	stateMu     sync.RWMutex
	state       string
	lastLoadErr error
}

// NewRoutingService creates a routing service in the unloaded state
func NewRoutingService(source NetworkSource, logger *logrus.Logger, cfg config.RoutingConfig) *RoutingService {
	return &RoutingService{
		source: source,
		logger: logger,
		cfg:    cfg,
		state:  StateUnloaded,
	}
}

// Load builds a fresh graph from the source and installs it as the current
// snapshot. On failure the previous snapshot, if any, keeps serving.
func (s *RoutingService) Load(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	return s.loadLocked(ctx)
}

func (s *RoutingService) loadLocked(ctx context.Context) error {
	startTime := time.Now()
	s.setState(StateLoading, nil)

	s.logger.WithField("source", s.source.Name()).Info("Loading transit graph")

	snap, err := s.build(ctx)
	if err != nil {
		fallback := StateUnloaded
		if s.current.Load() != nil {
			fallback = StateReady
		}
		s.setState(fallback, err)

		s.logger.WithError(err).WithFields(logrus.Fields{
			"source":      s.source.Name(),
			"still_ready": fallback == StateReady,
		}).Error("Failed to load transit graph")
		return err
	}

	s.current.Store(snap)
	s.setState(StateReady, nil)

	s.logger.WithFields(logrus.Fields{
		"source":   s.source.Name(),
		"nodes":    snap.graph.NodeCount(),
		"edges":    snap.graph.EdgeCount(),
		"duration": time.Since(startTime).String(),
	}).Info("Transit graph loaded")

	return nil
}

func (s *RoutingService) build(ctx context.Context) (*snapshot, error) {
	data, err := s.source.FetchNetwork(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch network from %s: %w", s.source.Name(), err)
	}

	graph, err := routing.BuildGraph(data)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	snap := &snapshot{graph: graph, loadedAt: time.Now()}
	if s.cfg.CacheSize > 0 {
		snap.cache, err = lru.New[pathKey, cachedPath](s.cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create path cache: %w", err)
		}
	}
	return snap, nil
}

// ensureLoaded returns the current snapshot, loading it first if the service
// has never loaded successfully. Concurrent first callers share one load.
func (s *RoutingService) ensureLoaded(ctx context.Context) (*snapshot, error) {
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}
	if err := s.loadLocked(ctx); err != nil {
		return nil, err
	}
	return s.current.Load(), nil
}

// RouteBetween finds the lowest-weight itinerary between the stops nearest to
// the two coordinates. It returns (nil, false, nil) when there is no route and
// a non-nil error only when the graph could not be loaded.
func (s *RoutingService) RouteBetween(ctx context.Context, lat1, lon1, lat2, lon2 float64) (*models.RouteResult, bool, error) {
	outcome, err := s.Query(ctx, lat1, lon1, lat2, lon2)
	if err != nil {
		return nil, false, err
	}
	return outcome.Result, outcome.Found(), nil
}

// Query is RouteBetween with the not-found reason kept
func (s *RoutingService) Query(ctx context.Context, lat1, lon1, lat2, lon2 float64) (RouteOutcome, error) {
	snap, err := s.ensureLoaded(ctx)
	if err != nil {
		return RouteOutcome{}, err
	}

	start, err := snap.graph.NearestStop(lat1, lon1)
	if errors.Is(err, routing.ErrNoStops) {
		return RouteOutcome{Reason: models.ReasonNoStops}, nil
	}
	if err != nil {
		return RouteOutcome{}, err
	}
	end, err := snap.graph.NearestStop(lat2, lon2)
	if err != nil {
		return RouteOutcome{Reason: models.ReasonNoStops}, nil
	}

	if s.tooFar(lat1, lon1, start) || s.tooFar(lat2, lon2, end) {
		s.logger.WithFields(logrus.Fields{
			"start_stop": start.ID,
			"end_stop":   end.ID,
			"max_meters": s.cfg.MaxSnapDistanceMeters,
		}).Info("Query endpoint too far from any stop")
		return RouteOutcome{Reason: models.ReasonTooFar}, nil
	}

	path, found := snap.shortestPath(start.ID, end.ID)
	if !found {
		s.logger.WithFields(logrus.Fields{
			"start_stop": start.ID,
			"end_stop":   end.ID,
		}).Info("No route between stops")
		return RouteOutcome{Reason: models.ReasonNoPath}, nil
	}

	result, err := routing.AssembleRoute(snap.graph, path)
	if err != nil {
		return RouteOutcome{}, fmt.Errorf("assemble route: %w", err)
	}
	return RouteOutcome{Result: result}, nil
}

func (s *RoutingService) tooFar(lat, lon float64, stop *routing.Stop) bool {
	if s.cfg.MaxSnapDistanceMeters <= 0 {
		return false
	}
	return utils.HaversineMeters(lat, lon, stop.Lat, stop.Lon) > s.cfg.MaxSnapDistanceMeters
}

func (snap *snapshot) shortestPath(start, end string) (routing.Path, bool) {
	if snap.cache == nil {
		return routing.ShortestPath(snap.graph, start, end)
	}

	key := pathKey{start: start, end: end}
	if hit, ok := snap.cache.Get(key); ok {
		return hit.path, hit.found
	}

	path, found := routing.ShortestPath(snap.graph, start, end)
	snap.cache.Add(key, cachedPath{path: path, found: found})
	return path, found
}

// NodeCount is the number of stops in the current graph, 0 before the first load
func (s *RoutingService) NodeCount() int {
	if snap := s.current.Load(); snap != nil {
		return snap.graph.NodeCount()
	}
	return 0
}

// State returns unloaded, loading or ready
func (s *RoutingService) State() string {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Health reports readiness and the size of the current graph
func (s *RoutingService) Health() models.HealthStatus {
	s.stateMu.RLock()
	status := models.HealthStatus{Status: s.state}
	if s.lastLoadErr != nil {
		status.LastLoadError = s.lastLoadErr.Error()
	}
	s.stateMu.RUnlock()

	if snap := s.current.Load(); snap != nil {
		status.NodesLoaded = snap.graph.NodeCount()
		status.EdgesLoaded = snap.graph.EdgeCount()
		loadedAt := snap.loadedAt
		status.LoadedAt = &loadedAt
	}
	return status
}

func (s *RoutingService) setState(state string, loadErr error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	s.state = state
	if state != StateLoading {
		s.lastLoadErr = loadErr
	}
}
