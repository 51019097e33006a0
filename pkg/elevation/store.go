package elevation

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"hexcarve/internal/logging"
	"hexcarve/pkg/geometry"
)

// Loader fetches the raw bytes of a tile. Implementations return ErrNotFound
// (possibly wrapped) when no tile exists for the id.
type Loader interface {
	LoadTile(id TileID) ([]byte, error)
}

// DirLoader reads tiles named <ID>.hgt from a directory.
type DirLoader struct {
	Dir string
}

func (d DirLoader) LoadTile(id TileID) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.Dir, id.Name()+".hgt"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return data, err
}

// Store loads tiles on demand and keeps them for its lifetime. Each tile id
// is loaded at most once, even under concurrent callers; eviction, if any,
// is the owner's concern (drop the Store and build a new one).
type Store struct {
	loader  Loader
	log     logging.Logger
	metrics storeMetrics

	mu    sync.Mutex
	tiles map[TileID]*tileEntry
}

type tileEntry struct {
	once sync.Once
	tile *Tile
	err  error
}

type storeMetrics struct {
	loads    *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewStore creates a Store. A nil logger drops logs; a nil registerer uses
// the default Prometheus registry.
func NewStore(loader Loader, log logging.Logger, reg prometheus.Registerer) *Store {
	if log == nil {
		log = logging.Noop()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Store{
		loader: loader,
		log:    log,
		metrics: storeMetrics{
			loads: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "hexcarve_tile_loads_total",
				Help: "Tile load attempts by result (loaded, cached, missing, error).",
			}, []string{"result"}),
			duration: factory.NewHistogram(prometheus.HistogramOpts{
				Name:    "hexcarve_tile_load_duration_seconds",
				Help:    "Wall time spent reading and decoding one tile.",
				Buckets: prometheus.DefBuckets,
			}),
		},
		tiles: map[TileID]*tileEntry{},
	}
}

// Tile returns the decoded tile for id, loading it if necessary. Concurrent
// calls for the same id share one load. A missing tile returns ErrNotFound;
// a malformed tile returns ErrFormat; both are remembered.
func (s *Store) Tile(id TileID) (*Tile, error) {
	s.mu.Lock()
	entry, ok := s.tiles[id]
	if !ok {
		entry = &tileEntry{}
		s.tiles[id] = entry
	}
	s.mu.Unlock()

	loaded := false
	entry.once.Do(func() {
		loaded = true
		start := time.Now()
		entry.tile, entry.err = s.load(id)
		s.metrics.duration.Observe(time.Since(start).Seconds())
	})
	if !loaded {
		s.metrics.loads.WithLabelValues("cached").Inc()
	}
	return entry.tile, entry.err
}

func (s *Store) load(id TileID) (*Tile, error) {
	data, err := s.loader.LoadTile(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.metrics.loads.WithLabelValues("missing").Inc()
			s.log.Warn("tile missing", "tile", id.Name())
		} else {
			s.metrics.loads.WithLabelValues("error").Inc()
			s.log.Error("tile load failed", "tile", id.Name(), "error", err)
		}
		return nil, err
	}
	tile, err := DecodeTile(id, data)
	if err != nil {
		s.metrics.loads.WithLabelValues("error").Inc()
		s.log.Error("tile decode failed", "tile", id.Name(), "error", err)
		return nil, err
	}
	s.metrics.loads.WithLabelValues("loaded").Inc()
	s.log.Debug("tile loaded", "tile", id.Name(), "grid", tile.N)
	return tile, nil
}

// LoadAll loads every tile required by the bounding box in parallel and
// waits for all of them to resolve before returning; sampling must not
// start against a partial set. Missing tiles are skipped (they degrade to
// no-data later); read failures and malformed tiles abort the request.
func (s *Store) LoadAll(b geometry.BBox) (TileSet, error) {
	ids := RequiredTiles(b)
	type result struct {
		id   TileID
		tile *Tile
		err  error
	}
	results := make([]result, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id TileID) {
			defer wg.Done()
			tile, err := s.Tile(id)
			results[i] = result{id: id, tile: tile, err: err}
		}(i, id)
	}
	wg.Wait()

	set := TileSet{}
	for _, r := range results {
		switch {
		case r.err == nil:
			set[r.id] = r.tile
		case errors.Is(r.err, ErrNotFound):
			// degrade to no-data
		default:
			return nil, fmt.Errorf("loading tile %s: %w", r.id, r.err)
		}
	}
	return set, nil
}
