package share

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"circuitee/internal/common/metrics"
	"circuitee/internal/designer/models"
	"circuitee/internal/storage"

	"github.com/gofiber/fiber/v3/log"
)

const persistTimeout = 5 * time.Second

// ============================================================
// Persister
// ============================================================

// Persister keeps the latest share blob of one session and writes its floor
// plan to the key-value store under a key owned by that session.
type Persister struct {
	kv      storage.KV
	metrics *metrics.Registry
	key     string

	mu   sync.RWMutex
	blob string
}

// NewPersister scopes the stored floor plan to scope, usually a session id.
// An empty scope uses the bare FloorPlanKey.
func NewPersister(kv storage.KV, m *metrics.Registry, scope string) *Persister {
	return &Persister{kv: kv, metrics: m, key: FloorPlanKeyFor(scope)}
}

// Key is the store key of this persister's floor plan.
func (p *Persister) Key() string {
	return p.key
}

// Persist serializes the design and stores its floor plan.
func (p *Persister) Persist(d models.Design) error {
	if d.FloorPlan != "" && !d.HasFloorPlanSentinel() {
		d.FloorPlanRef = p.key
	}
	blob, err := Serialize(d)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.blob = blob
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.ShareBlobBytes.Observe(float64(len(blob)))
	}

	if d.FloorPlan == "" || d.HasFloorPlanSentinel() || p.kv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := p.kv.Put(ctx, p.key, []byte(d.FloorPlan)); err != nil {
		return fmt.Errorf("store floor plan: %w", err)
	}
	return nil
}

func (p *Persister) DiscardFloorPlan() error {
	if p.kv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	return p.kv.Delete(ctx, p.key)
}

// Blob returns the most recently persisted share blob.
func (p *Persister) Blob() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.blob
}

// ============================================================
// Load
// ============================================================

// Load decodes a blob and re-attaches the floor plan from kv when the blob
// carries the sentinel. The image is read from the blob's reference, or from
// the bare FloorPlanKey for blobs that carry none. A missing image leaves the
// design without a floor plan.
func Load(ctx context.Context, kv storage.KV, blob string) (models.Design, error) {
	d, err := Deserialize(blob)
	if err != nil {
		return models.Design{}, err
	}
	key := d.FloorPlanRef
	d.FloorPlanRef = ""
	if !d.HasFloorPlanSentinel() {
		return d, nil
	}
	switch {
	case key == "":
		key = FloorPlanKey
	case !strings.HasPrefix(key, FloorPlanKey+"/"):
		return models.Design{}, fmt.Errorf("floor plan reference %q: %w", key, ErrInvalidBlob)
	}

	d.FloorPlan = ""
	if kv == nil {
		return d, nil
	}
	data, err := kv.Get(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		log.Warn("[SHARE] floor plan marker present but no stored image: ", key)
	case err != nil:
		log.Errorf("[SHARE] load floor plan: %v", err)
	default:
		d.FloorPlan = string(data)
	}
	return d, nil
}
