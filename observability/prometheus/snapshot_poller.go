package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/Swind/go-render-thread/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// CoordinatorSnapshotProvider provides current coordinator stats snapshots.
type CoordinatorSnapshotProvider interface {
	Stats() core.CoordinatorStats
}

// WorkerSnapshotProvider provides current worker stats snapshots.
type WorkerSnapshotProvider interface {
	Stats() core.WorkerStats
}

// SnapshotPoller periodically exports coordinator/worker Stats() snapshots into Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	coordinatorsMu sync.RWMutex
	coordinators   map[string]CoordinatorSnapshotProvider

	workersMu sync.RWMutex
	workers   map[string]WorkerSnapshotProvider

	surfaceState *prom.GaugeVec
	rendering    *prom.GaugeVec
	session      *prom.GaugeVec
	frames       *prom.GaugeVec
	fps          *prom.GaugeVec
	meanDraw     *prom.GaugeVec

	workerPending   *prom.GaugeVec
	workerDelayed   *prom.GaugeVec
	workerExecuted  *prom.GaugeVec
	workerRejected  *prom.GaugeVec
	workerCancelled *prom.GaugeVec
	workerClosed    *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(namespace string, reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if namespace == "" {
		namespace = "renderthread"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	coordinatorGauge := func(name, help string) *prom.GaugeVec {
		return prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, []string{"coordinator"})
	}
	workerGauge := func(name, help string) *prom.GaugeVec {
		return prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, []string{"worker"})
	}

	p := &SnapshotPoller{
		interval:     interval,
		coordinators: make(map[string]CoordinatorSnapshotProvider),
		workers:      make(map[string]WorkerSnapshotProvider),

		surfaceState: coordinatorGauge("surface_state", "Surface state (0=uninitialized, 1=valid, 2=invalid)."),
		rendering:    coordinatorGauge("rendering", "Rendering flag (1=rendering, 0=paused)."),
		session:      coordinatorGauge("session", "Number of the current worker session (0=none)."),
		frames:       coordinatorGauge("frames", "Frames drawn since the coordinator was created."),
		fps:          coordinatorGauge("fps", "Frames per second over the last sample."),
		meanDraw:     coordinatorGauge("mean_draw_seconds", "Mean draw time over the frame window."),

		workerPending:   workerGauge("worker_pending", "Ready tasks per worker."),
		workerDelayed:   workerGauge("worker_delayed", "Delayed tasks per worker."),
		workerExecuted:  workerGauge("worker_executed_total", "Worker executed task count snapshot."),
		workerRejected:  workerGauge("worker_rejected_total", "Worker rejected task count snapshot."),
		workerCancelled: workerGauge("worker_cancelled_total", "Worker cancelled task count snapshot."),
		workerClosed:    workerGauge("worker_closed", "Worker closed state (1=closed, 0=open)."),
	}

	for _, g := range []**prom.GaugeVec{
		&p.surfaceState, &p.rendering, &p.session, &p.frames, &p.fps, &p.meanDraw,
		&p.workerPending, &p.workerDelayed, &p.workerExecuted, &p.workerRejected, &p.workerCancelled, &p.workerClosed,
	} {
		registered, err := registerCollector(reg, *g)
		if err != nil {
			return nil, err
		}
		*g = registered
	}

	return p, nil
}

// AddCoordinator adds or replaces a coordinator snapshot provider by name.
// The coordinator's live worker is exported under its own worker name.
func (p *SnapshotPoller) AddCoordinator(name string, provider CoordinatorSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "coordinator")
	p.coordinatorsMu.Lock()
	p.coordinators[name] = provider
	p.coordinatorsMu.Unlock()
}

// AddWorker adds or replaces a standalone worker snapshot provider by name.
func (p *SnapshotPoller) AddWorker(name string, provider WorkerSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "worker")
	p.workersMu.Lock()
	p.workers[name] = provider
	p.workersMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.coordinatorsMu.RLock()
	for name, provider := range p.coordinators {
		stats := provider.Stats()
		p.surfaceState.WithLabelValues(name).Set(float64(stats.State))
		p.rendering.WithLabelValues(name).Set(boolGauge(stats.Rendering))
		p.session.WithLabelValues(name).Set(float64(stats.Session))
		p.frames.WithLabelValues(name).Set(float64(stats.Frame.Frames))
		p.fps.WithLabelValues(name).Set(stats.Frame.FPS)
		p.meanDraw.WithLabelValues(name).Set(stats.Frame.MeanDrawTime.Seconds())
		if stats.HasWorker {
			p.setWorker(normalizeLabel(stats.Worker.Name, name), stats.Worker)
		}
	}
	p.coordinatorsMu.RUnlock()

	p.workersMu.RLock()
	for name, provider := range p.workers {
		p.setWorker(name, provider.Stats())
	}
	p.workersMu.RUnlock()
}

func (p *SnapshotPoller) setWorker(name string, stats core.WorkerStats) {
	p.workerPending.WithLabelValues(name).Set(float64(stats.Pending))
	p.workerDelayed.WithLabelValues(name).Set(float64(stats.Delayed))
	p.workerExecuted.WithLabelValues(name).Set(float64(stats.Executed))
	p.workerRejected.WithLabelValues(name).Set(float64(stats.Rejected))
	p.workerCancelled.WithLabelValues(name).Set(float64(stats.Cancelled))
	p.workerClosed.WithLabelValues(name).Set(boolGauge(stats.Closed))
}

func boolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
