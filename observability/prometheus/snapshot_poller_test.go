package prometheus

import (
	"context"
	"testing"
	"time"

	"github.com/Swind/go-render-thread/core"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type coordinatorStub struct {
	stats core.CoordinatorStats
}

func (s coordinatorStub) Stats() core.CoordinatorStats { return s.stats }

type workerStub struct {
	stats core.WorkerStats
}

func (s workerStub) Stats() core.WorkerStats { return s.stats }

func TestSnapshotPoller_CollectsCoordinatorAndWorkerStats(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller("", reg, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	poller.AddCoordinator("wallpaper", coordinatorStub{stats: core.CoordinatorStats{
		Name:      "wallpaper",
		Session:   3,
		State:     core.SurfaceValid,
		Rendering: true,
		HasWorker: true,
		Frame: core.FrameStats{
			Frames:       120,
			FPS:          74.5,
			MeanDrawTime: 4 * time.Millisecond,
		},
		Worker: core.WorkerStats{Name: "wallpaper-3", Pending: 1, Executed: 200},
	}})
	poller.AddWorker("loader", workerStub{stats: core.WorkerStats{
		Name:      "loader",
		Pending:   4,
		Delayed:   2,
		Cancelled: 5,
		Closed:    true,
	}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)
	defer poller.Stop()

	assertEventually(t, 2*time.Second, func() bool {
		frames := testutil.ToFloat64(poller.frames.WithLabelValues("wallpaper"))
		pending := testutil.ToFloat64(poller.workerPending.WithLabelValues("loader"))
		return frames == 120 && pending == 4
	})

	if got := testutil.ToFloat64(poller.surfaceState.WithLabelValues("wallpaper")); got != float64(core.SurfaceValid) {
		t.Fatalf("surface state gauge = %v, want %v", got, float64(core.SurfaceValid))
	}
	if got := testutil.ToFloat64(poller.rendering.WithLabelValues("wallpaper")); got != 1 {
		t.Fatalf("rendering gauge = %v, want 1", got)
	}
	if got := testutil.ToFloat64(poller.session.WithLabelValues("wallpaper")); got != 3 {
		t.Fatalf("session gauge = %v, want 3", got)
	}
	if got := testutil.ToFloat64(poller.fps.WithLabelValues("wallpaper")); got != 74.5 {
		t.Fatalf("fps gauge = %v, want 74.5", got)
	}
	if got := testutil.ToFloat64(poller.workerExecuted.WithLabelValues("wallpaper-3")); got != 200 {
		t.Fatalf("session worker executed gauge = %v, want 200", got)
	}
	if got := testutil.ToFloat64(poller.workerClosed.WithLabelValues("loader")); got != 1 {
		t.Fatalf("worker closed gauge = %v, want 1", got)
	}
	if got := testutil.ToFloat64(poller.workerCancelled.WithLabelValues("loader")); got != 5 {
		t.Fatalf("worker cancelled gauge = %v, want 5", got)
	}
}

func TestSnapshotPoller_StartStop_Idempotent(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller("", reg, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller.Start(ctx)
	poller.Start(ctx)
	poller.Stop()
	poller.Stop()
}

func TestSnapshotPoller_SharedRegistry(t *testing.T) {
	reg := prom.NewRegistry()
	if _, err := NewSnapshotPoller("", reg, time.Second); err != nil {
		t.Fatalf("first NewSnapshotPoller failed: %v", err)
	}
	if _, err := NewSnapshotPoller("", reg, time.Second); err != nil {
		t.Fatalf("second NewSnapshotPoller failed: %v", err)
	}
}

func assertEventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}
