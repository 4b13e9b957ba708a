package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeSurface struct {
	w, h int
}

type fakeBackend struct {
	initErr  error
	initGate chan struct{}

	mu       sync.Mutex
	contexts []*fakeGraphics
}

func (b *fakeBackend) Initialize(cfg ContextConfig) (GraphicsContext, error) {
	if b.initGate != nil {
		<-b.initGate
	}
	if b.initErr != nil {
		return nil, b.initErr
	}
	g := &fakeGraphics{cfg: cfg}
	b.mu.Lock()
	b.contexts = append(b.contexts, g)
	b.mu.Unlock()
	return g, nil
}

func (b *fakeBackend) lastContext() *fakeGraphics {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.contexts) == 0 {
		return nil
	}
	return b.contexts[len(b.contexts)-1]
}

type fakeGraphics struct {
	cfg      ContextConfig
	released atomic.Bool
	targets  atomic.Int32
}

func (g *fakeGraphics) CreateTarget(surface Surface) (RenderTarget, error) {
	s, ok := surface.(*fakeSurface)
	if !ok {
		return nil, errors.New("unsupported surface")
	}
	g.targets.Add(1)
	return &fakeTarget{surface: s}, nil
}

func (g *fakeGraphics) Release() error {
	g.released.Store(true)
	return nil
}

type fakeTarget struct {
	surface  *fakeSurface
	swaps    atomic.Int32
	released atomic.Bool
}

func (t *fakeTarget) Swap() error               { t.swaps.Add(1); return nil }
func (t *fakeTarget) Size() (width, height int) { return t.surface.w, t.surface.h }
func (t *fakeTarget) Release() error            { t.released.Store(true); return nil }

// fakeClient records callbacks in order, collapsing runs of draws.
type fakeClient struct {
	rec       recorder
	draws     atomic.Int32
	offWorker atomic.Int32
	worker    atomic.Pointer[WorkerThread]

	createErr   error
	createPanic bool
	drawErr     atomic.Pointer[error]
	onDraw      func(ctx context.Context)

	mu      sync.Mutex
	resizes [][2]int
	sizes   [][2]int
}

func (c *fakeClient) enter(ctx context.Context, event string) {
	w := CurrentWorker(ctx)
	if w == nil {
		c.offWorker.Add(1)
	} else {
		c.worker.Store(w)
	}
	if event == "draw" {
		if got := c.rec.snapshot(); len(got) > 0 && got[len(got)-1] == "draw" {
			return
		}
	}
	c.rec.add(event)
}

func (c *fakeClient) OnCreate(ctx context.Context) error {
	c.enter(ctx, "create")
	if c.createPanic {
		panic("client create failed")
	}
	return c.createErr
}

func (c *fakeClient) OnResize(ctx context.Context, width, height int) error {
	c.enter(ctx, "resize")
	c.mu.Lock()
	c.resizes = append(c.resizes, [2]int{width, height})
	c.mu.Unlock()
	return nil
}

func (c *fakeClient) OnDrawFrame(ctx context.Context) error {
	c.enter(ctx, "draw")
	c.draws.Add(1)
	if target := TargetFromContext(ctx); target != nil {
		w, h := target.Size()
		c.mu.Lock()
		c.sizes = append(c.sizes, [2]int{w, h})
		c.mu.Unlock()
	}
	if c.onDraw != nil {
		c.onDraw(ctx)
	}
	if p := c.drawErr.Load(); p != nil {
		return *p
	}
	return nil
}

func (c *fakeClient) OnResume(ctx context.Context)  { c.enter(ctx, "resume") }
func (c *fakeClient) OnPause(ctx context.Context)   { c.enter(ctx, "pause") }
func (c *fakeClient) OnDestroy(ctx context.Context) { c.enter(ctx, "destroy") }

func (c *fakeClient) lastSize() [2]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sizes) == 0 {
		return [2]int{}
	}
	return c.sizes[len(c.sizes)-1]
}

func newTestCoordinator(client *fakeClient, backend *fakeBackend) *Coordinator {
	return NewCoordinator(client, backend, &CoordinatorConfig{
		Name:          "test",
		FrameInterval: 2 * time.Millisecond,
		Worker:        WorkerConfig{PanicHandler: NewTestPanicHandler()},
	})
}

// =============================================================================
// Lifecycle
// =============================================================================

// TestCoordinator_SurfaceCreated_Valid verifies a successful create is observable on return
// Given: A coordinator with a working backend
// When: SurfaceCreated returns
// Then: The surface is valid, OnCreate ran on the worker and the context used the default config
func TestCoordinator_SurfaceCreated_Valid(t *testing.T) {
	// Arrange
	client := &fakeClient{}
	backend := &fakeBackend{}
	c := newTestCoordinator(client, backend)
	assert.Equal(t, SurfaceUninitialized, c.SurfaceState())

	// Act
	err := c.SurfaceCreated(testContext(t), &fakeSurface{w: 640, h: 480})

	// Assert
	require.NoError(t, err)
	assert.True(t, c.IsSurfaceValid())
	assert.Equal(t, []string{"create"}, client.rec.snapshot())
	assert.Zero(t, client.offWorker.Load())
	require.NotNil(t, backend.lastContext())
	assert.Equal(t, DefaultContextConfig(), backend.lastContext().cfg)

	require.NoError(t, c.SurfaceDestroyed(testContext(t), nil))
}

// TestCoordinator_SurfaceCreated_InitFailure verifies a failing context never hangs the caller
// Given: A backend whose Initialize fails
// When: SurfaceCreated is called and rendering started
// Then: It returns promptly with the surface invalid and no frame is drawn
func TestCoordinator_SurfaceCreated_InitFailure(t *testing.T) {
	// Arrange
	client := &fakeClient{}
	c := newTestCoordinator(client, &fakeBackend{initErr: errors.New("no display")})

	// Act
	err := c.SurfaceCreated(testContext(t), &fakeSurface{w: 1, h: 1})
	c.StartRendering()
	time.Sleep(20 * time.Millisecond)

	// Assert
	require.NoError(t, err, "worker-side failures are reported through the surface state")
	assert.Equal(t, SurfaceInvalid, c.SurfaceState())
	assert.Zero(t, client.draws.Load())
	assert.NotContains(t, client.rec.snapshot(), "create")

	require.NoError(t, c.SurfaceDestroyed(testContext(t), nil))
}

// TestCoordinator_SurfaceCreated_ClientPanic verifies a panicking OnCreate invalidates the surface
func TestCoordinator_SurfaceCreated_ClientPanic(t *testing.T) {
	client := &fakeClient{createPanic: true}
	c := newTestCoordinator(client, &fakeBackend{})

	require.NoError(t, c.SurfaceCreated(testContext(t), &fakeSurface{w: 1, h: 1}))
	assert.Equal(t, SurfaceInvalid, c.SurfaceState())

	require.NoError(t, c.SurfaceDestroyed(testContext(t), nil))
}

// TestCoordinator_ProtocolViolations verifies out-of-order lifecycle calls are rejected
// Given: A coordinator with no surface, then with one
// When: Changed/Destroyed arrive without a surface, or Created arrives twice
// Then: Each call returns ErrInvalidState and nothing panics
func TestCoordinator_ProtocolViolations(t *testing.T) {
	// Arrange
	c := newTestCoordinator(&fakeClient{}, &fakeBackend{})
	ctx := testContext(t)

	// Act and Assert - no surface yet
	assert.ErrorIs(t, c.SurfaceChanged(ctx, &fakeSurface{}, 0, 1, 1), ErrInvalidState)
	assert.ErrorIs(t, c.SurfaceDestroyed(ctx, nil), ErrInvalidState)
	assert.False(t, c.RenderOneFrame())

	// Act and Assert - second create
	require.NoError(t, c.SurfaceCreated(ctx, &fakeSurface{w: 1, h: 1}))
	assert.ErrorIs(t, c.SurfaceCreated(ctx, &fakeSurface{w: 1, h: 1}), ErrInvalidState)
	assert.True(t, c.IsSurfaceValid(), "a rejected call must not disturb the live session")

	require.NoError(t, c.SurfaceDestroyed(ctx, nil))
	assert.ErrorIs(t, c.SurfaceDestroyed(ctx, nil), ErrInvalidState)
}

// TestCoordinator_Scenario verifies the callback order of a full session
// Given: A coordinator
// When: The host creates, starts, lets frames run, pauses and destroys
// Then: Callbacks arrive as create, resume, draw, pause, destroy, all on the worker
func TestCoordinator_Scenario(t *testing.T) {
	// Arrange
	client := &fakeClient{}
	c := newTestCoordinator(client, &fakeBackend{})
	ctx := testContext(t)

	// Act
	require.NoError(t, c.SurfaceCreated(ctx, &fakeSurface{w: 320, h: 200}))
	c.StartRendering()
	require.Eventually(t, func() bool { return client.draws.Load() >= 3 }, 2*time.Second, time.Millisecond)
	c.PauseRendering()
	require.NoError(t, c.SurfaceDestroyed(ctx, nil))

	// Assert
	want := []string{"create", "resume", "draw", "pause", "destroy"}
	if diff := cmp.Diff(want, client.rec.snapshot()); diff != "" {
		t.Errorf("callback order mismatch (-want +got):\n%s", diff)
	}
	assert.Zero(t, client.offWorker.Load(), "callbacks must run on the worker")
	assert.Equal(t, SurfaceInvalid, c.SurfaceState())
	assert.False(t, c.Stats().HasWorker)
}

// TestCoordinator_NoDrawAfterDestroy verifies teardown stops the worker for good
// Given: A coordinator rendering at a 2ms interval
// When: SurfaceDestroyed returns
// Then: The worker has exited, the target and context are released and no draw follows
func TestCoordinator_NoDrawAfterDestroy(t *testing.T) {
	// Arrange
	client := &fakeClient{}
	backend := &fakeBackend{}
	c := newTestCoordinator(client, backend)
	ctx := testContext(t)
	require.NoError(t, c.SurfaceCreated(ctx, &fakeSurface{w: 8, h: 8}))
	c.StartRendering()
	require.Eventually(t, func() bool { return client.draws.Load() >= 2 }, 2*time.Second, time.Millisecond)

	// Act
	require.NoError(t, c.SurfaceDestroyed(ctx, nil))
	atDestroy := client.draws.Load()
	time.Sleep(30 * time.Millisecond)

	// Assert
	assert.Equal(t, atDestroy, client.draws.Load())
	w := client.worker.Load()
	require.NotNil(t, w)
	select {
	case <-w.Stopped():
	default:
		t.Fatal("worker goroutine still running after SurfaceDestroyed")
	}
	assert.True(t, backend.lastContext().released.Load())
	assert.False(t, c.RenderOneFrame())
	assert.True(t, c.IsRendering(), "the rendering flag survives the surface")
}

// TestCoordinator_PauseStartSingleChain verifies toggling never stacks frame chains
// Given: A rendering coordinator
// When: PauseRendering and StartRendering alternate 50 times
// Then: Once settled, the worker never holds more than one queued task
func TestCoordinator_PauseStartSingleChain(t *testing.T) {
	// Arrange
	client := &fakeClient{}
	c := newTestCoordinator(client, &fakeBackend{})
	ctx := testContext(t)
	require.NoError(t, c.SurfaceCreated(ctx, &fakeSurface{w: 8, h: 8}))
	c.StartRendering()

	// Act
	for range 50 {
		c.PauseRendering()
		c.StartRendering()
	}
	time.Sleep(20 * time.Millisecond)

	// Assert
	for range 100 {
		stats := c.Stats().Worker
		require.LessOrEqual(t, stats.Pending+stats.Delayed, 1)
		time.Sleep(200 * time.Microsecond)
	}
	assert.Greater(t, client.draws.Load(), int32(0))
	assert.Equal(t, client.rec.count("resume"), client.rec.count("pause")+1,
		"every pause must match a delivered resume")

	require.NoError(t, c.SurfaceDestroyed(ctx, nil))
}

// TestCoordinator_RenderOneFrame verifies on-demand frames while paused
// Given: A created surface with rendering off
// When: RenderOneFrame is called once
// Then: Exactly one frame is drawn
func TestCoordinator_RenderOneFrame(t *testing.T) {
	// Arrange
	client := &fakeClient{}
	c := newTestCoordinator(client, &fakeBackend{})
	ctx := testContext(t)
	require.NoError(t, c.SurfaceCreated(ctx, &fakeSurface{w: 8, h: 8}))

	// Act
	require.True(t, c.RenderOneFrame())
	require.Eventually(t, func() bool { return client.draws.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	// Assert
	assert.Equal(t, int32(1), client.draws.Load())
	assert.Equal(t, uint64(1), c.Stats().Frame.Frames)

	require.NoError(t, c.SurfaceDestroyed(ctx, nil))
}

// TestCoordinator_RenderOneFrameFromCallback verifies a draw callback can request the next frame
func TestCoordinator_RenderOneFrameFromCallback(t *testing.T) {
	client := &fakeClient{}
	c := newTestCoordinator(client, &fakeBackend{})
	client.onDraw = func(ctx context.Context) {
		if client.draws.Load() < 5 {
			c.RenderOneFrame()
		}
	}
	ctx := testContext(t)
	require.NoError(t, c.SurfaceCreated(ctx, &fakeSurface{w: 8, h: 8}))

	c.RenderOneFrame()
	require.Eventually(t, func() bool { return client.draws.Load() == 5 }, time.Second, time.Millisecond)

	require.NoError(t, c.SurfaceDestroyed(ctx, nil))
	assert.Equal(t, int32(5), client.draws.Load())
}

// TestCoordinator_SurfaceChanged verifies the target follows the surface
// Given: A rendering coordinator on a 100x100 surface
// When: SurfaceChanged moves it to a 300x150 surface
// Then: OnResize sees the new size and later frames draw into the new target
func TestCoordinator_SurfaceChanged(t *testing.T) {
	// Arrange
	client := &fakeClient{}
	backend := &fakeBackend{}
	c := newTestCoordinator(client, backend)
	ctx := testContext(t)
	require.NoError(t, c.SurfaceCreated(ctx, &fakeSurface{w: 100, h: 100}))
	c.StartRendering()

	// Act
	require.NoError(t, c.SurfaceChanged(ctx, &fakeSurface{w: 300, h: 150}, 1, 300, 150))
	drawsAtChange := client.draws.Load()
	require.Eventually(t, func() bool { return client.draws.Load() > drawsAtChange }, time.Second, time.Millisecond)

	// Assert
	assert.True(t, c.IsSurfaceValid())
	client.mu.Lock()
	assert.Equal(t, [][2]int{{300, 150}}, client.resizes)
	client.mu.Unlock()
	assert.Equal(t, [2]int{300, 150}, client.lastSize())
	assert.Equal(t, int32(2), backend.lastContext().targets.Load())

	require.NoError(t, c.SurfaceDestroyed(ctx, nil))
}

// TestCoordinator_SurfaceChanged_BadSurface verifies a failing rebind invalidates the surface
func TestCoordinator_SurfaceChanged_BadSurface(t *testing.T) {
	client := &fakeClient{}
	c := newTestCoordinator(client, &fakeBackend{})
	ctx := testContext(t)
	require.NoError(t, c.SurfaceCreated(ctx, &fakeSurface{w: 10, h: 10}))

	require.NoError(t, c.SurfaceChanged(ctx, "not a surface", 0, 10, 10))
	assert.Equal(t, SurfaceInvalid, c.SurfaceState())

	require.NoError(t, c.SurfaceChanged(ctx, &fakeSurface{w: 20, h: 20}, 0, 20, 20))
	assert.True(t, c.IsSurfaceValid(), "a later successful change recovers the surface")

	require.NoError(t, c.SurfaceDestroyed(ctx, nil))
}

// TestCoordinator_StartBeforeCreate verifies rendering requested early begins on create
// Given: StartRendering called with no surface
// When: SurfaceCreated later succeeds
// Then: OnResume follows OnCreate, frames are drawn and teardown pauses first
func TestCoordinator_StartBeforeCreate(t *testing.T) {
	// Arrange
	client := &fakeClient{}
	c := newTestCoordinator(client, &fakeBackend{})
	ctx := testContext(t)

	// Act
	c.StartRendering()
	c.StartRendering()
	require.NoError(t, c.SurfaceCreated(ctx, &fakeSurface{w: 8, h: 8}))
	require.Eventually(t, func() bool { return client.draws.Load() >= 2 }, 2*time.Second, time.Millisecond)
	require.NoError(t, c.SurfaceDestroyed(ctx, nil))

	// Assert
	assert.Equal(t, []string{"create", "resume", "draw", "pause", "destroy"}, client.rec.snapshot(),
		"a resumed session is paused before it is destroyed")
}

// TestCoordinator_DrawErrorInvalidates verifies a failing frame stops the loop
func TestCoordinator_DrawErrorInvalidates(t *testing.T) {
	client := &fakeClient{}
	drawErr := errors.New("context lost")
	client.drawErr.Store(&drawErr)
	c := newTestCoordinator(client, &fakeBackend{})
	ctx := testContext(t)
	require.NoError(t, c.SurfaceCreated(ctx, &fakeSurface{w: 8, h: 8}))

	c.StartRendering()
	require.Eventually(t, func() bool { return c.SurfaceState() == SurfaceInvalid }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, int32(1), client.draws.Load())
	require.NoError(t, c.SurfaceDestroyed(ctx, nil))
}

// TestCoordinator_InterruptedCreate verifies the caller can give up on a stuck worker
// Given: A backend whose Initialize blocks
// When: SurfaceCreated is called with a 30ms deadline
// Then: It returns ErrInterruptedWait wrapping the deadline, and destroy still works once unblocked
func TestCoordinator_InterruptedCreate(t *testing.T) {
	// Arrange
	gate := make(chan struct{})
	client := &fakeClient{}
	c := newTestCoordinator(client, &fakeBackend{initGate: gate})
	short, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	// Act
	err := c.SurfaceCreated(short, &fakeSurface{w: 8, h: 8})

	// Assert
	assert.ErrorIs(t, err, ErrInterruptedWait)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, SurfaceUninitialized, c.SurfaceState())

	close(gate)
	require.NoError(t, c.SurfaceDestroyed(testContext(t), nil))
	assert.Equal(t, []string{"create", "destroy"}, client.rec.snapshot())
}

// TestCoordinator_InterruptedDestroy verifies a stuck teardown detaches the worker
func TestCoordinator_InterruptedDestroy(t *testing.T) {
	release := make(chan struct{})
	client := &fakeClient{}
	c := newTestCoordinator(client, &fakeBackend{})
	require.NoError(t, c.SurfaceCreated(testContext(t), &fakeSurface{w: 8, h: 8}))

	client.onDraw = func(ctx context.Context) { <-release }
	c.RenderOneFrame()
	require.Eventually(t, func() bool { return client.draws.Load() == 1 }, time.Second, time.Millisecond)

	short, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := c.SurfaceDestroyed(short, nil)

	assert.ErrorIs(t, err, ErrInterruptedWait)
	assert.False(t, c.Stats().HasWorker)

	// The detached worker still finishes the teardown.
	close(release)
	w := client.worker.Load()
	require.NoError(t, w.Join(testContext(t)))
	assert.Equal(t, "destroy", client.rec.snapshot()[len(client.rec.snapshot())-1])

	// A new surface can be created right away.
	require.NoError(t, c.SurfaceCreated(testContext(t), &fakeSurface{w: 8, h: 8}))
	require.NoError(t, c.SurfaceDestroyed(testContext(t), nil))
}

// TestCoordinator_Sessions verifies each surface gets a fresh, numbered worker
func TestCoordinator_Sessions(t *testing.T) {
	client := &fakeClient{}
	c := newTestCoordinator(client, &fakeBackend{})
	ctx := testContext(t)

	require.NoError(t, c.SurfaceCreated(ctx, &fakeSurface{w: 8, h: 8}))
	first := client.worker.Load()
	require.NoError(t, c.SurfaceDestroyed(ctx, nil))

	require.NoError(t, c.SurfaceCreated(ctx, &fakeSurface{w: 8, h: 8}))
	second := client.worker.Load()
	stats := c.Stats()
	require.NoError(t, c.SurfaceDestroyed(ctx, nil))

	assert.NotSame(t, first, second)
	assert.Equal(t, "test-1", first.Name())
	assert.Equal(t, "test-2", second.Name())
	assert.Equal(t, uint64(2), stats.Session)
	assert.Equal(t, "test", stats.Name)
	assert.True(t, stats.HasWorker)
	assert.Equal(t, SurfaceValid, stats.State)
}

// TestCoordinator_InterruptedCreateThenChangeResumes verifies a later change restores the resume
// Given: Rendering requested before a create whose wait is interrupted
// When: The create finishes on the worker and SurfaceChanged succeeds
// Then: OnResume precedes the first draw and teardown delivers the matching OnPause
func TestCoordinator_InterruptedCreateThenChangeResumes(t *testing.T) {
	// Arrange
	gate := make(chan struct{})
	client := &fakeClient{}
	c := newTestCoordinator(client, &fakeBackend{initGate: gate})
	c.StartRendering()
	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, c.SurfaceCreated(short, &fakeSurface{w: 8, h: 8}), ErrInterruptedWait)
	close(gate)
	ctx := testContext(t)

	// Act
	require.NoError(t, c.SurfaceChanged(ctx, &fakeSurface{w: 16, h: 16}, 0, 16, 16))
	require.Eventually(t, func() bool { return client.draws.Load() >= 2 }, 2*time.Second, time.Millisecond)
	require.NoError(t, c.SurfaceDestroyed(ctx, nil))

	// Assert
	want := []string{"create", "resize", "resume", "draw", "pause", "destroy"}
	if diff := cmp.Diff(want, client.rec.snapshot()); diff != "" {
		t.Errorf("callback order mismatch (-want +got):\n%s", diff)
	}
}

// blockFirstDraw makes the first OnDrawFrame wait until release is closed.
func blockFirstDraw(client *fakeClient) (entered, release chan struct{}) {
	entered = make(chan struct{})
	release = make(chan struct{})
	var once sync.Once
	client.onDraw = func(ctx context.Context) {
		once.Do(func() {
			close(entered)
			<-release
		})
	}
	return entered, release
}

// TestCoordinator_PauseDropsRearmedFrame verifies no frame runs after OnPause
// Given: A frame in progress when PauseRendering is called
// When: A frame tick is re-armed behind the queued pause, as a tick racing the pause does
// Then: The pause task drops it and nothing draws after OnPause
func TestCoordinator_PauseDropsRearmedFrame(t *testing.T) {
	// Arrange
	client := &fakeClient{}
	entered, release := blockFirstDraw(client)
	c := newTestCoordinator(client, &fakeBackend{})
	ctx := testContext(t)
	require.NoError(t, c.SurfaceCreated(ctx, &fakeSurface{w: 8, h: 8}))
	c.StartRendering()
	<-entered
	w := client.worker.Load()
	require.NotNil(t, w)

	// Act
	c.PauseRendering()
	var stale atomic.Int32
	w.RepostTagged(FrameTag, "frame", func(ctx context.Context) { stale.Add(1) }, 0)
	close(release)
	require.Eventually(t, func() bool { return client.rec.count("pause") == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	// Assert
	assert.Zero(t, stale.Load(), "a frame re-armed before the pause task must not run")
	assert.Equal(t, int32(1), client.draws.Load())
	require.NoError(t, c.SurfaceDestroyed(ctx, nil))
}

// TestCoordinator_StartAfterPauseKeepsChain verifies a quick restart is not cancelled by the pending pause
// Given: A frame in progress
// When: PauseRendering and StartRendering are both called before the worker reaches the pause
// Then: Frames keep coming after the pause and resume pair up
func TestCoordinator_StartAfterPauseKeepsChain(t *testing.T) {
	// Arrange
	client := &fakeClient{}
	entered, release := blockFirstDraw(client)
	c := newTestCoordinator(client, &fakeBackend{})
	ctx := testContext(t)
	require.NoError(t, c.SurfaceCreated(ctx, &fakeSurface{w: 8, h: 8}))
	c.StartRendering()
	<-entered

	// Act
	c.PauseRendering()
	c.StartRendering()
	close(release)

	// Assert
	require.Eventually(t, func() bool { return client.draws.Load() >= 5 }, 2*time.Second, time.Millisecond)
	require.NoError(t, c.SurfaceDestroyed(ctx, nil))
	assert.Equal(t, []string{"create", "resume", "draw", "pause", "resume", "draw", "pause", "destroy"},
		client.rec.snapshot())
}
