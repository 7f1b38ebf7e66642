package reason

import (
	"log/slog"
	"sync"

	"github.com/khryptorgraphics/nonaxiomatic/pkg/budget"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/concept"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/events"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/priority"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/task"
)

// Clock supplies the reasoner's logical time, advanced one tick per cycle
// (spec §5: the core never reads wall-clock time for its own bookkeeping).
type Clock struct {
	mu  sync.Mutex
	now int64
}

// NewClock constructs a Clock starting at the given logical time.
func NewClock(start int64) *Clock { return &Clock{now: start} }

// Now returns the current logical time.
func (c *Clock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Tick advances the clock by one and returns the new time.
func (c *Clock) Tick() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now++
	return c.now
}

// Memory owns the shared state of spec §5: the concept store, the
// cycling-task bag, the premise queue, and the unbounded input-task FIFO.
// Each is guarded by its own mutex (the store by concept.Store's own) and
// reached only through Memory's methods.
type Memory struct {
	params Params
	clock  *Clock
	bus    *events.Bus
	serial *task.SerialIssuer
	logger *slog.Logger

	store *concept.Store

	cyclingMu sync.Mutex
	cycling   priority.Container[string, *task.Task]

	premiseMu sync.Mutex
	premises  priority.Container[string, *FireBelief]

	inputMu    sync.Mutex
	inputTasks []*task.Task
}

// NewMemory wires up a Memory from its collaborators. cyclingBag and
// premiseBag are typically *priority.Map (deterministic) or *priority.Bag
// (weighted-random) instances sized per params.
func NewMemory(params Params, clock *Clock, bus *events.Bus, serial *task.SerialIssuer, store *concept.Store, cyclingBag priority.Container[string, *task.Task], premiseBag priority.Container[string, *FireBelief], logger *slog.Logger) *Memory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Memory{
		params:   params,
		clock:    clock,
		bus:      bus,
		serial:   serial,
		store:    store,
		cycling:  cyclingBag,
		premises: premiseBag,
		logger:   logger,
	}
}

// Store returns the concept store.
func (m *Memory) Store() *concept.Store { return m.store }

// Bus returns the event bus, which may be nil.
func (m *Memory) Bus() *events.Bus { return m.bus }

// Clock returns the logical clock.
func (m *Memory) Clock() *Clock { return m.clock }

// Serial returns the evidence-serial issuer.
func (m *Memory) Serial() *task.SerialIssuer { return m.serial }

// Params returns the reasoner's configuration parameters.
func (m *Memory) Params() Params { return m.params }

// Logger returns the memory's structured logger.
func (m *Memory) Logger() *slog.Logger { return m.logger }

// AddTask routes a newly derived or externally submitted task: derived tasks
// join the bounded cycling-task bag (PutIn, tri-state outcome per spec §4.1);
// input tasks append to the unbounded FIFO (spec §4.1, "never evicted by
// forgetting; drained strictly in arrival order"). A TaskAdd event is
// emitted on success; a task silently rejected at capacity fires no event,
// mirroring Conceptualize's silent-failure convention.
func (m *Memory) AddTask(t *task.Task, derived bool) {
	if !derived {
		m.inputMu.Lock()
		m.inputTasks = append(m.inputTasks, t)
		m.inputMu.Unlock()
		m.emit(events.TaskAdd, t.Name(), t)
		return
	}

	m.cyclingMu.Lock()
	result := m.cycling.PutIn(t)
	m.cyclingMu.Unlock()

	switch result.Outcome {
	case priority.Inserted:
		m.emit(events.TaskAdd, t.Name(), t)
	case priority.Displaced:
		m.emit(events.TaskRemove, result.Displaced.Name(), result.Displaced)
		m.emit(events.TaskAdd, t.Name(), t)
	case priority.Rejected:
		// silent: the derived task never had enough priority to enter.
	}
}

// nextInputTask pops the oldest input task, if any (spec §4.4 step 2's first
// preference: "one input task, oldest first").
func (m *Memory) nextInputTask() (*task.Task, bool) {
	m.inputMu.Lock()
	defer m.inputMu.Unlock()
	if len(m.inputTasks) == 0 {
		return nil, false
	}
	t := m.inputTasks[0]
	m.inputTasks = m.inputTasks[1:]
	return t, true
}

// takeCyclingTask removes the highest-priority derived task, if any.
func (m *Memory) takeCyclingTask() (*task.Task, bool) {
	m.cyclingMu.Lock()
	defer m.cyclingMu.Unlock()
	return m.cycling.TakeHighestPriorityItem()
}

// enqueuePremise inserts a FireBelief into the bounded premise queue.
func (m *Memory) enqueuePremise(fb *FireBelief) priority.PutResult[string, *FireBelief] {
	m.premiseMu.Lock()
	defer m.premiseMu.Unlock()
	return m.premises.PutIn(fb)
}

// drainPremises removes up to max premises, highest priority first.
func (m *Memory) drainPremises(max int) []*FireBelief {
	m.premiseMu.Lock()
	defer m.premiseMu.Unlock()
	out := make([]*FireBelief, 0, max)
	for i := 0; i < max; i++ {
		fb, ok := m.premises.TakeHighestPriorityItem()
		if !ok {
			break
		}
		out = append(out, fb)
	}
	return out
}

// PendingInputTasks returns a snapshot of the unbounded input FIFO, oldest
// first, for snapshot export (spec §6's persisted "queues").
func (m *Memory) PendingInputTasks() []*task.Task {
	m.inputMu.Lock()
	defer m.inputMu.Unlock()
	out := make([]*task.Task, len(m.inputTasks))
	copy(out, m.inputTasks)
	return out
}

// PendingCyclingTasks returns a snapshot of the bounded cycling-task bag,
// in no particular order, for snapshot export.
func (m *Memory) PendingCyclingTasks() []*task.Task {
	m.cyclingMu.Lock()
	defer m.cyclingMu.Unlock()
	return m.cycling.Values()
}

// RestoreInputTask appends t to the input FIFO, for snapshot import. Callers
// must restore in original arrival order to preserve FIFO semantics.
func (m *Memory) RestoreInputTask(t *task.Task) {
	m.inputMu.Lock()
	m.inputTasks = append(m.inputTasks, t)
	m.inputMu.Unlock()
}

// RestoreCyclingTask inserts t into the cycling-task bag, for snapshot
// import.
func (m *Memory) RestoreCyclingTask(t *task.Task) {
	m.cyclingMu.Lock()
	m.cycling.PutIn(t)
	m.cyclingMu.Unlock()
}

// putBackCyclingTask reinserts a fired task into the cycling bag with
// forgetting applied, per spec §4.4 step 4's "cyclingTasks.putBack(t,
// TASKLINK_FORGET_DURATIONS)". A displaced task fires a TaskRemove event,
// mirroring AddTask's eviction bookkeeping.
func (m *Memory) putBackCyclingTask(t *task.Task, now int64) {
	m.cyclingMu.Lock()
	result := m.cycling.PutBack(t, m.params.TaskLinkForgetDurations, now, m.params.QualityRescaled)
	m.cyclingMu.Unlock()

	if result.Outcome == priority.Displaced {
		m.emit(events.TaskRemove, result.Displaced.Name(), result.Displaced)
	}
}

func (m *Memory) emit(kind events.Kind, subject string, data any) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(events.Event{Kind: kind, Subject: subject, Time: m.clock.Now(), Data: data})
}

// FeedbackBudget builds the default budget used for tasks originating
// outside the reasoner (spec §6's DEFAULT_FEEDBACK_PRIORITY/DURABILITY),
// e.g. answers delivered back in as new input.
func (m *Memory) FeedbackBudget(quality float64) budget.Value {
	return budget.New(m.params.DefaultFeedbackPriority, m.params.DefaultFeedbackDurability, quality, m.clock.Now())
}
