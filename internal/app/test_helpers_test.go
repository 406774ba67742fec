package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/orbita/internal/core/telemetry"
	"github.com/example/orbita/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockMissionRepository implements secondary.MissionRepository for testing.
type mockMissionRepository struct {
	missions     map[string]*secondary.MissionRecord
	nextNumber   int
	createErr    error
	getErr       error
	listErr      error
	setActiveErr error
}

func newMockMissionRepository() *mockMissionRepository {
	return &mockMissionRepository{
		missions:   make(map[string]*secondary.MissionRecord),
		nextNumber: 1,
	}
}

func (m *mockMissionRepository) Create(ctx context.Context, mission *secondary.MissionRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.missions[mission.ID] = mission
	m.nextNumber++
	return nil
}

func (m *mockMissionRepository) GetByID(ctx context.Context, id string) (*secondary.MissionRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if mission, ok := m.missions[id]; ok {
		copied := *mission
		return &copied, nil
	}
	return nil, fmt.Errorf("mission %s: %w", id, secondary.ErrNotFound)
}

func (m *mockMissionRepository) List(ctx context.Context, filters secondary.MissionFilters) ([]*secondary.MissionRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.MissionRecord
	for _, mission := range m.missions {
		if !filters.ActiveOnly || mission.IsActive {
			result = append(result, mission)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockMissionRepository) SetActive(ctx context.Context, id string, active bool, startedAt *time.Time) error {
	if m.setActiveErr != nil {
		return m.setActiveErr
	}
	mission, ok := m.missions[id]
	if !ok {
		return fmt.Errorf("mission %s: %w", id, secondary.ErrNotFound)
	}
	mission.IsActive = active
	if startedAt != nil {
		mission.StartedAt = *startedAt
	}
	return nil
}

func (m *mockMissionRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("MISSION-%03d", m.nextNumber), nil
}

// mockTelemetryRepository implements secondary.TelemetryRepository for testing.
// It is written to from loop goroutines, so access is locked.
type mockTelemetryRepository struct {
	mu        sync.Mutex
	samples   []*secondary.TelemetryRecord
	appendErr error
	latestErr error
}

func newMockTelemetryRepository() *mockTelemetryRepository {
	return &mockTelemetryRepository{}
}

func (m *mockTelemetryRepository) Append(ctx context.Context, sample *secondary.TelemetryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	sample.ID = int64(len(m.samples) + 1)
	m.samples = append(m.samples, sample)
	return nil
}

func (m *mockTelemetryRepository) Latest(ctx context.Context, missionID string) (*secondary.TelemetryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latestErr != nil {
		return nil, m.latestErr
	}
	for i := len(m.samples) - 1; i >= 0; i-- {
		if m.samples[i].MissionID == missionID {
			return m.samples[i], nil
		}
	}
	return nil, fmt.Errorf("telemetry for %s: %w", missionID, secondary.ErrNotFound)
}

func (m *mockTelemetryRepository) ListByMission(ctx context.Context, missionID string, limit int) ([]*secondary.TelemetryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*secondary.TelemetryRecord
	for i := len(m.samples) - 1; i >= 0 && (limit <= 0 || len(result) < limit); i-- {
		if m.samples[i].MissionID == missionID {
			result = append(result, m.samples[i])
		}
	}
	return result, nil
}

func (m *mockTelemetryRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.samples)
}

// mockDecisionRepository implements secondary.DecisionRepository for testing.
type mockDecisionRepository struct {
	mu        sync.Mutex
	decisions []*secondary.DecisionRecord
	appendErr error
	listErr   error
	setErr    error
}

func newMockDecisionRepository() *mockDecisionRepository {
	return &mockDecisionRepository{}
}

func (m *mockDecisionRepository) Append(ctx context.Context, d *secondary.DecisionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	d.ID = int64(len(m.decisions) + 1)
	m.decisions = append(m.decisions, d)
	return nil
}

func (m *mockDecisionRepository) GetByID(ctx context.Context, id int64) (*secondary.DecisionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.decisions {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, fmt.Errorf("decision %d: %w", id, secondary.ErrNotFound)
}

func (m *mockDecisionRepository) ListByMission(ctx context.Context, missionID string) ([]*secondary.DecisionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.DecisionRecord
	for _, d := range m.decisions {
		if d.MissionID == missionID {
			result = append(result, d)
		}
	}
	return result, nil
}

func (m *mockDecisionRepository) CountByMission(ctx context.Context, missionID string) (int, error) {
	list, err := m.ListByMission(ctx, missionID)
	return len(list), err
}

func (m *mockDecisionRepository) SetOutcomeVerified(ctx context.Context, id int64, verified bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	for _, d := range m.decisions {
		if d.ID == id {
			d.OutcomeVerified = &verified
			return nil
		}
	}
	return fmt.Errorf("decision %d: %w", id, secondary.ErrNotFound)
}

func (m *mockDecisionRepository) all() []*secondary.DecisionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*secondary.DecisionRecord(nil), m.decisions...)
}

// mockBroadcaster implements secondary.Broadcaster for testing.
// hold, when set before the first Start, runs before each delivery and
// may block to simulate a slow observer.
type mockBroadcaster struct {
	mu      sync.Mutex
	updates []secondary.LiveUpdate
	hold    func(missionID string)
}

func (m *mockBroadcaster) Broadcast(ctx context.Context, missionID string, update secondary.LiveUpdate) {
	if m.hold != nil {
		m.hold(missionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, update)
}

func (m *mockBroadcaster) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.updates)
}

func (m *mockBroadcaster) snapshot() []secondary.LiveUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]secondary.LiveUpdate(nil), m.updates...)
}

// mockTelemetrySource implements secondary.TelemetrySource for testing.
// Each Fetch pops the next queued reading; an empty queue means no data.
// A non-nil gate blocks Fetch until it is closed.
type mockTelemetrySource struct {
	mu       sync.Mutex
	readings []telemetry.Snapshot
	fetchErr error
	panicMsg string
	gate     chan struct{}
	calls    int
}

func (m *mockTelemetrySource) setGate(gate chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gate = gate
}

func (m *mockTelemetrySource) Fetch(ctx context.Context, missionID string, class telemetry.VehicleClass) (telemetry.Snapshot, bool, error) {
	m.mu.Lock()
	gate := m.gate
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.panicMsg != "" {
		msg := m.panicMsg
		m.panicMsg = ""
		panic(msg)
	}
	if m.fetchErr != nil {
		return telemetry.Snapshot{}, false, m.fetchErr
	}
	if len(m.readings) == 0 {
		return telemetry.Snapshot{}, false, nil
	}
	next := m.readings[0]
	m.readings = m.readings[1:]
	return next, true, nil
}

// mockLoopController implements LoopController for service tests.
type mockLoopController struct {
	running  map[string]telemetry.VehicleClass
	current  map[string]telemetry.Snapshot
	startErr error
	starts   int
	stops    int
}

func newMockLoopController() *mockLoopController {
	return &mockLoopController{
		running: make(map[string]telemetry.VehicleClass),
		current: make(map[string]telemetry.Snapshot),
	}
}

func (m *mockLoopController) Start(missionID string, class telemetry.VehicleClass) (bool, error) {
	if m.startErr != nil {
		return false, m.startErr
	}
	if _, ok := m.running[missionID]; ok {
		return false, nil
	}
	m.running[missionID] = class
	m.starts++
	return true, nil
}

func (m *mockLoopController) Stop(missionID string) bool {
	if _, ok := m.running[missionID]; !ok {
		return false
	}
	delete(m.running, missionID)
	delete(m.current, missionID)
	m.stops++
	return true
}

func (m *mockLoopController) Running(missionID string) bool {
	_, ok := m.running[missionID]
	return ok
}

func (m *mockLoopController) Current(missionID string) (telemetry.Snapshot, bool) {
	s, ok := m.current[missionID]
	return s, ok
}

var (
	_ secondary.MissionRepository   = (*mockMissionRepository)(nil)
	_ secondary.TelemetryRepository = (*mockTelemetryRepository)(nil)
	_ secondary.DecisionRepository  = (*mockDecisionRepository)(nil)
	_ secondary.Broadcaster         = (*mockBroadcaster)(nil)
	_ secondary.TelemetrySource     = (*mockTelemetrySource)(nil)
	_ LoopController                = (*mockLoopController)(nil)
)
