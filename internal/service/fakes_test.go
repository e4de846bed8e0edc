package service

import (
	"context"
	"sync"
	"time"

	"github.com/sonntkms/taskapproval/internal/domain"
	"github.com/sonntkms/taskapproval/internal/domain/approval"
	"github.com/sonntkms/taskapproval/internal/port/messagequeue"
	"github.com/sonntkms/taskapproval/internal/port/notifier"
	"github.com/sonntkms/taskapproval/internal/port/orchestration"
)

// --- gateway ---

type raisedEvent struct {
	instanceID string
	event      string
	payload    approval.Result
}

type startCall struct {
	kind string
	req  approval.Request
}

// fakeGateway implements orchestration.Gateway for testing.
type fakeGateway struct {
	mu        sync.Mutex
	instances map[string]*approval.InstanceMetadata
	starts    []startCall
	raised    []raisedEvent
	startErr  error
	getErr    error
	raiseErr  error
	nextID    string
}

var _ orchestration.Gateway = (*fakeGateway)(nil)

func newFakeGateway() *fakeGateway {
	return &fakeGateway{instances: make(map[string]*approval.InstanceMetadata)}
}

func (g *fakeGateway) withInstance(id string, status approval.RuntimeStatus) *fakeGateway {
	g.instances[id] = &approval.InstanceMetadata{
		InstanceID:    id,
		Name:          approval.OrchestrationName,
		RuntimeStatus: status,
		CreatedAt:     time.Now(),
	}
	return g
}

func (g *fakeGateway) StartInstance(_ context.Context, kind string, req approval.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.starts = append(g.starts, startCall{kind: kind, req: req})
	if g.startErr != nil {
		return "", g.startErr
	}
	id := g.nextID
	if id == "" {
		id = "approval-" + req.ID
	}
	g.instances[id] = &approval.InstanceMetadata{InstanceID: id, Name: kind, RuntimeStatus: approval.StatusRunning}
	return id, nil
}

func (g *fakeGateway) GetInstance(_ context.Context, id string) (*approval.InstanceMetadata, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.getErr != nil {
		return nil, g.getErr
	}
	meta, ok := g.instances[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *meta
	return &cp, nil
}

func (g *fakeGateway) RaiseEvent(_ context.Context, id, event string, payload approval.Result) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.raised = append(g.raised, raisedEvent{instanceID: id, event: event, payload: payload})
	if g.raiseErr != nil {
		return g.raiseErr
	}
	// first event resolves the instance
	if meta, ok := g.instances[id]; ok && meta.RuntimeStatus == approval.StatusRunning {
		meta.RuntimeStatus = approval.StatusCompleted
	}
	return nil
}

// --- store ---

type fakeStore struct {
	mu        sync.Mutex
	records   []approval.Record
	actions   []approval.ActionEntry
	createErr error
	appendErr error
	listErr   error
}

func (s *fakeStore) CreateApprovalRecord(_ context.Context, rec approval.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *fakeStore) GetApprovalRecord(_ context.Context, id string) (*approval.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].InstanceID == id {
			r := s.records[i]
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeStore) AppendApprovalAction(_ context.Context, e approval.ActionEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.actions = append(s.actions, e)
	return nil
}

func (s *fakeStore) ListApprovalActions(_ context.Context, id string) ([]approval.ActionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []approval.ActionEntry
	for _, a := range s.actions {
		if a.InstanceID == id {
			out = append(out, a)
		}
	}
	return out, nil
}

// --- queue ---

type published struct {
	subject string
	data    []byte
}

type fakeQueue struct {
	mu         sync.Mutex
	published  []published
	subscribed []string
	handler    messagequeue.Handler
	publishErr error
}

func (q *fakeQueue) Publish(_ context.Context, subject string, data []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.publishErr != nil {
		return q.publishErr
	}
	q.published = append(q.published, published{subject: subject, data: data})
	return nil
}

func (q *fakeQueue) Subscribe(_ context.Context, subject string, h messagequeue.Handler) (func(), error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.subscribed = append(q.subscribed, subject)
	q.handler = h
	return func() {}, nil
}

func (q *fakeQueue) Drain() error      { return nil }
func (q *fakeQueue) Close() error      { return nil }
func (q *fakeQueue) IsConnected() bool { return true }

func (q *fakeQueue) subjects() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.published))
	for _, p := range q.published {
		out = append(out, p.subject)
	}
	return out
}

// --- orchestration context ---

// scriptedContext implements orchestration.Context with a scripted event.
type scriptedContext struct {
	now         time.Time
	event       *approval.Result // nil means the timer wins
	waitErr     error
	activityErr map[string]error

	activities  []string
	waitedFor   string
	waitTimeout time.Duration
	sideEffects int
}

func (c *scriptedContext) CallActivity(name string, _ approval.Request) error {
	c.activities = append(c.activities, name)
	return c.activityErr[name]
}

func (c *scriptedContext) WaitForEvent(name string, timeout time.Duration) (approval.Result, bool, error) {
	c.waitedFor = name
	c.waitTimeout = timeout
	if c.waitErr != nil {
		return approval.Result{}, false, c.waitErr
	}
	if c.event == nil {
		return approval.Result{}, false, nil
	}
	return *c.event, true, nil
}

func (c *scriptedContext) Now() time.Time { return c.now }

func (c *scriptedContext) SideEffect(fn func() string) string {
	c.sideEffects++
	return fn()
}

func (c *scriptedContext) Logger() orchestration.Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Info(string, ...any) {}
func (nopLogger) Warn(string, ...any) {}

func (c *scriptedContext) count(name string) int {
	n := 0
	for _, a := range c.activities {
		if a == name {
			n++
		}
	}
	return n
}

// --- notifier ---

type fakeSender struct {
	mu      sync.Mutex
	sent    []notifier.Message
	sendErr error
}

func (s *fakeSender) Name() string { return "fake" }

func (s *fakeSender) Send(_ context.Context, msg notifier.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, msg)
	return nil
}
