package views

import (
	"context"
	"sync"
	"time"

	"gitlab.com/dirk.krummacker/persons/pkg/client"
	"gitlab.com/dirk.krummacker/persons/pkg/model"
)

// memoryCollection is an in-memory Collection. Setting a fail* error makes the respective call
// fail; setting gate makes every call block until the gate is closed, ignoring cancellation, so
// that tests can let a result arrive after the view is gone.
type memoryCollection struct {
	mu      sync.Mutex
	nextId  int64
	persons map[int64]model.Person
	clock   time.Time
	calls   []string

	failList   error
	failGet    error
	failSave   error
	failDelete error

	gate    chan struct{}
	entered chan string
}

func newMemoryCollection(persons ...model.Person) *memoryCollection {
	m := &memoryCollection{
		nextId:  1,
		persons: map[int64]model.Person{},
		clock:   time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC),
	}
	for _, p := range persons {
		m.add(p.Fields())
	}
	return m
}

func (m *memoryCollection) add(fields model.PersonFields) model.Person {
	m.clock = m.clock.Add(time.Minute)
	now := m.clock
	p := model.Person{Id: m.nextId, CreatedAt: &now, UpdatedAt: &now}.WithFields(fields)
	m.persons[p.Id] = p
	m.nextId++
	return p
}

func (m *memoryCollection) enter(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	gate, entered := m.gate, m.entered
	m.mu.Unlock()
	if entered != nil {
		entered <- call
	}
	if gate != nil {
		<-gate
	}
}

func (m *memoryCollection) callLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *memoryCollection) ListAll(ctx context.Context) ([]model.Person, error) {
	m.enter("list")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	persons := []model.Person{}
	for id := int64(1); id < m.nextId; id++ {
		if p, ok := m.persons[id]; ok {
			persons = append(persons, p)
		}
	}
	return persons, nil
}

func (m *memoryCollection) GetByID(ctx context.Context, id int64) (model.Person, error) {
	m.enter("get")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return model.Person{}, m.failGet
	}
	p, ok := m.persons[id]
	if !ok {
		return model.Person{}, &client.NotFoundError{Id: id}
	}
	return p, nil
}

func (m *memoryCollection) Create(ctx context.Context, fields model.PersonFields) (model.Person, error) {
	m.enter("create")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave != nil {
		return model.Person{}, m.failSave
	}
	return m.add(fields), nil
}

func (m *memoryCollection) Update(ctx context.Context, id int64, fields model.PersonFields) (model.Person, error) {
	m.enter("update")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave != nil {
		return model.Person{}, m.failSave
	}
	p, ok := m.persons[id]
	if !ok {
		return model.Person{}, &client.NotFoundError{Id: id}
	}
	m.clock = m.clock.Add(time.Minute)
	now := m.clock
	p = p.WithFields(fields)
	p.UpdatedAt = &now
	m.persons[id] = p
	return p, nil
}

func (m *memoryCollection) Delete(ctx context.Context, id int64) error {
	m.enter("delete")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete != nil {
		return m.failDelete
	}
	if _, ok := m.persons[id]; !ok {
		return &client.NotFoundError{Id: id}
	}
	delete(m.persons, id)
	return nil
}

// recorder collects navigation, notifications and confirmation prompts.
type recorder struct {
	mu        sync.Mutex
	routes    []Route
	successes []string
	errors    []string
	prompts   []string
	answer    bool
}

func (r *recorder) Navigate(route Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

func (r *recorder) Success(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, message)
}

func (r *recorder) Error(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, message)
}

func (r *recorder) Confirm(prompt string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, prompt)
	return r.answer
}

func newDeps(collection Collection, rec *recorder) Deps {
	return Deps{
		Collection: collection,
		Navigator:  rec,
		Notifier:   rec,
		Confirmer:  rec,
	}
}

func ada() model.Person {
	return model.Person{FirstName: "Ada", LastName: "Lovelace", Email: "ada@x.org"}
}

func grace() model.Person {
	return model.Person{FirstName: "Grace", LastName: "Hopper", Email: "grace@x.org"}
}

func transportFailure(message string) error {
	return &client.TransportError{Op: "test", StatusCode: 500, Message: message}
}
