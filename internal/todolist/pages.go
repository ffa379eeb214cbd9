package todolist

import (
	"sync"

	"todoweb/internal/models"
)

// Editing is the transient edit-mode state: at most one todo is
// being edited at a time, identified by id with its draft text.
type Editing struct {
	ID    int64
	Draft string
}

// Page is the per-session dashboard state: the loaded list plus the
// editing state. Mutations on a page are last-write-wins; two
// in-flight requests racing on the same todo are not coordinated.
type Page struct {
	mu      sync.Mutex
	state   State
	editing *Editing
}

func (p *Page) Replace(todos []models.Todo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Replace(todos)
}

func (p *Page) Apply(ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Apply(ev)
}

func (p *Page) Todos() []models.Todo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Todos()
}

func (p *Page) Find(id int64) (models.Todo, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Find(id)
}

// StartEdit captures the current text of the todo into editing
// state. It is a no-op if the todo is not in the list.
func (p *Page) StartEdit(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	todo, ok := p.state.Find(id)
	if !ok {
		return
	}
	p.editing = &Editing{ID: id, Draft: todo.Task}
}

// CancelEdit discards the editing state without any remote call.
func (p *Page) CancelEdit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.editing = nil
}

// Editing returns the current editing state, if any.
func (p *Page) Editing() (Editing, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.editing == nil {
		return Editing{}, false
	}
	return *p.editing, true
}

// Pages holds one Page per live session. A page comes into being on
// first dashboard access after sign-in and is torn down on logout.
type Pages struct {
	mu        sync.Mutex
	bySession map[string]*Page
}

func NewPages() *Pages {
	return &Pages{
		bySession: make(map[string]*Page),
	}
}

// Get returns the page of the session, creating it on first use.
func (p *Pages) Get(sessionID string) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	page, ok := p.bySession[sessionID]
	if !ok {
		page = &Page{}
		p.bySession[sessionID] = page
	}
	return page
}

// Drop tears down the page of the session.
func (p *Pages) Drop(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.bySession, sessionID)
}
