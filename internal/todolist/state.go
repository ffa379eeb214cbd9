// Package todolist models the dashboard's list state as a reducer
// over mutation events. Loading replaces the whole state; every
// successful remote mutation applies exactly one event, so the list
// the user sees never diverges from what the store acknowledged.
package todolist

import "todoweb/internal/models"

// Event is one acknowledged mutation. The concrete types form a
// closed set: Created, Toggled, Renamed, Deleted.
type Event interface {
	isEvent()
}

type Created struct {
	Todo models.Todo
}

type Toggled struct {
	ID int64
}

type Renamed struct {
	ID   int64
	Task string
}

type Deleted struct {
	ID int64
}

func (Created) isEvent() {}
func (Toggled) isEvent() {}
func (Renamed) isEvent() {}
func (Deleted) isEvent() {}

// State is an ordered sequence of todos. It preserves the order rows
// were loaded or appended in and never re-sorts.
type State struct {
	todos []models.Todo
}

// Replace discards the current sequence in favor of todos.
func (s *State) Replace(todos []models.Todo) {
	s.todos = append(s.todos[:0:0], todos...)
}

// Apply patches the sequence with one event. Events referring to an
// id that is not present are ignored.
func (s *State) Apply(ev Event) {
	switch ev := ev.(type) {
	case Created:
		s.todos = append(s.todos, ev.Todo)
	case Toggled:
		for i := range s.todos {
			if s.todos[i].ID == ev.ID {
				s.todos[i].IsComplete = !s.todos[i].IsComplete
			}
		}
	case Renamed:
		for i := range s.todos {
			if s.todos[i].ID == ev.ID {
				s.todos[i].Task = ev.Task
			}
		}
	case Deleted:
		kept := s.todos[:0]
		for _, todo := range s.todos {
			if todo.ID != ev.ID {
				kept = append(kept, todo)
			}
		}
		s.todos = kept
	}
}

// Todos returns a copy of the sequence.
func (s *State) Todos() []models.Todo {
	return append([]models.Todo(nil), s.todos...)
}

func (s *State) Len() int {
	return len(s.todos)
}

// Find returns the todo with the given id, if present.
func (s *State) Find(id int64) (models.Todo, bool) {
	for _, todo := range s.todos {
		if todo.ID == id {
			return todo, true
		}
	}
	return models.Todo{}, false
}
