package todolist

import (
	"testing"

	"todoweb/internal/models"
)

func TestStateCreateAppends(t *testing.T) {
	var s State

	tasks := []string{"buy milk", "buy eggs", "walk the dog"}
	for i, task := range tasks {
		s.Apply(Created{Todo: models.Todo{ID: int64(i + 1), Task: task}})
		if s.Len() != i+1 {
			t.Fatalf("after %d creates, len = %d, want %d", i+1, s.Len(), i+1)
		}
	}

	for i, todo := range s.Todos() {
		if todo.Task != tasks[i] {
			t.Errorf("todos[%d].Task = %q, want %q", i, todo.Task, tasks[i])
		}
		if todo.IsComplete {
			t.Errorf("todos[%d] is complete, new todos must not be", i)
		}
	}
}

func TestStateDoubleToggleRestoresFlag(t *testing.T) {
	tests := []struct {
		name    string
		initial bool
	}{
		{name: "initially incomplete", initial: false},
		{name: "initially complete", initial: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s State
			s.Replace([]models.Todo{{ID: 7, Task: "laundry", IsComplete: tt.initial}})

			s.Apply(Toggled{ID: 7})
			todo, _ := s.Find(7)
			if todo.IsComplete == tt.initial {
				t.Fatal("first toggle did not flip the flag")
			}

			s.Apply(Toggled{ID: 7})
			todo, _ = s.Find(7)
			if todo.IsComplete != tt.initial {
				t.Fatal("second toggle did not restore the flag")
			}
		})
	}
}

func TestStateDeleteRemovesOnlyMatch(t *testing.T) {
	var s State
	s.Replace([]models.Todo{
		{ID: 1, Task: "one"},
		{ID: 2, Task: "two"},
		{ID: 3, Task: "three"},
	})

	s.Apply(Deleted{ID: 2})

	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	if _, ok := s.Find(2); ok {
		t.Error("deleted todo is still present")
	}
	for _, id := range []int64{1, 3} {
		if _, ok := s.Find(id); !ok {
			t.Errorf("todo %d was removed along with the match", id)
		}
	}
}

func TestStateRenamePatchesText(t *testing.T) {
	var s State
	s.Replace([]models.Todo{
		{ID: 1, Task: "one"},
		{ID: 2, Task: "two"},
	})

	s.Apply(Renamed{ID: 2, Task: "two, revised"})

	todo, _ := s.Find(2)
	if todo.Task != "two, revised" {
		t.Errorf("Task = %q, want %q", todo.Task, "two, revised")
	}
	other, _ := s.Find(1)
	if other.Task != "one" {
		t.Errorf("unrelated todo was renamed to %q", other.Task)
	}
}

func TestStateUnknownIDIsIgnored(t *testing.T) {
	var s State
	s.Replace([]models.Todo{{ID: 1, Task: "one"}})

	s.Apply(Toggled{ID: 99})
	s.Apply(Renamed{ID: 99, Task: "ninety-nine"})
	s.Apply(Deleted{ID: 99})

	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
	todo, _ := s.Find(1)
	if todo.Task != "one" || todo.IsComplete {
		t.Errorf("todo changed: %+v", todo)
	}
}

func TestStateReplacePreservesGivenOrder(t *testing.T) {
	var s State
	s.Replace([]models.Todo{{ID: 1, Task: "stale"}})

	// Order is the store's contract; the state must not re-sort
	// even when rows arrive out of id order.
	s.Replace([]models.Todo{
		{ID: 2, Task: "b"},
		{ID: 1, Task: "a"},
		{ID: 3, Task: "c"},
	})

	got := s.Todos()
	want := []int64{2, 1, 3}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("todos[%d].ID = %d, want %d", i, got[i].ID, id)
		}
	}
}

func TestStateTodosReturnsCopy(t *testing.T) {
	var s State
	s.Replace([]models.Todo{{ID: 1, Task: "one"}})

	todos := s.Todos()
	todos[0].Task = "mutated"

	todo, _ := s.Find(1)
	if todo.Task != "one" {
		t.Error("mutating the returned slice changed the state")
	}
}
