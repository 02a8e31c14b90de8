package storage

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestStore_SaveLoad(t *testing.T) {
	s := NewInMemoryStore()
	payload := json.RawMessage(`{"version": "1.0.0"}`)

	id, err := s.Save("after-folding", "constant folding pass", "const-fold", payload)
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if id == "" {
		t.Fatal("Save() returned empty ID")
	}
	if !s.Exists(id) {
		t.Error("Exists() = false after Save")
	}

	cp, err := s.Load(id)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cp.Name != "after-folding" || cp.Pass != "const-fold" {
		t.Errorf("loaded metadata = %q/%q", cp.Name, cp.Pass)
	}
	if string(cp.Data) != string(payload) {
		t.Errorf("loaded payload = %s", cp.Data)
	}

	// The returned checkpoint is a copy.
	cp.Data[0] = 'X'
	again, _ := s.Load(id)
	if string(again.Data) != string(payload) {
		t.Error("Load() exposes internal payload storage")
	}
}

func TestStore_SaveValidation(t *testing.T) {
	s := NewInMemoryStore()
	if _, err := s.Save("", "", "", json.RawMessage(`{}`)); !errors.Is(err, ErrEmptyName) {
		t.Errorf("empty name error = %v, want ErrEmptyName", err)
	}
	if _, err := s.Save("n", "", "", nil); !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("empty payload error = %v, want ErrEmptyPayload", err)
	}
}

func TestStore_Update(t *testing.T) {
	s := NewInMemoryStore()
	id, _ := s.Save("v1", "", "", json.RawMessage(`{"n": 1}`))

	if err := s.Update(id, "v2", "updated", json.RawMessage(`{"n": 2}`)); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	cp, _ := s.Load(id)
	if cp.Name != "v2" || string(cp.Data) != `{"n": 2}` {
		t.Errorf("update not applied: %q %s", cp.Name, cp.Data)
	}

	if err := s.Update("missing", "n", "", json.RawMessage(`{}`)); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_Delete(t *testing.T) {
	s := NewInMemoryStore()
	id, _ := s.Save("doomed", "", "", json.RawMessage(`{}`))

	if err := s.Delete(id); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if s.Exists(id) {
		t.Error("checkpoint survives Delete")
	}
	if err := s.Delete(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListOrdering(t *testing.T) {
	s := NewInMemoryStore()
	first, _ := s.Save("first", "", "", json.RawMessage(`{}`))
	second, _ := s.Save("second", "", "", json.RawMessage(`{}`))

	// Touch the older checkpoint so it becomes the most recent.
	time.Sleep(2 * time.Millisecond)
	if err := s.Update(first, "first", "", json.RawMessage(`{}`)); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	list := s.List()
	if len(list) != 2 {
		t.Fatalf("List() = %d entries, want 2", len(list))
	}
	if list[0].ID != first || list[1].ID != second {
		t.Errorf("List() order = [%s %s], want most recently updated first", list[0].Name, list[1].Name)
	}
}
