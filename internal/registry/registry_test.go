package registry

import (
	"errors"
	"testing"

	"github.com/vovakirdan/gridstage/internal/scene"
)

func TestRegisterAndCreate(t *testing.T) {
	var got Options
	Register("test-b", "Second", func(opts Options) (*scene.Scene, error) {
		got = opts
		return scene.New("b", nil), nil
	})
	Register("test-a", "First", func(Options) (*scene.Scene, error) {
		return nil, errors.New("boom")
	})

	if !Exists("test-b") || Exists("test-missing") {
		t.Error("Exists() reports wrong registrations")
	}

	s, err := Create("test-b", Options{Seed: 7})
	if err != nil || s.Name() != "b" {
		t.Fatalf("Create(test-b) = %v, %v", s, err)
	}
	if got.Seed != 7 {
		t.Errorf("factory options Seed = %d, expected 7", got.Seed)
	}

	if _, err := Create("test-a", Options{}); err == nil {
		t.Error("Create(test-a) error = nil, expected factory error")
	}
	if _, err := Create("test-missing", Options{}); !errors.Is(err, ErrUnknown) {
		t.Errorf("Create(test-missing) error = %v, expected ErrUnknown", err)
	}

	var ids []string
	for _, info := range List() {
		ids = append(ids, info.ID)
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] > ids[i] {
			t.Errorf("List() not sorted: %v", ids)
		}
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("test-dup", "Dup", func(Options) (*scene.Scene, error) { return nil, nil })
	defer func() {
		if recover() == nil {
			t.Error("duplicate Register() did not panic")
		}
	}()
	Register("test-dup", "Dup", func(Options) (*scene.Scene, error) { return nil, nil })
}
