// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	var got Task
	fm := Func(func(_ context.Context, task Task) error {
		got = task
		return nil
	})

	if err := r.Register("fm", fm); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if err := r.Register("deep-fm", fm); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if err := r.Register("fm", fm); !errors.Is(err, ErrDuplicateBackend) {
		t.Errorf("duplicate Register() = %v, want ErrDuplicateBackend", err)
	}
	if err := r.Register("Bad Name", fm); !errors.Is(err, ErrInvalidBackend) {
		t.Errorf("invalid name Register() = %v, want ErrInvalidBackend", err)
	}
	if err := r.Register("nil", nil); !errors.Is(err, ErrInvalidBackend) {
		t.Errorf("nil backend Register() = %v, want ErrInvalidBackend", err)
	}

	if names := r.Names(); !reflect.DeepEqual(names, []string{"deep-fm", "fm"}) {
		t.Errorf("Names() = %v", names)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d", r.Len())
	}

	b, err := r.Lookup("fm")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	task := Task{Kind: TaskTrain, ParamsPath: "exp.cue"}
	if err := b.Run(context.Background(), task); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got.ParamsPath != "exp.cue" {
		t.Errorf("backend received %+v", got)
	}
}

func TestRegistry_LookupMissing(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_, err := r.Lookup("fm")
	var nre *NotRegisteredError
	if !errors.As(err, &nre) || !errors.Is(err, ErrBackendNotRegistered) {
		t.Fatalf("Lookup() error = %v, want *NotRegisteredError", err)
	}
	if nre.Name != "fm" || len(nre.Available) != 0 {
		t.Errorf("NotRegisteredError = %+v", nre)
	}

	_ = r.Register("ncf", Func(func(context.Context, Task) error { return nil }))
	_, err = r.Lookup("fm")
	if !errors.As(err, &nre) || !reflect.DeepEqual(nre.Available, []string{"ncf"}) {
		t.Errorf("Available = %v", nre.Available)
	}
}

func TestRegistry_ConcurrentRegister(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	noop := Func(func(context.Context, Task) error { return nil })

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- r.Register("shared", noop)
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
		} else if !errors.Is(err, ErrDuplicateBackend) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("%d registrations succeeded, want 1", ok)
	}
}

func TestTaskKind_Validate(t *testing.T) {
	t.Parallel()

	for _, k := range []TaskKind{TaskTrain, TaskEvaluate, TaskPredict, TaskFineTune, TaskFindLR, TaskEmbed} {
		if err := k.Validate(); err != nil {
			t.Errorf("%s.Validate() = %v", k, err)
		}
	}
	if err := TaskKind("serve").Validate(); !errors.Is(err, ErrInvalidBackend) {
		t.Errorf("unknown kind Validate() = %v", err)
	}
}
