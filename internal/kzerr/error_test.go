package kzerr_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klimozawr/klimozawr/internal/kzerr"
)

var (
	errKind  = errors.New("kind of error")
	errCause = errors.New("root cause")
)

func TestError(t *testing.T) {
	tests := []struct {
		Cause   error
		Format  string
		Args    []interface{}
		Message string
	}{
		{errCause, "hello %s", []interface{}{"world"}, "hello world: root cause"},
		{errCause, "", nil, "root cause"},
		{nil, "only %d message", []interface{}{1}, "only 1 message"},
	}

	for _, tt := range tests {
		t.Run(tt.Message, func(t *testing.T) {
			err := kzerr.New(errKind, tt.Cause, tt.Format, tt.Args...)

			if err.Error() != tt.Message {
				t.Errorf("unexpected message: %s", err)
			}

			if !errors.Is(err, errKind) {
				t.Errorf("error should be the kind")
			}

			if err.Kind() != errKind {
				t.Errorf("unexpected kind: %v", err.Kind())
			}

			if tt.Cause != nil && !errors.Is(err, tt.Cause) {
				t.Errorf("error should wrap the cause")
			}
		})
	}
}

func TestProblems(t *testing.T) {
	errA := errors.New("error A")
	errB := errors.New("error B")

	ps := kzerr.Problems{What: errKind, Section: "endpoints"}
	if err := ps.Err(); err != nil {
		t.Fatalf("empty problems should be nil but got %s", err)
	}

	ps.Add(0, "gw", errA)
	ps.Add(1, "", nil)
	ps.Addf(2, "", "line1\nline2")
	ps.Add(2, "", kzerr.New(errB, nil, "wrapped"))

	err := ps.Err()
	if err == nil {
		t.Fatal("expected error but got nil")
	}

	want := "kind of error:\n  endpoints[0] (gw): error A\n  endpoints[2]: line1\n    line2\n  endpoints[2]: wrapped"
	if err.Error() != want {
		t.Errorf("unexpected message:\n%s", err)
	}

	if diff := cmp.Diff([]int{0, 2}, ps.Indexes()); diff != "" {
		t.Errorf("unexpected indexes\n%s", diff)
	}

	for _, e := range []error{errKind, errA, errB} {
		if !errors.Is(err, e) {
			t.Errorf("problems should be %s", e)
		}
	}
	if errors.Is(err, errCause) {
		t.Errorf("problems should not be %s", errCause)
	}

	var p kzerr.Problem
	if !errors.As(err, &p) || p.Index != 0 || p.ID != "gw" {
		t.Errorf("unexpected first problem: %#v", p)
	}
}
