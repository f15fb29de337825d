package stream

import (
	"errors"
	"testing"

	"github.com/haivivi/tio/pkg/device"
)

func newContainerStream(t *testing.T, data string, opts ...Option) *Stream[*device.Container] {
	t.Helper()
	s, err := New(device.NewContainer([]byte(data), device.In|device.Out), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestIOStateString(t *testing.T) {
	tests := []struct {
		state IOState
		want  string
	}{
		{GoodBit, "good"},
		{EOFBit, "eof"},
		{FailBit | BadBit, "fail|bad"},
		{EOFBit | FailBit, "eof|fail"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("IOState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestStateTransitions(t *testing.T) {
	s := newContainerStream(t, "")
	if !s.Good() || s.EOF() || s.Fail() || s.Bad() {
		t.Fatalf("new stream state = %v, want good", s.State())
	}

	if err := s.SetState(EOFBit); err != nil {
		t.Fatalf("SetState(eof) = %v, want nil with default mask", err)
	}
	if !s.EOF() || s.Fail() || s.Good() {
		t.Fatalf("state = %v, want eof only", s.State())
	}

	err := s.SetState(FailBit)
	var serr *Error
	if !errors.As(err, &serr) {
		t.Fatalf("SetState(fail) = %v, want *Error", err)
	}
	if serr.State != FailBit {
		t.Fatalf("Error.State = %v, want fail", serr.State)
	}
	if !s.Fail() || s.Bad() {
		t.Fatalf("state = %v, want eof|fail", s.State())
	}

	s.ClearEOF()
	if s.State() != FailBit {
		t.Fatalf("after ClearEOF state = %v, want fail", s.State())
	}

	s.SetState(BadBit)
	if !s.Bad() || !s.Fail() {
		t.Fatalf("state = %v, want bad to imply Fail()", s.State())
	}

	if err := s.Clear(GoodBit); err != nil {
		t.Fatalf("Clear(good) = %v", err)
	}
	if !s.Good() {
		t.Fatalf("after Clear state = %v", s.State())
	}
	if err := s.Clear(BadBit); err == nil {
		t.Fatal("Clear(bad) = nil, want error under default mask")
	}
}

func TestSetExceptions(t *testing.T) {
	s := newContainerStream(t, "", WithExceptions(GoodBit))
	if err := s.SetState(FailBit); err != nil {
		t.Fatalf("SetState with empty mask = %v", err)
	}
	if s.Exceptions() != GoodBit {
		t.Fatalf("Exceptions() = %v", s.Exceptions())
	}
	if err := s.SetExceptions(DefaultExceptions); err == nil {
		t.Fatal("SetExceptions over a failed state = nil, want error")
	}
	if s.Exceptions() != DefaultExceptions {
		t.Fatalf("Exceptions() = %v, want %v", s.Exceptions(), DefaultExceptions)
	}
	if err := s.SetExceptions(EOFBit); err != nil {
		t.Fatalf("SetExceptions(eof) = %v", err)
	}
}

func TestFailedStreamRefusesOperations(t *testing.T) {
	s := newContainerStream(t, "")
	s.SetState(FailBit)

	_, err := WriteString(s, "x")
	if !errors.Is(err, ErrFailed) {
		t.Fatalf("Write on failed stream = %v, want %v", err, ErrFailed)
	}
	FlushBuffer(s)
	if got := s.Device().Len(); got != 0 {
		t.Fatalf("device length = %d, want untouched", got)
	}
	if _, err := Scan(s, "{}", new(int)); !errors.Is(err, ErrFailed) {
		t.Fatalf("Scan on failed stream = %v, want %v", err, ErrFailed)
	}
}
