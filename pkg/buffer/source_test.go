package buffer

import (
	"bytes"
	"io"
	"testing"
)

func TestSource_PushThenRead(t *testing.T) {
	var s Source
	dev := bytes.NewReader([]byte("device"))

	s.Push([]byte("x"))
	b, err := s.ReadByte(dev.Read)
	if err != nil {
		t.Fatalf("ReadByte error: %v", err)
	}
	if b != 'x' {
		t.Fatalf("ReadByte = %q, want 'x'", b)
	}
	b, _ = s.ReadByte(dev.Read)
	if b != 'd' {
		t.Fatalf("ReadByte = %q, want 'd' from device", b)
	}
}

func TestSource_MostRecentFirst(t *testing.T) {
	var s Source
	s.Push([]byte("x"))
	s.Push([]byte("y"))
	s.Push([]byte("ab"))

	got := make([]byte, 4)
	n, err := s.Read(got, 1, func([]byte) (int, error) {
		t.Fatal("device touched while pushback was sufficient")
		return 0, nil
	})
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if string(got[:n]) != "abyx" {
		t.Fatalf("Read = %q, want %q", got[:n], "abyx")
	}
}

func TestSource_FallsThroughToDevice(t *testing.T) {
	var s Source
	dev := bytes.NewReader([]byte("cd"))
	s.Push([]byte("ab"))

	got := make([]byte, 8)
	n, err := s.Read(got, 1, dev.Read)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if string(got[:n]) != "abcd" {
		t.Fatalf("Read = %q, want %q", got[:n], "abcd")
	}
	if _, err := s.Read(got, 1, dev.Read); err != io.EOF {
		t.Fatalf("Read at end error = %v, want io.EOF", err)
	}
}

func TestSource_WidthBoundary(t *testing.T) {
	var requests []int
	fill := func(p []byte) (int, error) {
		requests = append(requests, len(p))
		for i := range p {
			p[i] = 'z'
		}
		return len(p), nil
	}

	t.Run("aligned drain uses element granularity", func(t *testing.T) {
		requests = nil
		s := NewSource(8)
		s.Push([]byte{1, 2})
		p := make([]byte, 7)
		n, _ := s.Read(p, 2, fill)
		if len(requests) != 1 || requests[0] != 4 {
			t.Fatalf("device requests = %v, want [4]", requests)
		}
		if n != 6 {
			t.Fatalf("Read = %d, want 6", n)
		}
	})

	t.Run("unaligned drain falls back to bytes", func(t *testing.T) {
		requests = nil
		s := NewSource(8)
		s.Push([]byte{1})
		p := make([]byte, 6)
		n, _ := s.Read(p, 2, fill)
		if len(requests) != 1 || requests[0] != 5 {
			t.Fatalf("device requests = %v, want [5]", requests)
		}
		if n != 6 {
			t.Fatalf("Read = %d, want 6", n)
		}
	})
}

func TestSource_CapacityPanics(t *testing.T) {
	s := NewSource(2)
	s.Push([]byte("ab"))
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on pushback overflow")
		}
	}()
	s.PushByte('c')
}

func TestSource_Discard(t *testing.T) {
	var s Source
	s.Push([]byte("abc"))
	s.Discard()
	if s.Len() != 0 {
		t.Fatalf("Len() = %d after Discard", s.Len())
	}
}
