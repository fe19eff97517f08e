// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"reflect"
	"testing"
)

func TestToggleFlipsMembership(t *testing.T) {
	s := NewSelection()

	if got := s.Toggle("u1"); !got {
		t.Errorf("first Toggle(u1) = %v, want true", got)
	}
	if !s.Contains("u1") {
		t.Error("u1 should be selected after one toggle")
	}
	if got := s.Toggle("u1"); got {
		t.Errorf("second Toggle(u1) = %v, want false", got)
	}
	if s.Contains("u1") {
		t.Error("u1 should not be selected after two toggles")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestToggleTwiceRestoresOriginalSet(t *testing.T) {
	s := NewSelection()
	s.Toggle("u1")
	s.Toggle("u2")
	before := s.UIDs()

	s.Toggle("u3")
	s.Toggle("u3")

	if got := s.UIDs(); !reflect.DeepEqual(got, before) {
		t.Errorf("UIDs() = %v, want %v", got, before)
	}
}

func TestToggleEmptyUIDIgnored(t *testing.T) {
	s := NewSelection()
	if got := s.Toggle(""); got {
		t.Errorf("Toggle(\"\") = %v, want false", got)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestUIDsPreserveMarkOrder(t *testing.T) {
	s := NewSelection()
	s.Toggle("c")
	s.Toggle("a")
	s.Toggle("b")
	if got := s.UIDs(); !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Errorf("UIDs() = %v, want [c a b]", got)
	}

	// Re-marking moves a topic to the end.
	s.Toggle("a")
	s.Toggle("a")
	if got := s.UIDs(); !reflect.DeepEqual(got, []string{"c", "b", "a"}) {
		t.Errorf("UIDs() after re-mark = %v, want [c b a]", got)
	}
}

func TestClearEmptiesSelection(t *testing.T) {
	s := NewSelection()
	s.Toggle("u1")
	s.Toggle("u2")

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", s.Len())
	}
	if s.Contains("u1") {
		t.Error("u1 still selected after Clear")
	}
	if got := s.UIDs(); len(got) != 0 {
		t.Errorf("UIDs() after Clear = %v, want empty", got)
	}
}
