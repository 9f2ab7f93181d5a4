package store

import (
	"testing"

	"ergotree.dev/sigmachain/sigmatype"
)

func TestSessionsOpenGetClose(t *testing.T) {
	s := NewSessions()
	id := s.Open()
	if s.Len() != 1 {
		t.Fatalf("expected 1 open session, got %d", s.Len())
	}
	cs, ok := s.Get(id)
	if !ok || cs == nil {
		t.Fatalf("expected session %s to be open", id)
	}
	cs.Put(sigmatype.NewLong(7))

	if err := s.Close(id); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected 0 open sessions after close, got %d", s.Len())
	}
	if err := s.Close(id); err == nil {
		t.Fatalf("expected double-close to error")
	}
}
