package batch_test

import (
	"testing"

	"pixbatch/internal/batch"
)

func TestStateTransitions(t *testing.T) {
	for _, s := range batch.AllStates() {
		want := s != batch.StateConverting
		if s.CanConvert() != want {
			t.Errorf("%s.CanConvert() = %v", s, s.CanConvert())
		}
	}
	if batch.StateIdle.Terminal() || batch.StateConverting.Terminal() || !batch.StateCancelled.Terminal() {
		t.Fatal("unexpected Terminal results")
	}
}
