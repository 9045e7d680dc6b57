package events

import (
	"reflect"
	"testing"
)

func TestBusPublishOrder(t *testing.T) {
	bus := NewBus()

	var got []string
	bus.Subscribe(func(e Event) { got = append(got, "first:"+string(e.Type())) })
	bus.Subscribe(func(e Event) { got = append(got, "second:"+string(e.Type())) })

	bus.Publish(ChapterUnlocked{ChapterID: "c2"})

	want := []string{"first:chapter_unlocked", "second:chapter_unlocked"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("handlers saw %v, want %v", got, want)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	rec := &Recorder{}
	unsubscribe := bus.Subscribe(rec.Handle)

	bus.Publish(LevelChanged{Old: 1, New: 2})
	unsubscribe()
	unsubscribe()
	bus.Publish(LevelChanged{Old: 2, New: 3})

	if n := len(rec.Events()); n != 1 {
		t.Errorf("recorded %d events after unsubscribe, want 1", n)
	}
}

func TestBusWithoutSubscribers(t *testing.T) {
	NewBus().Publish(BalanceChanged{Kind: Credit, Amount: 5, Reason: "test", Total: 5})
}

func TestRecorderOfType(t *testing.T) {
	rec := &Recorder{}
	rec.Publish(BalanceChanged{Kind: Credit, Amount: 100, Total: 100})
	rec.Publish(LevelChanged{Old: 1, New: 2})
	rec.Publish(BalanceChanged{Kind: Debit, Amount: 10, Total: 90})

	if n := len(rec.OfType(TypeBalanceChanged)); n != 2 {
		t.Errorf("OfType(balance) = %d events, want 2", n)
	}
	levels := rec.OfType(TypeLevelChanged)
	if len(levels) != 1 || !levels[0].(LevelChanged).Up() {
		t.Errorf("OfType(level) = %v, want one level-up", levels)
	}

	rec.Reset()
	if len(rec.Events()) != 0 {
		t.Error("Reset did not clear the recorder")
	}
}

func TestBalanceChangedString(t *testing.T) {
	tests := []struct {
		event BalanceChanged
		want  string
	}{
		{BalanceChanged{Kind: Credit, Amount: 15, Reason: "Read", Total: 40}, "+15 gems (Read), balance 40"},
		{BalanceChanged{Kind: Debit, Amount: 5, Reason: "relapse", Total: 35}, "-5 gems (relapse), balance 35"},
	}
	for _, tt := range tests {
		if got := tt.event.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
