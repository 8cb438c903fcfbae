package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitter_DeliversInOrder(t *testing.T) {
	var e Emitter[int]
	var got []string
	e.On(func(v int) { got = append(got, "first") })
	e.On(func(v int) { got = append(got, "second") })

	e.Emit(1)
	assert.Equal(t, []string{"first", "second"}, got)
	assert.Equal(t, 2, e.Len())
}

func TestEmitter_Unsubscribe(t *testing.T) {
	var e Emitter[string]
	calls := 0
	sub := e.On(func(string) { calls++ })

	e.Emit("a")
	sub.Unsubscribe()
	sub.Unsubscribe()
	e.Emit("b")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, e.Len())
}

func TestEmitter_UnsubscribeDuringEmit(t *testing.T) {
	var e Emitter[int]
	var sub *Subscription
	calls := 0
	sub = e.On(func(int) {
		calls++
		sub.Unsubscribe()
	})
	e.On(func(int) { calls++ })

	e.Emit(0)
	e.Emit(0)
	assert.Equal(t, 3, calls)
}

func TestEmitter_Clear(t *testing.T) {
	var e Emitter[int]
	calls := 0
	sub := e.On(func(int) { calls++ })
	e.Clear()
	e.Emit(1)
	sub.Unsubscribe()

	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, e.Len())
}

func TestSubscription_NilSafe(t *testing.T) {
	var s *Subscription
	s.Unsubscribe()
}
