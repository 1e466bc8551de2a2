package event

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmitterDeliversInOrderAndUnsubscribes(t *testing.T) {
	var e Emitter[int]
	var got []string

	offA := e.Subscribe(func(v int) { got = append(got, "a") })
	offB := e.Subscribe(func(v int) { got = append(got, "b") })
	require.Equal(t, 2, e.Len())

	e.Emit(1)
	require.Equal(t, []string{"a", "b"}, got)

	offA()
	offA()
	require.Equal(t, 1, e.Len())

	got = nil
	e.Emit(2)
	require.Equal(t, []string{"b"}, got)

	offB()
	require.Zero(t, e.Len())
}

func TestEmitterUnsubscribeDuringEmit(t *testing.T) {
	var e Emitter[string]
	calls := 0

	var off func()
	off = e.Subscribe(func(string) {
		calls++
		off()
	})

	e.Emit("x")
	e.Emit("y")
	require.Equal(t, 1, calls)
}
