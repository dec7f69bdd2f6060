package events

import (
	"testing"

	"github.com/Surajgore007/oceansaksham-location/types"
	"github.com/stretchr/testify/assert"
)

func TestRegistryNotifyInRegistrationOrder(t *testing.T) {
	r := NewRegistry()

	var order []int
	r.Subscribe(func(*types.Position) { order = append(order, 1) })
	r.Subscribe(func(*types.Position) { order = append(order, 2) })
	r.Subscribe(func(*types.Position) { order = append(order, 3) })

	r.Notify(&types.Position{})

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestRegistryIsolatesPanickingSubscriber(t *testing.T) {
	r := NewRegistry()

	var calls int
	r.Subscribe(func(*types.Position) { panic("bad observer") })
	r.Subscribe(func(*types.Position) { calls++ })

	assert.NotPanics(t, func() {
		r.Notify(&types.Position{})
	})
	assert.Equal(t, 1, calls)
}

func TestRegistryUnsubscribeBeforeEvent(t *testing.T) {
	r := NewRegistry()

	var calls int
	unsubscribe := r.Subscribe(func(*types.Position) { calls++ })
	unsubscribe()

	r.Notify(&types.Position{})
	assert.Equal(t, 0, calls)
}

func TestRegistryUnsubscribeIsIdempotent(t *testing.T) {
	r := NewRegistry()

	var first, second int
	unsubFirst := r.Subscribe(func(*types.Position) { first++ })
	r.Subscribe(func(*types.Position) { second++ })

	unsubFirst()
	unsubFirst()

	r.Notify(&types.Position{})
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryIndependentSubscribers(t *testing.T) {
	r := NewRegistry()

	var a, b int
	unsubA := r.Subscribe(func(*types.Position) { a++ })
	r.Subscribe(func(*types.Position) { b++ })

	r.Notify(&types.Position{})
	unsubA()
	r.Notify(&types.Position{})

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry()

	var calls int
	r.Subscribe(func(*types.Position) { calls++ })
	r.Clear()

	r.Notify(&types.Position{})
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, r.Len())
}
