package observable

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

type record struct {
	A int
	B int
}

func TestValue_UpdateNotifiesInOrder(t *testing.T) {
	v := New(record{A: 1})
	var calls []string

	v.Subscribe(func(_ context.Context, r record) error {
		calls = append(calls, "first")
		assert.Equal(t, 5, r.B)
		return nil
	})
	v.Subscribe(func(_ context.Context, r record) error {
		calls = append(calls, "second")
		return nil
	})

	err := v.Update(context.Background(), func(r *record) { r.B = 5 })

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, record{A: 1, B: 5}, v.Get())
}

func TestValue_MutationVisibleToListeners(t *testing.T) {
	v := New(0)
	var seen int
	v.Subscribe(func(_ context.Context, n int) error {
		seen = v.Get()
		return nil
	})

	require.NoError(t, v.Set(context.Background(), 42))
	assert.Equal(t, 42, seen)
}

func TestValue_OneNotificationPerMutation(t *testing.T) {
	v := New(record{})
	count := 0
	v.Subscribe(func(context.Context, record) error {
		count++
		return nil
	})

	ctx := context.Background()
	require.NoError(t, v.Update(ctx, func(r *record) { r.A = 1 }))
	require.NoError(t, v.Update(ctx, func(r *record) { r.B = 2 }))

	assert.Equal(t, 2, count)
}

func TestValue_UnsubscribeStopsDelivery(t *testing.T) {
	v := New(0)
	count := 0
	unsubscribe := v.Subscribe(func(context.Context, int) error {
		count++
		return nil
	})

	require.NoError(t, v.Set(context.Background(), 1))
	unsubscribe()
	unsubscribe()
	require.NoError(t, v.Set(context.Background(), 2))

	assert.Equal(t, 1, count)
}

func TestValue_ListenerErrorsAreCombined(t *testing.T) {
	v := New(0)
	errFirst := errors.New("first")
	errSecond := errors.New("second")
	ran := 0

	v.Subscribe(func(context.Context, int) error { ran++; return errFirst })
	v.Subscribe(func(context.Context, int) error { ran++; return nil })
	v.Subscribe(func(context.Context, int) error { ran++; return errSecond })

	err := v.Set(context.Background(), 1)

	require.Error(t, err)
	assert.Equal(t, 3, ran)
	assert.ErrorIs(t, err, errFirst)
	assert.ErrorIs(t, err, errSecond)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Equal(t, 1, v.Get())
}

func TestValue_UpdateIfSkipsNotification(t *testing.T) {
	v := New(record{A: 1})
	calls := 0
	v.Subscribe(func(context.Context, record) error {
		calls++
		return nil
	})

	ctx := context.Background()
	require.NoError(t, v.UpdateIf(ctx, func(*record) bool { return false }))
	assert.Equal(t, 0, calls)

	require.NoError(t, v.UpdateIf(ctx, func(r *record) bool {
		r.A = 2
		return true
	}))
	assert.Equal(t, 1, calls)
	assert.Equal(t, record{A: 2}, v.Get())
}
