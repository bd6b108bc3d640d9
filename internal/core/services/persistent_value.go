package services

import (
	"context"
	"fmt"

	"srtmon/internal/core/domain"
	"srtmon/internal/core/ports"
	"srtmon/pkg/observable"
	"srtmon/pkg/tracing"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type PersistOptions[T any] struct {
	// Watch writes the whole value back to the slot after every mutation.
	Watch bool
	// OnChange runs after the slot write of each mutation when Watch is set.
	OnChange func(T)
}

// PersistentValue is a JSON-object-shaped value loaded from a slot store.
type PersistentValue[T any] struct {
	key   string
	store ports.SlotStore
	value *observable.Value[T]
}

// NewPersistentValue reads the slot at key and overlays its top-level fields
// on initial. A missing or empty slot, or one holding JSON that is not an
// object, leaves initial as is; a slot that does not parse fails with
// domain.ErrMalformedStoredValue.
func NewPersistentValue[T any](ctx context.Context, store ports.SlotStore, key string, initial T, opts PersistOptions[T]) (*PersistentValue[T], error) {
	ctx, span := tracing.TraceSlotOperation(ctx, "load", key)
	defer span.End()

	stored, ok, err := store.Get(ctx, key)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to load slot %q: %w", key, err)
	}
	if !ok || stored == "" {
		stored = "{}"
	}

	merged, err := mergeStored(initial, stored)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to load slot %q: %w", key, err)
	}

	p := &PersistentValue[T]{
		key:   key,
		store: store,
		value: observable.New(merged),
	}

	if opts.Watch {
		p.value.Subscribe(p.persist)
		if opts.OnChange != nil {
			onChange := opts.OnChange
			p.value.Subscribe(func(_ context.Context, v T) error {
				onChange(v)
				return nil
			})
		}
	}

	return p, nil
}

func (p *PersistentValue[T]) Key() string {
	return p.key
}

func (p *PersistentValue[T]) Get() T {
	return p.value.Get()
}

// Set replaces the value. With Watch, the returned error reports a failed
// slot write; the in-memory value is updated regardless.
func (p *PersistentValue[T]) Set(ctx context.Context, v T) error {
	return p.value.Set(ctx, v)
}

// Update mutates the value in place. Each call is one mutation: one slot
// write and one OnChange call.
func (p *PersistentValue[T]) Update(ctx context.Context, fn func(*T)) error {
	return p.value.Update(ctx, fn)
}

// Subscribe adds a listener that runs after the persisting listeners.
func (p *PersistentValue[T]) Subscribe(fn func(T)) func() {
	return p.value.Subscribe(func(_ context.Context, v T) error {
		fn(v)
		return nil
	})
}

func (p *PersistentValue[T]) persist(ctx context.Context, v T) error {
	ctx, span := tracing.TraceSlotOperation(ctx, "store", p.key)
	defer span.End()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode slot %q: %w", p.key, err)
	}
	if err := p.store.Set(ctx, p.key, string(data)); err != nil {
		tracing.RecordError(ctx, err)
		return fmt.Errorf("failed to store slot %q: %w", p.key, err)
	}
	return nil
}

// mergeStored is a shallow merge: stored top-level keys replace the same keys
// of initial's JSON encoding.
func mergeStored[T any](initial T, stored string) (T, error) {
	var zero T

	base, err := json.Marshal(initial)
	if err != nil {
		return zero, fmt.Errorf("failed to encode initial value: %w", err)
	}
	fields := map[string]jsoniter.RawMessage{}
	if err := json.Unmarshal(base, &fields); err != nil {
		return zero, fmt.Errorf("initial value is not a JSON object: %w", err)
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(stored), &parsed); err != nil {
		return zero, fmt.Errorf("%w: %w", domain.ErrMalformedStoredValue, err)
	}
	// Scalars, arrays and null carry no fields to overlay.
	if _, isObject := parsed.(map[string]interface{}); !isObject {
		stored = "{}"
	}

	var overlay map[string]jsoniter.RawMessage
	if err := json.Unmarshal([]byte(stored), &overlay); err != nil {
		return zero, fmt.Errorf("%w: %w", domain.ErrMalformedStoredValue, err)
	}
	for k, v := range overlay {
		fields[k] = v
	}

	combined, err := json.Marshal(fields)
	if err != nil {
		return zero, fmt.Errorf("failed to encode merged value: %w", err)
	}
	var out T
	if err := json.Unmarshal(combined, &out); err != nil {
		return zero, fmt.Errorf("%w: %w", domain.ErrMalformedStoredValue, err)
	}
	return out, nil
}
