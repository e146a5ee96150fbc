package kvstore

import (
	"context"
	"errors"
	"testing"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		// Arrange
		m := NewMemory()

		// Act
		_, err := m.Get(ctx, "nope")

		// Assert
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		// Arrange
		m := NewMemory()
		rec := Record{"a": "1", "b": "2"}

		// Act
		if err := m.Put(ctx, "key", rec); err != nil {
			t.Fatalf("put: %v", err)
		}
		got, err := m.Get(ctx, "key")

		// Assert
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got["a"] != "1" || got["b"] != "2" {
			t.Fatalf("unexpected record %v", got)
		}
	})

	t.Run("PutOverwrites", func(t *testing.T) {
		// Arrange
		m := NewMemory()
		if err := m.Put(ctx, "key", Record{"a": "1"}); err != nil {
			t.Fatalf("put: %v", err)
		}

		// Act
		if err := m.Put(ctx, "key", Record{"b": "2"}); err != nil {
			t.Fatalf("put: %v", err)
		}
		got, err := m.Get(ctx, "key")

		// Assert
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if _, ok := got["a"]; ok {
			t.Fatalf("expected old field gone, got %v", got)
		}
		if got["b"] != "2" {
			t.Fatalf("unexpected record %v", got)
		}
	})

	t.Run("GetReturnsCopy", func(t *testing.T) {
		// Arrange
		m := NewMemory()
		if err := m.Put(ctx, "key", Record{"a": "1"}); err != nil {
			t.Fatalf("put: %v", err)
		}

		// Act
		got, err := m.Get(ctx, "key")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		got["a"] = "mutated"
		again, err := m.Get(ctx, "key")

		// Assert
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if again["a"] != "1" {
			t.Fatalf("stored record was mutated through the returned copy")
		}
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		// Arrange
		m := NewMemory()
		if err := m.Put(ctx, "key", Record{"a": "1"}); err != nil {
			t.Fatalf("put: %v", err)
		}

		// Act
		if err := m.Delete(ctx, "key"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		err := m.Delete(ctx, "key")

		// Assert
		if err != nil {
			t.Fatalf("second delete: %v", err)
		}
		if _, err := m.Get(ctx, "key"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("CancelledContext", func(t *testing.T) {
		// Arrange
		m := NewMemory()
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		// Act
		_, err := m.Get(cctx, "key")

		// Assert
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context error, got %v", err)
		}
	})
}
