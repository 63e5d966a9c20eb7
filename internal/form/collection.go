package form

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrLastElement     = errors.New("cannot remove the only remaining entry")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Editable is implemented by value types that can produce a copy of
// themselves with one named field replaced.
type Editable[T any] interface {
	WithField(field, value string) (T, error)
}

// Collection is an ordered, index-addressed list that never becomes empty.
// Every mutation installs a new backing slice, so a slice obtained from
// Items before the mutation keeps its contents.
type Collection[T Editable[T]] struct {
	items []T
	blank func() T
}

// NewCollection returns a collection holding a single blank element.
func NewCollection[T Editable[T]](blank func() T) *Collection[T] {
	return &Collection[T]{items: []T{blank()}, blank: blank}
}

func (c *Collection[T]) Len() int { return len(c.items) }

// Items returns the current snapshot. Callers must not modify it.
func (c *Collection[T]) Items() []T { return c.items }

// CanRemove reports whether RemoveAt would be allowed. Views hide the delete
// control when it is false.
func (c *Collection[T]) CanRemove() bool { return len(c.items) > 1 }

// CanAppend reports whether the form will accept another entry.
func (c *Collection[T]) CanAppend() bool { return len(c.items) < MaxEntries }

func (c *Collection[T]) At(i int) (T, error) {
	if i < 0 || i >= len(c.items) {
		var zero T
		return zero, fmt.Errorf("at %d (len %d): %w", i, len(c.items), ErrIndexOutOfRange)
	}
	return c.items[i], nil
}

func (c *Collection[T]) Append() {
	next := make([]T, len(c.items), len(c.items)+1)
	copy(next, c.items)
	c.items = append(next, c.blank())
}

func (c *Collection[T]) RemoveAt(i int) error {
	if i < 0 || i >= len(c.items) {
		return fmt.Errorf("remove %d (len %d): %w", i, len(c.items), ErrIndexOutOfRange)
	}
	if len(c.items) == 1 {
		return ErrLastElement
	}
	c.items = slices.Delete(slices.Clone(c.items), i, i+1)
	return nil
}

func (c *Collection[T]) UpdateField(i int, field, value string) error {
	cur, err := c.At(i)
	if err != nil {
		return err
	}
	updated, err := cur.WithField(field, value)
	if err != nil {
		return err
	}
	next := slices.Clone(c.items)
	next[i] = updated
	c.items = next
	return nil
}

// resize grows the collection with blank elements until it holds n entries.
// It never shrinks below one.
func (c *Collection[T]) resize(n int) {
	for len(c.items) < n {
		c.Append()
	}
}
