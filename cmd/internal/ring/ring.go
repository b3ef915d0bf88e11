// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ring implements a fixed size history buffer.
package ring

import "iter"

// Buffer holds the most recent values pushed to it, up to its size.
type Buffer[T any] struct {
	data      []T
	head, len int
}

// NewBuffer returns a Buffer holding up to n values.
func NewBuffer[T any](n int) *Buffer[T] {
	return &Buffer[T]{data: make([]T, n)}
}

// Push adds values to the buffer, discarding the oldest values when
// the buffer is full.
func (r *Buffer[T]) Push(values ...T) {
	if len(r.data) == 0 {
		return
	}
	if len(values) > len(r.data) {
		values = values[len(values)-len(r.data):]
	}
	for _, v := range values {
		tail := (r.head + r.len) % len(r.data)
		r.data[tail] = v
		if r.len < len(r.data) {
			r.len++
		} else {
			r.head = (r.head + 1) % len(r.data)
		}
	}
}

// All returns an iterator over the held values from oldest to newest.
func (r *Buffer[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := range r.len {
			if !yield(i, r.data[(r.head+i)%len(r.data)]) {
				return
			}
		}
	}
}

// AppendTo appends the held values from oldest to newest to dst.
func (r *Buffer[T]) AppendTo(dst []T) []T {
	for _, v := range r.All() {
		dst = append(dst, v)
	}
	return dst
}
