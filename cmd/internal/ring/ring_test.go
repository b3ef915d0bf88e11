// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ring

import (
	"reflect"
	"testing"
)

var bufferTests = []struct {
	name string
	ops  func() any
	want any
}{
	{
		name: "new_4_int",
		ops: func() any {
			return NewBuffer[int](4)
		},
		want: &Buffer[int]{data: make([]int, 4)},
	},
	{
		name: "new_0_push",
		ops: func() any {
			r := NewBuffer[int](0)
			r.Push(1, 2)
			return r
		},
		want: &Buffer[int]{data: []int{}},
	},
	{
		name: "new_4_int_push_2",
		ops: func() any {
			r := NewBuffer[int](4)
			r.Push(1, 2)
			return r
		},
		want: &Buffer[int]{data: []int{1, 2, 0, 0}, head: 0, len: 2},
	},
	{
		name: "new_4_int_push_2_1",
		ops: func() any {
			r := NewBuffer[int](4)
			r.Push(1, 2)
			r.Push(3)
			return r
		},
		want: &Buffer[int]{data: []int{1, 2, 3, 0}, head: 0, len: 3},
	},
	{
		name: "new_4_int_push_2_3",
		ops: func() any {
			r := NewBuffer[int](4)
			r.Push(1, 2)
			r.Push(3, 4, 5)
			return r
		},
		want: &Buffer[int]{data: []int{5, 2, 3, 4}, head: 1, len: 4},
	},
	{
		name: "new_4_int_push_6",
		ops: func() any {
			r := NewBuffer[int](4)
			r.Push(1, 2, 3, 4, 5, 6)
			return r
		},
		want: &Buffer[int]{data: []int{3, 4, 5, 6}, head: 0, len: 4},
	},
	{
		name: "new_4_int_push_2_3_append",
		ops: func() any {
			r := NewBuffer[int](4)
			r.Push(1, 2)
			r.Push(3, 4, 5)
			return r.AppendTo(nil)
		},
		want: []int{2, 3, 4, 5},
	},
	{
		name: "new_4_int_push_7_append",
		ops: func() any {
			r := NewBuffer[int](4)
			for i := range 7 {
				r.Push(i)
			}
			return r.AppendTo([]int{-1})
		},
		want: []int{-1, 3, 4, 5, 6},
	},
	{
		name: "all_break",
		ops: func() any {
			r := &Buffer[int]{data: []int{5, 6, 7, 8}, head: 3, len: 4}
			var got []int
			for i, v := range r.All() {
				if i == 2 {
					break
				}
				got = append(got, v)
			}
			return got
		},
		want: []int{8, 5},
	},
}

func TestBuffer(t *testing.T) {
	for _, test := range bufferTests {
		t.Run(test.name, func(t *testing.T) {
			got := test.ops()
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("expected result:\ngot: %#v\nwant:%#v", got, test.want)
			}
		})
	}
}
