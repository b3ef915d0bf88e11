// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fake provides call-recording fakes of the radio and ADC
// capabilities for tests.
package fake

import (
	"reflect"
	"slices"
	"sync"
)

// Call is a recorded method call.
type Call struct {
	Method string
	Args   []any
}

// Recorder records method calls in order and returns stubbed results.
//
// A stub registered with exact arguments takes precedence over a stub
// registered for any arguments. Arguments are compared with
// reflect.DeepEqual.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
	stubs map[string][]stub
}

type stub struct {
	anyArgs bool
	args    []any
	ret     []any
}

// When registers the values returned by calls to method with the given
// arguments. A nil args matches any arguments.
func (r *Recorder) When(method string, args []any, ret ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stubs == nil {
		r.stubs = make(map[string][]stub)
	}
	r.stubs[method] = append(r.stubs[method], stub{anyArgs: args == nil, args: args, ret: ret})
}

// Record records a call of method with args and returns the matching
// stubbed results. The second result is false if no stub matched.
func (r *Recorder) Record(method string, args ...any) ([]any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Method: method, Args: args})
	var fallback []any
	found := false
	for _, s := range r.stubs[method] {
		if s.anyArgs {
			if !found {
				fallback = s.ret
				found = true
			}
			continue
		}
		if reflect.DeepEqual(s.args, args) {
			return s.ret, true
		}
	}
	return fallback, found
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// Len returns the total number of recorded calls.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Called returns the number of calls to method.
func (r *Recorder) Called(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for _, c := range r.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// CalledWith returns the number of calls to method with exactly the
// provided arguments.
func (r *Recorder) CalledWith(method string, args ...any) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for _, c := range r.calls {
		if c.Method == method && reflect.DeepEqual(c.Args, args) {
			n++
		}
	}
	return n
}

// CallsOf returns the arguments of each call to method in order.
func (r *Recorder) CallsOf(method string) [][]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	var args [][]any
	for _, c := range r.calls {
		if c.Method == method {
			args = append(args, c.Args)
		}
	}
	return args
}

// Reset clears recorded calls and stubs.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	r.stubs = nil
}

// errAt returns ret[i] as an error, or nil.
func errAt(ret []any, i int) error {
	if i >= len(ret) {
		return nil
	}
	err, _ := ret[i].(error)
	return err
}
