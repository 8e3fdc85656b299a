// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package i2c

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"syscall"
)

// Registered is an adapter entry of the registry.
type Registered struct {
	Name string
	Adapter
}

var registry struct {
	sync.Mutex
	list []*Registered
}

// Register appends the adapter to the registry and returns its bus index.
// Adapters are matched by identity so their dynamic type must be
// comparable, usually a pointer.
func Register(name string, a Adapter) (int, error) {
	if a == nil || len(name) == 0 || !reflect.TypeOf(a).Comparable() {
		return -1, syscall.EINVAL
	}
	registry.Lock()
	defer registry.Unlock()
	for _, r := range registry.list {
		if r.Name == name || r.Adapter == a {
			return -1, syscall.EEXIST
		}
	}
	registry.list = append(registry.list, &Registered{name, a})
	return len(registry.list) - 1, nil
}

// Unregister removes the adapter; later adapters move down one index.
func Unregister(a Adapter) error {
	registry.Lock()
	defer registry.Unlock()
	for i, r := range registry.list {
		if r.Adapter == a {
			copy(registry.list[i:], registry.list[i+1:])
			registry.list[len(registry.list)-1] = nil
			registry.list = registry.list[:len(registry.list)-1]
			return nil
		}
	}
	return syscall.ENODEV
}

// Get returns the adapter at the given bus index or nil.
func Get(id int) *Registered {
	registry.Lock()
	defer registry.Unlock()
	if id < 0 || id >= len(registry.list) {
		return nil
	}
	return registry.list[id]
}

// ByName returns the named adapter and its index, or nil and -1.
func ByName(name string) (*Registered, int) {
	registry.Lock()
	defer registry.Unlock()
	for i, r := range registry.list {
		if r.Name == name {
			return r, i
		}
	}
	return nil, -1
}

// Adapters returns a copy of the registry in index order.
func Adapters() []*Registered {
	registry.Lock()
	defer registry.Unlock()
	return append([]*Registered(nil), registry.list...)
}

// Lookup returns the adapter of the given bus index or name; an empty
// string is the first registered adapter.
func Lookup(s string) (*Registered, error) {
	if len(s) == 0 {
		if r := Get(0); r != nil {
			return r, nil
		}
		return nil, fmt.Errorf("no adapters")
	}
	if id, err := strconv.Atoi(s); err == nil {
		if r := Get(id); r != nil {
			return r, nil
		}
	}
	if r, _ := ByName(s); r != nil {
		return r, nil
	}
	return nil, fmt.Errorf("%s: %w", s, syscall.ENODEV)
}
