// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package watchdog

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func TestFire(t *testing.T) {
	mock := clock.NewMock()
	wd := New(mock)
	fired := make(chan struct{})
	wd.Start(time.Second, func() { close(fired) })
	mock.Add(999 * time.Millisecond)
	select {
	case <-fired:
		t.Fatal("fired early")
	default:
	}
	mock.Add(time.Millisecond)
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("didn't fire")
	}
	if wd.Cancel() {
		t.Error("cancelled after firing")
	}
	if n := wd.Fires(); n != 1 {
		t.Errorf("%d fires != 1", n)
	}
}

func TestCancel(t *testing.T) {
	mock := clock.NewMock()
	wd := New(mock)
	fired := make(chan struct{}, 1)
	wd.Start(time.Second, func() { fired <- struct{}{} })
	if !wd.Cancel() {
		t.Fatal("not cancelled")
	}
	mock.Add(2 * time.Second)
	select {
	case <-fired:
		t.Fatal("fired after cancel")
	case <-time.After(10 * time.Millisecond):
	}
	if wd.Cancel() {
		t.Error("second cancel")
	}
	if n := wd.Arms(); n != 1 {
		t.Errorf("%d arms != 1", n)
	}
}

func TestRestart(t *testing.T) {
	mock := clock.NewMock()
	wd := New(mock)
	first := make(chan struct{}, 1)
	second := make(chan struct{}, 1)
	wd.Start(time.Second, func() { first <- struct{}{} })
	wd.Start(3*time.Second, func() { second <- struct{}{} })
	mock.Add(2 * time.Second)
	select {
	case <-first:
		t.Fatal("replaced watchdog fired")
	case <-time.After(10 * time.Millisecond):
	}
	mock.Add(time.Second)
	select {
	case <-second:
	case <-time.After(5 * time.Second):
		t.Fatal("didn't fire")
	}
}
