// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package dw

import (
	"fmt"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
)

type Speed int

const (
	Standard Speed = iota // 100 kHz
	Fast                  // 400 kHz
)

const (
	StandardHz = 100 * 1000
	FastHz     = 400 * 1000
)

// SpeedOf returns the slowest mode that supports the given bus rate.
func SpeedOf(hz uint32) (Speed, error) {
	switch {
	case hz == 0:
	case hz <= StandardHz:
		return Standard, nil
	case hz <= FastHz:
		return Fast, nil
	}
	return Standard, syscall.EINVAL
}

func (speed Speed) String() string {
	switch speed {
	case Standard:
		return "standard"
	case Fast:
		return "fast"
	}
	return fmt.Sprint(int(speed))
}

func (speed Speed) con() uint32 {
	if speed == Fast {
		return ConSpeedFast
	}
	return ConSpeedStd
}

// Timing is a pair of SCL high and low period counts.
type Timing struct {
	Hcnt, Lcnt uint32
}

type Config struct {
	TxFifoDepth int
	RxFifoDepth int

	// Timeout bounds a started transfer.
	Timeout time.Duration

	// BusIdlePolls is the number of IC_STATUS.ACTIVITY polls,
	// BusIdleInterval apart, before a transfer gives up on a busy bus.
	BusIdlePolls    int
	BusIdleInterval time.Duration

	EnableRetries  int
	EnableInterval time.Duration

	Speed Speed
	SS    Timing
	FS    Timing

	// Clock drives the watchdog and poll intervals; nil is the wall clock.
	Clock clock.Clock
}

var DefaultConfig = Config{
	TxFifoDepth:     8,
	RxFifoDepth:     8,
	Timeout:         time.Second,
	BusIdlePolls:    20,
	BusIdleInterval: time.Millisecond,
	EnableRetries:   50,
	EnableInterval:  25 * time.Microsecond,
	Speed:           Standard,
	SS:              Timing{Hcnt: 28, Lcnt: 52},
	FS:              Timing{Hcnt: 47, Lcnt: 65},
}

// fill returns a copy of the config with zero fields set to their defaults.
func (cfg Config) fill() Config {
	def := &DefaultConfig
	if cfg.TxFifoDepth <= 0 {
		cfg.TxFifoDepth = def.TxFifoDepth
	}
	if cfg.RxFifoDepth <= 0 {
		cfg.RxFifoDepth = def.RxFifoDepth
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.BusIdlePolls <= 0 {
		cfg.BusIdlePolls = def.BusIdlePolls
	}
	if cfg.BusIdleInterval <= 0 {
		cfg.BusIdleInterval = def.BusIdleInterval
	}
	if cfg.EnableRetries <= 0 {
		cfg.EnableRetries = def.EnableRetries
	}
	if cfg.EnableInterval <= 0 {
		cfg.EnableInterval = def.EnableInterval
	}
	if cfg.SS == (Timing{}) {
		cfg.SS = def.SS
	}
	if cfg.FS == (Timing{}) {
		cfg.FS = def.FS
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	return cfg
}
