// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package board opens and registers the I2C adapters described by a YAML
// board file, e.g.
//
//	adapters:
//	- name: i2c0
//	  driver: dw
//	  uio: 0
//	  speed: 400000
//	  timeout: 1s
//	- name: sim0
//	  driver: sim
//	  devices:
//	  - addr: 0x50
//	    model: eeprom
//	- name: host3
//	  driver: dev
//	  bus: 3
package board

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/platinasystems/dwi2c/internal/dw"
	"github.com/platinasystems/dwi2c/internal/dwsim"
	"github.com/platinasystems/dwi2c/internal/i2c"
	"github.com/platinasystems/dwi2c/internal/i2cdev"
	"github.com/platinasystems/dwi2c/internal/uio"
	"github.com/platinasystems/log"
	"gopkg.in/yaml.v2"
)

// DefaultFile is the board description read by commands without -board.
var DefaultFile = "/etc/goes/i2c.yaml"

type Config struct {
	Adapters []AdapterConfig `yaml:"adapters"`
}

type AdapterConfig struct {
	Name    string         `yaml:"name"`
	Driver  string         `yaml:"driver"`
	Uio     int            `yaml:"uio,omitempty"`
	Bus     int            `yaml:"bus,omitempty"`
	Speed   uint32         `yaml:"speed,omitempty"`
	Timeout time.Duration  `yaml:"timeout,omitempty"`
	Fifo    int            `yaml:"fifo,omitempty"`
	Devices []DeviceConfig `yaml:"devices,omitempty"`
}

type DeviceConfig struct {
	Addr     uint16 `yaml:"addr"`
	Model    string `yaml:"model"`
	Contents []byte `yaml:"contents,omitempty"`
}

const (
	DriverDw  = "dw"
	DriverSim = "sim"
	DriverDev = "dev"
)

func Parse(b []byte) (*Config, error) {
	cfg := new(Config)
	if err := yaml.UnmarshalStrict(b, cfg); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for i := range cfg.Adapters {
		ac := &cfg.Adapters[i]
		if len(ac.Name) == 0 {
			return nil, fmt.Errorf("adapter[%d]: missing name", i)
		}
		if seen[ac.Name] {
			return nil, fmt.Errorf("%s: duplicate", ac.Name)
		}
		seen[ac.Name] = true
		switch ac.Driver {
		case DriverDw, DriverDev:
		case DriverSim:
			for _, dc := range ac.Devices {
				if dc.Model != "eeprom" {
					return nil, fmt.Errorf("%s: %#x: unknown model %q",
						ac.Name, dc.Addr, dc.Model)
				}
			}
		default:
			return nil, fmt.Errorf("%s: unknown driver %q",
				ac.Name, ac.Driver)
		}
		if ac.Speed != 0 {
			if _, err := dw.SpeedOf(ac.Speed); err != nil {
				return nil, fmt.Errorf("%s: speed %d: %w",
					ac.Name, ac.Speed, err)
			}
		}
	}
	return cfg, nil
}

func Load(fn string) (*Config, error) {
	b, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return cfg, nil
}

// Board is the set of opened and registered adapters.
type Board struct {
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	Opened  []*Opened
	closers []func() error
}

type Opened struct {
	Name string
	ID   int
	i2c.Adapter
	Sim *dwsim.Controller
}

// Open all adapters of the config and register them. Interrupt loops of
// dw adapters run until Close.
func (cfg *Config) Open(ctx context.Context) (*Board, error) {
	ctx, cancel := context.WithCancel(ctx)
	b := &Board{cancel: cancel}
	for i := range cfg.Adapters {
		if err := b.open(ctx, &cfg.Adapters[i]); err != nil {
			b.Close()
			return nil, fmt.Errorf("%s: %w", cfg.Adapters[i].Name, err)
		}
	}
	return b, nil
}

func (ac *AdapterConfig) dwConfig() *dw.Config {
	cfg := &dw.Config{
		TxFifoDepth: ac.Fifo,
		RxFifoDepth: ac.Fifo,
		Timeout:     ac.Timeout,
	}
	if ac.Speed != 0 {
		cfg.Speed, _ = dw.SpeedOf(ac.Speed)
	}
	return cfg
}

func (b *Board) open(ctx context.Context, ac *AdapterConfig) error {
	opened := &Opened{Name: ac.Name}
	switch ac.Driver {
	case DriverDw:
		dev, err := uio.Open(ac.Uio)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, dev.Close)
		a := dw.New(dev, ac.dwConfig())
		a.Init()
		b.closers = append(b.closers, a.Close)
		b.serve(ctx, ac.Name, func(ctx context.Context) error {
			return dev.Serve(ctx, a.Interrupt)
		})
		opened.Adapter = a
	case DriverSim:
		sim := dwsim.New(ac.Fifo)
		for _, dc := range ac.Devices {
			sim.Add(dc.Addr, dwsim.NewEEPROM(dc.Contents))
		}
		a := dw.New(sim, ac.dwConfig())
		a.Init()
		sim.Attach(a.Interrupt)
		b.closers = append(b.closers, sim.Close, a.Close)
		opened.Adapter = a
		opened.Sim = sim
	case DriverDev:
		a, err := i2cdev.Open(ac.Bus)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, a.Close)
		opened.Adapter = a
	}
	id, err := i2c.Register(ac.Name, opened.Adapter)
	if err != nil {
		return err
	}
	opened.ID = id
	b.Opened = append(b.Opened, opened)
	b.closers = append(b.closers, func() error {
		return i2c.Unregister(opened.Adapter)
	})
	log.Print("info", ac.Name, ac.Driver, "adapter", id)
	return nil
}

// serve runs an interrupt loop until the board is closed.
func (b *Board) serve(ctx context.Context, name string,
	loop func(context.Context) error) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := loop(ctx); err != nil && ctx.Err() == nil {
			log.Print("err", name, err)
		}
	}()
}

// Close stops the interrupt loops then unregisters and closes the adapters
// in reverse order of opening. No handler is running once the register
// maps are closed.
func (b *Board) Close() error {
	var err error
	b.cancel()
	b.wg.Wait()
	for i := len(b.closers) - 1; i >= 0; i-- {
		if xerr := b.closers[i](); err == nil {
			err = xerr
		}
	}
	b.closers = nil
	return err
}
