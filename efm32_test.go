// Copyright 2026 Ryan Kurte. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package blackmagic

import (
	"io/ioutil"
	"reflect"
	"testing"
)

// testStub is a stand in for the real loader blob. The simulator emulates
// the loader's behavior, contents are irrelevant. Odd length on purpose,
// so the payload buffer alignment gets exercised.
var testStub = []byte{
	0x4f, 0xf0, 0x00, 0x00, 0x4f, 0xf0, 0x00, 0x01,
	0x4f, 0xf0, 0x00, 0x02, 0x4f, 0xf0, 0x00, 0x03,
	0x00, 0xbe, 0x00,
}

func simConfig72() SimEFM32Config {
	return SimEFM32Config{
		IDCode:     efm32IdCodeM3M4,
		Family:     72,
		PartNumber: 230,
		FlashKiB:   1024,
		RAMKiB:     128,
		EUI:        0x123456789abcdef0,
	}
}

func probeSim(t *testing.T, cfg SimEFM32Config) (*Target, *SimEFM32) {
	t.Helper()

	sim := NewSimEFM32(cfg)

	target := NewTarget(sim)
	target.SetOutput(ioutil.Discard)

	found, err := NewEFM32Driver(testStub).Probe(target)
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}

	if !found {
		t.Fatal("probe did not match simulated target")
	}

	return target, sim
}

func TestProbeFamily72(t *testing.T) {
	target, _ := probeSim(t, simConfig72())

	if got, want := target.DriverName(), "EFM32GG"; got != want {
		t.Errorf("got driver name %q, want %q", got, want)
	}

	if target.Options()&OptionInhibitSRST == 0 {
		t.Error("probe did not set OptionInhibitSRST")
	}

	flash := target.FlashRegionFor(0x0)
	if flash == nil {
		t.Fatal("no flash region registered at 0x0")
	}

	if flash.Length != 0x100000 {
		t.Errorf("got flash length 0x%x, want 0x100000", flash.Length)
	}

	if flash.BlockSize != 2048 || flash.BufSize != 2048 {
		t.Errorf("got block size %d buf size %d, want 2048/2048", flash.BlockSize, flash.BufSize)
	}

	rams := target.RAMRegions()
	if len(rams) != 1 || rams[0].Start != 0x20000000 || rams[0].Length != 128*1024 {
		t.Errorf("unexpected RAM regions: %+v", rams)
	}

	names := target.CommandNames()
	if !reflect.DeepEqual(names, []string{"EFM32.erase_mass", "EFM32.serial"}) {
		t.Errorf("unexpected command set: %v", names)
	}
}

func TestProbeIsReadOnly(t *testing.T) {
	_, sim := probeSim(t, simConfig72())

	if n := sim.WriteTransactions(); n != 0 {
		t.Errorf("probe issued %d write transactions, want 0", n)
	}
}

func TestIdentifyIdempotent(t *testing.T) {
	sim := NewSimEFM32(simConfig72())
	target := NewTarget(sim)
	driver := NewEFM32Driver(testStub)

	first, err := driver.Identify(target)
	if err != nil || first == nil {
		t.Fatalf("first identify: %v %v", first, err)
	}

	second, err := driver.Identify(target)
	if err != nil || second == nil {
		t.Fatalf("second identify: %v %v", second, err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("identify not idempotent: %+v vs %+v", first, second)
	}

	if n := sim.WriteTransactions(); n != 0 {
		t.Errorf("identify issued %d write transactions, want 0", n)
	}
}

func TestProbeRejectsUnknownIDCode(t *testing.T) {
	cfg := simConfig72()
	cfg.IDCode = 0x12345678

	sim := NewSimEFM32(cfg)
	target := NewTarget(sim)

	found, err := NewEFM32Driver(testStub).Probe(target)
	if err != nil {
		t.Fatalf("probe returned error: %v", err)
	}

	if found {
		t.Error("probe matched a target with a foreign id code")
	}

	// the id code check is non destructive, no memory transaction at all
	if n := sim.ReadTransactions(); n != 0 {
		t.Errorf("probe issued %d read transactions before rejecting, want 0", n)
	}
}

func TestProbeRejectsUnknownFamily(t *testing.T) {
	cfg := simConfig72()
	cfg.Family = 99

	sim := NewSimEFM32(cfg)
	target := NewTarget(sim)

	found, err := NewEFM32Driver(testStub).Probe(target)
	if err != nil {
		t.Fatalf("probe returned error: %v", err)
	}

	if found {
		t.Error("probe matched an uncataloged family")
	}

	if n := sim.WriteTransactions(); n != 0 {
		t.Errorf("negative probe issued %d write transactions, want 0", n)
	}
}

func TestProbeRadioVariant(t *testing.T) {
	cfg := SimEFM32Config{
		IDCode:          efm32IdCodeM3M4,
		Family:          16,
		PartNumber:      100,
		RadioPartNumber: 1234,
		FlashKiB:        256,
		RAMKiB:          32,
	}

	target, _ := probeSim(t, cfg)

	if got, want := target.DriverName(), "EFR32MG1P (radio: 1234)"; got != want {
		t.Errorf("got driver name %q, want %q", got, want)
	}
}

func TestProbeCortexM0Plus(t *testing.T) {
	cfg := simConfig72()
	cfg.IDCode = efm32IdCodeM0Plus
	cfg.Family = 77
	cfg.FlashKiB = 64
	cfg.RAMKiB = 8

	target, _ := probeSim(t, cfg)

	if got, want := target.DriverName(), "EFM32HG"; got != want {
		t.Errorf("got driver name %q, want %q", got, want)
	}

	flash := target.FlashRegionFor(0x0)
	if flash.BlockSize != 1024 {
		t.Errorf("got block size %d, want 1024", flash.BlockSize)
	}
}
