// Copyright 2026 Ryan Kurte. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

// this code is mainly inspired and based on the blackmagic project source code
// for detailed information see

// https://github.com/blacksphere/blackmagic

// EFM32/EZR32 target support: device identification, memory map and flash
// programming through the memory system controller (MSC).
//
// Both EFM32 (microcontroller only) and EZR32 (microcontroller + radio)
// devices are supported through this driver. See AN0062 "Programming
// Internal Flash Over the Serial Wire Debug Interface".

package blackmagic

import "fmt"

const (
	efm32SramBase uint32 = 0x20000000

	efm32InfoBase     uint32 = 0x0fe00000
	efm32UserDataBase        = efm32InfoBase + 0x0000
	efm32LockBitsBase        = efm32InfoBase + 0x4000
	efm32DiBase              = efm32InfoBase + 0x8000
)

// Device Information (DI) area registers, gen 1 layout
const (
	efm32DiRadioRevMin  = efm32DiBase + 0x1ac
	efm32DiRadioRevMaj  = efm32DiBase + 0x1ad
	efm32DiRadioOpn     = efm32DiBase + 0x1ae
	efm32DiEui64Low     = efm32DiBase + 0x1f0
	efm32DiEui64High    = efm32DiBase + 0x1f4
	efm32DiMemInfoFlash = efm32DiBase + 0x1f8
	efm32DiMemInfoRam   = efm32DiBase + 0x1fa
	efm32DiPartNumber   = efm32DiBase + 0x1fc
	efm32DiPartFamily   = efm32DiBase + 0x1fe
	efm32DiProdRev      = efm32DiBase + 0x1ff
)

// SW-DP identification codes accepted by this driver, see AN0062 section 2.2
const (
	efm32IdCodeM3M4   uint32 = 0x2ba01477 // Cortex M3, Cortex M4
	efm32IdCodeM0Plus uint32 = 0x0bc11477 // Cortex M0+
)

// EFM32Driver identifies EFM32/EZR32 targets and wires flash programming
// onto the session. The loader stub is an opaque pre built blob supplied
// by the caller, its generation is a toolchain concern outside this
// library.
type EFM32Driver struct {
	writeStub []byte
}

func NewEFM32Driver(writeStub []byte) *EFM32Driver {
	return &EFM32Driver{writeStub: writeStub}
}

// IdentifiedDevice is the result of a successful identification, created
// once per attach and never mutated afterwards.
type IdentifiedDevice struct {
	Device          *EFM32Device
	FlashSize       uint32
	RAMSize         uint32
	RadioPartNumber uint16
	Variant         string
}

// efm32ReadEui reads the extended unique identifier
func efm32ReadEui(t *Target) (uint64, error) {
	low, err := t.Link().ReadMem32(efm32DiEui64Low)
	if err != nil {
		return 0, err
	}

	high, err := t.Link().ReadMem32(efm32DiEui64High)
	if err != nil {
		return 0, err
	}

	return uint64(high)<<32 | uint64(low), nil
}

// efm32ReadFlashSize reads the flash size in kiB
func efm32ReadFlashSize(t *Target) (uint16, error) {
	return t.Link().ReadMem16(efm32DiMemInfoFlash)
}

// efm32ReadRamSize reads the RAM size in kiB
func efm32ReadRamSize(t *Target) (uint16, error) {
	return t.Link().ReadMem16(efm32DiMemInfoRam)
}

func efm32ReadPartNumber(t *Target) (uint16, error) {
	return t.Link().ReadMem16(efm32DiPartNumber)
}

func efm32ReadPartFamily(t *Target) (uint8, error) {
	return t.Link().ReadMem8(efm32DiPartFamily)
}

// efm32ReadRadioPartNumber reads the radio part number (EZR parts only)
func efm32ReadRadioPartNumber(t *Target) (uint16, error) {
	return t.Link().ReadMem16(efm32DiRadioOpn)
}

// Identify decides whether the attached target belongs to this driver's
// family. The probe is read only, a mismatch returns (nil, nil) rather
// than an error so other drivers can be tried.
func (d *EFM32Driver) Identify(t *Target) (*IdentifiedDevice, error) {
	switch t.Link().IDCode() {
	case efm32IdCodeM3M4, efm32IdCodeM0Plus:
		// supported core
	default:
		return nil, nil
	}

	partNumber, err := efm32ReadPartNumber(t)
	if err != nil {
		return nil, err
	}

	partFamily, err := efm32ReadPartFamily(t)
	if err != nil {
		return nil, err
	}

	logger.Debugf("efm32 probe - part number: %d part family: %d", partNumber, partFamily)

	device := LookupEFM32Device(partFamily)
	if device == nil {
		return nil, nil
	}

	identified := &IdentifiedDevice{
		Device:  device,
		Variant: device.Name,
	}

	if device.HasRadio {
		// on-chip radio
		radioNumber, err := efm32ReadRadioPartNumber(t)
		if err != nil {
			return nil, err
		}

		identified.RadioPartNumber = radioNumber
		identified.Variant = fmt.Sprintf("%s (radio: %d)", device.Name, radioNumber)
	}

	// Read memory sizes, convert to bytes
	flashKiB, err := efm32ReadFlashSize(t)
	if err != nil {
		return nil, err
	}

	ramKiB, err := efm32ReadRamSize(t)
	if err != nil {
		return nil, err
	}

	identified.FlashSize = uint32(flashKiB) * 0x400
	identified.RAMSize = uint32(ramKiB) * 0x400

	return identified, nil
}

// Probe runs identification and, on a match, registers the memory map and
// command set on the session. Returns false when the target is not a
// member of this family, which is a negative match and not an error.
func (d *EFM32Driver) Probe(t *Target) (bool, error) {
	identified, err := d.Identify(t)
	if err != nil || identified == nil {
		return false, err
	}

	device := identified.Device

	// This family must not receive a systemwide reset during attach, it
	// can interfere with identification and programming.
	t.SetOptions(t.Options() | OptionInhibitSRST)
	t.SetDriverName(identified.Variant)

	logger.Infof("flash size %d page size %d", identified.FlashSize, device.FlashPageSize)

	t.AddRAMRegion(efm32SramBase, identified.RAMSize)

	flash := &efm32Flash{stub: d.writeStub, device: device}

	t.AddFlashRegion(&FlashRegion{
		Start:     0x00000000,
		Length:    identified.FlashSize,
		BlockSize: device.FlashPageSize,
		BufSize:   device.FlashPageSize,
		Driver:    flash,
	})

	t.AddCommands("EFM32", []Command{
		{Name: "erase_mass", Help: "Erase entire flash memory", Handler: flash.cmdEraseAll},
		{Name: "serial", Help: "Prints unique number", Handler: flash.cmdSerial},
	})

	return true, nil
}
