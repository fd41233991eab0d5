// Copyright 2026 Ryan Kurte. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

// this code is mainly inspired and based on the blackmagic project source code
// for detailed information see

// https://github.com/blacksphere/blackmagic

package blackmagic

import "fmt"

// RAMRegion describes one block of volatile target memory.
type RAMRegion struct {
	Start  uint32
	Length uint32
}

// FlashDriver is the pair of operations a device driver binds onto a
// flash region. Erase granularity is the region's BlockSize, both
// operations expect page aligned arguments.
type FlashDriver interface {
	Erase(f *FlashRegion, addr uint32, length uint32) error
	Write(f *FlashRegion, dest uint32, src []byte) error
}

// FlashRegion describes one block of non volatile target memory together
// with its erase/write bindings. Length is a multiple of BlockSize.
type FlashRegion struct {
	Start     uint32
	Length    uint32
	BlockSize uint32

	// BufSize is the recommended chunk size for buffered writes, one
	// flash page for all current drivers.
	BufSize uint32

	Driver FlashDriver

	target *Target
}

func (t *Target) AddRAMRegion(start uint32, length uint32) {
	t.ram = append(t.ram, &RAMRegion{start, length})

	logger.Debugf("Added RAM region 0x%08x + 0x%x", start, length)
}

func (t *Target) AddFlashRegion(f *FlashRegion) {
	f.target = t
	t.flash = append(t.flash, f)

	logger.Debugf("Added flash region 0x%08x + 0x%x (block size 0x%x)", f.Start, f.Length, f.BlockSize)
}

func (t *Target) RAMRegions() []*RAMRegion {
	return t.ram
}

func (t *Target) FlashRegions() []*FlashRegion {
	return t.flash
}

// FlashRegionFor returns the flash region containing addr, or nil.
func (t *Target) FlashRegionFor(addr uint32) *FlashRegion {
	for _, f := range t.flash {
		if addr >= f.Start && addr < f.Start+f.Length {
			return f
		}
	}

	return nil
}

func (f *FlashRegion) Target() *Target {
	return f.target
}

// Erase erases length bytes starting at addr. Both must be multiples of
// the region block size, misaligned ranges are rejected up front before
// any controller command is issued.
func (f *FlashRegion) Erase(addr uint32, length uint32) error {
	if (addr%f.BlockSize) > 0 || (length%f.BlockSize) > 0 {
		return NewLinkError(fmt.Sprintf("erase range 0x%08x + 0x%x not page aligned", addr, length),
			LinkErrorUnalignedAccess)
	}

	return f.Driver.Erase(f, addr, length)
}

// Write programs src at dest through the driver in one operation. dest
// must be page aligned and the destination range already erased, this
// layer performs no implicit erase.
func (f *FlashRegion) Write(dest uint32, src []byte) error {
	if (dest % f.BlockSize) > 0 {
		return NewLinkError(fmt.Sprintf("write destination 0x%08x not page aligned", dest),
			LinkErrorUnalignedAccess)
	}

	return f.Driver.Write(f, dest, src)
}

// WriteBuffered programs an arbitrary byte stream by chunking it into
// page sized, page aligned driver writes. Partial pages are padded with
// 0xff so untouched bytes keep their erased value.
func (f *FlashRegion) WriteBuffered(dest uint32, src []byte) error {
	page := f.BufSize

	for len(src) > 0 {
		base := dest &^ (page - 1)
		offset := dest - base

		count := page - offset
		if uint32(len(src)) < count {
			count = uint32(len(src))
		}

		buffer := make([]byte, page)
		memset(buffer, int(page), 0xff)
		copy(buffer[offset:], src[:count])

		err := f.Driver.Write(f, base, buffer)
		if err != nil {
			return err
		}

		dest += count
		src = src[count:]
	}

	return nil
}
