// Copyright 2026 Ryan Kurte. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package blackmagic

import (
	"bytes"
	"testing"
)

// recordingDriver captures driver writes for buffered write unit tests.
type recordingDriver struct {
	writes []struct {
		dest uint32
		data []byte
	}
}

func (d *recordingDriver) Erase(f *FlashRegion, addr uint32, length uint32) error {
	return nil
}

func (d *recordingDriver) Write(f *FlashRegion, dest uint32, src []byte) error {
	data := make([]byte, len(src))
	copy(data, src)

	d.writes = append(d.writes, struct {
		dest uint32
		data []byte
	}{dest, data})

	return nil
}

func TestWriteBufferedPadsPartialPages(t *testing.T) {
	driver := &recordingDriver{}

	target := NewTarget(NewSimEFM32(SimEFM32Config{}))
	region := &FlashRegion{Start: 0, Length: 4096, BlockSize: 256, BufSize: 256, Driver: driver}
	target.AddFlashRegion(region)

	payload := make([]byte, 300)
	for i := range payload {
		payload[i] = byte(i + 1)
	}

	err := region.WriteBuffered(16, payload)
	if err != nil {
		t.Fatalf("buffered write failed: %v", err)
	}

	if len(driver.writes) != 2 {
		t.Fatalf("got %d chunk writes, want 2", len(driver.writes))
	}

	first, second := driver.writes[0], driver.writes[1]

	if first.dest != 0 || second.dest != 256 {
		t.Errorf("chunk destinations 0x%x 0x%x, want 0x0 and 0x100", first.dest, second.dest)
	}

	if len(first.data) != 256 || len(second.data) != 256 {
		t.Fatalf("chunk sizes %d %d, want full pages", len(first.data), len(second.data))
	}

	// leading pad, payload head, payload tail, trailing pad
	if !bytes.Equal(first.data[:16], bytes.Repeat([]byte{0xff}, 16)) {
		t.Error("leading pad not 0xff")
	}

	if !bytes.Equal(first.data[16:], payload[:240]) {
		t.Error("first chunk payload mismatch")
	}

	if !bytes.Equal(second.data[:60], payload[240:]) {
		t.Error("second chunk payload mismatch")
	}

	if !bytes.Equal(second.data[60:], bytes.Repeat([]byte{0xff}, 196)) {
		t.Error("trailing pad not 0xff")
	}
}

func TestFlashRegionFor(t *testing.T) {
	target := NewTarget(NewSimEFM32(SimEFM32Config{}))
	target.AddFlashRegion(&FlashRegion{Start: 0x1000, Length: 0x1000, BlockSize: 256, BufSize: 256, Driver: &recordingDriver{}})

	if target.FlashRegionFor(0x1000) == nil {
		t.Error("region start not resolved")
	}

	if target.FlashRegionFor(0x1fff) == nil {
		t.Error("region end not resolved")
	}

	if target.FlashRegionFor(0x2000) != nil {
		t.Error("address past region resolved")
	}

	if target.FlashRegionFor(0x0fff) != nil {
		t.Error("address before region resolved")
	}
}
