// Copyright 2026 Ryan Kurte. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package blackmagic

import "testing"

func TestLookupDeviceKnownFamilies(t *testing.T) {
	cases := []struct {
		family   uint8
		name     string
		pageSize uint32
		mscBase  uint32
		hasRadio bool
	}{
		{72, "EFM32GG", 2048, 0x400c0000, false},
		{71, "EFM32G", 512, 0x400c0000, false},
		{76, "EFM32ZG", 1024, 0x400c0000, false},
		{16, "EFR32MG1P", 2048, 0x400e0000, true},
		{81, "EFM32PG1B", 2048, 0x400e0000, false},
		{121, "EFR32LG", 2048, 0x400c0000, true},
	}

	for _, c := range cases {
		device := LookupEFM32Device(c.family)

		if device == nil {
			t.Fatalf("family %d: expected catalog hit, got nil", c.family)
		}

		if device.Name != c.name {
			t.Errorf("family %d: got name %s, want %s", c.family, device.Name, c.name)
		}

		if device.FlashPageSize != c.pageSize {
			t.Errorf("family %d: got page size %d, want %d", c.family, device.FlashPageSize, c.pageSize)
		}

		if device.MSCBase != c.mscBase {
			t.Errorf("family %d: got MSC base 0x%08x, want 0x%08x", c.family, device.MSCBase, c.mscBase)
		}

		if device.HasRadio != c.hasRadio {
			t.Errorf("family %d: got hasRadio %v, want %v", c.family, device.HasRadio, c.hasRadio)
		}
	}
}

func TestLookupDeviceUnknownFamilies(t *testing.T) {
	for _, family := range []uint8{0, 1, 15, 99, 200, 255} {
		if device := LookupEFM32Device(family); device != nil {
			t.Errorf("family %d: expected nil, got %s", family, device.Name)
		}
	}
}

func TestCatalogFamiliesUnique(t *testing.T) {
	seen := make(map[uint8]string)

	for _, device := range efm32Devices {
		if prev, ok := seen[device.Family]; ok {
			t.Errorf("family %d appears twice: %s and %s", device.Family, prev, device.Name)
		}

		seen[device.Family] = device.Name
	}
}
