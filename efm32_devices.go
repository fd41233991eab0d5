// Copyright 2026 Ryan Kurte. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

// this code is mainly inspired and based on the blackmagic project source code
// for detailed information see

// https://github.com/blacksphere/blackmagic

package blackmagic

// EFM32Device is one static catalog entry describing a device family.
type EFM32Device struct {
	// Family for device matching, read from the DI part family register
	Family uint8
	// Friendly device family name
	Name string
	// Flash page size (erase granularity) in bytes
	FlashPageSize uint32
	// Base address of the memory system controller (MSC)
	MSCBase uint32
	// Indicates a device has an attached radio (EZR/EFR parts)
	HasRadio bool
}

var efm32Devices = []EFM32Device{
	// Second gen devices micro + Radio
	{16, "EFR32MG1P", 2048, 0x400e0000, true},
	{17, "EFR32MG1B", 2048, 0x400e0000, true},
	{18, "EFR32MG1V", 2048, 0x400e0000, true},
	{19, "EFR32BG1P", 2048, 0x400e0000, true},
	{20, "EFR32BG1B", 2048, 0x400e0000, true},
	{21, "EFR32BG1V", 2048, 0x400e0000, true},
	{25, "EFR32FG1P", 2048, 0x400e0000, true},
	{26, "EFR32FG1B", 2048, 0x400e0000, true},
	{27, "EFR32FG1V", 2048, 0x400e0000, true},
	{28, "EFR32MG12P", 2048, 0x400e0000, true},
	{29, "EFR32MG12B", 2048, 0x400e0000, true},
	{30, "EFR32MG12V", 2048, 0x400e0000, true},
	{31, "EFR32BG12P", 2048, 0x400e0000, true},
	{32, "EFR32BG12B", 2048, 0x400e0000, true},
	{33, "EFR32BG12V", 2048, 0x400e0000, true},
	{37, "EFR32FG12P", 2048, 0x400e0000, true},
	{38, "EFR32FG12B", 2048, 0x400e0000, true},
	{39, "EFR32FG12V", 2048, 0x400e0000, true},
	{40, "EFR32MG13P", 2048, 0x400e0000, true},
	{41, "EFR32MG13B", 2048, 0x400e0000, true},
	{42, "EFR32MG13V", 2048, 0x400e0000, true},
	{43, "EFR32BG13P", 2048, 0x400e0000, true},
	{44, "EFR32BG13B", 2048, 0x400e0000, true},
	{45, "EFR32BG13V", 2048, 0x400e0000, true},
	{49, "EFR32FG13P", 2048, 0x400e0000, true},
	{50, "EFR32FG13B", 2048, 0x400e0000, true},
	{51, "EFR32FG13V", 2048, 0x400e0000, true},
	// Second gen micros
	{81, "EFM32PG1B", 2048, 0x400e0000, false},
	{83, "EFM32JG1B", 2048, 0x400e0000, false},
	// First gen micros
	{71, "EFM32G", 512, 0x400c0000, false},
	{72, "EFM32GG", 2048, 0x400c0000, false},
	{73, "EFM32TG", 512, 0x400c0000, false},
	{74, "EFM32LG", 2048, 0x400c0000, false},
	{75, "EFM32WG", 2048, 0x400c0000, false},
	{76, "EFM32ZG", 1024, 0x400c0000, false},
	{77, "EFM32HG", 1024, 0x400c0000, false},
	// First (1.5) gen micro + radios
	{120, "EFR32WG", 2048, 0x400c0000, true},
	{121, "EFR32LG", 2048, 0x400c0000, true},
}

// LookupEFM32Device resolves a part family id against the device catalog,
// first match wins. The table is kept duplicate free, so the match is
// unique. Returns nil for families this driver does not know.
func LookupEFM32Device(family uint8) *EFM32Device {
	for i := range efm32Devices {
		if efm32Devices[i].Family == family {
			return &efm32Devices[i]
		}
	}

	return nil
}
