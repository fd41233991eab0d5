// Copyright 2026 Ryan Kurte. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package blackmagic

func memset(a []uint8, size int, v uint8) {
	for i := 0; i < size; i++ {
		a[i] = v
	}
}

func le_to_h_u16(buffer []byte) uint16 {
	return uint16(buffer[0]) | (uint16(buffer[1]) << 8)
}

func le_to_h_u32(buffer []byte) uint32 {
	return uint32(buffer[0]) | uint32(buffer[1])<<8 | uint32(buffer[2])<<16 | uint32(buffer[3])<<24
}

func h_u16_to_le(buffer []byte, value uint16) {
	buffer[1] = byte(value >> 8)
	buffer[0] = byte(value >> 0)
}

func h_u32_to_le(buffer []byte, value uint32) {
	buffer[3] = byte(value >> 24)
	buffer[2] = byte(value >> 16)
	buffer[1] = byte(value >> 8)
	buffer[0] = byte(value >> 0)
}
