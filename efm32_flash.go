// Copyright 2026 Ryan Kurte. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

// this code is mainly inspired and based on the blackmagic project source code
// for detailed information see

// https://github.com/blacksphere/blackmagic

package blackmagic

// Memory System Controller (MSC) register offsets, relative to the per
// device MSC base address from the catalog
const (
	efm32MscWriteCtrl uint32 = 0x008
	efm32MscWriteCmd  uint32 = 0x00c
	efm32MscAddrB     uint32 = 0x010
	efm32MscWData     uint32 = 0x018
	efm32MscStatus    uint32 = 0x01c
	efm32MscMassLock  uint32 = 0x054
)

const (
	efm32MscWriteCmdLAddrIm    uint32 = 1 << 0
	efm32MscWriteCmdErasePage  uint32 = 1 << 1
	efm32MscWriteCmdWriteEnd   uint32 = 1 << 2
	efm32MscWriteCmdWriteOnce  uint32 = 1 << 3
	efm32MscWriteCmdWriteTrig  uint32 = 1 << 4
	efm32MscWriteCmdEraseAbort uint32 = 1 << 5
	efm32MscWriteCmdEraseMain0 uint32 = 1 << 8

	efm32MscStatusBusy       uint32 = 1 << 0
	efm32MscStatusLocked     uint32 = 1 << 1
	efm32MscStatusInvAddr    uint32 = 1 << 2
	efm32MscStatusWDataReady uint32 = 1 << 3

	efm32MscMassLockKey uint32 = 0x631a
)

// efm32Flash binds the erase and write engines of one identified device
// onto its flash region. The stub slice is borrowed from the driver and
// never modified.
type efm32Flash struct {
	stub   []byte
	device *EFM32Device
}

func (f *efm32Flash) mscReg(offset uint32) uint32 {
	return f.device.MSCBase + offset
}

// waitNotBusy polls the MSC status register until the busy bit clears,
// checking the link for a latched fault after each poll. There is no
// iteration cap, a target that never clears busy blocks the caller.
func (f *efm32Flash) waitNotBusy(link DebugLink) error {
	for {
		status, err := link.ReadMem32(f.mscReg(efm32MscStatus))
		if err != nil {
			return err
		}

		if (status & efm32MscStatusBusy) == 0 {
			return nil
		}

		if link.ErrorDetected() {
			return NewLinkError("link fault while polling MSC busy", LinkErrorFail)
		}
	}
}

// Erase erases flash page by page. addr and length are page aligned
// (checked by FlashRegion.Erase) and advance in lockstep, so no page is
// erased twice and none is skipped. A link fault aborts on the page it
// occurred on, completed pages are not reported.
func (f *efm32Flash) Erase(region *FlashRegion, addr uint32, length uint32) error {
	link := region.Target().Link()

	// Set WREN bit to enable MSC write and erase functionality
	err := link.WriteMem32(f.mscReg(efm32MscWriteCtrl), 1)
	if err != nil {
		return err
	}

	for length > 0 {
		// Write address of first word in page and latch it
		err = link.WriteMem32(f.mscReg(efm32MscAddrB), addr)
		if err != nil {
			return err
		}

		err = link.WriteMem32(f.mscReg(efm32MscWriteCmd), efm32MscWriteCmdLAddrIm)
		if err != nil {
			return err
		}

		// Issue the erase command
		err = link.WriteMem32(f.mscReg(efm32MscWriteCmd), efm32MscWriteCmdErasePage)
		if err != nil {
			return err
		}

		err = f.waitNotBusy(link)
		if err != nil {
			return err
		}

		addr += region.BlockSize
		length -= region.BlockSize
	}

	return nil
}

// efm32StubBufferBase returns the payload scratch address, the first 4
// byte boundary after the loader stub in target RAM.
func efm32StubBufferBase(stubLen int) uint32 {
	return (efm32SramBase + uint32(stubLen) + 3) &^ 3
}

// Write programs flash by uploading the loader stub and the payload into
// target RAM and running the stub, which performs the word level MSC
// write sequencing on the target itself. Far faster than issuing one
// controller transaction per word over the debug link.
//
// The destination must already be erased. The stub's result is propagated
// verbatim, word level failures inside it are indistinguishable from a
// link error.
func (f *efm32Flash) Write(region *FlashRegion, dest uint32, src []byte) error {
	link := region.Target().Link()

	// Write flashloader
	err := link.WriteBlock(efm32SramBase, f.stub)
	if err != nil {
		return err
	}

	// Write buffer
	buffer := efm32StubBufferBase(len(f.stub))

	err = link.WriteBlock(buffer, src)
	if err != nil {
		return err
	}

	// Run flashloader. The fifth stub argument is reserved, always zero.
	return link.RunStub(efm32SramBase, dest, buffer, uint32(len(src)), 0)
}
