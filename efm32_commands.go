// Copyright 2026 Ryan Kurte. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

// this code is mainly inspired and based on the blackmagic project source code
// for detailed information see

// https://github.com/blacksphere/blackmagic

package blackmagic

// cmdEraseAll uses the MSC ERASEMAIN0 command to erase the entire flash.
//
// Known hazard: a link fault during the busy poll returns before the mass
// erase interlock is relocked, leaving the device open to further erase
// commands. This matches the original driver, callers must be aware of it.
func (f *efm32Flash) cmdEraseAll(t *Target, args []string) error {
	link := t.Link()

	// Set WREN bit to enable MSC write and erase functionality
	err := link.WriteMem32(f.mscReg(efm32MscWriteCtrl), 1)
	if err != nil {
		return err
	}

	// Unlock mass erase
	err = link.WriteMem32(f.mscReg(efm32MscMassLock), efm32MscMassLockKey)
	if err != nil {
		return err
	}

	// Erase operation
	err = link.WriteMem32(f.mscReg(efm32MscWriteCmd), efm32MscWriteCmdEraseMain0)
	if err != nil {
		return err
	}

	err = f.waitNotBusy(link)
	if err != nil {
		return err
	}

	// Relock mass erase
	err = link.WriteMem32(f.mscReg(efm32MscMassLock), 0)
	if err != nil {
		return err
	}

	t.Printf("Erase successful!\n")

	return nil
}

// cmdSerial reads and prints the 64 bit extended unique identifier
func (f *efm32Flash) cmdSerial(t *Target, args []string) error {
	eui, err := efm32ReadEui(t)
	if err != nil {
		return err
	}

	t.Printf("Unique Number: 0x%016x\n", eui)

	return nil
}
