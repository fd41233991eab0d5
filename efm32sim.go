// Copyright 2026 Ryan Kurte. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package blackmagic

import (
	"fmt"

	"github.com/boljen/go-bitmap"
)

// SimEFM32Config sets up the identity and geometry of a simulated target.
// Family selects the catalog entry used for page size and MSC base, so
// the simulation stays consistent with what the driver expects.
type SimEFM32Config struct {
	IDCode          uint32
	Family          uint8
	PartNumber      uint16
	RadioPartNumber uint16
	FlashKiB        uint16
	RAMKiB          uint16
	EUI             uint64

	// BusyPolls is the number of busy status reads the MSC reports per
	// erase operation before clearing, minimum 1.
	BusyPolls int
}

// SimEvent records one observable MSC transaction: a register write, or a
// read of the status register with the value returned.
type SimEvent struct {
	Reg   string
	Value uint32
}

type SimStubRun struct {
	Dest   uint32
	Length uint32
}

// SimEFM32 is a software model of an EFM32 target behind a debug link,
// used by the test suite and the demo tool. It models the DI region as
// raw bytes, the flash array with NOR erase/program semantics and the MSC
// command interface including the mass erase interlock.
//
// The loader stub is not interpreted. RunStub performs the write loop the
// real stub would, refusing pages that have not been erased.
type SimEFM32 struct {
	cfg      SimEFM32Config
	pageSize uint32
	mscBase  uint32

	di    []byte
	flash []byte
	ram   []byte

	erased bitmap.Bitmap

	writeEnabled bool
	addrb        uint32
	latched      uint32
	massUnlocked bool
	busyLeft     int

	events   []SimEvent
	erases   []uint32
	stubRuns []SimStubRun

	readCount    int
	writeCount   int
	statusReads  int
	statusFailAt int
	errFlag      bool
}

const simDiSize = 0x200

// NewSimEFM32 builds a simulated target. Unknown families are permitted
// (for negative probe tests) and fall back to first gen geometry.
func NewSimEFM32(cfg SimEFM32Config) *SimEFM32 {
	if cfg.BusyPolls < 1 {
		cfg.BusyPolls = 2
	}

	pageSize := uint32(1024)
	mscBase := uint32(0x400c0000)

	if device := LookupEFM32Device(cfg.Family); device != nil {
		pageSize = device.FlashPageSize
		mscBase = device.MSCBase
	}

	s := &SimEFM32{
		cfg:      cfg,
		pageSize: pageSize,
		mscBase:  mscBase,
		di:       make([]byte, simDiSize),
		flash:    make([]byte, uint32(cfg.FlashKiB)*1024),
		ram:      make([]byte, uint32(cfg.RAMKiB)*1024),
	}

	memset(s.di, simDiSize, 0xff)
	memset(s.flash, len(s.flash), 0xff)

	s.erased = bitmap.New(len(s.flash) / int(pageSize))

	h_u16_to_le(s.di[efm32DiRadioOpn-efm32DiBase:], cfg.RadioPartNumber)
	h_u32_to_le(s.di[efm32DiEui64Low-efm32DiBase:], uint32(cfg.EUI))
	h_u32_to_le(s.di[efm32DiEui64High-efm32DiBase:], uint32(cfg.EUI>>32))
	h_u16_to_le(s.di[efm32DiMemInfoFlash-efm32DiBase:], cfg.FlashKiB)
	h_u16_to_le(s.di[efm32DiMemInfoRam-efm32DiBase:], cfg.RAMKiB)
	h_u16_to_le(s.di[efm32DiPartNumber-efm32DiBase:], cfg.PartNumber)
	s.di[efm32DiPartFamily-efm32DiBase] = cfg.Family

	return s
}

// memoryAt resolves addr to the backing slice for data regions (flash,
// DI, RAM). MSC registers are handled separately.
func (s *SimEFM32) memoryAt(addr uint32, length uint32) ([]byte, error) {
	switch {
	case uint64(addr)+uint64(length) <= uint64(len(s.flash)):
		return s.flash[addr : addr+length], nil

	case addr >= efm32DiBase && addr+length <= efm32DiBase+simDiSize:
		offset := addr - efm32DiBase
		return s.di[offset : offset+length], nil

	case addr >= efm32SramBase && uint64(addr-efm32SramBase)+uint64(length) <= uint64(len(s.ram)):
		offset := addr - efm32SramBase
		return s.ram[offset : offset+length], nil
	}

	return nil, NewLinkError(fmt.Sprintf("simulated access fault at 0x%08x", addr), LinkErrorFail)
}

func (s *SimEFM32) isMscReg(addr uint32) bool {
	return addr >= s.mscBase && addr < s.mscBase+0x100
}

func (s *SimEFM32) ReadMem8(addr uint32) (uint8, error) {
	s.readCount++

	mem, err := s.memoryAt(addr, 1)
	if err != nil {
		return 0, err
	}

	return mem[0], nil
}

func (s *SimEFM32) ReadMem16(addr uint32) (uint16, error) {
	s.readCount++

	mem, err := s.memoryAt(addr, 2)
	if err != nil {
		return 0, err
	}

	return le_to_h_u16(mem), nil
}

func (s *SimEFM32) ReadMem32(addr uint32) (uint32, error) {
	s.readCount++

	if s.isMscReg(addr) {
		return s.readMscReg(addr)
	}

	mem, err := s.memoryAt(addr, 4)
	if err != nil {
		return 0, err
	}

	return le_to_h_u32(mem), nil
}

func (s *SimEFM32) readMscReg(addr uint32) (uint32, error) {
	switch addr - s.mscBase {
	case efm32MscStatus:
		status := s.statusValue()
		s.events = append(s.events, SimEvent{"STATUS", status})
		return status, nil

	case efm32MscAddrB:
		return s.addrb, nil
	}

	return 0, nil
}

func (s *SimEFM32) statusValue() uint32 {
	s.statusReads++

	if s.statusFailAt > 0 && s.statusReads >= s.statusFailAt {
		// a fault leaves busy asserted and the link error latched
		s.errFlag = true
		return efm32MscStatusBusy
	}

	if s.busyLeft > 0 {
		s.busyLeft--
		return efm32MscStatusBusy
	}

	return 0
}

func (s *SimEFM32) WriteMem8(addr uint32, value uint8) error {
	s.writeCount++

	mem, err := s.memoryAt(addr, 1)
	if err != nil {
		return err
	}

	mem[0] = value
	return nil
}

func (s *SimEFM32) WriteMem16(addr uint32, value uint16) error {
	s.writeCount++

	mem, err := s.memoryAt(addr, 2)
	if err != nil {
		return err
	}

	h_u16_to_le(mem, value)
	return nil
}

func (s *SimEFM32) WriteMem32(addr uint32, value uint32) error {
	s.writeCount++

	if s.isMscReg(addr) {
		return s.writeMscReg(addr, value)
	}

	mem, err := s.memoryAt(addr, 4)
	if err != nil {
		return err
	}

	h_u32_to_le(mem, value)
	return nil
}

func (s *SimEFM32) writeMscReg(addr uint32, value uint32) error {
	switch addr - s.mscBase {
	case efm32MscWriteCtrl:
		s.events = append(s.events, SimEvent{"WRITECTRL", value})
		s.writeEnabled = (value & 1) != 0

	case efm32MscAddrB:
		s.events = append(s.events, SimEvent{"ADDRB", value})
		s.addrb = value

	case efm32MscWriteCmd:
		s.events = append(s.events, SimEvent{"WRITECMD", value})
		return s.runWriteCmd(value)

	case efm32MscMassLock:
		s.events = append(s.events, SimEvent{"MASSLOCK", value})
		s.massUnlocked = value == efm32MscMassLockKey

	case efm32MscWData:
		s.events = append(s.events, SimEvent{"WDATA", value})
	}

	return nil
}

func (s *SimEFM32) runWriteCmd(value uint32) error {
	if (value & efm32MscWriteCmdLAddrIm) != 0 {
		s.latched = s.addrb
	}

	if (value & efm32MscWriteCmdErasePage) != 0 {
		if !s.writeEnabled {
			logger.Warn("simulated ERASEPAGE with WREN clear, ignored")
			return nil
		}

		page := s.latched &^ (s.pageSize - 1)
		if uint64(page)+uint64(s.pageSize) > uint64(len(s.flash)) {
			return NewLinkError(fmt.Sprintf("simulated erase outside flash at 0x%08x", page), LinkErrorFail)
		}

		memset(s.flash[page:page+s.pageSize], int(s.pageSize), 0xff)
		s.erased.Set(int(page/s.pageSize), true)
		s.erases = append(s.erases, page)
		s.busyLeft = s.cfg.BusyPolls
	}

	if (value & efm32MscWriteCmdEraseMain0) != 0 {
		if !s.writeEnabled || !s.massUnlocked {
			logger.Warn("simulated ERASEMAIN0 while locked, ignored")
			return nil
		}

		memset(s.flash, len(s.flash), 0xff)
		for page := 0; page < len(s.flash)/int(s.pageSize); page++ {
			s.erased.Set(page, true)
		}
		s.busyLeft = s.cfg.BusyPolls
	}

	return nil
}

func (s *SimEFM32) ReadBlock(addr uint32, buffer []byte) error {
	s.readCount++

	mem, err := s.memoryAt(addr, uint32(len(buffer)))
	if err != nil {
		return err
	}

	copy(buffer, mem)
	return nil
}

func (s *SimEFM32) WriteBlock(addr uint32, data []byte) error {
	s.writeCount++

	if addr < efm32SramBase || uint64(addr-efm32SramBase)+uint64(len(data)) > uint64(len(s.ram)) {
		return NewLinkError(fmt.Sprintf("simulated block write outside RAM at 0x%08x", addr), LinkErrorFail)
	}

	copy(s.ram[addr-efm32SramBase:], data)
	return nil
}

// RunStub emulates the flash loader: it copies the payload from the RAM
// scratch buffer into flash, enforcing that every touched page was erased
// beforehand. A page is consumed by programming it, a second write to the
// same page without a fresh erase faults like real NOR flash would.
func (s *SimEFM32) RunStub(entry uint32, arg0 uint32, arg1 uint32, arg2 uint32, arg3 uint32) error {
	if entry != efm32SramBase {
		return NewLinkError(fmt.Sprintf("simulated stub entry 0x%08x outside loader slot", entry), LinkErrorFail)
	}

	dest, src, length := arg0, arg1, arg2

	if src < efm32SramBase || uint64(src-efm32SramBase)+uint64(length) > uint64(len(s.ram)) {
		return NewLinkError("simulated stub source outside RAM", LinkErrorFail)
	}

	if uint64(dest)+uint64(length) > uint64(len(s.flash)) {
		return NewLinkError("simulated stub destination outside flash", LinkErrorFail)
	}

	firstPage := dest / s.pageSize
	lastPage := (dest + length - 1) / s.pageSize

	for page := firstPage; page <= lastPage; page++ {
		if !s.erased.Get(int(page)) {
			return NewLinkError(fmt.Sprintf("simulated write to unerased page 0x%08x", page*s.pageSize), LinkErrorFail)
		}
	}

	payload := s.ram[src-efm32SramBase : src-efm32SramBase+length]

	for i := uint32(0); i < length; i++ {
		// NOR programming can only clear bits
		s.flash[dest+i] &= payload[i]
	}

	for page := firstPage; page <= lastPage; page++ {
		s.erased.Set(int(page), false)
	}

	s.stubRuns = append(s.stubRuns, SimStubRun{dest, length})

	return nil
}

func (s *SimEFM32) ErrorDetected() bool {
	return s.errFlag
}

func (s *SimEFM32) IDCode() uint32 {
	return s.cfg.IDCode
}

// FailAfterStatusReads latches a link fault once n status register reads
// have been observed. From then on the MSC reports busy forever, which is
// how a wedged controller presents during a poll loop.
func (s *SimEFM32) FailAfterStatusReads(n int) {
	s.statusFailAt = s.statusReads + n
}

func (s *SimEFM32) SetErrorDetected(v bool) {
	s.errFlag = v
}

// Events returns the observed MSC transactions in order.
func (s *SimEFM32) Events() []SimEvent {
	return s.events
}

// PageErases returns the page base addresses erased, in order.
func (s *SimEFM32) PageErases() []uint32 {
	return s.erases
}

// StubRuns returns the (dest, length) pairs of completed loader runs.
func (s *SimEFM32) StubRuns() []SimStubRun {
	return s.stubRuns
}

func (s *SimEFM32) ReadTransactions() int {
	return s.readCount
}

func (s *SimEFM32) WriteTransactions() int {
	return s.writeCount
}

func (s *SimEFM32) MassUnlocked() bool {
	return s.massUnlocked
}

// FlashBytes exposes the backing flash array for verification.
func (s *SimEFM32) FlashBytes() []byte {
	return s.flash
}

// RAMBytes exposes the backing RAM array for verification.
func (s *SimEFM32) RAMBytes() []byte {
	return s.ram
}
