// Copyright 2026 Ryan Kurte. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

// this code is mainly inspired and based on the blackmagic project source code
// for detailed information see

// https://github.com/blacksphere/blackmagic

package blackmagic

import (
	"fmt"
	"io"
	"os"
)

// DebugLink is the transport contract a target driver programs against.
// Implementations wrap a hardware debug adapter (or a simulation of one)
// and provide blocking, single threaded memory access to the target.
//
// Every call is one or more round trips over the debug link. There is no
// timeout at this layer, an unresponsive target blocks the caller.
type DebugLink interface {
	ReadMem8(addr uint32) (uint8, error)
	ReadMem16(addr uint32) (uint16, error)
	ReadMem32(addr uint32) (uint32, error)

	WriteMem8(addr uint32, value uint8) error
	WriteMem16(addr uint32, value uint16) error
	WriteMem32(addr uint32, value uint32) error

	// ReadBlock fills buffer from target memory starting at addr.
	ReadBlock(addr uint32, buffer []byte) error
	// WriteBlock copies data into target memory starting at addr.
	WriteBlock(addr uint32, data []byte) error

	// RunStub executes a previously uploaded code blob at entry with up
	// to four word arguments, blocking until completion or fault.
	RunStub(entry uint32, arg0 uint32, arg1 uint32, arg2 uint32, arg3 uint32) error

	// ErrorDetected reports whether the link has latched a fault. Polled
	// by drivers inside controller busy loops.
	ErrorDetected() bool

	// IDCode returns the identification code of the debug access port,
	// cached at connect time. Reading it issues no target transaction.
	IDCode() uint32
}

type TargetOptions uint32

const (
	// OptionInhibitSRST suppresses the default systemwide reset during
	// attach. Drivers set this for families where an SRST interferes
	// with identification or programming.
	OptionInhibitSRST TargetOptions = 1 << 0
)

type CommandHandler func(t *Target, args []string) error

// Command is a user invocable maintenance operation exposed by a driver.
type Command struct {
	Name    string
	Help    string
	Handler CommandHandler
}

type commandGroup struct {
	name     string
	commands []Command
}

// Target represents one attached debug session. It owns the link, the
// registered memory map and the driver supplied command set. A Target is
// single threaded, callers serialize all operations against it.
type Target struct {
	link    DebugLink
	driver  string
	options TargetOptions

	ram      []*RAMRegion
	flash    []*FlashRegion
	commands []commandGroup

	out io.Writer
}

func NewTarget(link DebugLink) *Target {
	return &Target{
		link: link,
		out:  os.Stdout,
	}
}

func (t *Target) Link() DebugLink {
	return t.link
}

// SetOutput redirects user visible command output (default os.Stdout).
func (t *Target) SetOutput(w io.Writer) {
	t.out = w
}

// Printf writes user visible output for the session, the counterpart of
// the original firmware's tc_printf.
func (t *Target) Printf(format string, args ...interface{}) {
	fmt.Fprintf(t.out, format, args...)
}

func (t *Target) DriverName() string {
	return t.driver
}

func (t *Target) SetDriverName(name string) {
	t.driver = name
}

func (t *Target) Options() TargetOptions {
	return t.options
}

func (t *Target) SetOptions(options TargetOptions) {
	t.options = options
}

// AddCommands registers a named group of driver commands on the session.
func (t *Target) AddCommands(group string, commands []Command) {
	t.commands = append(t.commands, commandGroup{group, commands})

	for _, cmd := range commands {
		logger.Debugf("Registered command %s.%s: %s", group, cmd.Name, cmd.Help)
	}
}

// RunCommand looks a command up by name across all registered groups and
// invokes it. Unknown names report LinkErrorCommandNotFound.
func (t *Target) RunCommand(name string, args ...string) error {
	for _, group := range t.commands {
		for _, cmd := range group.commands {
			if cmd.Name == name {
				return cmd.Handler(t, args)
			}
		}
	}

	return NewLinkError(fmt.Sprintf("no such command: %s", name), LinkErrorCommandNotFound)
}

// CommandNames lists registered commands as "group.name" strings, in
// registration order.
func (t *Target) CommandNames() []string {
	var names []string

	for _, group := range t.commands {
		for _, cmd := range group.commands {
			names = append(names, fmt.Sprintf("%s.%s", group.name, cmd.Name))
		}
	}

	return names
}
