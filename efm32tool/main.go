// Copyright 2026 Ryan Kurte. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"flag"
	"os"

	log "github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/ryankurte/blackmagic"
)

// demoStub stands in for the real flash loader blob, which is produced by
// a separate toolchain and injected by the application. The simulator
// emulates the loader's behavior, so its contents are irrelevant here.
var demoStub = make([]byte, 64)

func listProbes() {
	err := blackmagic.InitializeUSB()
	if err != nil {
		log.Fatal(err)
	}

	defer blackmagic.CloseUSB()

	devices, err := blackmagic.FindDebugProbes(blackmagic.SupportedProbeVids, blackmagic.SupportedProbePids)
	if err != nil {
		log.Fatal(err)
	}

	for _, dev := range devices {
		serial, _ := dev.SerialNumber()
		log.Infof("Probe [%04x:%04x] serial %s", uint16(dev.Desc.Vendor), uint16(dev.Desc.Product), serial)

		dev.Close()
	}
}

func main() {
	log.SetFormatter(&prefixed.TextFormatter{FullTimestamp: true})
	log.Info("Welcome to the blackmagic EFM32 flash tool...")

	flagList := flag.Bool("list", false, "List attached USB debug probes and exit")
	flagFamily := flag.Int("family", 72, "Simulated EFM32 part family id")
	flagFlashKb := flag.Int("flash-kb", 1024, "Simulated flash size in KiB")
	flagRamKb := flag.Int("ram-kb", 128, "Simulated RAM size in KiB")
	flagVerbose := flag.Bool("verbose", false, "Enable debug logging")

	flag.Parse()

	if *flagVerbose {
		log.SetLevel(log.DebugLevel)
	}

	blackmagic.SetLogger(log.StandardLogger())

	if *flagList {
		listProbes()
		return
	}

	sim := blackmagic.NewSimEFM32(blackmagic.SimEFM32Config{
		IDCode:     0x2ba01477,
		Family:     uint8(*flagFamily),
		PartNumber: 230,
		FlashKiB:   uint16(*flagFlashKb),
		RAMKiB:     uint16(*flagRamKb),
		EUI:        0x000b57fffe012345,
	})

	target := blackmagic.NewTarget(sim)
	driver := blackmagic.NewEFM32Driver(demoStub)

	found, err := driver.Probe(target)
	if err != nil {
		log.Fatal(err)
	}

	if !found {
		log.Fatalf("Family %d is not a supported EFM32 device", *flagFamily)
	}

	log.Infof("Identified target: %s", target.DriverName())

	for _, name := range target.CommandNames() {
		log.Debugf("Available command: %s", name)
	}

	err = target.RunCommand("serial")
	if err != nil {
		log.Fatal(err)
	}

	flash := target.FlashRegionFor(0x0)

	log.Infof("Flash region: 0x%08x + 0x%x, page size 0x%x", flash.Start, flash.Length, flash.BlockSize)

	// program a ramp pattern across a few pages and verify the readback
	image := make([]byte, int(flash.BlockSize)*2+100)
	for i := range image {
		image[i] = byte(i)
	}

	eraseLen := (uint32(len(image)) + flash.BlockSize - 1) &^ (flash.BlockSize - 1)

	err = flash.Erase(0x0, eraseLen)
	if err != nil {
		log.Fatal(err)
	}

	err = flash.WriteBuffered(0x0, image)
	if err != nil {
		log.Fatal(err)
	}

	readback := make([]byte, len(image))

	err = target.Link().ReadBlock(0x0, readback)
	if err != nil {
		log.Fatal(err)
	}

	if !bytes.Equal(image, readback) {
		log.Error("Flash verify failed, readback does not match image")
		os.Exit(1)
	}

	log.Infof("Programmed and verified %d bytes", len(image))

	err = target.RunCommand("erase_mass")
	if err != nil {
		log.Fatal(err)
	}

	log.Info("Demo cycle complete")
}
