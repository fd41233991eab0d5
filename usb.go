// Copyright 2026 Ryan Kurte. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package blackmagic

import (
	"errors"

	"github.com/google/gousb"
)

var usbContext *gousb.Context = nil

// Known debug probe ids: Black Magic Probe (1d50:6018) and the ST-Link
// family, which can drive EFM32 targets over SWD as well.
var (
	SupportedProbeVids = []gousb.ID{0x1d50, 0x0483}
	SupportedProbePids = []gousb.ID{0x6018, 0x3744, 0x3748, 0x374b, 0x374d, 0x374e, 0x374f, 0x3752, 0x3753}
)

func InitializeUSB() error {
	if usbContext == nil {
		usbContext = gousb.NewContext()

		if usbContext != nil {
			logger.Debug("Initialized libusb...")
			return nil
		} else {
			return errors.New("could not initialize libusb")
		}
	} else {
		logger.Warn("USB already initialized!")
		return nil
	}
}

func CloseUSB() {
	if usbContext != nil {
		usbContext.Close()
	} else {
		logger.Warn("Could not close uninitialized usb context")
	}
}

func idExists(slice []gousb.ID, item gousb.ID) bool {
	for _, element := range slice {
		if element == item {
			return true
		}
	}

	return false
}

// FindDebugProbes scans the bus for attached debug probes matching the
// given vendor and product id lists and returns the open devices.
func FindDebugProbes(vids []gousb.ID, pids []gousb.ID) ([]*gousb.Device, error) {
	devices, err := usbContext.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if idExists(vids, desc.Vendor) && idExists(pids, desc.Product) {
			logger.Infof("Found debug probe [%04x:%04x] on bus %03d:%03d",
				uint16(desc.Vendor), uint16(desc.Product), desc.Bus, desc.Address)

			return true
		} else {
			return false
		}
	})

	if err == nil {
		logger.Infof("Found %d matching probes based on vendor and product id list", len(devices))
		return devices, nil
	} else {
		logger.Error("Got error during usb device scan ", err)
		return nil, err
	}
}
