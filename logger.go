// Copyright 2026 Ryan Kurte. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package blackmagic

import (
	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger = nil

func init() {
	logger = logrus.New()
	logger.SetLevel(logrus.InfoLevel)
}

// SetLogger replaces the package wide logger instance, so the library
// can be hooked into an application provided logrus configuration.
func SetLogger(loggerInstance *logrus.Logger) {
	logger = loggerInstance
}
