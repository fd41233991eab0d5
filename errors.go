// Copyright 2026 Ryan Kurte. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package blackmagic

type LinkErrorCode int

const (
	LinkErrorOK              LinkErrorCode = 0
	LinkErrorWait                          = -1
	LinkErrorFail                          = -2
	LinkErrorUnalignedAccess               = -3
	LinkErrorCommandNotFound               = -4
)

// LinkError is the error type used for all debug link transport failures.
// Every multi step flash operation aborts on the first LinkError and hands
// it to the caller unchanged, there are no retries at this layer.
type LinkError struct {
	errorString string
	Code        LinkErrorCode
}

func (e *LinkError) Error() string {
	return e.errorString
}

func NewLinkError(msg string, code LinkErrorCode) error {
	return &LinkError{msg, code}
}

// ErrorCode extracts the LinkErrorCode from an error returned by this
// library. Errors from other sources map to LinkErrorFail.
func ErrorCode(err error) LinkErrorCode {
	if err == nil {
		return LinkErrorOK
	}

	if linkErr, ok := err.(*LinkError); ok {
		return linkErr.Code
	}

	return LinkErrorFail
}
