// SPDX-License-Identifier: ISC
// Copyright (c) 2021-2026 Esvgate Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type (
	// ExistsError - object already exists
	ExistsError GenericError
	// InvalidError - object has invalid value
	InvalidError GenericError
	// LengthError - object has wrong byte count
	LengthError GenericError
	// NotFoundError - object was not found
	NotFoundError GenericError
	// ProcessError - operation failed
	ProcessError GenericError
	// UnavailableError - remote service cannot be reached
	UnavailableError GenericError
)

// common errors - keep in alphabetic order
var (
	AlreadyInitialised       = ExistsError("already initialised")
	AmbiguousLongestChainTip = ProcessError("multiple longest chain tips")
	ConnectionAlreadyExists  = ExistsError("connection already exists")
	ConnectionClosed         = ProcessError("connection is closed")
	HeaderServiceUnavailable = UnavailableError("header service unavailable")
	InvalidDataDirectory     = InvalidError("invalid data directory")
	InvalidFrameLength       = LengthError("invalid frame length")
	InvalidHeaderLength      = LengthError("invalid header length")
	InvalidListenAddress     = InvalidError("invalid listen address")
	InvalidTipResponse       = ProcessError("invalid tip response")
	MissingHashParameter     = InvalidError("hash parameter is missing")
	MissingLongestChainTip   = NotFoundError("longest chain tip is missing")
	MissingParameters        = InvalidError("missing parameters")
	NotInitialised           = NotFoundError("not initialised")
	RateLimiting             = ProcessError("rate limiting")
	TipFetchFailed           = ProcessError("tip fetch failed")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string      { return string(e) }
func (e InvalidError) Error() string     { return string(e) }
func (e LengthError) Error() string      { return string(e) }
func (e NotFoundError) Error() string    { return string(e) }
func (e ProcessError) Error() string     { return string(e) }
func (e UnavailableError) Error() string { return string(e) }

// IsErrExists - determine if an exists error
func IsErrExists(e error) bool { _, ok := e.(ExistsError); return ok }

// IsErrInvalid - determine if an invalid error
func IsErrInvalid(e error) bool { _, ok := e.(InvalidError); return ok }

// IsErrLength - determine if a length error
func IsErrLength(e error) bool { _, ok := e.(LengthError); return ok }

// IsErrNotFound - determine if a not found error
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }

// IsErrProcess - determine if a process error
func IsErrProcess(e error) bool { _, ok := e.(ProcessError); return ok }

// IsErrUnavailable - determine if an unavailable error
func IsErrUnavailable(e error) bool { _, ok := e.(UnavailableError); return ok }
