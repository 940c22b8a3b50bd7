// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrNotSeekable    = errors.New("stream is not seekable")
	ErrSeekOutOfRange = errors.New("seek position out of range")
	ErrInvalidWhence  = errors.New("invalid seek origin")
	ErrUnknownLength  = errors.New("stream length is unknown")
	ErrClosed         = errors.New("stream is closed")
)
