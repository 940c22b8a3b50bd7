// SPDX-License-Identifier: EPL-2.0

package oggpbx

import "errors"

var (
	// ErrInvalidContainer is returned by Open when the input has no valid
	// framing or no logical stream was accepted.
	ErrInvalidContainer = errors.New("invalid or unsupported container")

	ErrStreamIndexOutOfRange = errors.New("stream index out of range")
	ErrBufferTooSmall        = errors.New("buffer too small for offset and count")
)
