// SPDX-License-Identifier: EPL-2.0

package vorbis

import "errors"

var (
	// ErrIncompleteHeaders is returned when a stream ends or goes on with
	// audio before the identification, comment and setup headers were read.
	ErrIncompleteHeaders = errors.New("vorbis: incomplete stream headers")
)
