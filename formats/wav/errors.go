// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var ErrInvalidFormat = errors.New("source has no valid audio format")
