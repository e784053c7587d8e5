// SPDX-License-Identifier: EPL-2.0

package record

import "errors"

var (
	ErrBadFormat = errors.New("recording format needs a positive rate and channel count")
	ErrOpen      = errors.New("cannot open recording sink")
)
