// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package frame

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is wrapped by every error caused by caller input:
// unsupported formats, out-of-range geometry, misaligned YUV dimensions.
var ErrInvalidArgument = errors.New("frame: invalid argument")

// ErrInternal is wrapped by errors that indicate a kernel bug rather
// than bad input. Callers should not see these in practice.
var ErrInternal = errors.New("frame: internal error")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
