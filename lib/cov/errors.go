//
// Copyright (C) 2018-2023 Sebastian Hollizeck
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package cov

import (
	"github.com/pkg/errors"
)

// Error kinds. Wrap with errors.Wrap/Wrapf to add context, match with
// errors.Is. The CLI prints any error it receives and exits with code 1.
var (
	// ErrUsage marks missing required options or inconsistent combinations.
	ErrUsage = errors.New("usage error")
	// ErrInputMismatch marks inputs that disagree with each other, e.g. a
	// target chromosome absent from the alignment header.
	ErrInputMismatch = errors.New("input mismatch")
	// ErrProvider marks I/O failures during alignment iteration.
	ErrProvider = errors.New("provider failure")
	// ErrConfig marks invalid configuration values.
	ErrConfig = errors.New("configuration error")
	// ErrInternal marks invariant violations that should never trigger.
	ErrInternal = errors.New("internal invariant violated")
)
