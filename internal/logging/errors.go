// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

package logging

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// LogException emits one ERROR event describing err, with the supplied
// context fields merged in. The dynamic error type lands in exception_type
// and the message in exception_message, so grouping by failure class works
// even when messages carry variable data. Context fields are additive:
// keys colliding with the base record fields or the exception fields are
// dropped, never allowed to overwrite them.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func LogException(logger zerolog.Logger, err error, context map[string]any) {
	e := logger.Error().
		Str("exception_type", fmt.Sprintf("%T", err)).
		Str("exception_message", err.Error())

	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if reservedExceptionKey(k) {
			continue
		}
		e = e.Interface(k, context[k])
	}
	e.Msg("exception occurred")
}

func reservedExceptionKey(k string) bool {
	if k == "exception_type" || k == "exception_message" {
		return true
	}
	_, ok := baseFields[k]
	return ok
}
