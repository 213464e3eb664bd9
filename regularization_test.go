// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

import (
	"testing"
)

func TestRegularizationResetIdempotent(t *testing.T) {
	reg, err := NewRegularizationStrategy(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	reg.prevDelta = 5
	reg.symbolicDone = true
	reg.consecutiveFailures = 2

	reg.Reset()
	first := *reg
	reg.Reset()
	if first != *reg {
		t.Fatal("two successive Reset calls must leave identical state (Testable Property 9)")
	}
}
