// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"testing"

	"github.com/gogpu/fx/driver/drivertest"
)

const testShader = "@vertex fn vs_main() {} @fragment fn fs_main() {}"

func TestProgramCachedBySource(t *testing.T) {
	ctx, _ := newTestContext(t)

	p1, err := ctx.Program(testShader)
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	p2, err := ctx.Program(testShader)
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	if p1 != p2 {
		t.Error("identical source compiled twice")
	}

	p3, err := ctx.Program(testShader + " ")
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	if p3 == p1 {
		t.Error("different source shared a compiled program")
	}
}

func TestProgramCompileFailure(t *testing.T) {
	ctx, _ := newTestContext(t)

	if _, err := ctx.Program(drivertest.CompileFailMarker); err == nil {
		t.Fatal("Program() with failing source did not error")
	}

	// Failures are not cached; a corrected source compiles.
	if _, err := ctx.Program(testShader); err != nil {
		t.Fatalf("Program() after failure error = %v", err)
	}
}

func TestSetActiveProgramSuppressesRedundantBinds(t *testing.T) {
	ctx, dev := newTestContext(t)

	p, err := ctx.Program(testShader)
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	p.Use()
	if dev.CurrentProgram() != p.ID() {
		t.Fatalf("CurrentProgram() = %d, want %d", dev.CurrentProgram(), p.ID())
	}
	if ctx.ActiveProgram() != p {
		t.Error("ActiveProgram() does not track the bound program")
	}
}

func TestSetActiveProgramDetectsDrift(t *testing.T) {
	ctx, dev := newTestContext(t)

	p, err := ctx.Program(testShader)
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	p.Use()

	// External code rebinds behind the abstraction's back.
	dev.ForceProgram(0)

	p.Use()
	if dev.CurrentProgram() != p.ID() {
		t.Errorf("CurrentProgram() = %d after drift, want %d rebound", dev.CurrentProgram(), p.ID())
	}
}
