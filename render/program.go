// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"fmt"

	"github.com/gogpu/fx/driver"
)

// Program wraps one compiled shader program belonging to a Context.
//
// Programs are created through Context.Program, which caches compiled
// programs by source so filters sharing a shader share the compiled
// artifact.
type Program struct {
	ctx *Context
	id  driver.ProgramID
}

// ID returns the device program handle.
func (p *Program) ID() driver.ProgramID { return p.id }

// Use makes the program current, going through the Context's redundant-
// bind suppression.
func (p *Program) Use() {
	p.ctx.SetActiveProgram(p)
}

// Program compiles source (or returns the cached compilation) and wraps
// it. Compile or link failure is fatal to the caller's filter: the error
// is returned once and nothing is cached.
func (c *Context) Program(source string) (*Program, error) {
	return c.programs.GetOrCreate(source, func() (*Program, error) {
		id, err := c.device.CreateProgram(source)
		if err != nil {
			return nil, fmt.Errorf("render: compile program: %w", err)
		}
		return &Program{ctx: c, id: id}, nil
	})
}

// SetActiveProgram switches the current program only if the cached active
// program disagrees with the request, or the device's actual binding has
// drifted (external code may change the current program behind the
// abstraction's back).
func (c *Context) SetActiveProgram(p *Program) {
	if p == nil {
		return
	}
	if c.activeProgram == p && c.device.CurrentProgram() == p.id {
		return
	}
	c.device.UseProgram(p.id)
	c.activeProgram = p
}

// ActiveProgram returns the program the Context believes is current.
func (c *Context) ActiveProgram() *Program { return c.activeProgram }
