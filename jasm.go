/*
 * Copyright 2023 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package jasm exposes the register allocation core of the JIT assembler
// backend. The driver builds a Context from the architecture traits and the
// function's work registers, then walks the blocks of the function in
// dominance order, feeding every instruction and branch to a LocalAllocator.
package jasm

import (
    `github.com/cloudwego/jasm/internal/atm/ra`
)

type (
    ArchTraits     = ra.ArchTraits
    Assignment     = ra.Assignment
    Block          = ra.Block
    Context        = ra.Context
    Emitter        = ra.Emitter
    Instr          = ra.Instr
    LiveStats      = ra.LiveStats
    LocalAllocator = ra.LocalAllocator
    RegGroup       = ra.RegGroup
    RegMask        = ra.RegMask
    TiedFlags      = ra.TiedFlags
    TiedReg        = ra.TiedReg
    WorkID         = ra.WorkID
    WorkReg        = ra.WorkReg
    WorkSet        = ra.WorkSet
)

const (
    Gp  = ra.Gp
    Vec = ra.Vec
)

const (
    TiedUse  = ra.TiedUse
    TiedOut  = ra.TiedOut
    TiedKill = ra.TiedKill
)

const (
    PhysNone = ra.PhysNone
    WorkNone = ra.WorkNone
)

var (
    ErrOutOfRegisters  = ra.ErrOutOfRegisters
    ErrNoAllocableRegs = ra.ErrNoAllocableRegs
    ErrSwapUnsupported = ra.ErrSwapUnsupported
)

// CreateContext builds the read-only context handle shared by one allocation
// run. The works slice must be indexed by WorkID.
func CreateContext(arch ArchTraits, works []*WorkReg) *Context {
    return ra.CreateContext(arch, works)
}

// CreateLocalAllocator builds an allocator over ctx that reports its
// decisions to emit.
func CreateLocalAllocator(ctx *Context, emit Emitter) *LocalAllocator {
    return ra.CreateLocalAllocator(ctx, emit)
}

// Tied constructs an unconstrained TiedReg over the given allowable mask.
func Tied(w WorkID, fv TiedFlags, allowed RegMask) *TiedReg {
    return ra.Tied(w, fv, allowed)
}

// StatsFromUses derives the live-range frequency statistic from raw
// per-block use samples.
func StatsFromUses(uses []float64, spans []float64) LiveStats {
    return ra.StatsFromUses(uses, spans)
}
