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

package ra

import (
    `fmt`
)

var (
    ErrOutOfRegisters  error
    ErrNoAllocableRegs error
    ErrSwapUnsupported error
)

func init() {
    ErrOutOfRegisters  = fmt.Errorf("ra: no free or spillable register satisfies the mask")
    ErrNoAllocableRegs = fmt.Errorf("ra: register group has no allocable registers")
    ErrSwapUnsupported = fmt.Errorf("ra: target does not support register swaps")
}

// LocalAllocator binds work registers to physical registers over one block at
// a time, walking the instruction stream in program order. One instance
// serves one function; it owns the physical register file exclusively for
// the duration of the run, and the first fatal error aborts the whole unit.
type LocalAllocator struct {
    ctx       *Context
    emit      Emitter
    cur       *Assignment
    block     *Block
    available [_N_groups]RegMask
    clobbered [_N_groups]RegMask
}

func CreateLocalAllocator(ctx *Context, emit Emitter) *LocalAllocator {
    return &LocalAllocator {
        ctx  : ctx,
        emit : emit,
    }
}

// Init derives the allocable register masks from the architecture traits.
// A group that exists but is fully reserved leaves nothing to allocate from,
// which no amount of spilling can fix.
func (self *LocalAllocator) Init() error {
    for g := RegGroup(0); g < _N_groups; g++ {
        mask := regMaskCount(self.ctx.arch.RegCount[g]) &^ self.ctx.arch.Reserved[g]
        if self.ctx.arch.RegCount[g] != 0 && mask == 0 {
            return ErrNoAllocableRegs
        }
        self.available[g] = mask
    }
    return nil
}

func (self *LocalAllocator) Block() *Block {
    return self.block
}

func (self *LocalAllocator) SetBlock(bb *Block) {
    self.block = bb
}

// Assignment exposes the live assignment, primarily so the driver can
// compare block states when splitting critical edges.
func (self *LocalAllocator) Assignment() *Assignment {
    return self.cur
}

// Clobbered reports every physical register the allocator has written so
// far, for the prologue/epilogue generator.
func (self *LocalAllocator) Clobbered(g RegGroup) RegMask {
    return self.clobbered[g]
}

// MakeInitialAssignment builds the entry-block assignment: empty except for
// the calling-convention argument registers, which arrive in registers with
// stale memory homes and are therefore born dirty.
func (self *LocalAllocator) MakeInitialAssignment() *Assignment {
    p := newAssignment(self.ctx.arch, self.ctx.numWorkRegs())
    for g := RegGroup(0); g < _N_groups; g++ {
        for _, a := range self.ctx.args[g] {
            p.assign(g, a.Work, a.Phys, true)
        }
    }
    self.cur = p
    return p
}

// ReplaceAssignment installs a previously stored assignment wholesale as the
// current one, used when the driver restores the entry state of the next
// block.
func (self *LocalAllocator) ReplaceAssignment(as *Assignment) {
    self.cur = as.clone()
}

// AllocInst resolves the register constraints of one instruction, emitting
// whatever moves, spills and reloads the bindings require.
func (self *LocalAllocator) AllocInst(ins *Instr) error {
    for g := RegGroup(0); g < _N_groups; g++ {
        if err := self.allocGroup(g, ins.Tied[g]); err != nil {
            return err
        }
    }
    return nil
}

// AllocBranch handles a block-terminating branch to target. With a
// fallthrough continuation the emitted fixup is shared by both outgoing
// paths, so only edge-independent reconciliation is performed; the driver
// resolves any remainder on the specific edge.
func (self *LocalAllocator) AllocBranch(ins *Instr, target *Block, cont *Block) error {
    /* the branch instruction's own register demands come first */
    if ins != nil {
        if err := self.AllocInst(ins); err != nil {
            return err
        }
    }

    /* first arrival: the current assignment becomes the target's entry
     * state, no code needed */
    if target.Entry == nil {
        target.Entry = self.cur.clone()
        return nil
    }

    /* back-edge or merge point: reconcile toward the stored entry */
    return self.SwitchToAssignment(target.Entry, target.LiveIn, cont != nil)
}

func (self *LocalAllocator) allocGroup(g RegGroup, tt []*TiedReg) error {
    if len(tt) == 0 {
        return nil
    }

    /* registers demanded by fixed operands of this instruction */
    var willUse RegMask
    for _, t := range tt {
        if t.UseId != PhysNone && t.OutId != PhysNone && t.UseId != t.OutId {
            panic(fmt.Sprintf("ra: conflicting fixed ids on %s", t))
        }
        if t.UseId != PhysNone { willUse = willUse.add(t.UseId) }
        if t.OutId != PhysNone { willUse = willUse.add(t.OutId) }
    }

    /* Step 1: satisfy the fixed operands */
    for _, t := range tt {
        if want := tiedFixed(t); want != PhysNone {
            if err := self.allocFixed(g, t, want, tt, willUse); err != nil {
                return err
            }
        }
    }

    /* Step 2: bind or relocate everything else */
    for _, t := range tt {
        if tiedFixed(t) == PhysNone {
            if err := self.allocTied(g, t, tt, &willUse); err != nil {
                return err
            }
        }
    }

    /* Step 3: writes dirty their registers */
    for _, t := range tt {
        if t.Flags.has(TiedOut) {
            if err := self.onDirtyReg(g, t.Work, self.cur.physOf(g, t.Work)); err != nil {
                return err
            }
        }
    }

    /* Step 4: release killed registers; values are retained across the
     * instruction only if still live afterwards */
    for _, t := range tt {
        if t.Flags.has(TiedKill) {
            if p := self.cur.physOf(g, t.Work); p != PhysNone {
                if err := self.onKillReg(g, t.Work, p); err != nil {
                    return err
                }
            }
        }
    }
    return nil
}

// allocFixed places t.Work into the physical register its fixed id demands,
// relocating or spilling the current occupant first.
func (self *LocalAllocator) allocFixed(g RegGroup, t *TiedReg, want int, tt []*TiedReg, willUse RegMask) error {
    cur := self.cur.physOf(g, t.Work)
    if cur == want {
        return nil
    }

    /* evict the occupant, if any */
    if occ := self.cur.workOf(g, want); occ != WorkNone {
        /* mutual fixed demand forms a permutation cycle: one swap resolves
         * it, or a temporary spill when the group cannot swap. Never resolved
         * by recursive relocation. */
        if cur != PhysNone && tiedFixedOf(tt, occ) == cur {
            if self.ctx.arch.HasSwap[g] {
                return self.onSwapReg(g, t.Work, cur, occ, want)
            }
            if err := self.onSpillReg(g, occ, want); err != nil {
                return err
            }
            if err := self.onMoveReg(g, t.Work, want, cur); err != nil {
                return err
            }
            return self.onLoadReg(g, occ, cur)
        }

        /* plain occupant: relocate when a register is free, spill otherwise */
        avail := self.available[g] &^ willUse
        if alt := self.decideOnUnassignment(g, occ, want, avail); alt != PhysNone {
            if err := self.onMoveReg(g, occ, alt, want); err != nil {
                return err
            }
        } else {
            if err := self.onSpillReg(g, occ, want); err != nil {
                return err
            }
        }
    }

    /* bind to the required register */
    if cur != PhysNone {
        return self.onMoveReg(g, t.Work, want, cur)
    } else if t.Flags.has(TiedUse) {
        return self.onLoadReg(g, t.Work, want)
    } else {
        return self.onAssignReg(g, t.Work, want, false)
    }
}

// allocTied binds a tied register with no fixed id, keeping its current
// register when the allowable mask permits, otherwise picking a free one or
// spilling the cheapest occupant to make room.
func (self *LocalAllocator) allocTied(g RegGroup, t *TiedReg, tt []*TiedReg, willUse *RegMask) error {
    cur := self.cur.physOf(g, t.Work)

    /* already in an acceptable register */
    if cur != PhysNone && t.Allowed.has(cur) && !willUse.has(cur) {
        *willUse = willUse.add(cur)
        return nil
    }

    /* pick among the free registers of the mask */
    allocable := t.Allowed & self.available[g] &^ *willUse
    pick := self.decideOnAssignment(g, t.Work, allocable)

    /* none free: spill the least-cost occupant, excluding registers bound
     * to this very instruction's operands */
    if pick == PhysNone {
        spillable := allocable & self.cur.assigned[g]
        for _, u := range tt {
            if p := self.cur.physOf(g, u.Work); p != PhysNone {
                spillable = spillable.del(p)
            }
        }
        p, ow, err := self.decideOnSpillFor(g, t.Work, spillable)
        if err != nil {
            return err
        }
        if err = self.onSpillReg(g, ow, p); err != nil {
            return err
        }
        pick = p
    }

    /* move, reload, or bind for writing */
    var err error
    if cur != PhysNone {
        err = self.onMoveReg(g, t.Work, pick, cur)
    } else if t.Flags.has(TiedUse) {
        err = self.onLoadReg(g, t.Work, pick)
    } else {
        err = self.onAssignReg(g, t.Work, pick, false)
    }
    if err != nil {
        return err
    }
    *willUse = willUse.add(pick)
    return nil
}

func tiedFixed(t *TiedReg) int {
    if t.UseId != PhysNone {
        return t.UseId
    } else {
        return t.OutId
    }
}

func tiedFixedOf(tt []*TiedReg, w WorkID) int {
    for _, t := range tt {
        if t.Work == w {
            return tiedFixed(t)
        }
    }
    return PhysNone
}
