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

// Emitter receives the code the allocator decides to insert. Every callback
// is expected to place the real machine instruction immediately before the
// instruction currently being allocated.
type Emitter interface {
    EmitMove(w *WorkReg, dst int, src int) error
    EmitSwap(a *WorkReg, ap int, b *WorkReg, bp int) error
    EmitLoad(w *WorkReg, phys int) error
    EmitSave(w *WorkReg, phys int) error
}

/* Each on* adapter below first fixes the Assignment so the model and the
 * emitted code can never disagree, then requests the actual instruction.
 * Per physical register they implement the state machine
 *
 *     Free -(assign)-> Bound-Clean -(write)-> Bound-Dirty
 *         Bound-Dirty -(save)-> Bound-Clean
 *         Bound-*     -(unassign/kill)-> Free
 */

// onMoveReg relocates w from src to dst. Moving a register onto itself is a
// complete no-op: no state change, no emission.
func (self *LocalAllocator) onMoveReg(g RegGroup, w WorkID, dst int, src int) error {
    if dst == src {
        return nil
    }
    self.cur.reassign(g, w, dst, src)
    self.clobbered[g] = self.clobbered[g].add(dst)
    return self.emit.EmitMove(self.ctx.WorkById(w), dst, src)
}

// onSwapReg exchanges two bound registers in one instruction. The decision
// layer only requests this for groups with swap support; being asked without
// it is fatal.
func (self *LocalAllocator) onSwapReg(g RegGroup, aw WorkID, ap int, bw WorkID, bp int) error {
    if !self.ctx.arch.HasSwap[g] {
        return ErrSwapUnsupported
    }
    self.cur.swap(g, aw, ap, bw, bp)
    self.clobbered[g] = self.clobbered[g].add(ap).add(bp)
    return self.emit.EmitSwap(self.ctx.WorkById(aw), ap, self.ctx.WorkById(bw), bp)
}

// onLoadReg reloads w from its memory home, leaving it bound and clean.
func (self *LocalAllocator) onLoadReg(g RegGroup, w WorkID, phys int) error {
    self.cur.assign(g, w, phys, false)
    self.clobbered[g] = self.clobbered[g].add(phys)
    return self.emit.EmitLoad(self.ctx.WorkById(w), phys)
}

// onSaveReg persists w to its memory home, leaving it bound and clean.
func (self *LocalAllocator) onSaveReg(g RegGroup, w WorkID, phys int) error {
    self.cur.makeClean(g, w, phys)
    return self.emit.EmitSave(self.ctx.WorkById(w), phys)
}

// onAssignReg binds w without emitting anything; the register content is
// undefined until the current instruction writes it.
func (self *LocalAllocator) onAssignReg(g RegGroup, w WorkID, phys int, dirty bool) error {
    self.cur.assign(g, w, phys, dirty)
    self.clobbered[g] = self.clobbered[g].add(phys)
    return nil
}

// onSpillReg frees a physical register, saving the value first if the
// register is dirty.
func (self *LocalAllocator) onSpillReg(g RegGroup, w WorkID, phys int) error {
    if self.cur.isPhysDirty(g, phys) {
        if err := self.onSaveReg(g, w, phys); err != nil {
            return err
        }
    }
    return self.onKillReg(g, w, phys)
}

func (self *LocalAllocator) onDirtyReg(g RegGroup, w WorkID, phys int) error {
    self.cur.makeDirty(g, w, phys)
    self.clobbered[g] = self.clobbered[g].add(phys)
    return nil
}

// onKillReg drops a binding without saving; the value is either dead or
// already persisted.
func (self *LocalAllocator) onKillReg(g RegGroup, w WorkID, phys int) error {
    self.cur.unassign(g, w, phys)
    return nil
}
