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

// SwitchToAssignment emits the minimal move/swap/spill/load sequence that
// transforms the current assignment into one satisfying dst for every
// register in liveIn. Re-invoking it from the reached state emits nothing.
//
// In try mode only code that is valid regardless of which branch edge
// executes is emitted, and an exact final match is not required; this is used
// before conditional branches whose fallthrough and taken paths diverge.
func (self *LocalAllocator) SwitchToAssignment(dst *Assignment, liveIn WorkSet, tryMode bool) error {
    for g := RegGroup(0); g < _N_groups; g++ {
        if err := self.switchGroup(g, dst, liveIn, tryMode); err != nil {
            return err
        }
    }
    return nil
}

func (self *LocalAllocator) switchGroup(g RegGroup, dst *Assignment, liveIn WorkSet, tryMode bool) error {
    lv := liveIn.toslice()

    /* Step 1: drop registers with no place in the target; not saved unless
     * dirty. Skipped in try mode, the other edge may still rely on them. */
    if !tryMode {
        for p := 0; p < len(self.cur.physToWork[g]); p++ {
            w := self.cur.workOf(g, p)
            if w == WorkNone {
                continue
            }
            if !liveIn.Has(w) || dst.physOf(g, w) == PhysNone {
                if err := self.onSpillReg(g, w, p); err != nil {
                    return err
                }
            }
        }
    }

    /* Step 2: place every live-in register at its target. Each round either
     * makes progress or hits a rotation cycle, which is broken by a swap if
     * the group supports one, or by a temporary spill otherwise. The spill
     * loses nothing: a clean register's home is current, a dirty one is
     * saved first. */
    for {
        moved := false
        pending := 0

        for _, w := range lv {
            if self.ctx.WorkById(w).Group != g {
                continue
            }

            /* needs to be placed at all? */
            dp := dst.physOf(g, w)
            if dp == PhysNone {
                continue
            }
            cp := self.cur.physOf(g, w)
            if cp == dp {
                continue
            }

            /* free destination: plain move or reload */
            occ := self.cur.workOf(g, dp)
            if occ == WorkNone {
                var err error
                if cp != PhysNone {
                    err = self.onMoveReg(g, w, dp, cp)
                } else {
                    err = self.onLoadReg(g, w, dp)
                }
                if err != nil {
                    return err
                }
                moved = true
                continue
            }

            /* mutual targets resolve as one swap instead of two moves */
            if cp != PhysNone && dst.physOf(g, occ) == cp && self.ctx.arch.HasSwap[g] {
                if err := self.onSwapReg(g, w, cp, occ, dp); err != nil {
                    return err
                }
                moved = true
                continue
            }

            /* occupied by a register that has yet to move away */
            pending++
        }

        /* all placed */
        if pending == 0 {
            break
        }

        /* somebody moved, the pending ones get another chance */
        if moved {
            continue
        }

        /* no progress. In try mode the divergent part is fixed up on the
         * specific edge instead; in exact mode break one cycle by spilling
         * an occupant, the next round reloads it at its own target. */
        if tryMode {
            break
        }
        if err := self.breakCycle(g, dst, lv); err != nil {
            return err
        }
    }

    /* Step 3: where the target expects a clean register, dirty content must
     * be persisted before the edge is taken */
    if !tryMode {
        for _, w := range lv {
            if self.ctx.WorkById(w).Group != g {
                continue
            }
            if p := self.cur.physOf(g, w); p != PhysNone {
                if self.cur.isPhysDirty(g, p) && !dst.isPhysDirty(g, p) {
                    if err := self.onSaveReg(g, w, p); err != nil {
                        return err
                    }
                }
            }
        }
    }
    return nil
}

// breakCycle evicts the occupant of the first blocked destination so the
// placement loop can make progress. Bounded: every call frees exactly one
// contested register and the occupant reloads directly at its final target.
func (self *LocalAllocator) breakCycle(g RegGroup, dst *Assignment, lv []WorkID) error {
    for _, w := range lv {
        if self.ctx.WorkById(w).Group != g {
            continue
        }
        dp := dst.physOf(g, w)
        if dp == PhysNone || self.cur.physOf(g, w) == dp {
            continue
        }
        if occ := self.cur.workOf(g, dp); occ != WorkNone {
            return self.onSpillReg(g, occ, dp)
        }
    }
    panic("ra: switch: no cycle to break")
}
