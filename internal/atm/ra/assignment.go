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
    `strings`
)

// Assignment is the bidirectional work-to-physical register binding at one
// point in the program, with a per-physical-register dirty flag. The two maps
// are redundant on purpose so both directions are O(1); every mutator keeps
// them in lockstep, and a binding can never be observed half-made.
//
// All mutators treat inconsistent arguments as programmer errors and panic:
// callers are required to check the current binding before rebinding.
type Assignment struct {
    physToWork [_N_groups][]WorkID
    workToPhys [_N_groups][]int
    assigned   [_N_groups]RegMask
    dirty      [_N_groups]RegMask
}

func newAssignment(arch ArchTraits, nwork int) *Assignment {
    p := new(Assignment)

    /* phys-to-work tables, per group */
    for g := RegGroup(0); g < _N_groups; g++ {
        p.physToWork[g] = make([]WorkID, arch.RegCount[g])
        for i := range p.physToWork[g] {
            p.physToWork[g][i] = WorkNone
        }
    }

    /* work-to-phys tables, shared across groups */
    for g := RegGroup(0); g < _N_groups; g++ {
        p.workToPhys[g] = make([]int, nwork)
        for i := range p.workToPhys[g] {
            p.workToPhys[g][i] = PhysNone
        }
    }
    return p
}

func (self *Assignment) workOf(g RegGroup, phys int) WorkID {
    return self.physToWork[g][phys]
}

func (self *Assignment) physOf(g RegGroup, w WorkID) int {
    return self.workToPhys[g][w]
}

func (self *Assignment) isPhysAssigned(g RegGroup, phys int) bool {
    return self.assigned[g].has(phys)
}

func (self *Assignment) isPhysDirty(g RegGroup, phys int) bool {
    return self.dirty[g].has(phys)
}

func (self *Assignment) assign(g RegGroup, w WorkID, phys int, dirty bool) {
    if self.physToWork[g][phys] != WorkNone {
        panic(fmt.Sprintf("ra: assign: r%d is already bound to %s", phys, self.physToWork[g][phys]))
    }
    if self.workToPhys[g][w] != PhysNone {
        panic(fmt.Sprintf("ra: assign: %s is already bound to r%d", w, self.workToPhys[g][w]))
    }

    /* update both maps at once */
    self.physToWork[g][phys] = w
    self.workToPhys[g][w] = phys
    self.assigned[g] = self.assigned[g].add(phys)

    /* initial dirty state */
    if dirty {
        self.dirty[g] = self.dirty[g].add(phys)
    }
}

func (self *Assignment) unassign(g RegGroup, w WorkID, phys int) {
    self.check(g, w, phys)
    self.physToWork[g][phys] = WorkNone
    self.workToPhys[g][w] = PhysNone
    self.assigned[g] = self.assigned[g].del(phys)
    self.dirty[g] = self.dirty[g].del(phys)
}

// reassign relocates an existing binding from src to dst, carrying the dirty
// flag along. dst must be free.
func (self *Assignment) reassign(g RegGroup, w WorkID, dst int, src int) {
    self.check(g, w, src)
    if self.physToWork[g][dst] != WorkNone {
        panic(fmt.Sprintf("ra: reassign: r%d is already bound to %s", dst, self.physToWork[g][dst]))
    }

    /* carry the dirty bit over */
    dirty := self.dirty[g].has(src)
    self.unassign(g, w, src)
    self.assign(g, w, dst, dirty)
}

// swap exchanges the bindings of two physical registers in one group,
// including their dirty flags.
func (self *Assignment) swap(g RegGroup, aw WorkID, ap int, bw WorkID, bp int) {
    self.check(g, aw, ap)
    self.check(g, bw, bp)

    /* exchange the two maps */
    self.physToWork[g][ap], self.physToWork[g][bp] = bw, aw
    self.workToPhys[g][aw], self.workToPhys[g][bw] = bp, ap

    /* exchange the dirty bits */
    ad, bd := self.dirty[g].has(ap), self.dirty[g].has(bp)
    self.dirty[g] = self.dirty[g].del(ap).del(bp)
    if bd { self.dirty[g] = self.dirty[g].add(ap) }
    if ad { self.dirty[g] = self.dirty[g].add(bp) }
}

func (self *Assignment) makeDirty(g RegGroup, w WorkID, phys int) {
    self.check(g, w, phys)
    self.dirty[g] = self.dirty[g].add(phys)
}

func (self *Assignment) makeClean(g RegGroup, w WorkID, phys int) {
    self.check(g, w, phys)
    self.dirty[g] = self.dirty[g].del(phys)
}

func (self *Assignment) check(g RegGroup, w WorkID, phys int) {
    if self.physToWork[g][phys] != w || self.workToPhys[g][w] != phys {
        panic(fmt.Sprintf("ra: inconsistent binding: %s / r%d", w, phys))
    }
}

func (self *Assignment) clone() *Assignment {
    p := new(Assignment)
    for g := RegGroup(0); g < _N_groups; g++ {
        p.physToWork[g] = append([]WorkID(nil), self.physToWork[g]...)
        p.workToPhys[g] = append([]int(nil), self.workToPhys[g]...)
    }
    p.assigned = self.assigned
    p.dirty = self.dirty
    return p
}

// Equals reports whether the two assignments bind every work register to the
// same physical register. Dirty flags are not part of the comparison, they
// track memory-home freshness rather than placement.
func (self *Assignment) Equals(other *Assignment) bool {
    for g := RegGroup(0); g < _N_groups; g++ {
        if len(self.physToWork[g]) != len(other.physToWork[g]) {
            return false
        }
        for p, w := range self.physToWork[g] {
            if other.physToWork[g][p] != w {
                return false
            }
        }
    }
    return true
}

// EqualsLive reports whether the two assignments agree on the placement of
// every register in live.
func (self *Assignment) EqualsLive(other *Assignment, live WorkSet) bool {
    for _, w := range live.toslice() {
        for g := RegGroup(0); g < _N_groups; g++ {
            if int(w) < len(self.workToPhys[g]) && self.workToPhys[g][w] != other.workToPhys[g][w] {
                return false
            }
        }
    }
    return true
}

// verify cross-checks the two maps. A mismatch is an internal defect, never
// an input error.
func (self *Assignment) verify() {
    for g := RegGroup(0); g < _N_groups; g++ {
        for p, w := range self.physToWork[g] {
            if w != WorkNone && self.workToPhys[g][w] != p {
                panic(fmt.Sprintf("ra: map mismatch: r%d -> %s -> r%d", p, w, self.workToPhys[g][w]))
            }
            if w == WorkNone && self.assigned[g].has(p) {
                panic(fmt.Sprintf("ra: map mismatch: r%d marked assigned but free", p))
            }
        }
        for w, p := range self.workToPhys[g] {
            if p != PhysNone && self.physToWork[g][p] != WorkID(w) {
                panic(fmt.Sprintf("ra: map mismatch: w%d -> r%d -> %s", w, p, self.physToWork[g][p]))
            }
        }
    }
}

func (self *Assignment) String() string {
    rs := make([]string, 0, 16)

    /* dump every bound register of every group */
    for g := RegGroup(0); g < _N_groups; g++ {
        for p, w := range self.physToWork[g] {
            if w != WorkNone {
                if self.dirty[g].has(p) {
                    rs = append(rs, fmt.Sprintf("%s.r%d=%s*", g, p, w))
                } else {
                    rs = append(rs, fmt.Sprintf("%s.r%d=%s", g, p, w))
                }
            }
        }
    }

    /* join them together */
    return fmt.Sprintf(
        "{%s}",
        strings.Join(rs, ", "),
    )
}
