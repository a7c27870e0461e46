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

const (
    _CostFrequency = 1 << 20
    _CostDirtyFlag = _CostFrequency / 4
)

func costByFrequency(freq float32) int {
    return int(freq * float32(_CostFrequency))
}

// spillCost weighs the eviction of a bound work register: hot registers cost
// more, and dirty registers carry the extra save.
func (self *LocalAllocator) spillCost(g RegGroup, w WorkID, phys int) int {
    cost := costByFrequency(self.ctx.WorkById(w).Stats.Freq())
    if self.cur.isPhysDirty(g, phys) {
        cost += _CostDirtyFlag
    }
    return cost
}

// decideOnAssignment picks a physical register for w among the free registers
// of allocable, or PhysNone if every candidate is occupied. Equally free
// candidates resolve to the lowest index so repeated runs make identical
// choices.
func (self *LocalAllocator) decideOnAssignment(g RegGroup, w WorkID, allocable RegMask) int {
    return (allocable &^ self.cur.assigned[g]).lowest()
}

// decideOnUnassignment decides what to do with a work register that must
// vacate its current physical register: either an alternate free register to
// relocate to, or PhysNone meaning it has to be spilled.
func (self *LocalAllocator) decideOnUnassignment(g RegGroup, w WorkID, phys int, allocable RegMask) int {
    return self.decideOnAssignment(g, w, allocable.del(phys))
}

// decideOnSpillFor scans spillable and returns the cheapest occupant to
// evict. Ties break on the dirty flag, then on the lowest physical index;
// the scan order is fixed so the selection is deterministic.
func (self *LocalAllocator) decideOnSpillFor(g RegGroup, w WorkID, spillable RegMask) (int, WorkID, error) {
    bestPhys := PhysNone
    bestWork := WorkNone
    bestCost := 0

    /* scan all spillable candidates in index order */
    spillable.foreach(func(p int) {
        ow := self.cur.workOf(g, p)
        if ow == WorkNone {
            return
        }
        if cost := self.spillCost(g, ow, p); bestPhys == PhysNone || cost < bestCost {
            bestPhys, bestWork, bestCost = p, ow, cost
        }
    })

    /* the mask held no occupied register at all */
    if bestPhys == PhysNone {
        return PhysNone, WorkNone, ErrOutOfRegisters
    } else {
        return bestPhys, bestWork, nil
    }
}
