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

// ArchTraits describes the physical register file of the target to the
// allocator: how many registers each group has, which of them are reserved
// by the runtime, and whether the group supports a register swap.
type ArchTraits struct {
    RegCount [_N_groups]int
    Reserved [_N_groups]RegMask
    HasSwap  [_N_groups]bool
}

// ArgReg pre-binds a calling-convention argument to its physical register at
// function entry.
type ArgReg struct {
    Work WorkID
    Phys int
}

// Context is the read-only handle through which the allocator reaches the
// surrounding pass: architecture traits, work-register lookup, and the entry
// argument bindings. Nothing in here is mutated during an allocation run.
type Context struct {
    arch  ArchTraits
    args  [_N_groups][]ArgReg
    works []*WorkReg
}

func CreateContext(arch ArchTraits, works []*WorkReg) *Context {
    for i, w := range works {
        if w.Id != WorkID(i) {
            panic(fmt.Sprintf("ra: context: work register %s at slot %d", w.Id, i))
        }
    }
    return &Context {
        arch  : arch,
        works : works,
    }
}

// AddArg registers a calling-convention argument binding used by
// MakeInitialAssignment.
func (self *Context) AddArg(g RegGroup, w WorkID, phys int) {
    self.args[g] = append(self.args[g], ArgReg { Work: w, Phys: phys })
}

func (self *Context) WorkById(id WorkID) *WorkReg {
    if int(id) >= len(self.works) {
        panic(fmt.Sprintf("ra: context: no such work register: %s", id))
    } else {
        return self.works[id]
    }
}

func (self *Context) numWorkRegs() int {
    return len(self.works)
}
