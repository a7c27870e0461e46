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
    `math`
    `sort`
    `strings`

    `gonum.org/v1/gonum/stat`
)

// WorkID identifies one work register, a virtual register that carries a
// single program value across its live range.
type WorkID uint32

// WorkNone marks the absence of a work register.
const WorkNone WorkID = math.MaxUint32

func (self WorkID) String() string {
    if self == WorkNone {
        return "w?"
    } else {
        return fmt.Sprintf("w%d", uint32(self))
    }
}

// LiveStats is the use-frequency statistic of a work register's live range,
// computed upstream by the liveness pass and consumed here for spill-cost
// weighting.
type LiveStats struct {
    freq float32
}

func (self LiveStats) Freq() float32 {
    return self.freq
}

// StatsFromUses derives LiveStats from raw per-block use samples: uses[i] is
// the number of references in block i, spans[i] the instruction count of that
// block. The frequency is the span-weighted mean use density.
func StatsFromUses(uses []float64, spans []float64) LiveStats {
    if len(uses) != len(spans) {
        panic("ra: stats: mismatched sample vectors")
    }

    /* no samples at all */
    if len(uses) == 0 {
        return LiveStats{}
    }

    /* densities per block */
    ds := make([]float64, len(uses))
    for i, u := range uses {
        if spans[i] <= 0 {
            panic("ra: stats: non-positive block span")
        } else {
            ds[i] = u / spans[i]
        }
    }

    /* span-weighted mean density */
    return LiveStats {
        freq: float32(stat.Mean(ds, spans)),
    }
}

// WorkReg describes one work register to the allocator. The surrounding pass
// owns these; the allocator only reads them.
type WorkReg struct {
    Id    WorkID
    Group RegGroup
    Name  string
    Home  int32
    Stats LiveStats
}

func (self *WorkReg) String() string {
    if self.Name != "" {
        return self.Name
    } else {
        return self.Id.String()
    }
}

type TiedFlags uint8

const (
    TiedUse TiedFlags = 1 << iota       // the value is read by the instruction
    TiedOut                             // the value is written by the instruction
    TiedKill                            // the value is dead after the instruction
)

func (self TiedFlags) has(fv TiedFlags) bool {
    return self & fv != 0
}

// TiedReg binds a work register to one instruction's operand constraints.
type TiedReg struct {
    Work    WorkID
    Flags   TiedFlags
    Allowed RegMask
    UseId   int
    OutId   int
}

// Tied constructs an unconstrained TiedReg over the given allowable mask.
func Tied(w WorkID, fv TiedFlags, allowed RegMask) *TiedReg {
    return &TiedReg {
        Work    : w,
        Flags   : fv,
        Allowed : allowed,
        UseId   : PhysNone,
        OutId   : PhysNone,
    }
}

func (self *TiedReg) String() string {
    fs := make([]string, 0, 5)
    if self.Flags.has(TiedUse)  { fs = append(fs, "use") }
    if self.Flags.has(TiedOut)  { fs = append(fs, "out") }
    if self.Flags.has(TiedKill) { fs = append(fs, "kill") }
    if self.UseId != PhysNone   { fs = append(fs, fmt.Sprintf("use=r%d", self.UseId)) }
    if self.OutId != PhysNone   { fs = append(fs, fmt.Sprintf("out=r%d", self.OutId)) }
    return fmt.Sprintf("%s[%s]", self.Work, strings.Join(fs, ","))
}

// Instr is one position in a block's instruction stream, carrying the tied
// registers extracted for it, grouped by register class.
type Instr struct {
    Name string
    Tied [_N_groups][]*TiedReg
}

func (self *Instr) addTied(g RegGroup, tt ...*TiedReg) *Instr {
    self.Tied[g] = append(self.Tied[g], tt...)
    return self
}

// WorkSet is a set of work registers, used for block live-in sets.
type WorkSet map[WorkID]struct{}

func workset(ww ...WorkID) (ws WorkSet) {
    ws = make(WorkSet, len(ww))
    for _, w := range ww { ws.Add(w) }
    return
}

func (self WorkSet) Add(w WorkID) {
    self[w] = struct{}{}
}

func (self WorkSet) Has(w WorkID) bool {
    _, ok := self[w]
    return ok
}

func (self WorkSet) toslice() []WorkID {
    nb := len(self)
    ww := make([]WorkID, 0, nb)

    /* extract all work registers */
    for w := range self {
        ww = append(ww, w)
    }

    /* sort by identity */
    sort.Slice(ww, func(i int, j int) bool { return ww[i] < ww[j] })
    return ww
}

func (self WorkSet) String() string {
    nb := len(self)
    ws := make([]string, 0, nb)

    /* convert every work register */
    for _, w := range self.toslice() {
        ws = append(ws, w.String())
    }

    /* join them together */
    return fmt.Sprintf(
        "{%s}",
        strings.Join(ws, ", "),
    )
}

// Block is an ordered instruction sequence with the liveness metadata the
// allocator needs. Entry is the register assignment at block entry, stored
// the first time a predecessor branches here and consumed when this block is
// processed or when another predecessor reconciles toward it.
type Block struct {
    Id     int
    Ins    []*Instr
    LiveIn WorkSet
    Entry  *Assignment
}
