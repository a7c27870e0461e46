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
    `math/bits`
    `strings`
)

// RegGroup identifies a class of physical registers that allocate
// independently of every other class.
type RegGroup uint8

const (
    Gp RegGroup = iota
    Vec
    _N_groups
)

func (self RegGroup) String() string {
    switch self {
        case Gp  : return "gp"
        case Vec : return "vec"
        default  : panic("ra: invalid register group")
    }
}

// PhysNone marks the absence of a physical register binding.
const PhysNone = -1

// RegMask is a bit set over the physical register indices of one group.
type RegMask uint32

func regMaskOf(n int) RegMask {
    return RegMask(1) << n
}

func regMaskCount(n int) RegMask {
    return (RegMask(1) << n) - 1
}

func (self RegMask) has(n int) bool {
    return self & regMaskOf(n) != 0
}

func (self RegMask) add(n int) RegMask {
    return self | regMaskOf(n)
}

func (self RegMask) del(n int) RegMask {
    return self &^ regMaskOf(n)
}

func (self RegMask) count() int {
    return bits.OnesCount32(uint32(self))
}

func (self RegMask) lowest() int {
    if self == 0 {
        return PhysNone
    } else {
        return bits.TrailingZeros32(uint32(self))
    }
}

// foreach visits every set bit in ascending index order.
func (self RegMask) foreach(fn func(n int)) {
    for m := self; m != 0; m &= m - 1 {
        fn(bits.TrailingZeros32(uint32(m)))
    }
}

func (self RegMask) String() string {
    nb := self.count()
    rs := make([]string, 0, nb)

    /* convert every bit index */
    self.foreach(func(n int) {
        rs = append(rs, fmt.Sprintf("r%d", n))
    })

    /* join them together */
    return fmt.Sprintf(
        "{%s}",
        strings.Join(rs, ", "),
    )
}
