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

package pgen

import (
    `github.com/chenzhuoyu/iasm/x86_64`
    `github.com/cloudwego/jasm/internal/atm/ra`
    `github.com/klauspost/cpuid/v2`
)

// CodeGen materializes the allocator's emission callbacks as real amd64
// instructions. Spill slots live in the current frame, addressed off RSP at
// each work register's home offset.
type CodeGen struct {
    avx  bool
    arch *x86_64.Arch
    prog *x86_64.Program
}

func CreateCodeGen() *CodeGen {
    arch := x86_64.CreateArch()
    return &CodeGen {
        avx  : cpuid.CPU.Supports(cpuid.AVX),
        arch : arch,
        prog : arch.CreateProgram(),
    }
}

// Assemble encodes everything emitted so far at the given base address.
func (self *CodeGen) Assemble(pc uintptr) []byte {
    return self.prog.Assemble(pc)
}

// Free releases the instruction buffers back to the assembler pools. The
// CodeGen must not be used afterwards.
func (self *CodeGen) Free() {
    self.prog.Free()
}

func (self *CodeGen) r(p int) x86_64.Register64 {
    return ra.ArchRegs[p]
}

func (self *CodeGen) x(p int) x86_64.XMMRegister {
    return ra.ArchVecRegs[p]
}

func (self *CodeGen) m(w *ra.WorkReg) *x86_64.MemoryOperand {
    return x86_64.Ptr(x86_64.RSP, w.Home)
}

func (self *CodeGen) EmitMove(w *ra.WorkReg, dst int, src int) error {
    switch w.Group {
        case ra.Gp  : self.prog.MOVQ(self.r(src), self.r(dst))
        case ra.Vec : self.vmov(self.x(src), self.x(dst))
        default     : panic("pgen: invalid register group")
    }
    return nil
}

func (self *CodeGen) EmitSwap(a *ra.WorkReg, ap int, b *ra.WorkReg, bp int) error {
    if a.Group != ra.Gp {
        panic("pgen: only general-purpose registers can swap")
    }
    self.prog.XCHGQ(self.r(ap), self.r(bp))
    return nil
}

func (self *CodeGen) EmitLoad(w *ra.WorkReg, phys int) error {
    switch w.Group {
        case ra.Gp  : self.prog.MOVQ(self.m(w), self.r(phys))
        case ra.Vec : self.vmov(self.m(w), self.x(phys))
        default     : panic("pgen: invalid register group")
    }
    return nil
}

func (self *CodeGen) EmitSave(w *ra.WorkReg, phys int) error {
    switch w.Group {
        case ra.Gp  : self.prog.MOVQ(self.r(phys), self.m(w))
        case ra.Vec : self.vmov(self.x(phys), self.m(w))
        default     : panic("pgen: invalid register group")
    }
    return nil
}

func (self *CodeGen) vmov(src interface{}, dst interface{}) {
    if self.avx {
        self.prog.VMOVAPS(src, dst)
    } else {
        self.prog.MOVAPS(src, dst)
    }
}
