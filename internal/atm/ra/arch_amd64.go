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
    `github.com/chenzhuoyu/iasm/x86_64`
    `github.com/klauspost/cpuid/v2`
)

var ArchRegs = [...]x86_64.Register64 {
    x86_64.RAX,
    x86_64.RCX,
    x86_64.RDX,
    x86_64.RBX,
    x86_64.RSP,
    x86_64.RBP,
    x86_64.RSI,
    x86_64.RDI,
    x86_64.R8,
    x86_64.R9,
    x86_64.R10,
    x86_64.R11,
    x86_64.R12,
    x86_64.R13,
    x86_64.R14,
    x86_64.R15,
}

var ArchVecRegs = [...]x86_64.XMMRegister {
    x86_64.XMM0,  x86_64.XMM1,  x86_64.XMM2,  x86_64.XMM3,
    x86_64.XMM4,  x86_64.XMM5,  x86_64.XMM6,  x86_64.XMM7,
    x86_64.XMM8,  x86_64.XMM9,  x86_64.XMM10, x86_64.XMM11,
    x86_64.XMM12, x86_64.XMM13, x86_64.XMM14, x86_64.XMM15,
    x86_64.XMM16, x86_64.XMM17, x86_64.XMM18, x86_64.XMM19,
    x86_64.XMM20, x86_64.XMM21, x86_64.XMM22, x86_64.XMM23,
    x86_64.XMM24, x86_64.XMM25, x86_64.XMM26, x86_64.XMM27,
    x86_64.XMM28, x86_64.XMM29, x86_64.XMM30, x86_64.XMM31,
}

var ArchRegNames = map[x86_64.Register64]string {
    x86_64.RAX : "rax",
    x86_64.RCX : "rcx",
    x86_64.RDX : "rdx",
    x86_64.RBX : "rbx",
    x86_64.RSP : "rsp",
    x86_64.RBP : "rbp",
    x86_64.RSI : "rsi",
    x86_64.RDI : "rdi",
    x86_64.R8  : "r8",
    x86_64.R9  : "r9",
    x86_64.R10 : "r10",
    x86_64.R11 : "r11",
    x86_64.R12 : "r12",
    x86_64.R13 : "r13",
    x86_64.R14 : "r14",
    x86_64.R15 : "r15",
}

const (
    _RSP = 4
    _RBP = 5
)

// ArchTraitsAMD64 builds the amd64 register file description. RSP and RBP
// are reserved for the frame; the upper 16 vector registers are only
// allocable when the CPU can actually encode them.
func ArchTraitsAMD64() ArchTraits {
    nvec := 16
    if cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512VL) {
        nvec = len(ArchVecRegs)
    }
    return ArchTraits {
        RegCount : [_N_groups]int     { Gp: len(ArchRegs), Vec: nvec },
        Reserved : [_N_groups]RegMask { Gp: regMaskOf(_RSP) | regMaskOf(_RBP) },
        HasSwap  : [_N_groups]bool    { Gp: true },
    }
}
