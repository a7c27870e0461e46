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
    `testing`

    `github.com/cloudwego/jasm/internal/atm/ra`
    `github.com/stretchr/testify/require`
    `golang.org/x/arch/x86/x86asm`
)

func disasm(t *testing.T, code []byte) []x86asm.Inst {
    var ret []x86asm.Inst
    for len(code) != 0 {
        ins, err := x86asm.Decode(code, 64)
        require.NoError(t, err)
        ret = append(ret, ins)
        code = code[ins.Len:]
    }
    return ret
}

func TestCodeGen_GeneralPurpose(t *testing.T) {
    w0 := &ra.WorkReg { Id: 0, Group: ra.Gp, Home: 16 }
    w1 := &ra.WorkReg { Id: 1, Group: ra.Gp, Home: 24 }

    cg := CreateCodeGen()
    defer cg.Free()
    require.NoError(t, cg.EmitMove(w0, 3, 0))
    require.NoError(t, cg.EmitSwap(w0, 0, w1, 1))
    require.NoError(t, cg.EmitLoad(w0, 1))
    require.NoError(t, cg.EmitSave(w1, 2))

    ins := disasm(t, cg.Assemble(0))
    require.Len(t, ins, 4)

    /* movq %rax, %rbx */
    require.Equal(t, x86asm.MOV, ins[0].Op)
    require.Equal(t, x86asm.Reg(x86asm.RBX), ins[0].Args[0])
    require.Equal(t, x86asm.Reg(x86asm.RAX), ins[0].Args[1])

    /* xchgq %rax, %rcx */
    require.Equal(t, x86asm.XCHG, ins[1].Op)

    /* movq 16(%rsp), %rcx */
    require.Equal(t, x86asm.MOV, ins[2].Op)
    require.Equal(t, x86asm.Reg(x86asm.RCX), ins[2].Args[0])
    require.Equal(t, x86asm.Mem { Base: x86asm.RSP, Disp: 16 }, ins[2].Args[1])

    /* movq %rdx, 24(%rsp) */
    require.Equal(t, x86asm.MOV, ins[3].Op)
    require.Equal(t, x86asm.Mem { Base: x86asm.RSP, Disp: 24 }, ins[3].Args[0])
    require.Equal(t, x86asm.Reg(x86asm.RDX), ins[3].Args[1])
}

func TestCodeGen_Vector(t *testing.T) {
    wv := &ra.WorkReg { Id: 2, Group: ra.Vec, Home: 32 }

    cg := CreateCodeGen()
    defer cg.Free()
    require.NoError(t, cg.EmitMove(wv, 1, 0))
    require.NoError(t, cg.EmitSave(wv, 1))
    require.NoError(t, cg.EmitLoad(wv, 0))

    ins := disasm(t, cg.Assemble(0))
    require.Len(t, ins, 3)

    /* the aligned-move flavor depends on the host CPU */
    for _, v := range ins {
        require.Contains(t, []x86asm.Op { x86asm.MOVAPS, x86asm.VMOVAPS }, v.Op)
    }
    require.Equal(t, x86asm.Mem { Base: x86asm.RSP, Disp: 32 }, ins[1].Args[0])
}

func TestCodeGen_SwapRejectsVectors(t *testing.T) {
    wv := &ra.WorkReg { Id: 0, Group: ra.Vec }
    cg := CreateCodeGen()
    defer cg.Free()
    require.Panics(t, func() { _ = cg.EmitSwap(wv, 0, wv, 1) })
}
