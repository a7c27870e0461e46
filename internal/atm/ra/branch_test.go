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
    `testing`

    `github.com/oleiade/lane`
    `github.com/stretchr/testify/require`
)

func TestAllocBranch_ForwardPropagation(t *testing.T) {
    lr, em := allocWithTrace(testWorks(2))
    lr.cur.assign(Gp, 0, 3, true)

    /* first arrival: the state is stored, nothing is emitted */
    succ := &Block { Id: 1, LiveIn: workset(0) }
    require.NoError(t, lr.AllocBranch(nil, succ, nil))
    require.Empty(t, em.take())
    require.NotNil(t, succ.Entry)
    require.Equal(t, 3, succ.Entry.physOf(Gp, 0))

    /* the stored entry is a snapshot, not an alias */
    lr.cur.makeClean(Gp, 0, 3)
    require.True(t, succ.Entry.isPhysDirty(Gp, 3))
}

func TestAllocBranch_BackEdgeReconciles(t *testing.T) {
    lr, em := allocWithTrace(testWorks(2))
    lr.cur.assign(Gp, 0, 0, false)
    lr.cur.assign(Gp, 1, 1, false)

    /* loop header fixed with the two registers exchanged */
    head := &Block { Id: 1, LiveIn: workset(0, 1) }
    head.Entry = lr.cur.clone()
    head.Entry.swap(Gp, 0, 0, 1, 1)

    /* unconditional back-edge: exactly one swap, not two moves */
    require.NoError(t, lr.AllocBranch(nil, head, nil))
    require.Equal(t, []string { "xchg w0:r0, w1:r1" }, em.take())
    require.True(t, lr.cur.EqualsLive(head.Entry, head.LiveIn))
}

func TestAllocBranch_ConditionalUsesTryMode(t *testing.T) {
    lr, em := allocWithTrace(testWorks(3))
    lr.cur.assign(Gp, 0, 0, false)
    lr.cur.assign(Gp, 2, 1, false)

    /* the taken path wants w0 where w2 currently sits; with a live
     * fallthrough the eviction must not happen before the branch */
    taken := &Block { Id: 2, LiveIn: workset(0) }
    taken.Entry = newAssignment(testArch(), 3)
    taken.Entry.assign(Gp, 0, 1, false)
    cont := &Block { Id: 3, LiveIn: workset(0, 2) }

    require.NoError(t, lr.AllocBranch(nil, taken, cont))
    require.Empty(t, em.take())
    require.Equal(t, 0, lr.cur.physOf(Gp, 0))
    require.Equal(t, 1, lr.cur.physOf(Gp, 2))
}

// walk a diamond control-flow graph the way the driver would, in a
// breadth-first block order, and check that every merge point reconciles to
// a single consistent entry state
func TestAllocBranch_DiamondMerge(t *testing.T) {
    works := testWorks(3, 0.5, 0.5, 0.5)
    lr, _ := allocWithTrace(works)

    all := regMaskCount(8)
    entry := &Block {
        Id     : 0,
        LiveIn : workset(),
        Ins    : []*Instr {
            new(Instr).addTied(Gp, Tied(0, TiedOut, all)),
            new(Instr).addTied(Gp, Tied(1, TiedOut, all)),
        },
    }
    left := &Block {
        Id     : 1,
        LiveIn : workset(0, 1),
        Ins    : []*Instr {
            new(Instr).addTied(Gp, Tied(0, TiedUse | TiedOut, all)),
        },
    }
    right := &Block {
        Id     : 2,
        LiveIn : workset(0, 1),
        Ins    : []*Instr {
            new(Instr).addTied(Gp, Tied(1, TiedUse | TiedOut, all)),
        },
    }
    merge := &Block {
        Id     : 3,
        LiveIn : workset(0, 1),
        Ins    : []*Instr {
            new(Instr).addTied(
                Gp,
                Tied(0, TiedUse | TiedKill, all),
                Tied(1, TiedUse | TiedKill, all),
                Tied(2, TiedOut, all),
            ),
        },
    }

    /* successor edges, in driver order */
    succ := map[int][]*Block {
        0: { left, right },
        1: { merge },
        2: { merge },
        3: {},
    }

    entry.Entry = lr.MakeInitialAssignment().clone()

    /* breadth-first walk, the way the pass driver sequences blocks */
    q := lane.NewQueue()
    vis := make(map[int]bool)
    for q.Enqueue(entry); !q.Empty(); {
        bb := q.Dequeue().(*Block)
        if vis[bb.Id] {
            continue
        }
        vis[bb.Id] = true

        /* restore the entry state and walk the instructions */
        lr.SetBlock(bb)
        lr.ReplaceAssignment(bb.Entry)
        for _, ins := range bb.Ins {
            require.NoError(t, lr.AllocInst(ins))
            lr.cur.verify()
        }

        /* terminating branches */
        for _, to := range succ[bb.Id] {
            require.NoError(t, lr.AllocBranch(nil, to, nil))
            require.True(t, lr.cur.EqualsLive(to.Entry, to.LiveIn))
            q.Enqueue(to)
        }
    }

    /* every block was processed and the merge point ended with a single
     * consistent assignment */
    require.Len(t, vis, 4)
    merge.Entry.verify()
    require.NotEqual(t, PhysNone, merge.Entry.physOf(Gp, 0))
    require.NotEqual(t, PhysNone, merge.Entry.physOf(Gp, 1))
}
