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

    `github.com/stretchr/testify/require`
)

func TestStatsFromUses_WeightedMean(t *testing.T) {
    s := StatsFromUses([]float64 { 2, 4 }, []float64 { 4, 8 })
    require.InDelta(t, 0.5, s.Freq(), 1e-6)

    /* longer blocks weigh heavier: (0.5 * 2 + 2.0 * 3) / 5 */
    s = StatsFromUses([]float64 { 1, 6 }, []float64 { 2, 3 })
    require.InDelta(t, 1.4, s.Freq(), 1e-6)
}

func TestStatsFromUses_Degenerate(t *testing.T) {
    require.Zero(t, StatsFromUses(nil, nil).Freq())
    require.Panics(t, func() { StatsFromUses([]float64 { 1 }, nil) })
    require.Panics(t, func() { StatsFromUses([]float64 { 1 }, []float64 { 0 }) })
}

func TestTiedReg_String(t *testing.T) {
    p := Tied(3, TiedUse | TiedKill, regMaskCount(4))
    require.Equal(t, "w3[use,kill]", p.String())
    p.OutId = 5
    require.Equal(t, "w3[use,kill,out=r5]", p.String())
}

func TestWorkSet_SortedDump(t *testing.T) {
    ws := workset(7, 1, 4)
    require.True(t, ws.Has(4))
    require.False(t, ws.Has(2))
    require.Equal(t, []WorkID { 1, 4, 7 }, ws.toslice())
    require.Equal(t, "{w1, w4, w7}", ws.String())
}
