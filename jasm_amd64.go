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

package jasm

import (
    `github.com/cloudwego/jasm/internal/atm/ra`
)

// ArchTraitsAMD64 describes the host amd64 register file: RSP and RBP
// reserved for the frame, swap support for general-purpose registers, and a
// vector register count probed from the CPU.
func ArchTraitsAMD64() ArchTraits {
    return ra.ArchTraitsAMD64()
}
