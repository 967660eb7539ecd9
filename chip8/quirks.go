/*
 * Copyright 2026 Joshua Jones <joshua.jones.software@gmail.com>
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      www.apache.org
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package chip8

// Quirks selects between divergent historical interpreter behaviors. The set
// is supplied at construction and never changes during a run.
type Quirks struct {
	// BitshiftIgnoresVY makes 8XY6/8XYE shift VX in place instead of shifting
	// VY into VX.
	BitshiftIgnoresVY bool

	// JumpWithOffsetUsesVX makes BNNN jump to NNN+VX, where X is the high
	// nibble of NNN, instead of NNN+V0.
	JumpWithOffsetUsesVX bool

	// AddToIndexIgnoresOverflow leaves VF untouched when FX1E carries the
	// index register past 0xFFF.
	AddToIndexIgnoresOverflow bool

	// StoreAndLoadIncrementIndex leaves the index register incremented by X+1
	// after FX55/FX65.
	StoreAndLoadIncrementIndex bool

	// WrapSprites wraps sprite pixels around the screen edges instead of
	// clipping them. Sprite start coordinates always wrap.
	WrapSprites bool
}
