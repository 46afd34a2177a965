// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package host

// Mat4 is a 4x4 transformation matrix in column-major order, matching the
// layout the host platform reports for poses and projections:
//
//	| m[0]  m[4]  m[8]   m[12] |
//	| m[1]  m[5]  m[9]   m[13] |
//	| m[2]  m[6]  m[10]  m[14] |
//	| m[3]  m[7]  m[11]  m[15] |
//
// Translation lives in m[12..14].
type Mat4 [16]float32

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// IsZero reports whether every element of the matrix is zero.
// A zero matrix is what the host reports when no pose data exists.
func (m Mat4) IsZero() bool {
	for _, v := range m {
		if v != 0 {
			return false
		}
	}
	return true
}

// Mul multiplies two matrices (m * other) in column-major convention.
func (m Mat4) Mul(other Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * other[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// Viewport is an integer pixel rectangle within a render target.
type Viewport struct {
	X, Y          int
	Width, Height int
}

// IsEmpty reports whether the viewport has no area.
func (v Viewport) IsEmpty() bool {
	return v.Width <= 0 || v.Height <= 0
}
