// Copyright 2012 Google Inc. All Rights Reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the COPYING file in the root of the source
// tree. An additional intellectual property rights grant can be found
// in the file PATENTS. All contributing project authors may
// be found in the AUTHORS file in the root of the source tree.

package endian

import (
	"github.com/daanv2/go-webpanim/pkg/assert"
)

// Read 16, 24 or 32 bits stored in little-endian order.
// The caller guarantees data holds enough bytes.
func GetLE16(data []byte) int {
	return int(data[0]) | int(data[1])<<8
}

func GetLE24(data []byte) int {
	return GetLE16(data) | int(data[2])<<16
}

func GetLE32(data []byte) uint32 {
	return uint32(GetLE16(data)) | uint32(GetLE16(data[2:]))<<16
}

// Store 16, 24 or 32 bits in little-endian order.
func PutLE16(data []byte, val int) {
	assert.Assert(val >= 0 && val < (1<<16), "PutLE16 value out of range")
	data[0] = byte(val)
	data[1] = byte(val >> 8)
}

func PutLE24(data []byte, val int) {
	assert.Assert(val >= 0 && val < (1<<24), "PutLE24 value out of range")
	PutLE16(data, val&0xffff)
	data[2] = byte(val >> 16)
}

func PutLE32(data []byte, val uint32) {
	PutLE16(data, int(val&0xffff))
	PutLE16(data[2:], int(val>>16))
}
