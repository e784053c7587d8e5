// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files through github.com/go-audio/aiff.
//
// Signed integer PCM at 8, 16, 24 and 32 bits is accepted. The returned
// source implements audio.BitDepther so recordings can keep the width of
// the material they were made from.
package aiff
