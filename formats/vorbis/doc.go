// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams with github.com/jfreymuth/oggvorbis.
// The codec is float based, so the source carries no bit depth and
// recordings made from it default to 16-bit.
package vorbis
