// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III audio with
// github.com/hajimehoshi/go-mp3. Output is always stereo 16-bit; mono files
// come out with both channels equal.
package mp3
