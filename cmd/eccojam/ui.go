// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/mackenziestarr/eccojam/audio"
	"github.com/mackenziestarr/eccojam/engine"
	"github.com/mackenziestarr/eccojam/srconv"
)

const header = `                                           _/
   _/_/      _/_/_/    _/_/_/     _/_/          _/_/_/   _/_/_/  _/_/     _/_/_/
 _/_/_/_/  _/        _/        _/    _/  _/  _/    _/  _/    _/    _/  _/_/
_/        _/        _/        _/    _/  _/  _/    _/  _/    _/    _/      _/_/
 _/_/_/    _/_/_/    _/_/_/    _/_/    _/    _/_/_/  _/    _/    _/  _/_/_/
                                      _/
                                     _/
`

const help = `--------------------------------------------------------------------------------
r       start / stop recording
d       delay on / off
z / x   set loop in / loop out points
s       stop looping
, / .   raise / lower the conversion ratio (slower / faster playback)
f / g   echo #1 volume down / up
h / j   echo #2 volume down / up
q       quit
--------------------------------------------------------------------------------
`

func printHeader(w io.Writer) { fmt.Fprint(w, header) }

func printHelp(w io.Writer) { fmt.Fprint(w, help) }

func printSourceInfo(w io.Writer, path string, s *audio.Store) {
	fmt.Fprintf(w, "\nFile: %s\n", filepath.Base(path))
	fmt.Fprintf(w, "Length: %.2f s | Sample rate: %d Hz | Channels: %d | Bit depth: %d\n",
		s.Duration().Seconds(), s.SampleRate(), s.Channels(), s.BitDepth())
	fmt.Fprintf(w, "Frame count: %d | Samples: %d\n\n", s.Frames(), s.Len())
}

var errNoChoice = errors.New("no conversion algorithm chosen")

// promptAlgorithm asks for an algorithm until the answer parses.
func promptAlgorithm(in io.Reader, out io.Writer) (srconv.Algorithm, error) {
	fmt.Fprintln(out, "Select which sample rate conversion algorithm you would like to use:")
	for _, a := range srconv.Algorithms() {
		fmt.Fprintf(out, "\t[%d] %-16s %s\n", int(a), a, a.Description())
	}

	for {
		fmt.Fprint(out, "... ")
		line, err := readLine(in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, errNoChoice
			}
			return 0, err
		}
		if a, err := srconv.ParseAlgorithm(line); err == nil {
			return a, nil
		}
		fmt.Fprintf(out, "choice is out of valid range [0:%d], please try again.\n", len(srconv.Algorithms())-1)
	}
}

// readLine reads up to and including the next newline one byte at a time,
// so keys typed after the answer stay unread for the keyboard.
func readLine(in io.Reader) (string, error) {
	var (
		line []byte
		b    [1]byte
	)
	for {
		n, err := in.Read(b[:])
		if n == 1 {
			if b[0] == '\n' {
				return string(bytes.TrimSuffix(line, []byte("\r"))), nil
			}
			line = append(line, b[0])
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) && len(line) > 0 {
				return string(line), nil
			}
			return "", err
		}
	}
}

// statusLine rewrites a single line on a terminal and prints one line per
// update otherwise.
type statusLine struct {
	w    io.Writer
	tty  bool
	last string
}

func newStatusLine(w io.Writer, tty bool) *statusLine {
	return &statusLine{w: w, tty: tty}
}

func (s *statusLine) print(st engine.Status) {
	line := st.String()
	if line == s.last {
		return
	}
	s.last = line
	if s.tty {
		fmt.Fprintf(s.w, "\r%s\x1b[K", line)
		return
	}
	fmt.Fprintln(s.w, line)
}

func (s *statusLine) done() {
	if s.tty {
		fmt.Fprint(s.w, "\r\n")
	}
}

// crlfWriter adds carriage returns while the terminal is in raw mode, where
// a bare newline does not return to the first column.
type crlfWriter struct {
	w   io.Writer
	mu  sync.Mutex
	raw bool
}

func (c *crlfWriter) setRaw(raw bool) {
	c.mu.Lock()
	c.raw = raw
	c.mu.Unlock()
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.raw {
		return c.w.Write(p)
	}
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
