// SPDX-License-Identifier: EPL-2.0

package control

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// Keyboard reads single keystrokes and forwards the intents they map to.
// Unbound keys are ignored. Reading ends after Quit or at end of input.
type Keyboard struct {
	r      io.Reader
	fd     int
	isTerm bool

	state   *term.State
	stopCh  chan struct{}
	done    chan struct{}
	stopped sync.Once
}

// NewKeyboard reads from f, switching it to raw mode on Start when it is a
// terminal so keys arrive without Enter and without echo.
func NewKeyboard(f *os.File) *Keyboard {
	fd := int(f.Fd())
	k := NewKeyboardReader(f)
	k.fd = fd
	k.isTerm = term.IsTerminal(fd)
	return k
}

// NewKeyboardReader reads keystrokes from any reader, byte by byte.
func NewKeyboardReader(r io.Reader) *Keyboard {
	return &Keyboard{
		r:      r,
		fd:     -1,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start begins reading in a goroutine. Call Stop to restore the terminal.
func (k *Keyboard) Start(out chan<- Intent) error {
	if k.isTerm {
		state, err := term.MakeRaw(k.fd)
		if err != nil {
			return fmt.Errorf("keyboard raw mode: %w", err)
		}
		k.state = state
	}

	go k.read(out)
	return nil
}

func (k *Keyboard) read(out chan<- Intent) {
	defer close(k.done)

	br := bufio.NewReader(k.r)
	for {
		b, err := br.ReadByte()
		if err != nil {
			return
		}
		intent, ok := ParseKey(b)
		if !ok {
			continue
		}
		select {
		case out <- intent:
		case <-k.stopCh:
			return
		}
		if intent == Quit {
			return
		}
	}
}

// Done is closed once the reader goroutine has exited.
func (k *Keyboard) Done() <-chan struct{} { return k.done }

// Stop stops forwarding and restores the terminal. A read already blocked
// on input is abandoned rather than waited for.
func (k *Keyboard) Stop() error {
	var err error
	k.stopped.Do(func() {
		close(k.stopCh)
		if k.state != nil {
			err = term.Restore(k.fd, k.state)
			k.state = nil
		}
	})
	return err
}
