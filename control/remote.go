// SPDX-License-Identifier: EPL-2.0

package control

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is where Remote listens unless configured otherwise.
const DefaultSubject = "eccojam.control"

// Conn is the part of a NATS connection Remote uses.
type Conn interface {
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
	Close()
}

type natsConn struct {
	conn *nats.Conn
}

func (c *natsConn) Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error) {
	return c.conn.Subscribe(subject, cb)
}

func (c *natsConn) Close() { c.conn.Close() }

// Dial connects to a NATS server.
func Dial(url string) (Conn, error) {
	nc, err := nats.Connect(url, nats.Name("eccojam"))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &natsConn{conn: nc}, nil
}

// Remote forwards intents received as NATS messages. The payload is an
// intent name or its key; anything else is logged and dropped.
type Remote struct {
	conn    Conn
	subject string
	logger  *log.Logger

	out     chan<- Intent
	stopCh  chan struct{}
	stopped sync.Once
}

func NewRemote(conn Conn, subject string, logger *log.Logger) *Remote {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Remote{
		conn:    conn,
		subject: subject,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
}

func (r *Remote) Subject() string { return r.subject }

func (r *Remote) Start(out chan<- Intent) error {
	r.out = out
	if _, err := r.conn.Subscribe(r.subject, r.handle); err != nil {
		return fmt.Errorf("subscribing to %s: %w", r.subject, err)
	}
	r.logger.Printf("listening for control messages on %s", r.subject)
	return nil
}

func (r *Remote) handle(msg *nats.Msg) {
	intent, err := ParseName(string(msg.Data))
	if err != nil {
		r.logger.Printf("remote control: %v", err)
		return
	}
	select {
	case r.out <- intent:
	case <-r.stopCh:
	}
}

// Stop closes the connection, which also drops the subscription.
func (r *Remote) Stop() error {
	r.stopped.Do(func() {
		close(r.stopCh)
		r.conn.Close()
	})
	return nil
}
