// SPDX-License-Identifier: EPL-2.0

// Command eccojam loops, slows down, speeds up and echoes a sound file in
// real time, driven from the keyboard or over NATS.
//
// Usage:
//
//	eccojam [flags] <sound file>
//
// Exit status is 0 on quit, 1 for usage, config or source errors, 2 when
// the rate converter fails and 3 when the audio device fails.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/mackenziestarr/eccojam"
	"github.com/mackenziestarr/eccojam/config"
	"github.com/mackenziestarr/eccojam/control"
	"github.com/mackenziestarr/eccojam/device"
	"github.com/mackenziestarr/eccojam/device/oto"
	"github.com/mackenziestarr/eccojam/device/portaudio"
	"github.com/mackenziestarr/eccojam/engine"
)

const (
	exitOK = iota
	exitUsage
	exitConverter
	exitDevice
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	config  string
	algo    string
	backend string
	device  string
	record  string
	nats    string
	rate    int
	mono    bool
	path    string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("eccojam", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.config, "config", "", "YAML config file")
	fs.StringVar(&o.algo, "algo", "", "rate conversion algorithm, name or 0-4 (prompted when unset)")
	fs.StringVar(&o.backend, "backend", "", "rate converter backend: native or libsamplerate")
	fs.StringVar(&o.device, "device", "", "audio output: portaudio, oto or null")
	fs.StringVar(&o.record, "record", "", "recording file")
	fs.StringVar(&o.nats, "nats", "", "NATS server URL for remote control")
	fs.IntVar(&o.rate, "rate", -1, "convert the source to this sample rate on load, 0 keeps it")
	fs.BoolVar(&o.mono, "mono", false, "downmix the source to mono on load")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: eccojam [flags] <sound file>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return o, errors.New("expected exactly one sound file")
	}
	o.path = fs.Arg(0)
	return o, nil
}

// loadConfig layers the config file and then the flags over the defaults.
func loadConfig(o options) (config.Config, error) {
	cfg := config.Default()
	if o.config != "" {
		var err error
		if cfg, err = config.Load(o.config); err != nil {
			return cfg, err
		}
	}

	if o.algo != "" {
		cfg.Converter.Algorithm = o.algo
	}
	if o.backend != "" {
		cfg.Converter.Backend = config.ConverterBackend(o.backend)
	}
	if o.device != "" {
		cfg.Device.Backend = config.DeviceBackend(o.device)
	}
	if o.record != "" {
		cfg.Record.Path = o.record
	}
	if o.nats != "" {
		cfg.Control.NATSURL = o.nats
	}
	if o.rate >= 0 {
		cfg.Source.SampleRate = o.rate
	}
	if o.mono {
		cfg.Source.Mono = true
	}
	return cfg, cfg.Validate()
}

func openDevice(b config.DeviceBackend) device.Device {
	switch b {
	case config.DeviceOto:
		return oto.New()
	case config.DeviceNull:
		return device.NewClocked(nil)
	default:
		return portaudio.New()
	}
}

// exitCode maps a failure to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, engine.ErrDevice):
		return exitDevice
	case errors.Is(err, engine.ErrConverter):
		return exitConverter
	default:
		return exitUsage
	}
}

func run(args []string, stdin *os.File, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintln(stderr, "eccojam:", err)
		return exitUsage
	}

	logOut := &crlfWriter{w: stderr}
	logger := log.New(logOut, "eccojam: ", log.LstdFlags)

	cfg, err := loadConfig(o)
	if err != nil {
		logger.Print(err)
		return exitUsage
	}

	printHeader(stdout)

	store, err := eccojam.LoadSource(o.path, cfg.Source)
	if err != nil {
		logger.Print(err)
		return exitUsage
	}
	printSourceInfo(stdout, o.path, store)

	interactive := term.IsTerminal(int(stdin.Fd()))
	if cfg.Converter.Algorithm == "" && interactive {
		alg, err := promptAlgorithm(stdin, stdout)
		if err != nil {
			logger.Print(err)
			return exitUsage
		}
		cfg.Converter.Algorithm = alg.String()
	}

	e, err := engine.New(store, cfg, engine.WithLogger(logger))
	if err != nil {
		logger.Print(err)
		return exitCode(err)
	}

	code := session(e, cfg, stdin, stdout, logger, logOut, interactive)

	if err := e.Close(); err != nil {
		logger.Print(err)
		if code == exitOK {
			code = exitCode(err)
		}
	}
	return code
}

// session streams until the operator quits, input ends, a signal arrives
// or the engine halts.
func session(e *engine.Engine, cfg config.Config, stdin *os.File, stdout io.Writer,
	logger *log.Logger, logOut *crlfWriter, interactive bool) int {
	if err := e.Start(openDevice(cfg.Device.Backend)); err != nil {
		logger.Print(err)
		return exitCode(err)
	}

	intents := make(chan control.Intent, 16)

	var kbDone <-chan struct{}
	if cfg.Control.Keyboard {
		kb := control.NewKeyboard(stdin)
		printHelp(stdout)
		if err := kb.Start(intents); err != nil {
			logger.Print(err)
			return exitUsage
		}
		defer func() {
			if err := kb.Stop(); err != nil {
				logger.Print(err)
			}
			logOut.setRaw(false)
		}()
		logOut.setRaw(interactive)
		kbDone = kb.Done()
	}

	var remote *control.Remote
	if cfg.Control.NATSURL != "" {
		conn, err := control.Dial(cfg.Control.NATSURL)
		if err != nil {
			logger.Print(err)
			return exitUsage
		}
		remote = control.NewRemote(conn, cfg.Control.NATSSubject, logger)
		if err := remote.Start(intents); err != nil {
			_ = remote.Stop()
			logger.Print(err)
			return exitUsage
		}
		defer remote.Stop()
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	status := newStatusLine(stdout, interactive)
	status.print(e.Status())

	// handle applies one intent and reports whether the session is over.
	handle := func(in control.Intent) bool {
		if in == control.Quit {
			return true
		}
		if err := e.Apply(in); err != nil {
			logger.Print(err)
		}
		status.print(e.Status())
		return false
	}

	for {
		select {
		case in := <-intents:
			if handle(in) {
				status.done()
				return stop(e, logger)
			}

		case err := <-e.Fatal():
			status.done()
			logger.Printf("fatal: %v", err)
			_ = e.Stop()
			return exitConverter

		case <-kbDone:
			kbDone = nil
			if remote != nil {
				continue
			}
			// Input has ended; finish what was typed before it did.
			for len(intents) > 0 {
				if handle(<-intents) {
					break
				}
			}
			status.done()
			return stop(e, logger)

		case sig := <-signals:
			status.done()
			logger.Printf("received %v", sig)
			return stop(e, logger)
		}
	}
}

func stop(e *engine.Engine, logger *log.Logger) int {
	if err := e.Stop(); err != nil {
		logger.Print(err)
		return exitCode(err)
	}
	return exitOK
}
