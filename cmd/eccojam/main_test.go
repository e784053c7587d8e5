// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mackenziestarr/eccojam/config"
	"github.com/mackenziestarr/eccojam/engine"
	"github.com/mackenziestarr/eccojam/formats/wav"
	"github.com/mackenziestarr/eccojam/srconv"
)

func TestParseFlags(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	o, err := parseFlags([]string{"-algo", "linear", "-device", "null", "-rate", "22050", "-mono", "in.wav"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "in.wav", o.path)
	assert.Equal(t, "linear", o.algo)
	assert.Equal(t, "null", o.device)
	assert.Equal(t, 22050, o.rate)
	assert.True(t, o.mono)

	_, err = parseFlags(nil, &stderr)
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "usage: eccojam")

	_, err = parseFlags([]string{"-h"}, &stderr)
	assert.ErrorIs(t, err, flag.ErrHelp)
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "eccojam.yaml")
	require.NoError(t, os.WriteFile(path, []byte("record:\n  path: file.wav\ndevice:\n  backend: oto\n"), 0o644))

	cfg, err := loadConfig(options{config: path, rate: -1})
	require.NoError(t, err)
	assert.Equal(t, "file.wav", cfg.Record.Path)
	assert.Equal(t, config.DeviceOto, cfg.Device.Backend)
	assert.Zero(t, cfg.Source.SampleRate)

	cfg, err = loadConfig(options{config: path, record: "flag.wav", device: "null", algo: "2", rate: 0, nats: "nats://h:4222"})
	require.NoError(t, err)
	assert.Equal(t, "flag.wav", cfg.Record.Path)
	assert.Equal(t, config.DeviceNull, cfg.Device.Backend)
	assert.Equal(t, "2", cfg.Converter.Algorithm)
	assert.Equal(t, "nats://h:4222", cfg.Control.NATSURL)

	_, err = loadConfig(options{device: "jack", rate: -1})
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestPromptAlgorithm(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	alg, err := promptAlgorithm(strings.NewReader("9\nfoo\n3\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, srconv.ZeroOrderHold, alg)
	assert.Equal(t, 2, strings.Count(out.String(), "out of valid range [0:4]"))
	assert.Contains(t, out.String(), "[0] sinc-best")
	assert.Contains(t, out.String(), "[4] linear")

	_, err = promptAlgorithm(strings.NewReader("7\n"), &out)
	assert.ErrorIs(t, err, errNoChoice)
}

func TestPromptAlgorithm_LeavesLaterKeysUnread(t *testing.T) {
	t.Parallel()

	in := strings.NewReader("1\r\nzx")
	alg, err := promptAlgorithm(in, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, srconv.SincMedium, alg)

	rest, err := io.ReadAll(in)
	require.NoError(t, err)
	assert.Equal(t, "zx", string(rest))
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitUsage, exitCode(errors.New("bad file")))
	assert.Equal(t, exitConverter, exitCode(fmt.Errorf("cycle: %w", engine.ErrConverter)))
	assert.Equal(t, exitDevice, exitCode(fmt.Errorf("%w: open", engine.ErrDevice)))
}

func TestCRLFWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := &crlfWriter{w: &buf}
	_, _ = w.Write([]byte("a\n"))
	w.setRaw(true)
	n, err := w.Write([]byte("b\nc\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "a\nb\r\nc\r\n", buf.String())
}

func writeTone(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	samples := make([]float32, 8000)
	for i := range samples {
		samples[i] = float32(i%100) / 200
	}
	require.NoError(t, wav.Encode(f, 8000, 1, 16, samples))
	return path
}

// stdinWith returns a pipe that yields keys and then ends.
func stdinWith(t *testing.T, keys string) *os.File {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString(keys)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRun_HeadlessSession(t *testing.T) {
	t.Parallel()

	src := writeTone(t)
	var stdout, stderr bytes.Buffer
	code := run([]string{"-algo", "linear", "-device", "null", src}, stdinWith(t, "d,gq"), &stdout, &stderr)

	require.Equal(t, exitOK, code, stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "Frame count: 8000 | Samples: 8000")
	assert.Contains(t, out, "Sample rate: 8000 Hz")
	assert.Contains(t, out, "DELAY: ON")
	assert.Contains(t, out, "SPEED: 1.10")
	assert.Contains(t, out, "ecco #1 volume: 60")
}

func TestRun_Failures(t *testing.T) {
	t.Parallel()

	src := writeTone(t)
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no file", []string{}, exitUsage},
		{"missing file", []string{"-algo", "linear", "-device", "null", filepath.Join(t.TempDir(), "none.wav")}, exitUsage},
		{"unknown format", []string{"-algo", "linear", "-device", "null", "song.flac"}, exitUsage},
		{"bad device", []string{"-device", "jack", src}, exitUsage},
		{"bad algorithm", []string{"-algo", "cubic", "-device", "null", src}, exitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			assert.Equal(t, tt.want, run(tt.args, stdinWith(t, ""), &stdout, &stderr))
			assert.NotEmpty(t, stderr.String())
		})
	}
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitOK, run([]string{"-h"}, stdinWith(t, ""), &stdout, &stderr))
	assert.Contains(t, stderr.String(), "-algo")
}
