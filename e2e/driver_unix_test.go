//go:build e2e && unix

package main

import (
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
)

// maxOutput bounds how much terminal output a session keeps
const maxOutput = 1 << 20

var binPath = "conceptsearch_e2e"

const (
	KeyEnter     = "\r"
	KeyCtrlC     = "\x03"
	KeyCtrlR     = "\x12"
	KeyTab       = "\t"
	KeyDown      = "\x1b[B"
	KeyCtrlEnd   = "\x1b[1;5F"
	KeyF1        = "\x1bOP"
	KeyPagerQuit = "q"
)

// ansiRe matches the escape sequences bubbletea and ov emit
var ansiRe = regexp.MustCompile(
	`(?:\x1b\[[0-9;?]*[ -/]*[@-~])|` +
		`(?:\x1b\][^\x07]*\x07)|` +
		`(?:\x1b[\(\)][A-Za-z])|` +
		`(?:\x1b=|\x1b>)|` +
		`\r`,
)

// TUITestFramework runs the app in a PTY and records what it draws
type TUITestFramework struct {
	t         *testing.T
	pty       *os.File
	cmd       *exec.Cmd
	workspace string

	mu  sync.Mutex
	out []byte
}

func NewTUITest(t *testing.T) *TUITestFramework {
	return &TUITestFramework{t: t}
}

// StartApp launches the binary on a 120x40 terminal
func (tf *TUITestFramework) StartApp(args ...string) error {
	tf.cmd = exec.Command(binPath, args...)
	tf.cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"LC_ALL=C",
		"LANG=C",
		"HOME="+tf.workspace,
		"XDG_CONFIG_HOME="+tf.workspace+"/.config",
		"CONCEPTSEARCH_E2E_TEST=1",
	)

	f, err := pty.StartWithSize(tf.cmd, &pty.Winsize{Rows: 40, Cols: 120})
	if err != nil {
		return fmt.Errorf("failed to start app in pty: %w", err)
	}
	tf.pty = f
	go tf.record(f)
	return nil
}

func (tf *TUITestFramework) record(f *os.File) {
	chunk := make([]byte, 8192)
	for {
		n, err := f.Read(chunk)
		if n > 0 {
			tf.mu.Lock()
			tf.out = append(tf.out, chunk[:n]...)
			if over := len(tf.out) - maxOutput; over > 0 {
				tf.out = tf.out[over:]
			}
			tf.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// SendKeys writes raw input to the terminal
func (tf *TUITestFramework) SendKeys(keys string) error {
	tf.t.Helper()
	_, err := tf.pty.Write([]byte(keys))
	return err
}

func (tf *TUITestFramework) Quit() error       { return tf.SendKeys(KeyCtrlC) }
func (tf *TUITestFramework) ClosePager() error { return tf.SendKeys(KeyPagerQuit) }
func (tf *TUITestFramework) Type(text string) error {
	return tf.SendKeys(text)
}
func (tf *TUITestFramework) Enter() error    { return tf.SendKeys(KeyEnter) }
func (tf *TUITestFramework) Down() error     { return tf.SendKeys(KeyDown) }
func (tf *TUITestFramework) End() error      { return tf.SendKeys(KeyCtrlEnd) }
func (tf *TUITestFramework) NextType() error { return tf.SendKeys(KeyTab) }

// Ready waits for the startup marker printed in e2e mode
func (tf *TUITestFramework) Ready() bool {
	tf.t.Helper()
	return tf.waitFor(func(s string) bool { return strings.Contains(s, "__READY__") }, 5*time.Second)
}

// SeePlain waits up to 3s for text in the output with escapes removed
func (tf *TUITestFramework) SeePlain(text string) bool {
	tf.t.Helper()
	return tf.OutputContainsPlain(text, 3*time.Second)
}

func (tf *TUITestFramework) OutputContainsPlain(text string, timeout time.Duration) bool {
	tf.t.Helper()
	return tf.waitFor(func(s string) bool {
		return strings.Contains(ansiRe.ReplaceAllString(s, ""), text)
	}, timeout)
}

func (tf *TUITestFramework) waitFor(pred func(string) bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if pred(tf.output()) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(25 * time.Millisecond)
	}
}

func (tf *TUITestFramework) output() string {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	return string(tf.out)
}

// LogTail logs the last n bytes of plain output
func (tf *TUITestFramework) LogTail(n int) {
	tf.t.Helper()
	s := ansiRe.ReplaceAllString(tf.output(), "")
	if len(s) > n {
		s = s[len(s)-n:]
	}
	tf.t.Logf("--- output tail ---\n%s", s)
}

// Cleanup closes the PTY, which hangs up the app, and reaps it
func (tf *TUITestFramework) Cleanup() {
	if tf.pty != nil {
		_ = tf.pty.Close()
		tf.pty = nil
	}
	if tf.cmd != nil && tf.cmd.Process != nil {
		_ = tf.cmd.Process.Kill()
		_, _ = tf.cmd.Process.Wait()
		tf.cmd = nil
	}
}
