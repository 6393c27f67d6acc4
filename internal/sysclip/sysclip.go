// Package sysclip bridges the in-process clipboard buffer to the host OS
// clipboard (`yank ... system` / `paste system`) by shelling out to
// whichever of pbcopy/pbpaste, wl-copy/wl-paste, xclip, or xsel is found
// on PATH.
package sysclip

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

type backend struct {
	copyCmd, copyArgs   string
	pasteCmd, pasteArgs string
}

var errNoBackend = fmt.Errorf("no system clipboard utility found (tried pbcopy, wl-copy, xclip, xsel)")

var backends = []backend{
	{"pbcopy", "", "pbpaste", ""},
	{"wl-copy", "", "wl-paste", "-n"},
	{"xclip", "-selection clipboard", "xclip", "-selection clipboard -o"},
	{"xsel", "--clipboard --input", "xsel", "--clipboard --output"},
}

// Bridge shells out to the first available system clipboard utility.
// Construction never fails: if nothing is found, Copy/Paste report the
// error at call time.
type Bridge struct {
	b  *backend
	nf error
}

// New probes PATH for a usable clipboard backend.
func New() *Bridge {
	for i := range backends {
		b := &backends[i]
		if _, err := exec.LookPath(b.copyCmd); err == nil {
			return &Bridge{b: b}
		}
	}
	return &Bridge{nf: errNoBackend}
}

// Copy writes text to the system clipboard.
func (br *Bridge) Copy(text string) error {
	if br.nf != nil {
		return br.nf
	}
	args := splitArgs(br.b.copyArgs)
	cmd := exec.Command(br.b.copyCmd, args...)
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// Paste reads the system clipboard, split into lines with trailing CR
// stripped (Windows-sourced clipboards).
func (br *Bridge) Paste() ([]string, error) {
	if br.nf != nil {
		return nil, br.nf
	}
	args := splitArgs(br.b.pasteArgs)
	cmd := exec.Command(br.b.pasteCmd, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(out.String(), "\r\n", "\n")
	return strings.Split(text, "\n"), nil
}

func splitArgs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}
