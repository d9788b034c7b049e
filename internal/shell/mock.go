package shell

import (
	"context"
	"strings"
	"sync"

	"github.com/juju/errors"
)

// Mock replays canned outputs by exact command or prefix and records
// every call in order, so tests assert exact command sequences.
type Mock struct {
	mu      sync.Mutex
	exact   map[string]response
	prefix  []prefixResponse
	calls   []string
	Default string
}

type response struct {
	out string
	err error
}

type prefixResponse struct {
	prefix string
	out    string
	err    error
}

var _ Runner = new(Mock)

func NewMock() *Mock {
	return &Mock{exact: make(map[string]response)}
}

func (m *Mock) Respond(cmdline, out string) {
	m.mu.Lock()
	m.exact[cmdline] = response{out: out}
	m.mu.Unlock()
}

func (m *Mock) RespondError(cmdline string, err error) {
	m.mu.Lock()
	m.exact[cmdline] = response{err: err}
	m.mu.Unlock()
}

func (m *Mock) RespondPrefix(prefix, out string) {
	m.mu.Lock()
	m.prefix = append(m.prefix, prefixResponse{prefix: prefix, out: out})
	m.mu.Unlock()
}

func (m *Mock) Run(ctx context.Context, cmdline string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, cmdline)
	if r, ok := m.exact[cmdline]; ok {
		if r.err != nil {
			return "", r.err
		}
		return r.out, nil
	}
	for _, p := range m.prefix {
		if strings.HasPrefix(cmdline, p.prefix) {
			if p.err != nil {
				return "", p.err
			}
			return p.out, nil
		}
	}
	if m.Default != "" {
		return m.Default, nil
	}
	return "", errors.Errorf("mock shell no response for cmd=%q", cmdline)
}

func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsPrefix returns recorded commands starting with prefix.
func (m *Mock) CallsPrefix(prefix string) []string {
	out := []string{}
	for _, c := range m.Calls() {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}
