// The MIT License (MIT)
//
// # Copyright (c) 2025 eukaryo
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package std

import (
	"bufio"
	"bytes"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// WdlReply is the oracle's answer for one position: whether the position is
// terminal, and for each playable column the value of the move. Columns
// that are illegal at the position have Legal unset.
type WdlReply struct {
	Terminal bool
	Legal    [BoardWidth]bool
	Values   [BoardWidth]int
}

// Oracle answers win/draw/loss queries for the search. The production
// implementation is WdlServer; tests inject scripted tables.
type Oracle interface {
	Query(moveseq string) (WdlReply, error)
}

// closeGrace bounds how long Close waits for the child to exit on its own
// after stdin is closed.
const closeGrace = 5 * time.Second

// WdlServer wraps the oracle subprocess. Exchanges are strictly
// request/response over line-buffered pipes; stderr is captured for
// post-mortem diagnostics.
type WdlServer struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	stderr bytes.Buffer
}

// StartWdlServer spawns `bin solutionDir --server --compact`, with the
// -Xmmap memory flag appended when mmap is set.
func StartWdlServer(bin, solutionDir string, mmap bool) (*WdlServer, error) {
	args := []string{solutionDir, "--server", "--compact"}
	if mmap {
		args = append(args, "-Xmmap")
	}

	s := &WdlServer{cmd: exec.Command(bin, args...)}
	s.cmd.Stderr = &s.stderr

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	s.stdin = stdin
	s.stdout = bufio.NewReader(stdout)

	if err := s.cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "start wdl server %v", bin)
	}
	return s, nil
}

// Query sends one move sequence and blocks until the oracle's compact reply
// arrives. Blank lines and chatter are skipped; the first line with exactly
// 8 whitespace-separated tokens and a 0/1 leading token is the reply.
func (s *WdlServer) Query(moveseq string) (WdlReply, error) {
	if _, err := io.WriteString(s.stdin, moveseq+"\n"); err != nil {
		return WdlReply{}, errors.Wrapf(err, "write query %q", moveseq)
	}

	for {
		line, err := s.stdout.ReadString('\n')
		if err != nil {
			return WdlReply{}, errors.Errorf("wdl server terminated unexpectedly. stderr:\n%s", s.stderr.String())
		}

		toks := strings.Fields(line)
		if len(toks) != 8 || (toks[0] != "0" && toks[0] != "1") {
			continue
		}
		return parseCompactLine(line)
	}
}

// parseCompactLine parses a compact reply line. Query has matched the line
// shape already; token content can still be malformed.
func parseCompactLine(line string) (WdlReply, error) {
	toks := strings.Fields(line)
	if len(toks) != 1+BoardWidth {
		return WdlReply{}, errors.Errorf("bad token count: %d in %q", len(toks), line)
	}

	var r WdlReply
	switch toks[0] {
	case "0":
	case "1":
		r.Terminal = true
	default:
		return WdlReply{}, errors.Errorf("bad terminal flag: %q in %q", toks[0], line)
	}

	for col, tok := range toks[1:] {
		if tok == "." {
			continue
		}
		v, err := strconv.Atoi(tok)
		if err != nil || v < -1 || v > 1 {
			return WdlReply{}, errors.Errorf("bad wdl token %q in %q", tok, line)
		}
		r.Legal[col] = true
		r.Values[col] = v
	}
	return r, nil
}

// Close shuts the oracle down: close its stdin, give it closeGrace to exit
// on its own, then kill and reap. Called once per run, on both the success
// and the abort path.
func (s *WdlServer) Close() error {
	if s.stdin != nil {
		s.stdin.Close()
		s.stdin = nil
	}

	done := make(chan error, 1)
	go func() { done <- s.cmd.Wait() }()

	select {
	case <-done:
	case <-time.After(closeGrace):
		if err := s.cmd.Process.Kill(); err != nil {
			return errors.WithStack(err)
		}
		<-done
	}
	return nil
}
