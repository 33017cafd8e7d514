// Package shell 은 ffmpeg, edge-tts 같은 외부 프로그램 실행을 감싼다.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"news-shorts/config"
)

const stderrTail = 600

// Runner 는 외부 명령 실행기다. 테스트에서는 명령 계획만 기록하는 가짜로 바꿔 끼운다.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner 는 os/exec 기반 Runner 다.
type ExecRunner struct {
	Dir string
}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (e *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	_, err := e.run(ctx, name, args)
	return err
}

func (e *ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return e.run(ctx, name, args)
}

func (e *ExecRunner) run(ctx context.Context, name string, args []string) ([]byte, error) {
	config.Logger.Debugf("[shell] %s %s", name, strings.Join(args, " "))

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = e.Dir

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		return nil, &ExitError{Name: name, Err: err, Stderr: tail(stderr.String(), stderrTail)}
	}
	return stdout.Bytes(), nil
}

// ExitError 는 실패한 명령과 stderr 의 마지막 부분을 담는다.
type ExitError struct {
	Name   string
	Err    error
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Name, e.Err, e.Stderr)
}

func (e *ExitError) Unwrap() error { return e.Err }

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

// Available 는 name 이 PATH 에 있는지 확인한다.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
