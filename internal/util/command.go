package util

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ikmich/package-deps-admin/internal/config"
	"github.com/kballard/go-shellquote"
)

func ProgressMsg(msg string) {
	if !config.Quiet {
		fmt.Println("-->", msg)
	}
}

// QuoteCmd renders cmd as a shell-quoted line for diagnostics.
func QuoteCmd(cmd []string) string {
	cleanedCmd := make([]string, len(cmd))
	copy(cleanedCmd, cmd)
	for i := range cmd {
		if strings.ContainsRune(cmd[i], '\n') {
			cleanedCmd[i] = "<secret sauce>"
		}
	}
	return shellquote.Join(cleanedCmd...)
}

// CmdResult is the captured outcome of a finished command.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes a command in a directory and blocks until it exits.
// A non-zero exit status is reported in CmdResult.ExitCode with a nil
// error; the error is reserved for commands that could not be run.
type Runner interface {
	Run(dir string, cmd []string) (CmdResult, error)
}

// ExecRunner runs commands with os/exec. Commands are not bound to a
// deadline: a command that never exits blocks the caller.
type ExecRunner struct{}

func (ExecRunner) Run(dir string, cmd []string) (CmdResult, error) {
	if len(cmd) == 0 {
		return CmdResult{ExitCode: -1}, errors.New("empty command")
	}
	ProgressMsg(QuoteCmd(cmd))

	var stdout, stderr bytes.Buffer
	command := exec.Command(cmd[0], cmd[1:]...)
	command.Dir = dir
	command.Stdout = &stdout
	command.Stderr = &stderr

	err := command.Run()
	result := CmdResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return result, nil
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	default:
		result.ExitCode = -1
		return result, err
	}
}

// RunCmd runs cmd in the current directory, streaming nothing, and
// terminates the process if it cannot be run or fails.
func RunCmd(cmd []string) CmdResult {
	result, err := ExecRunner{}.Run("", cmd)
	if err != nil {
		Die("%s", err)
	}
	if result.ExitCode != 0 {
		Die("%s: exit status %d\n%s", QuoteCmd(cmd), result.ExitCode, result.Stderr)
	}
	return result
}
