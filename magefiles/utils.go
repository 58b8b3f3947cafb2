//go:build mage

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// tool is an external program a target shells out to.
type tool string

const (
	goTool tool = "go"
	glslc  tool = "glslc"
)

// require fails before any work starts when t is not on PATH.
func (t tool) require() error {
	if _, err := exec.LookPath(string(t)); err != nil {
		return fmt.Errorf("%s is required: %w", t, err)
	}
	return nil
}

// run keeps the output quiet unless mage runs with -v or the command fails.
func (t tool) run(args ...string) error {
	if err := t.require(); err != nil {
		return err
	}
	var out bytes.Buffer
	var stdout, stderr io.Writer = &out, &out
	if mg.Verbose() {
		stdout, stderr = os.Stdout, os.Stderr
	}
	if _, err := sh.Exec(nil, stdout, stderr, string(t), args...); err != nil {
		_, _ = os.Stderr.Write(out.Bytes())
		return fmt.Errorf("%s %v: %w", t, args, err)
	}
	return nil
}

// stream runs t attached to the terminal.
func (t tool) stream(args ...string) error {
	if err := t.require(); err != nil {
		return err
	}
	fmt.Printf("> %s %v\n", t, args)
	return sh.RunV(string(t), args...)
}
