//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed with the backend in PRISM_BACKEND, opengl by default.
func (Run) Engine() error {
	backend := os.Getenv("PRISM_BACKEND")
	if backend == "" {
		backend = "opengl"
	}
	fmt.Printf("Run engine with the %s backend...\n", backend)
	if _, err := executeCmd("go", withArgs("run", ".", "-backend", backend), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs a few hundred frames headless on the null backend.
func (Run) Headless() error {
	if _, err := executeCmd("go", withArgs("run", ".", "-backend", "null", "-frames", "300"), withStream()); err != nil {
		return err
	}
	return nil
}
