package main

import "testing"

func TestMainRunsCLI(t *testing.T) {
	orig := execute
	defer func() { execute = orig }()

	ran := false
	execute = func() { ran = true }

	main()

	if !ran {
		t.Fatal("main should hand off to the command tree")
	}
}
