//go:build !unix

package command

import "os/exec"

// killProcessGroup keeps the exec.CommandContext default of killing only the child.
func killProcessGroup(cmd *exec.Cmd) {}
