//go:build windows

package app

import (
	"os"
	"os/exec"
)

// RestartProcess starts a fresh copy of the binary and exits. Windows has no exec(2).
// RestartProcess 启动新进程后退出当前进程
func RestartProcess(argv0 string, args []string, env []string) error {
	child := exec.Command(argv0, args[1:]...)
	child.Env = env
	child.Stdin, child.Stdout, child.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := child.Start(); err != nil {
		return err
	}
	os.Exit(0)
	return nil
}
