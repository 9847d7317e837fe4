//go:build !windows

package app

import "syscall"

// RestartProcess 用 exec 替换当前进程，SIGHUP 重启时使用
func RestartProcess(argv0 string, args []string, env []string) error {
	return syscall.Exec(argv0, args, env)
}
