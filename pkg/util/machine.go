package util

import (
	"sync"

	"github.com/denisbrodbeck/machineid"
)

var (
	machineIDOnce sync.Once
	machineID     string
)

// GetMachineID returns a per-host identifier hashed with the application name,
// or "" when the host exposes none. The value is computed once.
// GetMachineID 获取本机标识，获取失败时返回空字符串
func GetMachineID() string {
	machineIDOnce.Do(func() {
		id, err := machineid.ProtectedID("hackmd")
		if err == nil {
			machineID = id
		}
	})
	return machineID
}
