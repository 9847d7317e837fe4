package dto

// VersionDTO 服务端版本信息
type VersionDTO struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GitTag    string `json:"gitTag"`
	BuildTime string `json:"buildTime"`
}

// HealthDTO 健康检查结果
type HealthDTO struct {
	Status   string  `json:"status"` // healthy、unhealthy 或 shutting_down
	Version  string  `json:"version"`
	Uptime   float64 `json:"uptime"`   // 秒
	Database string  `json:"database"` // connected 或 error
}
