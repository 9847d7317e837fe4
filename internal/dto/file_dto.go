package dto

// FilePathRequest fileexists / createfile 的查询参数
type FilePathRequest struct {
	Path string `form:"path" binding:"required"`
}

// FileExistsDTO fileexists 响应
type FileExistsDTO struct {
	FilePath   string `json:"filePath"`
	FileExists bool   `json:"fileExists"`
}

// FileCreateDTO createfile 响应，失败时只有 Error
type FileCreateDTO struct {
	Success  bool   `json:"success,omitempty"`
	FilePath string `json:"filePath,omitempty"`
	Error    string `json:"error,omitempty"`
}

// GitLabProjectsDTO GitLab projects 响应，Projects 仅在上游返回 200 时存在
type GitLabProjectsDTO struct {
	BaseURL     string `json:"baseURL"`
	AccessToken string `json:"accesstoken"`
	ProfileID   string `json:"profileid"`
	Projects    []any  `json:"projects,omitempty"`
}
