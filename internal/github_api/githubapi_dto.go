package githubapi

// RepoStats là phần dữ liệu repository mà cache cần giữ lại
type RepoStats struct {
	Owner       string `json:"owner"`
	Repo        string `json:"repo"`
	Stars       int    `json:"stargazers_count"`
	Forks       int    `json:"forks_count"`
	LastUpdated string `json:"updated_at"`
}
