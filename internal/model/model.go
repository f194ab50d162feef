package model

// TableGithubStats giữ mỗi repository đúng một dòng, khóa theo cache key
const TableGithubStats = "github_stats"
