// Gói githubapi lấy số sao và số fork của một repository từ GitHub REST API.
// Mọi lỗi trả về đều được phân loại bằng mã lỗi để tầng cache quyết định fallback.

package githubapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/go-github/v67/github"
	"github.com/jmgilman/go/errors"
	"github.com/thep200/github-stats-cache/cfg"
	"github.com/thep200/github-stats-cache/internal/limiter"
	"github.com/thep200/github-stats-cache/pkg/log"
)

type Caller struct {
	Logger  log.Logger
	Config  *cfg.Config
	limiter *limiter.RateLimiter
	now     func() time.Time

	mu       sync.RWMutex
	client   *github.Client
	injected bool
}

type Option func(*Caller)

// WithClient dùng github.Client có sẵn thay vì tạo từ cấu hình
func WithClient(client *github.Client) Option {
	return func(c *Caller) {
		c.client = client
	}
}

func WithLimiter(l *limiter.RateLimiter) Option {
	return func(c *Caller) {
		c.limiter = l
	}
}

func NewCaller(logger log.Logger, config *cfg.Config, opts ...Option) (*Caller, error) {
	c := &Caller{
		Logger: logger,
		Config: config,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.injected = c.client != nil
	if c.client == nil {
		client, err := newClient(config.GithubApi)
		if err != nil {
			return nil, err
		}
		c.client = client
	}
	if c.limiter == nil {
		c.limiter = limiter.NewRateLimiter(config.GithubApi.RequestsPerSecond)
	}
	return c, nil
}

// ApplyConfig dựng lại client theo githubapi mới (token, base url, timeout) và
// đổi giới hạn request. Client truyền qua WithClient được giữ nguyên.
func (c *Caller) ApplyConfig(config *cfg.Config) error {
	var client *github.Client
	if !c.injected {
		var err error
		if client, err = newClient(config.GithubApi); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.Config = config
	if client != nil {
		c.client = client
	}
	c.mu.Unlock()

	c.limiter.SetMaxRequests(config.GithubApi.RequestsPerSecond)
	return nil
}

func (c *Caller) currentClient() *github.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

func newClient(api cfg.GithubApi) (*github.Client, error) {
	httpClient := &http.Client{Timeout: api.Timeout()}
	client := github.NewClient(httpClient)

	if api.AccessToken != "" {
		client = client.WithAuthToken(api.AccessToken)
	}

	if api.BaseUrl != "" {
		base := api.BaseUrl
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		baseURL, err := url.Parse(base)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidConfig, "invalid github api base url")
		}
		client.BaseURL = baseURL
	}
	return client, nil
}

// FetchStats gọi GET /repos/{owner}/{repo} và trả về số sao, số fork
func (c *Caller) FetchStats(ctx context.Context, owner, repo string) (*RepoStats, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CodeTimeout, "waiting for github rate limiter")
	}

	c.Logger.Debug(ctx, "Calling GitHub API: repos/%s/%s", owner, repo)
	ghRepo, resp, err := c.currentClient().Repositories.Get(ctx, owner, repo)
	c.logRate(ctx, resp)
	if err != nil {
		code := classify(err, resp)
		wrapped := errors.Wrap(err, code, fmt.Sprintf("failed to get repository %s/%s", owner, repo))
		wrapped = errors.WithContext(wrapped, "owner", owner)
		return nil, errors.WithContext(wrapped, "repo", repo)
	}

	stats := &RepoStats{
		Owner:       owner,
		Repo:        repo,
		Stars:       nonNegative(ghRepo.GetStargazersCount()),
		Forks:       nonNegative(ghRepo.GetForksCount()),
		LastUpdated: c.now().UTC().Format(time.RFC3339),
	}
	if updatedAt := ghRepo.GetUpdatedAt(); !updatedAt.IsZero() {
		stats.LastUpdated = updatedAt.UTC().Format(time.RFC3339)
	}
	return stats, nil
}

// logRate ghi lại quota còn lại từ header X-RateLimit-*
func (c *Caller) logRate(ctx context.Context, resp *github.Response) {
	if resp == nil || resp.Rate.Limit == 0 {
		return
	}
	if resp.Rate.Remaining == 0 {
		c.Logger.Warn(ctx, "Rate limit hit! GitHub API quota exhausted until %v",
			resp.Rate.Reset.Time.Format(time.RFC3339))
		return
	}
	c.Logger.Debug(ctx, "Rate limit remaining: %d/%d", resp.Rate.Remaining, resp.Rate.Limit)
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
