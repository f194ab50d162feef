package githubapi

import (
	"net/http"

	"github.com/google/go-github/v67/github"
	"github.com/jmgilman/go/errors"
)

// classify maps a go-github failure onto an error code. 403 is treated as a
// rate limit because anonymous callers get 403 once their quota is exhausted.
func classify(err error, resp *github.Response) errors.ErrorCode {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return errors.CodeRateLimit
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return errors.CodeRateLimit
	}

	statusCode := 0
	if resp != nil && resp.Response != nil {
		statusCode = resp.StatusCode
	}
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		statusCode = ghErr.Response.StatusCode
	}

	switch statusCode {
	case http.StatusTooManyRequests, http.StatusForbidden:
		return errors.CodeRateLimit
	case http.StatusNotFound:
		return errors.CodeNotFound
	default:
		return errors.CodeNetwork
	}
}

// IsRateLimited reports whether err signals throttling by GitHub.
func IsRateLimited(err error) bool {
	return errors.GetCode(err) == errors.CodeRateLimit
}

// IsNotFound reports whether the repository does not exist or is private.
func IsNotFound(err error) bool {
	return errors.GetCode(err) == errors.CodeNotFound
}
