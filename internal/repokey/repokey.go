// Package repokey derives storage keys for GitHub repositories from the URLs
// users attach to their projects.
package repokey

import (
	"regexp"
	"strings"
)

// Separator joins owner and repository name. GitHub logins never contain
// an underscore, so the first occurrence always marks the split point.
const Separator = "__"

var repoPattern = regexp.MustCompile(`(?i)github\.com/([^/\s?#]+)/([^/\s?#]+)`)

// Ref identifies a repository on GitHub.
type Ref struct {
	Owner string
	Repo  string
}

// Key returns the cache key for the repository.
func (r Ref) Key() string {
	return r.Owner + Separator + r.Repo
}

func (r Ref) String() string {
	return r.Owner + "/" + r.Repo
}

// Resolve extracts the owner and repository name following the github.com
// host marker. A trailing ".git" is stripped from the repository name.
// GitHub names are case-insensitive, so both parts are lowercased.
func Resolve(url string) (Ref, bool) {
	match := repoPattern.FindStringSubmatch(url)
	if match == nil {
		return Ref{}, false
	}

	owner := strings.ToLower(match[1])
	repo := strings.TrimSuffix(strings.ToLower(match[2]), ".git")
	if owner == "" || repo == "" {
		return Ref{}, false
	}
	return Ref{Owner: owner, Repo: repo}, true
}

// Key returns the cache key for url, or "" when url is not a repository reference.
func Key(url string) string {
	ref, ok := Resolve(url)
	if !ok {
		return ""
	}
	return ref.Key()
}

// Parse splits a key produced by Key back into a Ref.
func Parse(key string) (Ref, bool) {
	owner, repo, found := strings.Cut(key, Separator)
	if !found || owner == "" || repo == "" {
		return Ref{}, false
	}
	return Ref{Owner: owner, Repo: repo}, true
}
