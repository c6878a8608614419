package github

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePRURL extracts owner, repo, and PR number from a GitHub pull
// request URL such as https://github.com/owner/repo/pull/42. The only
// normalization applied is trimming a trailing slash.
func ParsePRURL(raw string) (PRRef, error) {
	parts := strings.Split(strings.TrimSuffix(raw, "/"), "/")

	idx := -1
	for i, p := range parts {
		if p == "github.com" {
			idx = i
			break
		}
	}
	if idx < 0 {
		return PRRef{}, fmt.Errorf("%w: %q is not a github.com URL", ErrInvalidURL, raw)
	}

	// Expect owner/repo/pull/number after the host segment.
	if len(parts) < idx+5 {
		return PRRef{}, fmt.Errorf("%w: %q has too few path segments", ErrInvalidURL, raw)
	}
	if parts[idx+3] != "pull" {
		return PRRef{}, fmt.Errorf("%w: %q is not a pull request URL", ErrInvalidURL, raw)
	}

	number, err := strconv.Atoi(parts[idx+4])
	if err != nil {
		return PRRef{}, fmt.Errorf("%w: bad PR number %q", ErrInvalidURL, parts[idx+4])
	}

	return PRRef{Owner: parts[idx+1], Repo: parts[idx+2], Number: number}, nil
}

// String renders the reference as owner/repo#number.
func (r PRRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}
