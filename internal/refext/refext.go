// Package refext extracts cross-repository references from issue and
// pull request text: both the full GitHub URL form and the short
// "owner/repo#N" form the spec calls out as ambiguous between Issue and
// PullRequest. Extraction never fails the sync it runs inside --
// unparseable candidates are skipped, not errored.
package refext

import (
	"regexp"
	"strconv"

	"github.com/hlfshell/gitdb/internal/ids"
)

var (
	urlRefRe   = regexp.MustCompile(`https://github\.com/([\w.-]+)/([\w.-]+)/(issues|pull)/(\d+)`)
	shortRefRe = regexp.MustCompile(`\b([\w.-]+)/([\w.-]+)#(\d+)\b`)
)

// TypeHint is the kind of item a candidate's source pattern implies.
type TypeHint int

const (
	// HintAmbiguous means the short form was matched; the candidate
	// should be tried as both an Issue and a PullRequest.
	HintAmbiguous TypeHint = iota
	HintIssue
	HintPullRequest
)

// Candidate is a normalized, not-yet-verified reference extracted from
// a body of text.
type Candidate struct {
	Owner      string
	Repo       string
	Number     int64
	Hint       TypeHint
	Source     ids.ItemRef
	LinkText   string
}

// Extract scans body for URL-form and short-form references, tagging
// each candidate with the item it was found in.
func Extract(body string, source ids.ItemRef) []Candidate {
	var out []Candidate

	for _, m := range urlRefRe.FindAllStringSubmatch(body, -1) {
		n, err := strconv.ParseInt(m[4], 10, 64)
		if err != nil {
			continue
		}
		hint := HintIssue
		if m[3] == "pull" {
			hint = HintPullRequest
		}
		out = append(out, Candidate{Owner: m[1], Repo: m[2], Number: n, Hint: hint, Source: source, LinkText: m[0]})
	}

	for _, m := range shortRefRe.FindAllStringSubmatch(body, -1) {
		n, err := strconv.ParseInt(m[3], 10, 64)
		if err != nil {
			continue
		}
		out = append(out, Candidate{Owner: m[1], Repo: m[2], Number: n, Hint: HintAmbiguous, Source: source, LinkText: m[0]})
	}

	return out
}

// FullName renders the candidate's target repository as "owner/repo".
func (c Candidate) FullName() string { return c.Owner + "/" + c.Repo }
