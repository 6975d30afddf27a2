package ids

import (
	"fmt"
	"regexp"
	"strings"
)

// A bad regexp here is a build-time bug, not a runtime condition, so we
// compile eagerly at package init rather than lazily per call.
var (
	httpsSpecRe = regexp.MustCompile(`^https://github\.com/([^/\s]+)/([^/\s]+?)(?:\.git)?/?$`)
	sshSpecRe   = regexp.MustCompile(`^git@github\.com:([^/\s]+)/([^/\s]+?)(?:\.git)?/?$`)
)

// ParseRepoSpecifier accepts any of the forms named in the persisted
// layout section: "https://github.com/owner/repo[.git]",
// "git@github.com:owner/repo[.git]", or bare "owner/repo". It tries the
// expressions in that order and fails with BadInput if none match.
func ParseRepoSpecifier(spec string) (RepositoryName, error) {
	spec = strings.TrimSpace(spec)

	if m := httpsSpecRe.FindStringSubmatch(spec); m != nil {
		return RepositoryName{Owner: m[1], Name: m[2]}, nil
	}

	if m := sshSpecRe.FindStringSubmatch(spec); m != nil {
		return RepositoryName{Owner: m[1], Name: m[2]}, nil
	}

	if name, err := NewRepositoryName(spec); err == nil {
		return name, nil
	}

	return RepositoryName{}, BadInput("ParseRepoSpecifier", fmt.Errorf("unrecognized repository specifier: %q", spec))
}
