package execrun

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/codeuhq/codeu/internal/config"
	"github.com/codeuhq/codeu/internal/toolkit"
)

// Shell metacharacters are rejected outright even though no shell is
// involved: their presence signals the caller expected shell semantics the
// executor will not provide.
var forbiddenFragments = []string{";", "|", "&", "`", "$", ">", "<", "\n", "\r"}

var dotdotSegment = regexp.MustCompile(`(^|/)\.\.(/|$)`)

// validateArgs applies the per-command rule plus the global argument policy
// before any process is spawned. Every rejection names the offending token.
func validateArgs(name string, args []string, rule config.CommandRule) error {
	if rule.MaxArgs > 0 && len(args) > rule.MaxArgs {
		return toolkit.Errorf(toolkit.KindArgRejected,
			"%s accepts at most %d argument(s), got %d", name, rule.MaxArgs, len(args))
	}
	for _, arg := range args {
		for _, frag := range forbiddenFragments {
			if strings.Contains(arg, frag) {
				return toolkit.Errorf(toolkit.KindArgRejected,
					"argument %q contains the forbidden character %q", arg, frag)
			}
		}
		if strings.HasPrefix(arg, "-") {
			if err := validateFlag(name, arg, rule); err != nil {
				return err
			}
			continue
		}
		// Path-like tokens must stay relative and inside the workspace.
		if strings.HasPrefix(arg, "/") || filepath.IsAbs(arg) {
			return toolkit.Errorf(toolkit.KindArgRejected, "absolute paths are not allowed: %q", arg)
		}
		if dotdotSegment.MatchString(filepath.ToSlash(arg)) {
			return toolkit.Errorf(toolkit.KindArgRejected, "path traversal is not allowed: %q", arg)
		}
	}
	return nil
}

// validateFlag admits a flag token when it matches the rule's allow-list
// (exact, or "flag=value" form) and is not explicitly denied.
func validateFlag(name, arg string, rule config.CommandRule) error {
	for _, deny := range rule.DenyFlags {
		if arg == deny || strings.HasPrefix(arg, deny+"=") {
			return toolkit.Errorf(toolkit.KindArgRejected, "%s %s is not allowed", name, arg)
		}
	}
	for _, allow := range rule.Flags {
		if arg == allow || strings.HasPrefix(arg, allow+"=") {
			return nil
		}
	}
	return toolkit.Errorf(toolkit.KindArgRejected,
		"flag %q is not permitted for %s", arg, name)
}
