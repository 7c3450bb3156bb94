package toolkit

import (
	"os"
	"regexp"
	"strings"
)

// redactSensitiveString masks occurrences of configured sensitive patterns
// and known secret env values before anything reaches the audit log.
// Patterns come from CODEU_REDACT (comma/semicolon-separated substrings or
// regexes); values of well-known secret env vars are always masked.
func redactSensitiveString(s string) string {
	if s == "" {
		return s
	}
	pats := gatherRedactionPatterns()
	for _, rx := range pats.regexps {
		s = rx.ReplaceAllString(s, "***REDACTED***")
	}
	for _, lit := range pats.literals {
		if lit == "" {
			continue
		}
		s = strings.ReplaceAll(s, lit, "***REDACTED***")
	}
	return s
}

type redactionPatterns struct {
	regexps  []*regexp.Regexp
	literals []string
}

func gatherRedactionPatterns() redactionPatterns {
	var pats redactionPatterns
	cfg := os.Getenv("CODEU_REDACT")
	if cfg != "" {
		fields := strings.FieldsFunc(cfg, func(r rune) bool { return r == ',' || r == ';' })
		for _, f := range fields {
			f = strings.TrimSpace(f)
			if f == "" {
				continue
			}
			// Compile as regex when possible; otherwise treat as literal.
			if rx, err := regexp.Compile(f); err == nil {
				pats.regexps = append(pats.regexps, rx)
			} else {
				pats.literals = append(pats.literals, f)
			}
		}
	}
	for _, key := range []string{"OPENAI_API_KEY", "CODEU_API_KEY"} {
		if v := os.Getenv(key); v != "" {
			pats.literals = append(pats.literals, v)
		}
	}
	return pats
}
