package fsview

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/codeuhq/codeu/internal/toolkit"
)

const grepSchema = `{
  "type": "object",
  "properties": {
    "query": {"type": "string"},
    "path": {"type": "string"},
    "regex": {"type": "boolean"},
    "caseSensitive": {"type": "boolean"},
    "globs": {"type": "array", "items": {"type": "string"}},
    "maxMatches": {"type": "integer", "minimum": 1}
  },
  "required": ["query"]
}`

type grepInput struct {
	Query         string   `json:"query"`
	Path          string   `json:"path"`
	Regex         bool     `json:"regex"`
	CaseSensitive *bool    `json:"caseSensitive"`
	Globs         []string `json:"globs"`
	MaxMatches    int      `json:"maxMatches"`
}

// Match is one occurrence of the query on one line. Col is 1-based.
type Match struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Preview string `json:"preview"`
}

type grepOutput struct {
	Matches       []Match `json:"matches"`
	Truncated     bool    `json:"truncated"`
	BinarySkipped int     `json:"binarySkipped"`
}

func (t *Tools) grepTool() toolkit.Tool {
	return toolkit.Tool{
		Name:        "fs_grep",
		Description: "Search file contents inside the workspace for a literal string or regular expression. Binary files are skipped; results are capped and ordered by file path.",
		Schema:      json.RawMessage(grepSchema),
		Handler:     t.handleGrep,
	}
}

func (t *Tools) handleGrep(ctx context.Context, args json.RawMessage) (any, error) {
	in := grepInput{}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, toolkit.Errorf(toolkit.KindInvalidArgs, "decode arguments: %v", err)
	}
	if in.Query == "" {
		return nil, toolkit.Errorf(toolkit.KindInvalidArgs, "query must be non-empty")
	}
	searchPath := in.Path
	if strings.TrimSpace(searchPath) == "" {
		searchPath = "."
	}
	absRoot, err := t.resolveDir(searchPath)
	if err != nil {
		return nil, err
	}

	var re *regexp.Regexp
	if in.Regex {
		re, err = regexp.Compile(in.Query)
		if err != nil {
			return nil, toolkit.Errorf(toolkit.KindInvalidArgs, "invalid regex %q: %v", in.Query, err)
		}
	}
	caseSensitive := in.CaseSensitive == nil || *in.CaseSensitive
	max := in.MaxMatches
	if max <= 0 || max > t.grepMaxMatches {
		max = t.grepMaxMatches
	}

	out := grepOutput{Matches: []Match{}}
	walkErr := filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, rerr := filepath.Rel(absRoot, p)
		if rerr != nil {
			return nil
		}
		if len(in.Globs) > 0 && !matchesAnyGlob(rel, in.Globs) {
			return nil
		}
		if isProbablyBinary(p) {
			out.BinarySkipped++
			return nil
		}
		return t.grepFile(p, re, in.Query, caseSensitive, max, &out)
	})
	if walkErr != nil && !errors.Is(walkErr, errTruncated) {
		return nil, toolkit.Errorf(toolkit.KindInternal, "walk %s: %v", searchPath, walkErr)
	}
	return out, nil
}

// grepFile scans one file line by line, appending a Match per occurrence.
// Returns errTruncated once the global cap is reached.
func (t *Tools) grepFile(abs string, re *regexp.Regexp, query string, caseSensitive bool, max int, out *grepOutput) error {
	f, err := os.Open(abs)
	if err != nil {
		return nil
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			_ = cerr
		}
	}()

	rel := t.bnd.Rel(abs)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		var cols []int
		if re != nil {
			for _, idx := range re.FindAllStringIndex(line, -1) {
				cols = append(cols, idx[0]+1)
			}
		} else {
			cols = literalColumns(line, query, caseSensitive)
		}
		for _, col := range cols {
			if len(out.Matches) >= max {
				out.Truncated = true
				return errTruncated
			}
			out.Matches = append(out.Matches, Match{Path: rel, Line: lineNum, Col: col, Preview: line})
		}
	}
	return nil
}

// literalColumns finds every non-overlapping occurrence of query in line
// and returns their 1-based start columns.
func literalColumns(line, query string, caseSensitive bool) []int {
	haystack := line
	needle := query
	if !caseSensitive {
		haystack = strings.ToLower(line)
		needle = strings.ToLower(query)
	}
	var cols []int
	from := 0
	for {
		pos := strings.Index(haystack[from:], needle)
		if pos == -1 {
			return cols
		}
		cols = append(cols, from+pos+1)
		from = from + pos + len(needle)
	}
}
