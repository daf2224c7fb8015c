package syncdecl

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"wasmsig/internal/sig"
)

// Update rewrites annotation lines in place across every .js file
// under root: only the quoted signature changes, indentation and
// trailing text stay byte-identical. Files are independent, so they
// are processed concurrently up to jobs at a time.
func Update(ctx context.Context, root string, sigs sig.Mapping, jobs int) error {
	files, err := listJSFiles(root)
	if err != nil {
		return err
	}
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for _, path := range files {
		path := path
		g.Go(func() error {
			return rewriteFile(path, func(line string) (string, bool) {
				return updateLine(line, sigs), true
			})
		})
	}
	return g.Wait()
}

// updateLine replaces the quoted signature on a recognized annotation
// line and leaves every other line untouched.
func updateLine(line string, sigs sig.Mapping) string {
	if !strings.Contains(line, "__sig") {
		return line
	}
	trimmed := strings.TrimSpace(line)
	for sym, signature := range sigs {
		if !strings.HasPrefix(trimmed, sym+"__sig:") {
			continue
		}
		marker := sym + "__sig: '"
		start := strings.Index(line, marker)
		if start < 0 {
			return line
		}
		rest := line[start+len(marker):]
		end := strings.IndexByte(rest, '\'')
		if end < 0 {
			return line
		}
		return line[:start+len(marker)] + signature + rest[end:]
	}
	return line
}
