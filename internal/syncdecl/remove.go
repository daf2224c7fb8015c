package syncdecl

import (
	"context"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"wasmsig/internal/sig"
)

// Remove strips annotation lines for mapped symbols from every .js
// file under root except the consolidated file itself, which is the
// one place those entries are supposed to live.
func Remove(ctx context.Context, root string, sigs sig.Mapping, jobs int) error {
	files, err := listJSFiles(root)
	if err != nil {
		return err
	}
	prefixes := make([]string, 0, len(sigs))
	for _, sym := range sigs.Symbols() {
		prefixes = append(prefixes, sym+"__sig:")
	}
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for _, path := range files {
		if filepath.Base(path) == GeneratedBasename {
			continue
		}
		path := path
		g.Go(func() error {
			return rewriteFile(path, func(line string) (string, bool) {
				return line, !isAnnotation(line, prefixes)
			})
		})
	}
	return g.Wait()
}

func isAnnotation(line string, prefixes []string) bool {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range prefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}
