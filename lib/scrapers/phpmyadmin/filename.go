package phpmyadmin

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// DefaultPrefixFormat renders timestamps like "2024-12-01--13-05-09-UTC_".
const DefaultPrefixFormat = "%Y-%m-%d--%H-%M-%S-UTC_"

type OutputOptions struct {
	// Directory the dump is written into, defaults to the working
	// directory.
	Directory string
	// Basename replaces the stem of the server-suggested filename while
	// keeping its extension. The empty string is a valid override (useful
	// together with a date prefix), so it is guarded by HasBasename.
	Basename    string
	HasBasename bool
	// PrependDate prefixes the filename with the current UTC time rendered
	// with PrefixFormat (strftime directives, DefaultPrefixFormat when
	// empty).
	PrependDate  bool
	PrefixFormat string
	// Overwrite replaces an existing file instead of appending a counter.
	Overwrite bool
}

// ResolveOutputPath turns the server-suggested filename into the final
// output path. When the path is taken and overwrite is off, a "_(N)"
// counter is inserted before the extension until a free path is found. The
// existence check only guards against collisions within this run, there is
// no cross-process locking. The parent directory is not checked here: a
// missing directory surfaces as a write error downstream.
func ResolveOutputPath(suggested string, now time.Time, opts OutputOptions) string {
	name := suggested
	if opts.HasBasename {
		name = opts.Basename + filepath.Ext(suggested)
	}
	if opts.PrependDate {
		format := opts.PrefixFormat
		if format == "" {
			format = DefaultPrefixFormat
		}
		name = strftime.Format(format, now.UTC()) + name
	}

	path := filepath.Join(opts.Directory, name)
	if opts.Overwrite || !fileExists(path) {
		return path
	}

	slog.Warn("file already exists, appending a counter", "path", path)
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n := 1; ; n++ {
		alternate := fmt.Sprintf("%s_(%d)%s", stem, n, ext)
		if !fileExists(alternate) {
			return alternate
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
