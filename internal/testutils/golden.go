package testutils

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/require"
)

// update rewrites golden files instead of comparing: go test ./... -update
var update = flag.Bool("update", false, "rewrite golden files")

// AssertGolden compares actual against testdata/<name>.golden. With -update,
// or FIRECROWN_UPDATE_GOLDEN=1, the file is rewritten instead.
func AssertGolden(t *testing.T, name, actual string) {
	t.Helper()
	path := filepath.Join("testdata", name+".golden")

	if *update || os.Getenv("FIRECROWN_UPDATE_GOLDEN") == "1" {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(actual), 0644))
		return
	}

	expected, err := os.ReadFile(path)
	require.NoError(t, err, "missing golden file %s, run with -update", path)

	if string(expected) != actual {
		t.Errorf("output differs from %s:\n%s", path, Diff(string(expected), actual))
	}
}

// Diff renders a compact character diff of expected against actual.
func Diff(expected, actual string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(expected, actual, false)

	var b strings.Builder
	for _, diff := range diffs {
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			fmt.Fprintf(&b, "- %q\n", diff.Text)
		case diffmatchpatch.DiffInsert:
			fmt.Fprintf(&b, "+ %q\n", diff.Text)
		case diffmatchpatch.DiffEqual:
			// Don't print unchanged parts for brevity
			if len(diff.Text) > 50 {
				fmt.Fprintf(&b, "  %q...\n", diff.Text[:47])
			} else {
				fmt.Fprintf(&b, "  %q\n", diff.Text)
			}
		}
	}
	return b.String()
}
