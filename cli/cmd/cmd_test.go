package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

// testEngine returns engine flags isolated from the process environment and
// the network.
func testEngine() *Engine {
	return &Engine{
		MaxIncludeDepth: 10,
		HTTPTimeout:     time.Second,
	}
}

// capture redirects the command streams for the duration of the test.
func capture(t *testing.T, in string) *bytes.Buffer {
	t.Helper()

	var out bytes.Buffer

	oldIn, oldOut := stdin, stdout
	stdin, stdout = strings.NewReader(in), &out

	t.Cleanup(func() { stdin, stdout = oldIn, oldOut })

	return &out
}

// writeFile writes content to name under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

// TestUniqueSourcesEmpty tests that an empty source list stays empty.
func TestUniqueSourcesEmpty(t *testing.T) {
	if got := uniqueSources(nil); len(got) != 0 {
		t.Errorf("uniqueSources(nil) = %v, want empty", got)
	}
}

// TestUniqueSourcesDuplicatePaths tests that the same path given twice is
// loaded once.
func TestUniqueSourcesDuplicatePaths(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.conf", "a = 1")
	b := writeFile(t, dir, "b.conf", "b = 1")

	got := uniqueSources([]string{a, b, a})
	if want := []string{a, b}; !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestUniqueSourcesRelativeAbsoluteDuplicates tests that relative and
// absolute paths to the same file are treated as duplicates.
func TestUniqueSourcesRelativeAbsoluteDuplicates(t *testing.T) {
	dir := t.TempDir()
	abs := writeFile(t, dir, "a.conf", "a = 1")

	t.Chdir(dir)

	got := uniqueSources([]string{"a.conf", abs})
	if want := []string{"a.conf"}; !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestUniqueSourcesSymlinkDuplicates tests that a symlink and its target are
// treated as duplicates.
func TestUniqueSourcesSymlinkDuplicates(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "a.conf", "a = 1")

	link := filepath.Join(dir, "link.conf")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got := uniqueSources([]string{link, target})
	if want := []string{link}; !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestUniqueSourcesStdinLast tests that every "-" collapses to a single
// stdin source after all files.
func TestUniqueSourcesStdinLast(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.conf", "a = 1")

	got := uniqueSources([]string{"-", a, "-"})
	if want := []string{a, "-"}; !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestUniqueSourcesNonexistentKept tests that paths that cannot be stat'ed
// are passed through once for the loader to resolve or report.
func TestUniqueSourcesNonexistentKept(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "app")

	got := uniqueSources([]string{missing, missing})
	if want := []string{missing}; !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestCaptureRestores tests that capture puts the streams back.
func TestCaptureRestores(t *testing.T) {
	oldIn, oldOut := stdin, stdout

	t.Run("inner", func(t *testing.T) {
		out := capture(t, "x")

		if _, err := io.WriteString(stdout, "y"); err != nil {
			t.Fatal(err)
		}

		if out.String() != "y" {
			t.Errorf("captured %q, want %q", out.String(), "y")
		}
	})

	if stdin != oldIn || stdout != oldOut {
		t.Error("capture did not restore the command streams")
	}
}
