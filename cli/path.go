package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/hocon/pkg"
)

// defaultDirMode is the default permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

// configPath returns the path to the user's configuration file.
func configPath() string {
	return filepath.Join(pkg.ConfigDir(), pkg.ConfigFile)
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
