package prefabs

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// bundled holds the default world, profiles, scripts and schemas compiled
// into the binary.
//
//go:embed *.yaml scripts/*.tengo schemas/*.json
var bundled embed.FS

// Dir is the on-disk directory whose files shadow the bundled ones.
var Dir = "prefabs"

const (
	scriptDir = "scripts"
	schemaDir = "schemas"
)

// Load reads a world, profile or animation graph by file name.
func Load(name string) ([]byte, error) {
	return read(relPath("", name))
}

// LoadScript reads a tengo script. Names may be bare or carry the scripts/
// or prefabs/scripts/ prefix.
func LoadScript(name string) ([]byte, error) {
	return read(relPath(scriptDir, name))
}

// ModTime reports the modification time of the on-disk copy of name, if one
// exists.
func ModTime(name string) (time.Time, bool) {
	info, err := os.Stat(onDisk(relPath("", name)))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// readSchema returns a bundled JSON schema. Schemas are never overridden on
// disk so a shadowed prefab is still checked against the shipped rules.
func readSchema(name string) ([]byte, error) {
	return bundled.ReadFile(path.Join(schemaDir, name))
}

func read(rel string) ([]byte, error) {
	if rel == "" {
		return nil, fmt.Errorf("prefabs: empty name: %w", fs.ErrNotExist)
	}
	data, err := os.ReadFile(onDisk(rel))
	switch {
	case err == nil:
		return data, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("prefabs: read %s: %w", rel, err)
	}
	return bundled.ReadFile(rel)
}

// relPath maps a user supplied name to a slash separated path below Dir,
// placed under sub when sub is set.
func relPath(sub, name string) string {
	if name == "" {
		return ""
	}
	p := strings.TrimPrefix(filepath.ToSlash(name), "prefabs/")
	if sub != "" {
		p = path.Join(sub, strings.TrimPrefix(p, sub+"/"))
	}
	return path.Clean(p)
}

func onDisk(rel string) string {
	return filepath.Join(Dir, filepath.FromSlash(rel))
}
