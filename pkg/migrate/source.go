package migrate

import (
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// 001_initial_schema.up.sql; the .up suffix is optional
var migrationFile = regexp.MustCompile(`^(\d+)_(.+?)(\.up)?\.sql$`)

type fsSource struct {
	fsys fs.FS
	dir  string
}

// FS reads migrations from dir within fsys, usually an embed.FS. Files that
// do not look like NNN_name.sql, including .down.sql files, are ignored.
func FS(fsys fs.FS, dir string) Source {
	return fsSource{fsys: fsys, dir: dir}
}

func (s fsSource) Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(s.fsys, s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory %s: %w", s.dir, err)
	}

	var migrations []Migration
	seen := map[int]string{}
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".down.sql") {
			continue
		}
		match := migrationFile.FindStringSubmatch(e.Name())
		if match == nil {
			continue
		}

		version, err := strconv.Atoi(match[1])
		if err != nil || version <= 0 {
			return nil, fmt.Errorf("invalid version number in file %s", e.Name())
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migration version %d used by both %s and %s", version, prev, e.Name())
		}
		seen[version] = e.Name()

		content, err := fs.ReadFile(s.fsys, path.Join(s.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", e.Name(), err)
		}
		if strings.TrimSpace(string(content)) == "" {
			return nil, fmt.Errorf("migration file %s is empty", e.Name())
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    strings.ReplaceAll(match[2], "_", " "),
			SQL:     string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}
