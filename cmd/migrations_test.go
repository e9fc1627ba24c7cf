package main

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	createUniqueRe = regexp.MustCompile(`(?i)CREATE UNIQUE INDEX IF NOT EXISTS (\w+) ON users ([^;]+);`)
	dropIndexRe    = regexp.MustCompile(`(?i)DROP INDEX IF EXISTS (\w+);`)
)

// Unique keys on users cover live rows only.
func TestMigrations_UserUniqueIndexesSkipDeletedRows(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "db", "migrations", "*.up.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	sort.Strings(files)

	indexes := map[string]string{}
	for _, f := range files {
		b, err := os.ReadFile(f)
		require.NoError(t, err)
		sql := string(b)
		for _, m := range dropIndexRe.FindAllStringSubmatch(sql, -1) {
			delete(indexes, m[1])
		}
		for _, m := range createUniqueRe.FindAllStringSubmatch(sql, -1) {
			indexes[m[1]] = m[2]
		}
	}

	require.Len(t, indexes, 2)
	for name, def := range indexes {
		assert.True(t, strings.Contains(def, "WHERE deleted_at IS NULL"), "%s: %s", name, def)
	}
}
