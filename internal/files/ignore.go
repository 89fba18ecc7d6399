// Package files manages .colourscanignore files, which list glob patterns of
// files to skip when a directory is walked.
package files

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFileName is looked up in every directory a scan walks. Its patterns
// are relative to the directory that holds it.
const IgnoreFileName = ".colourscanignore"

// LoadIgnore returns the patterns in dir's ignore file. Blank lines and
// lines starting with # are skipped. A missing file yields no patterns.
func LoadIgnore(dir string) ([]string, error) {
	f, err := os.Open(filepath.Join(dir, IgnoreFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

// AppendIgnore ensures pattern is present in dir's ignore file. It creates
// the file if missing. Idempotent.
func AppendIgnore(dir, pattern string) error {
	existing, err := LoadIgnore(dir)
	if err != nil {
		return err
	}
	for _, p := range existing {
		if p == pattern {
			return nil
		}
	}
	f, err := os.OpenFile(filepath.Join(dir, IgnoreFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(pattern + "\n")
	return err
}
