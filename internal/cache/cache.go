package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/colourscan/colourscan/internal/savefile"
	"github.com/colourscan/colourscan/internal/types"
)

// FileName is the name of the result cache inside its directory.
const FileName = ".colourscancache.json"

// Entry is a cached scan of one file.
type Entry struct {
	// Key is Hash of the raw file bytes joined with the scan options that
	// change results.
	Key    string           `json:"key"`
	Result types.FileResult `json:"result"`
}

type DB struct {
	// absolute file path -> cached result
	Entries map[string]Entry `json:"entries"`
}

func defaultPath(dir string) string {
	return filepath.Join(dir, FileName)
}

func Load(dir string) (DB, error) {
	var db DB
	f, err := os.ReadFile(defaultPath(dir))
	if err != nil {
		return DB{Entries: map[string]Entry{}}, err
	}
	if err := json.Unmarshal(f, &db); err != nil {
		return DB{Entries: map[string]Entry{}}, err
	}
	if db.Entries == nil {
		db.Entries = map[string]Entry{}
	}
	return db, nil
}

func Save(dir string, db DB) error {
	if db.Entries == nil {
		return errors.New("empty cache")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, _ := json.MarshalIndent(db, "", "  ")
	return os.WriteFile(defaultPath(dir), b, 0o644)
}

// Lookup returns the cached result for path if its key still matches.
func (db DB) Lookup(path, key string) (types.FileResult, bool) {
	e, ok := db.Entries[path]
	if !ok || e.Key != key {
		return types.FileResult{}, false
	}
	return e.Result, true
}

// Hash returns the xxhash64 of b as 16 hex digits.
func Hash(b []byte) string {
	if len(b) == 0 {
		return "0000000000000000"
	}
	sum := xxhash.Sum64(b)
	var buf [16]byte
	const hex = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = hex[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}

// Key derives a cache key from raw file contents and the options that
// affect what the scanner reports.
func Key(raw []byte, threshold int, limits savefile.Limits) string {
	k := Hash(raw) + ":" + strconv.Itoa(threshold)
	if limits.Raw {
		k += ":raw"
	} else if limits.MaxDecompressedBytes > 0 {
		k += ":max=" + strconv.FormatInt(limits.MaxDecompressedBytes, 10)
	}
	return k
}
