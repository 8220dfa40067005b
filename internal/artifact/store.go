// Package artifact implements the directory-backed store every phase reads
// from and writes to. Artifacts are plain files keyed by naming convention;
// their presence doubles as the pipeline's persisted state.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	inputTextName  = "input_text.txt"
	chunksDir      = "chunks"
	scriptsDir     = "scripts"
	transcriptsDir = "transcripts"
	audioDir       = "audio"
)

var (
	reChunkFile  = regexp.MustCompile(`^chunk_(\d{2,})\.txt$`)
	reScriptFile = regexp.MustCompile(`^script_(\d{2,})\.txt$`)
	reAudioFile  = regexp.MustCompile(`^(\d{2,})_.*\.mp3$`)
	reUnsafe     = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)
)

// ChunkMeta is the sidecar metadata written next to each chunk artifact.
type ChunkMeta struct {
	Ordinal          int     `json:"ordinal"`
	Title            string  `json:"title"`
	CharCount        int     `json:"char_count"`
	EstimatedMinutes float64 `json:"estimated_minutes"`
}

// Store maps artifact keys to files under a single output root.
type Store struct {
	root string
}

// New creates a Store rooted at dir. Directories are created lazily on write.
func New(dir string) *Store {
	return &Store{root: dir}
}

func (s *Store) Root() string { return s.root }

func (s *Store) InputTextPath() string {
	return filepath.Join(s.root, inputTextName)
}

func (s *Store) ChunkPath(ordinal int) string {
	return filepath.Join(s.root, chunksDir, fmt.Sprintf("chunk_%02d.txt", ordinal))
}

func (s *Store) ChunkMetaPath(ordinal int) string {
	return filepath.Join(s.root, chunksDir, fmt.Sprintf("chunk_%02d_meta.json", ordinal))
}

func (s *Store) ScriptPath(ordinal int) string {
	return filepath.Join(s.root, scriptsDir, fmt.Sprintf("script_%02d.txt", ordinal))
}

func (s *Store) TranscriptPath(ordinal int) string {
	return filepath.Join(s.root, transcriptsDir, fmt.Sprintf("script_%02d.docx", ordinal))
}

// AudioPath encodes both the ordinal and a filesystem-safe form of the chunk
// title in the terminal artifact's name.
func (s *Store) AudioPath(ordinal int, title string) string {
	name := fmt.Sprintf("%02d_%s.mp3", ordinal, SanitizeTitle(title))
	return filepath.Join(s.root, audioDir, name)
}

// Exists reports whether the artifact at path is present and non-empty.
func (s *Store) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// WriteText writes an artifact atomically enough for a single-writer run:
// parent directory first, then a whole-file write.
func (s *Store) WriteText(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	return nil
}

func (s *Store) ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read artifact %s: %w", path, err)
	}
	return string(data), nil
}

func (s *Store) WriteChunkMeta(meta ChunkMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal chunk meta: %w", err)
	}
	return s.WriteText(s.ChunkMetaPath(meta.Ordinal), string(data)+"\n")
}

func (s *Store) ReadChunkMeta(ordinal int) (ChunkMeta, error) {
	var meta ChunkMeta
	data, err := os.ReadFile(s.ChunkMetaPath(ordinal))
	if err != nil {
		return meta, fmt.Errorf("read chunk meta %d: %w", ordinal, err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("parse chunk meta %d: %w", ordinal, err)
	}
	return meta, nil
}

// ChunkOrdinals returns the sorted ordinals of all chunk artifacts present.
func (s *Store) ChunkOrdinals() ([]int, error) {
	return s.ordinals(chunksDir, reChunkFile)
}

// ScriptOrdinals returns the sorted ordinals of all script artifacts present.
func (s *Store) ScriptOrdinals() ([]int, error) {
	return s.ordinals(scriptsDir, reScriptFile)
}

// AudioOrdinals returns the sorted ordinals of all audio artifacts present.
func (s *Store) AudioOrdinals() ([]int, error) {
	return s.ordinals(audioDir, reAudioFile)
}

func (s *Store) ordinals(dir string, re *regexp.Regexp) ([]int, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s dir: %w", dir, err)
	}

	var ordinals []int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := re.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		ordinals = append(ordinals, n)
	}

	sort.Ints(ordinals)
	return ordinals, nil
}

// RemoveChunksFrom deletes chunk artifacts (text and meta) with ordinals at or
// above first. Rerunning Split with a shorter plan must not leave stale tails.
func (s *Store) RemoveChunksFrom(first int) error {
	ordinals, err := s.ChunkOrdinals()
	if err != nil {
		return err
	}
	for _, n := range ordinals {
		if n < first {
			continue
		}
		if err := os.Remove(s.ChunkPath(n)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale chunk %d: %w", n, err)
		}
		if err := os.Remove(s.ChunkMetaPath(n)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale chunk meta %d: %w", n, err)
		}
	}
	return nil
}

// SanitizeTitle reduces a derived title to a short filesystem-safe slug.
func SanitizeTitle(title string) string {
	title = strings.TrimSpace(title)
	title = reUnsafe.ReplaceAllString(title, "_")
	title = strings.Trim(title, "_")
	if title == "" {
		return "untitled"
	}
	runes := []rune(title)
	if len(runes) > 40 {
		runes = runes[:40]
	}
	return string(runes)
}
