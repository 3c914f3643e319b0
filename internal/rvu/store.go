package rvu

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// Pair is an unordered pair of procedure codes.
type Pair struct {
	Code1 string
	Code2 string
}

// Store holds the RVU and edit-pair lookup tables. All reads are safe
// concurrently with Reload.
type Store struct {
	rvuPath string
	cciPath string

	mu    sync.RWMutex
	rvus  map[string]float64
	pairs map[Pair]string
}

// NewStore builds an empty store over the given table files. Call Reload
// to populate it.
func NewStore(rvuPath, cciPath string) *Store {
	return &Store{
		rvuPath: rvuPath,
		cciPath: cciPath,
		rvus:    map[string]float64{},
		pairs:   map[Pair]string{},
	}
}

// SetCCIPath repoints the edit-pair source, used when a sync run moves the
// combined table. Takes effect on the next Reload.
func (s *Store) SetCCIPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cciPath = path
}

// Reload re-reads both tables from disk. A missing file yields an empty
// table rather than an error; a malformed file fails the reload and keeps
// the previous tables.
func (s *Store) Reload() error {
	s.mu.RLock()
	rvuPath, cciPath := s.rvuPath, s.cciPath
	s.mu.RUnlock()

	rvus, err := loadRVUTable(rvuPath)
	if err != nil {
		return fmt.Errorf("load rvu table: %w", err)
	}
	pairs, err := loadPairTable(cciPath)
	if err != nil {
		return fmt.Errorf("load edit-pair table: %w", err)
	}

	s.mu.Lock()
	s.rvus = rvus
	s.pairs = pairs
	s.mu.Unlock()
	return nil
}

// RVU returns the work RVU for a code, zero when unknown.
func (s *Store) RVU(code string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rvus[code]
}

// Modifier returns the edit-pair modifier indicator for two codes, in
// either order. ok=false means no edit exists for the pair.
func (s *Store) Modifier(code1, code2 string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mod, ok := s.pairs[Pair{code1, code2}]
	return mod, ok
}

// Len reports the table sizes for diagnostics.
func (s *Store) Len() (rvuCodes, editPairs int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rvus), len(s.pairs) / 2
}

func loadRVUTable(path string) (map[string]float64, error) {
	table := map[string]float64{}
	rows, err := readCSVMaps(path)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		code := strings.TrimSpace(row["code"])
		if code == "" {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(row["work_rvu"]), 64)
		if err != nil {
			value = 0
		}
		table[code] = value
	}
	return table, nil
}

var headerNormalizeRE = regexp.MustCompile(`[^a-z0-9]+`)

// Header aliases accepted for the edit-pair columns. The upstream header
// wording has drifted over the years; first non-empty alias wins and any
// header outside this list simply stays unmapped.
var (
	code1Aliases    = []string{"column1", "col1", "c1", "column"}
	code2Aliases    = []string{"column2", "col2", "c2"}
	modifierAliases = []string{"modifier", "mod"}
)

func loadPairTable(path string) (map[Pair]string, error) {
	table := map[Pair]string{}
	rows, err := readCSVMaps(path)
	if err != nil {
		return nil, err
	}
	for _, raw := range rows {
		row := map[string]string{}
		for key, value := range raw {
			normalized := headerNormalizeRE.ReplaceAllString(strings.ToLower(key), "")
			if _, exists := row[normalized]; !exists || row[normalized] == "" {
				row[normalized] = strings.TrimSpace(value)
			}
		}
		code1 := firstNonEmpty(row, code1Aliases)
		code2 := firstNonEmpty(row, code2Aliases)
		modifier := firstNonEmpty(row, modifierAliases)
		if code1 == "" || code2 == "" {
			continue
		}
		// Edits apply regardless of code order.
		table[Pair{code1, code2}] = modifier
		table[Pair{code2, code1}] = modifier
	}
	return table, nil
}

func firstNonEmpty(row map[string]string, keys []string) string {
	for _, key := range keys {
		if value := row[key]; value != "" {
			return value
		}
	}
	return ""
}

func readCSVMaps(path string) ([]map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		row := make(map[string]string, len(header))
		for i, column := range header {
			if i < len(record) {
				row[column] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
