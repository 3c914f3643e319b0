package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ErrNoDataMember indicates an archive opened fine but held no spreadsheet
// or text member.
var ErrNoDataMember = errors.New("no data member in archive")

// Member is one data file lifted out of a release archive.
type Member struct {
	Name string
	Data []byte
}

// IsZip reports whether the payload is a structurally valid zip archive.
// The check opens the archive rather than sniffing magic bytes, because
// the license gate sometimes serves HTML with misleading headers.
func IsZip(payload []byte) bool {
	_, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	return err == nil
}

// Extract returns the first archive member whose name ends in .xlsx or
// .txt, in listing order. Exactly one member is consumed even when several
// match.
func Extract(payload []byte) (Member, error) {
	reader, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return Member{}, fmt.Errorf("open archive: %w", err)
	}
	for _, file := range reader.File {
		name := strings.ToLower(file.Name)
		if !strings.HasSuffix(name, ".xlsx") && !strings.HasSuffix(name, ".txt") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return Member{}, fmt.Errorf("open member %s: %w", file.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return Member{}, fmt.Errorf("read member %s: %w", file.Name, err)
		}
		return Member{Name: file.Name, Data: data}, nil
	}
	return Member{}, ErrNoDataMember
}
