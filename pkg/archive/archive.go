// Package archive reads named text members out of feed zip bundles.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/grovetools/ausec/errors"
	"github.com/grovetools/ausec/logging"
	"github.com/grovetools/ausec/pkg/metrics"
)

var log = logging.NewLogger("archive")

// ExtractText returns the content of member inside the zip at archivePath,
// decoded as UTF-8. Member names are matched exactly, including their
// directory prefix.
func ExtractText(archivePath, member string) (string, error) {
	text, err := extractText(archivePath, member)
	metrics.RecordExtraction(err)
	return text, err
}

func extractText(archivePath, member string) (string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", errors.ArchiveCorrupt(archivePath, err)
	}
	defer zr.Close()

	logMembers(archivePath, &zr.Reader)

	var target *zip.File
	for _, f := range zr.File {
		if f.Name == member {
			target = f
			break
		}
	}
	if target == nil {
		return "", errors.MemberNotFound(archivePath, member)
	}

	rc, err := target.Open()
	if err != nil {
		return "", errors.ArchiveCorrupt(archivePath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", errors.ArchiveCorrupt(archivePath, fmt.Errorf("read %s: %w", member, err))
	}
	if !utf8.Valid(data) {
		return "", errors.ArchiveCorrupt(archivePath, fmt.Errorf("%s is not valid UTF-8", member))
	}

	log.WithField("member", member).WithField("bytes", len(data)).Debug("Extracted member")
	return string(data), nil
}

// Members lists the member names of the zip at archivePath in archive order.
func Members(archivePath string) ([]string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, errors.ArchiveCorrupt(archivePath, err)
	}
	defer zr.Close()
	return logMembers(archivePath, &zr.Reader), nil
}

func logMembers(archivePath string, zr *zip.Reader) []string {
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	log.WithField("archive", archivePath).WithField("members", names).Trace("Files in zip file")
	return names
}
