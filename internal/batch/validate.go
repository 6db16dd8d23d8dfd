package batch

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileInfo describes a file offered for intake. Type is a free identifier
// (extension or MIME type); when empty the lowercased filename extension is
// used.
type FileInfo struct {
	Name string
	Path string
	Type string
	Size int64
}

// Limits is the session capacity and validation policy, enforced before any
// network interaction.
type Limits struct {
	MaxItems    int
	MaxFileSize int64
	// AcceptedTypes entries are exact identifiers or wildcards: "*suffix"
	// matches by suffix, "prefix*" matches by prefix.
	AcceptedTypes []string
}

// Check validates one file against the size and type rules. The returned
// error message is meant for the session error list shown to the user.
func (l Limits) Check(f FileInfo) error {
	if l.MaxFileSize > 0 && f.Size > l.MaxFileSize {
		return fmt.Errorf("%s: file size %d exceeds limit of %d bytes", f.Name, f.Size, l.MaxFileSize)
	}

	fileType := f.Type
	if fileType == "" {
		fileType = strings.ToLower(filepath.Ext(f.Name))
	}
	if len(l.AcceptedTypes) > 0 && !typeAccepted(l.AcceptedTypes, fileType) {
		return fmt.Errorf("%s: file type %q is not accepted", f.Name, fileType)
	}
	return nil
}

func typeAccepted(accepted []string, fileType string) bool {
	fileType = strings.ToLower(fileType)
	for _, a := range accepted {
		a = strings.ToLower(strings.TrimSpace(a))
		switch {
		case a == "":
			continue
		case strings.HasPrefix(a, "*"):
			if strings.HasSuffix(fileType, a[1:]) {
				return true
			}
		case strings.HasSuffix(a, "*"):
			if strings.HasPrefix(fileType, a[:len(a)-1]) {
				return true
			}
		case a == fileType:
			return true
		}
	}
	return false
}
