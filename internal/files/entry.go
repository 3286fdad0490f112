package files

import (
	"encoding/json"
	"fmt"
)

// EntryKind discriminates the Entry union.
type EntryKind uint8

const (
	KindUnknown EntryKind = iota
	KindFile
	KindDirectory
	KindSymlink
)

// String returns the wire name of the kind.
func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	case KindSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

func parseKind(s string) (EntryKind, error) {
	switch s {
	case "file":
		return KindFile, nil
	case "directory":
		return KindDirectory, nil
	case "symlink":
		return KindSymlink, nil
	case "unknown":
		return KindUnknown, nil
	}
	return KindUnknown, fmt.Errorf("unknown entry type %q", s)
}

// Entry is a snapshot of one filesystem object taken at listing time.
//
// Size is meaningful only for KindFile; Target only for KindSymlink, where nil
// means the link could not be read.
type Entry struct {
	Kind   EntryKind
	Path   string
	Size   int64
	Target *string
}

// NewFile returns a file entry.
func NewFile(path string, size int64) Entry {
	return Entry{Kind: KindFile, Path: path, Size: size}
}

// NewDirectory returns a directory entry.
func NewDirectory(path string) Entry {
	return Entry{Kind: KindDirectory, Path: path}
}

// NewSymlink returns a symlink entry; target may be nil.
func NewSymlink(path string, target *string) Entry {
	return Entry{Kind: KindSymlink, Path: path, Target: target}
}

// NewUnknown returns an entry for an object that is neither file, directory nor symlink.
func NewUnknown(path string) Entry {
	return Entry{Kind: KindUnknown, Path: path}
}

type fileWire struct {
	Type string `json:"type"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

type symlinkWire struct {
	Type   string  `json:"type"`
	Path   string  `json:"path"`
	Target *string `json:"target"`
}

type plainWire struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

// MarshalJSON writes the variant selected by Kind with an explicit "type" field.
func (e Entry) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case KindFile:
		return json.Marshal(fileWire{Type: e.Kind.String(), Path: e.Path, Size: e.Size})
	case KindSymlink:
		return json.Marshal(symlinkWire{Type: e.Kind.String(), Path: e.Path, Target: e.Target})
	default:
		return json.Marshal(plainWire{Type: e.Kind.String(), Path: e.Path})
	}
}

// UnmarshalJSON reads any variant, dispatching on the "type" field.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   string  `json:"type"`
		Path   string  `json:"path"`
		Size   int64   `json:"size"`
		Target *string `json:"target"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	kind, err := parseKind(raw.Type)
	if err != nil {
		return err
	}
	*e = Entry{Kind: kind, Path: raw.Path}
	switch kind {
	case KindFile:
		e.Size = raw.Size
	case KindSymlink:
		e.Target = raw.Target
	}
	return nil
}
