package media

import (
	"path"
	"strings"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindImage
	KindCSV
	KindJSON
)

type Info struct {
	Kind        Kind
	Ext         string
	ContentType string
}

// Classify looks at the extension of a file name or URL. Query strings are ignored.
func Classify(name string) Info {
	if idx := strings.IndexAny(name, "?#"); idx != -1 {
		name = name[:idx]
	}
	ext := strings.ToLower(path.Ext(name))

	switch ext {
	case ".jpg", ".jpeg":
		return Info{Kind: KindImage, Ext: ext, ContentType: "image/jpeg"}
	case ".png":
		return Info{Kind: KindImage, Ext: ext, ContentType: "image/png"}
	case ".webp":
		return Info{Kind: KindImage, Ext: ext, ContentType: "image/webp"}
	case ".gif":
		return Info{Kind: KindImage, Ext: ext, ContentType: "image/gif"}
	case ".csv":
		return Info{Kind: KindCSV, Ext: ext, ContentType: "text/csv"}
	case ".json":
		return Info{Kind: KindJSON, Ext: ext, ContentType: "application/json"}
	}
	return Info{Kind: KindUnknown, Ext: ext}
}

// IsData reports whether the file can hold court rows for an import.
func (i Info) IsData() bool {
	return i.Kind == KindCSV || i.Kind == KindJSON
}
