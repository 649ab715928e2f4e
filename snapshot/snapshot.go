// Package snapshot converts store snapshots to and from interchange formats.
//
// Decoding is all or nothing: a source that fails to parse anywhere yields a
// *model.MalformedSnapshotError and no records.
package snapshot

import (
	"fmt"
	"io"
	"strings"

	"github.com/cqkv/recstore/model"
)

type Codec interface {
	Encode(w io.Writer, snap *model.Snapshot) error
	Decode(r io.Reader) (*model.Snapshot, error)
}

const (
	FormatCSV     = "csv"
	FormatXML     = "xml"
	FormatMsgpack = "msgpack"
)

// ByFormat returns the codec registered for a format name.
func ByFormat(format string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV:
		return CSV{}, nil
	case FormatXML:
		return XML{}, nil
	case FormatMsgpack, "mp":
		return Msgpack{}, nil
	}
	return nil, fmt.Errorf("unknown snapshot format %q", format)
}

func parseGender(text string) (rune, error) {
	return model.ParseGender(text)
}
