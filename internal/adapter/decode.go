package adapter

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeReader wraps r so its bytes come out as UTF-8, using the
// encoding the bank config declares. Category inference and column
// matching are Turkish-locale sensitive, so decoding must happen
// before any string comparison.
func decodeReader(r io.Reader, name string) (io.Reader, error) {
	enc, err := encodingByName(name)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

func encodingByName(name string) (encoding.Encoding, error) {
	switch normalizeEncodingName(name) {
	case "", "utf8", "utf8sig":
		// UTF8BOM tolerates and strips a leading BOM.
		return unicode.UTF8BOM, nil
	case "windows1254", "cp1254":
		return charmap.Windows1254, nil
	case "iso88599", "latin5":
		return charmap.ISO8859_9, nil
	case "iso88591", "latin1":
		return charmap.ISO8859_1, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

func normalizeEncodingName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(name)
}
