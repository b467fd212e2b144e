package parser

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// BOM constants
var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DetectAndDecode detects the encoding of the input data, strips any
// BOM, and returns the decoded UTF-8 bytes along with the detected
// encoding name. The cascade: BOM, valid UTF-8, Shift_JIS, EUC-JP,
// Latin-1. The Japanese legacy encodings are accepted only when they
// decode without replacement characters; Latin-1 always decodes.
func DetectAndDecode(data []byte) ([]byte, string, error) {
	if len(data) == 0 {
		return data, "utf-8", nil
	}

	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], "utf-8-sig", nil
	case bytes.HasPrefix(data, bomUTF16LE):
		decoded, err := decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), data[2:])
		if err != nil {
			return nil, "", fmt.Errorf("UTF-16 LE decode failed: %w", err)
		}
		return decoded, "utf-16le", nil
	case bytes.HasPrefix(data, bomUTF16BE):
		decoded, err := decodeWith(unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), data[2:])
		if err != nil {
			return nil, "", fmt.Errorf("UTF-16 BE decode failed: %w", err)
		}
		return decoded, "utf-16be", nil
	}

	if utf8.Valid(data) {
		return data, "utf-8", nil
	}

	if decoded, ok := tryDecode(japanese.ShiftJIS, data); ok {
		return decoded, "shift_jis", nil
	}
	if decoded, ok := tryDecode(japanese.EUCJP, data); ok {
		return decoded, "euc-jp", nil
	}

	// Latin-1 maps every byte to a code point, so it cannot fail.
	decoded, err := decodeWith(charmap.ISO8859_1, data)
	if err != nil {
		return nil, "", fmt.Errorf("latin-1 decode failed: %w", err)
	}
	return decoded, "latin-1", nil
}

// Decode decodes data according to a declared encoding name, for
// sources whose catalog spec pins the encoding instead of relying on
// detection. An empty name means autodetect.
func Decode(data []byte, name string) ([]byte, error) {
	switch normalizeEncodingName(name) {
	case "", "auto":
		decoded, _, err := DetectAndDecode(data)
		return decoded, err
	case "utf8", "utf8sig":
		return bytes.TrimPrefix(data, bomUTF8), nil
	case "shiftjis", "sjis", "cp932", "windows31j":
		return decodeWith(japanese.ShiftJIS, data)
	case "eucjp":
		return decodeWith(japanese.EUCJP, data)
	case "utf16", "utf16le":
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), data)
	case "utf16be":
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.UseBOM), data)
	case "latin1", "iso88591":
		return decodeWith(charmap.ISO8859_1, data)
	default:
		return nil, fmt.Errorf("unknown encoding %q", name)
	}
}

func normalizeEncodingName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

func decodeWith(e encoding.Encoding, data []byte) ([]byte, error) {
	decoded, _, err := transform.Bytes(e.NewDecoder(), data)
	return decoded, err
}

// tryDecode accepts a candidate encoding only when the decode produces
// no replacement characters, which is how the detection cascade tells
// Shift_JIS from EUC-JP from neither.
func tryDecode(e encoding.Encoding, data []byte) ([]byte, bool) {
	decoded, err := decodeWith(e, data)
	if err != nil {
		return nil, false
	}
	if bytes.ContainsRune(decoded, utf8.RuneError) {
		return nil, false
	}
	return decoded, true
}
