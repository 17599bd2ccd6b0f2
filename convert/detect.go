package convert

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	"retainformat/common"
)

// enough to see BOM and let filetype recognize binary formats
const sniffLen = 512

type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

func (e srcEncoding) String() string {
	switch e {
	case encUTF8:
		return "utf8"
	case encUTF16BigEndian:
		return "utf16be"
	case encUTF16LittleEndian:
		return "utf16le"
	case encUTF32BigEndian:
		return "utf32be"
	case encUTF32LittleEndian:
		return "utf32le"
	}
	return "unknown"
}

func isUTF8BOM3(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFE && buf[1] == 0xFF
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xFE
}

func isUTF32BigEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00
}

// detectUTF looks for byte order mark, UTF-32 LE has to be checked before
// UTF-16 LE.
func detectUTF(buf []byte) srcEncoding {
	switch {
	case isUTF8BOM3(buf):
		return encUTF8
	case isUTF32BigEndianBOM4(buf):
		return encUTF32BigEndian
	case isUTF32LittleEndianBOM4(buf):
		return encUTF32LittleEndian
	case isUTF16BigEndianBOM2(buf):
		return encUTF16BigEndian
	case isUTF16LittleEndianBOM2(buf):
		return encUTF16LittleEndian
	}
	return encUnknown
}

// selectReader returns reader producing UTF-8 without BOM for inputs with
// BOM, other inputs are returned as is.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	switch enc {
	case encUnknown:
		return r
	case encUTF8:
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
	case encUTF16BigEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder())
	case encUTF16LittleEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder())
	case encUTF32BigEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM).NewDecoder())
	case encUTF32LittleEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM).NewDecoder())
	}
	// this should never happen
	panic(fmt.Sprintf("unexpected source encoding %d", enc))
}

// inputFormat derives document flavor from file name.
func inputFormat(name string) (common.InputFmt, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm", ".xhtml":
		return common.InputFmtHtml, true
	case ".md", ".markdown":
		return common.InputFmtMarkdown, true
	}
	return 0, false
}

func readHead(r io.Reader) ([]byte, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return head[:n], nil
}

func isArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head, err := readHead(f)
	if err != nil {
		return false, err
	}
	return filetype.Is(head, "zip"), nil
}

// sniffDocument rejects names we do not know how to read and content which
// looks binary.
func sniffDocument(name string, r io.Reader) (bool, common.InputFmt, srcEncoding, error) {
	format, ok := inputFormat(name)
	if !ok {
		return false, 0, encUnknown, nil
	}
	head, err := readHead(r)
	if err != nil {
		return false, 0, encUnknown, err
	}
	if enc := detectUTF(head); enc != encUnknown {
		return true, format, enc, nil
	}
	if kind, _ := filetype.Match(head); kind != filetype.Unknown {
		return false, 0, encUnknown, nil
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return false, 0, encUnknown, nil
	}
	return true, format, encUnknown, nil
}

func isDocumentFile(path string) (bool, common.InputFmt, srcEncoding, error) {
	if _, ok := inputFormat(path); !ok {
		return false, 0, encUnknown, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, 0, encUnknown, err
	}
	defer f.Close()
	return sniffDocument(path, f)
}

func isDocumentInArchive(f *zip.File) (bool, common.InputFmt, srcEncoding, error) {
	if _, ok := inputFormat(f.Name); !ok {
		return false, 0, encUnknown, nil
	}
	r, err := f.Open()
	if err != nil {
		return false, 0, encUnknown, err
	}
	defer r.Close()
	return sniffDocument(f.Name, r)
}
