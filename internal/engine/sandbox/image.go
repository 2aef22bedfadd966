package sandbox

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/san-kum/corearena/internal/engine"
)

const (
	Magic         uint32 = 0x00EA83F3
	NameLength           = 128
	CommentLength        = 2048
	HeaderSize           = 4 + NameLength + 1 + 4 + CommentLength + 1
	MaxCodeSize          = engine.MemSize / 6
)

// EncodeImage serializes a champion header followed by its code.
func EncodeImage(name, comment string, code []byte) ([]byte, error) {
	if len(name) > NameLength {
		return nil, fmt.Errorf("name is %d bytes, limit is %d", len(name), NameLength)
	}
	if len(comment) > CommentLength {
		return nil, fmt.Errorf("comment is %d bytes, limit is %d", len(comment), CommentLength)
	}
	if len(code) > MaxCodeSize {
		return nil, fmt.Errorf("code is %d bytes, limit is %d", len(code), MaxCodeSize)
	}

	img := make([]byte, HeaderSize+len(code))
	binary.BigEndian.PutUint32(img[0:], Magic)
	copy(img[4:4+NameLength], name)
	binary.BigEndian.PutUint32(img[4+NameLength+1:], uint32(len(code)))
	copy(img[4+NameLength+1+4:], comment)
	copy(img[HeaderSize:], code)
	return img, nil
}

// DecodeImage is the inverse of EncodeImage.
func DecodeImage(img []byte) (name, comment string, code []byte, err error) {
	if len(img) < HeaderSize {
		return "", "", nil, fmt.Errorf("%w: %d bytes is shorter than the header", engine.ErrInvalidChampion, len(img))
	}
	if magic := binary.BigEndian.Uint32(img); magic != Magic {
		return "", "", nil, fmt.Errorf("%w: bad magic 0x%08x", engine.ErrInvalidChampion, magic)
	}
	size := int(binary.BigEndian.Uint32(img[4+NameLength+1:]))
	if size > MaxCodeSize || HeaderSize+size != len(img) {
		return "", "", nil, fmt.Errorf("%w: header announces %d code bytes, image has %d", engine.ErrInvalidChampion, size, len(img)-HeaderSize)
	}
	name = cString(img[4 : 4+NameLength+1])
	comment = cString(img[4+NameLength+1+4 : HeaderSize])
	return name, comment, img[HeaderSize:], nil
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
