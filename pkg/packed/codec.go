package packed

import (
	"bytes"
	"io"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"

	"github.com/matzehuels/klotskigraph/pkg/errors"
)

// Codec compresses a raw packed graph for delivery.
type Codec interface {
	// Name is the identifier used on the command line and in cache keys.
	Name() string
	// Ext is the file extension, including the dot.
	Ext() string
	Compress(raw []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// Codec names.
const (
	CodecRaw  = "raw"
	CodecGzip = "gzip"
	CodecZlib = "zlib"
	CodecZstd = "zstd"
)

// DefaultCodec is the codec used when none is requested.
const DefaultCodec = CodecGzip

var codecs = map[string]Codec{
	CodecRaw:  rawCodec{},
	CodecGzip: gzipCodec{},
	CodecZlib: zlibCodec{},
	CodecZstd: zstdCodec{},
}

// CodecByName returns the named codec.
func CodecByName(name string) (Codec, error) {
	if name == "" {
		name = DefaultCodec
	}
	c, ok := codecs[strings.ToLower(name)]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown codec %q (available: %s)", name, strings.Join(CodecNames(), ", "))
	}
	return c, nil
}

// CodecNames returns the registered codec names in sorted order.
func CodecNames() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Detect identifies the codec of data from its leading bytes.
func Detect(data []byte) (Codec, error) {
	switch {
	case bytes.HasPrefix(data, []byte(Magic)):
		return rawCodec{}, nil
	case bytes.HasPrefix(data, []byte{0x1f, 0x8b}):
		return gzipCodec{}, nil
	case bytes.HasPrefix(data, []byte{0x28, 0xb5, 0x2f, 0xfd}):
		return zstdCodec{}, nil
	case len(data) >= 2 && data[0]&0x0f == 8 && (uint16(data[0])<<8|uint16(data[1]))%31 == 0:
		return zlibCodec{}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unrecognized artifact encoding")
}

// Unwrap detects the codec of data and returns the raw packed bytes.
func Unwrap(data []byte) ([]byte, Codec, error) {
	c, err := Detect(data)
	if err != nil {
		return nil, nil, err
	}
	raw, err := c.Decompress(data)
	if err != nil {
		return nil, nil, err
	}
	return raw, c, nil
}

// Open detects the codec of data, decompresses it and decodes the graph.
func Open(data []byte) (*Graph, Codec, error) {
	raw, c, err := Unwrap(data)
	if err != nil {
		return nil, nil, err
	}
	g, err := Decode(raw)
	if err != nil {
		return nil, nil, err
	}
	return g, c, nil
}

// =============================================================================
// Implementations
// =============================================================================

type rawCodec struct{}

func (rawCodec) Name() string                           { return CodecRaw }
func (rawCodec) Ext() string                            { return ".bin" }
func (rawCodec) Compress(raw []byte) ([]byte, error)    { return raw, nil }
func (rawCodec) Decompress(data []byte) ([]byte, error) { return data, nil }

type gzipCodec struct{}

func (gzipCodec) Name() string { return CodecGzip }
func (gzipCodec) Ext() string  { return ".gz" }

func (gzipCodec) Compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "gzip writer")
	}
	if _, err := w.Write(raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "gzip compress")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "gzip close")
	}
	return buf.Bytes(), nil
}

func (gzipCodec) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "gzip header")
	}
	defer r.Close()
	return readAll(r, "gzip")
}

type zlibCodec struct{}

func (zlibCodec) Name() string { return CodecZlib }
func (zlibCodec) Ext() string  { return ".zz" }

func (zlibCodec) Compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "zlib writer")
	}
	if _, err := w.Write(raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "zlib compress")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "zlib close")
	}
	return buf.Bytes(), nil
}

func (zlibCodec) Decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "zlib header")
	}
	defer r.Close()
	return readAll(r, "zlib")
}

type zstdCodec struct{}

func (zstdCodec) Name() string { return CodecZstd }
func (zstdCodec) Ext() string  { return ".zst" }

func (zstdCodec) Compress(raw []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "zstd writer")
	}
	defer enc.Close()
	return enc.EncodeAll(raw, nil), nil
}

func (zstdCodec) Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "zstd reader")
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "zstd decompress")
	}
	return out, nil
}

func readAll(r io.Reader, name string) ([]byte, error) {
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s decompress", name)
	}
	return out, nil
}
