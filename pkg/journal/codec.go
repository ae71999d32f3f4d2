package journal

import (
	"bufio"
	"io"

	"github.com/goccy/go-json"

	"github.com/ajitpratap0/recordcol/pkg/compression"
	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/pool"
)

// magic starts every encoded journal. It is followed by one byte holding
// the length of the compression algorithm name, the name, and the
// compressed JSON body.
const magic = "RCJ1"

// Codec encodes journals with one compressor.
type Codec struct {
	comp compression.Compressor
}

// NewCodec returns a codec compressing with cfg.
func NewCodec(cfg *compression.Config) (*Codec, error) {
	comp, err := compression.NewCompressor(cfg)
	if err != nil {
		return nil, err
	}
	return &Codec{comp: comp}, nil
}

// Algorithm returns the compression algorithm of the codec.
func (c *Codec) Algorithm() compression.Algorithm { return c.comp.Algorithm() }

// Encode writes j to w.
func (c *Codec) Encode(w io.Writer, j *Journal) error {
	if j.Schema == nil {
		return errors.New(errors.ErrorTypeValidation, "journal has no schema")
	}
	body := pool.GetBuffer()
	defer pool.PutBuffer(body)
	if err := json.NewEncoder(body).Encode(j); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode journal")
	}

	name := string(c.comp.Algorithm())
	header := make([]byte, 0, len(magic)+1+len(name))
	header = append(header, magic...)
	header = append(header, byte(len(name)))
	header = append(header, name...)
	if _, err := w.Write(header); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write journal header")
	}
	if err := c.comp.CompressStream(w, body); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write journal body")
	}
	return nil
}

// Decode reads a journal written by Encode with any algorithm.
func Decode(r io.Reader) (*Journal, error) {
	br := bufio.NewReader(r)
	head := make([]byte, len(magic)+1)
	if _, err := io.ReadFull(br, head); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read journal header")
	}
	if string(head[:len(magic)]) != magic {
		return nil, errors.New(errors.ErrorTypeFile, "not a journal")
	}
	name := make([]byte, head[len(magic)])
	if _, err := io.ReadFull(br, name); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read journal header")
	}
	algorithm, err := compression.ParseAlgorithm(string(name))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "journal uses an unknown compression")
	}
	comp, err := compression.NewCompressor(&compression.Config{Algorithm: algorithm, Level: compression.Default})
	if err != nil {
		return nil, err
	}

	body := pool.GetBuffer()
	defer pool.PutBuffer(body)
	if err := comp.DecompressStream(body, br); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read journal body")
	}
	j := &Journal{}
	if err := json.Unmarshal(body.Bytes(), j); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to decode journal")
	}
	if j.Schema == nil {
		return nil, errors.New(errors.ErrorTypeFile, "journal has no schema")
	}
	return j, nil
}
