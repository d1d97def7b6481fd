package codec

import (
	"io"

	"github.com/vmihailenco/msgpack/v4"
)

var mpCodecObject mpCodec
var MP Codec = bytesWrapper{&mpCodecObject}

type mpCodec struct{}

func (c *mpCodec) Name() string {
	return "msgpack"
}

// NewEncoder returns canonical encoder. Map keys are sorted so that same
// value always produces same bytes.
func (c *mpCodec) NewEncoder(w io.Writer) SimpleEncoder {
	return msgpack.NewEncoder(w).UseCompactEncoding(true).SortMapKeys(true)
}

func (c *mpCodec) NewDecoder(r io.Reader) SimpleDecoder {
	return msgpack.NewDecoder(r)
}
