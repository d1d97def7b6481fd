package codec

import (
	"bytes"
	"io"

	"github.com/icon-project/govote/common/errors"
)

type SimpleEncoder interface {
	Encode(v interface{}) error
}

type SimpleDecoder interface {
	Decode(v interface{}) error
}

type codecImpl interface {
	Name() string
	NewEncoder(w io.Writer) SimpleEncoder
	NewDecoder(r io.Reader) SimpleDecoder
}

type Codec interface {
	Name() string
	Marshal(w io.Writer, v interface{}) error
	Unmarshal(r io.Reader, v interface{}) error
	MarshalToBytes(v interface{}) ([]byte, error)
	UnmarshalFromBytes(b []byte, v interface{}) ([]byte, error)
	MustMarshalToBytes(v interface{}) []byte
}

type bytesWrapper struct {
	codecImpl
}

func (w bytesWrapper) Marshal(wr io.Writer, v interface{}) error {
	return w.NewEncoder(wr).Encode(v)
}

func (w bytesWrapper) Unmarshal(r io.Reader, v interface{}) error {
	return w.NewDecoder(r).Decode(v)
}

func (w bytesWrapper) MarshalToBytes(v interface{}) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := w.Marshal(buf, v); err != nil {
		return nil, errors.CriticalFormatError.Wrapf(err, "%sEncodeFail", w.Name())
	}
	return buf.Bytes(), nil
}

// UnmarshalFromBytes decodes single object from the bytes and returns
// the remaining bytes.
func (w bytesWrapper) UnmarshalFromBytes(b []byte, v interface{}) ([]byte, error) {
	buf := bytes.NewBuffer(b)
	if err := w.Unmarshal(buf, v); err != nil {
		return b, errors.CriticalFormatError.Wrapf(err, "%sDecodeFail", w.Name())
	}
	return buf.Bytes(), nil
}

func (w bytesWrapper) MustMarshalToBytes(v interface{}) []byte {
	bs, err := w.MarshalToBytes(v)
	if err != nil {
		panic(err)
	}
	return bs
}

// BC is the codec used for stored objects.
var BC = MP

func MarshalToBytes(v interface{}) ([]byte, error) {
	return BC.MarshalToBytes(v)
}

func MustMarshalToBytes(v interface{}) []byte {
	return BC.MustMarshalToBytes(v)
}

func UnmarshalFromBytes(b []byte, v interface{}) ([]byte, error) {
	return BC.UnmarshalFromBytes(b, v)
}
