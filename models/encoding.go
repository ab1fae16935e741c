package models

import (
	"net/url"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

const (
	encodingJSON   = "json"
	encodingBinary = "binary"

	compressionSnappy = "snappy"
)

// Encoding describes how cast responses are sent to a client. It is
// selected with the "encoding" and "compression" query parameters.
type Encoding struct {
	Binary bool
	Snappy bool
}

// EncodingFromQuery returns the encoding requested by the query. Compression
// only applies to binary responses.
func EncodingFromQuery(q url.Values) (Encoding, error) {
	var e Encoding

	switch encoding := q.Get("encoding"); encoding {
	case "", encodingJSON:

	case encodingBinary:
		e.Binary = true

	default:
		return Encoding{}, errors.New("unknown encoding").
			WithType(ErrTypeMsgDecode).
			WithTag("encoding", encoding)
	}

	switch compression := q.Get("compression"); compression {
	case "":

	case compressionSnappy:
		if !e.Binary {
			return Encoding{}, errors.New("compression requires the binary encoding").
				WithType(ErrTypeMsgDecode).
				WithTag("compression", compression)
		}
		e.Snappy = true

	default:
		return Encoding{}, errors.New("unknown compression").
			WithType(ErrTypeMsgDecode).
			WithTag("compression", compression)
	}

	return e, nil
}

// EncodeCastResponse returns the binary payload of res. It must only be
// called when e.Binary is set.
func (e Encoding) EncodeCastResponse(res CastResponse) []byte {
	b := EncodeCastResponse(res)
	if e.Snappy {
		b = CompressSnappy(b)
	}
	return b
}

// ContentType returns the MIME type of binary cast responses.
func (e Encoding) ContentType() string {
	if e.Snappy {
		return "application/x-protobuf+snappy"
	}
	return "application/x-protobuf"
}

func (e Encoding) String() string {
	switch {
	case e.Snappy:
		return encodingBinary + "+" + compressionSnappy

	case e.Binary:
		return encodingBinary

	default:
		return encodingJSON
	}
}
