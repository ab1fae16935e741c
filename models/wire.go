package models

import (
	"math"

	"github.com/aukilabs/caster/caster"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/golang/snappy"
	"google.golang.org/protobuf/encoding/protowire"
)

// Binary cast responses use the protobuf wire format:
//
//	CastResponse { uint32 request_id = 1; repeated Ray rays = 2; uint32 fault_count = 3; }
//	Ray          { double x = 1; double y = 2; double angle = 3; Intersection intersection = 4; }
//	Intersection { double x = 1; double y = 2; double len = 3; }
const (
	fieldResponseRequestID  protowire.Number = 1
	fieldResponseRays       protowire.Number = 2
	fieldResponseFaultCount protowire.Number = 3

	fieldRayX            protowire.Number = 1
	fieldRayY            protowire.Number = 2
	fieldRayAngle        protowire.Number = 3
	fieldRayIntersection protowire.Number = 4

	fieldIntersectionX   protowire.Number = 1
	fieldIntersectionY   protowire.Number = 2
	fieldIntersectionLen protowire.Number = 3
)

// EncodeCastResponse encodes the response in its binary form.
func EncodeCastResponse(res CastResponse) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldResponseRequestID, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(res.RequestID))

	for _, r := range res.Rays {
		b = protowire.AppendTag(b, fieldResponseRays, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeRay(r))
	}

	b = protowire.AppendTag(b, fieldResponseFaultCount, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(res.FaultCount))
	return b
}

func encodeRay(r caster.Ray) []byte {
	var b []byte
	b = appendDouble(b, fieldRayX, r.X)
	b = appendDouble(b, fieldRayY, r.Y)
	b = appendDouble(b, fieldRayAngle, r.Angle)

	if i := r.Intersection; i != nil {
		var ib []byte
		ib = appendDouble(ib, fieldIntersectionX, i.X)
		ib = appendDouble(ib, fieldIntersectionY, i.Y)
		ib = appendDouble(ib, fieldIntersectionLen, i.Len)

		b = protowire.AppendTag(b, fieldRayIntersection, protowire.BytesType)
		b = protowire.AppendBytes(b, ib)
	}

	return b
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

// DecodeCastResponse decodes a response encoded with EncodeCastResponse.
// Unknown fields are skipped.
func DecodeCastResponse(b []byte) (CastResponse, error) {
	var res CastResponse

	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == fieldResponseRequestID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			res.RequestID = uint32(v)
			return n, nil

		case num == fieldResponseFaultCount && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			res.FaultCount = int(v)
			return n, nil

		case num == fieldResponseRays && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}

			r, err := decodeRay(v)
			if err != nil {
				return 0, err
			}
			res.Rays = append(res.Rays, r)
			return n, nil

		default:
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
	})
	if err != nil {
		return CastResponse{}, errors.New("decoding cast response failed").
			WithType(ErrTypeMsgDecode).
			Wrap(err)
	}

	return res, nil
}

func decodeRay(b []byte) (caster.Ray, error) {
	var r caster.Ray

	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == fieldRayX && typ == protowire.Fixed64Type:
			return consumeDouble(b, &r.X), nil

		case num == fieldRayY && typ == protowire.Fixed64Type:
			return consumeDouble(b, &r.Y), nil

		case num == fieldRayAngle && typ == protowire.Fixed64Type:
			return consumeDouble(b, &r.Angle), nil

		case num == fieldRayIntersection && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}

			i, err := decodeIntersection(v)
			if err != nil {
				return 0, err
			}
			r.Intersection = &i
			return n, nil

		default:
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
	})
	return r, err
}

func decodeIntersection(b []byte) (caster.Intersection, error) {
	var i caster.Intersection

	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == fieldIntersectionX && typ == protowire.Fixed64Type:
			return consumeDouble(b, &i.X), nil

		case num == fieldIntersectionY && typ == protowire.Fixed64Type:
			return consumeDouble(b, &i.Y), nil

		case num == fieldIntersectionLen && typ == protowire.Fixed64Type:
			return consumeDouble(b, &i.Len), nil

		default:
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
	})
	return i, err
}

// consumeFields calls consume for each field of b. consume returns the
// number of bytes of the field value it read, or a negative protowire error
// code.
func consumeFields(b []byte, consume func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		n, err := consume(num, typ, b)
		if err != nil {
			return err
		}
		if n < 0 {
			return errors.New("invalid field").
				WithTag("field", num).
				Wrap(protowire.ParseError(n))
		}
		b = b[n:]
	}
	return nil
}

func consumeDouble(b []byte, v *float64) int {
	bits, n := protowire.ConsumeFixed64(b)
	if n >= 0 {
		*v = math.Float64frombits(bits)
	}
	return n
}

// CompressSnappy compresses a binary payload with snappy block encoding.
func CompressSnappy(b []byte) []byte {
	return snappy.Encode(nil, b)
}

func DecompressSnappy(b []byte) ([]byte, error) {
	decoded, err := snappy.Decode(nil, b)
	if err != nil {
		return nil, errors.New("decompressing payload failed").
			WithType(ErrTypeMsgDecode).
			Wrap(err)
	}
	return decoded, nil
}
