package storage

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ordodb/ordo/internal/types"
)

// Row is one table row, values aligned with the schema's columns.
type Row []types.Value

// WriteVarUInt writes a variable-length unsigned integer (same encoding as protobuf varint).
func WriteVarUInt(w io.Writer, v uint64) error {
	var buf [10]byte
	n := binary.PutUvarint(buf[:], v)
	_, err := w.Write(buf[:n])
	return err
}

// ReadVarUInt reads a variable-length unsigned integer.
func ReadVarUInt(r io.ByteReader) (uint64, error) {
	return binary.ReadUvarint(r)
}

// EncodeRow writes a row's values in schema column order.
// Fixed-size types: raw little-endian bytes. String: VarInt(length) + raw bytes.
func EncodeRow(w io.Writer, schema *TableSchema, row Row) error {
	if len(row) != len(schema.Columns) {
		return fmt.Errorf("row has %d values, schema has %d columns", len(row), len(schema.Columns))
	}
	for i, c := range schema.Columns {
		if err := EncodeValue(w, c.DataType, row[i]); err != nil {
			return fmt.Errorf("encoding column %s: %w", c.Name, err)
		}
	}
	return nil
}

// DecodeRow reads one row written by EncodeRow.
func DecodeRow(r io.Reader, schema *TableSchema) (Row, error) {
	row := make(Row, len(schema.Columns))
	for i, c := range schema.Columns {
		v, err := DecodeValue(r, c.DataType)
		if err != nil {
			return nil, fmt.Errorf("decoding column %s: %w", c.Name, err)
		}
		row[i] = v
	}
	return row, nil
}

// EncodeValue encodes a single value to binary format.
func EncodeValue(w io.Writer, dt types.DataType, v types.Value) error {
	switch dt {
	case types.TypeUInt8:
		return binary.Write(w, binary.LittleEndian, v.(uint8))
	case types.TypeUInt16:
		return binary.Write(w, binary.LittleEndian, v.(uint16))
	case types.TypeUInt32:
		return binary.Write(w, binary.LittleEndian, v.(uint32))
	case types.TypeUInt64:
		return binary.Write(w, binary.LittleEndian, v.(uint64))
	case types.TypeInt8:
		return binary.Write(w, binary.LittleEndian, v.(int8))
	case types.TypeInt16:
		return binary.Write(w, binary.LittleEndian, v.(int16))
	case types.TypeInt32:
		return binary.Write(w, binary.LittleEndian, v.(int32))
	case types.TypeInt64:
		return binary.Write(w, binary.LittleEndian, v.(int64))
	case types.TypeFloat32:
		return binary.Write(w, binary.LittleEndian, v.(float32))
	case types.TypeFloat64:
		return binary.Write(w, binary.LittleEndian, v.(float64))
	case types.TypeString:
		s := v.(string)
		if err := WriteVarUInt(w, uint64(len(s))); err != nil {
			return err
		}
		_, err := w.Write([]byte(s))
		return err
	case types.TypeDateTime:
		return binary.Write(w, binary.LittleEndian, v.(uint32))
	default:
		return fmt.Errorf("unsupported type for EncodeValue: %d", dt)
	}
}

// DecodeValue decodes a single value from binary format.
func DecodeValue(r io.Reader, dt types.DataType) (types.Value, error) {
	switch dt {
	case types.TypeUInt8:
		var v uint8
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case types.TypeUInt16:
		var v uint16
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case types.TypeUInt32:
		var v uint32
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case types.TypeUInt64:
		var v uint64
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case types.TypeInt8:
		var v int8
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case types.TypeInt16:
		var v int16
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case types.TypeInt32:
		var v int32
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case types.TypeInt64:
		var v int64
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case types.TypeFloat32:
		var v float32
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case types.TypeFloat64:
		var v float64
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case types.TypeString:
		br, ok := r.(io.ByteReader)
		if !ok {
			br = newByteReaderWrapper(r)
		}
		length, err := ReadVarUInt(br)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		return string(buf), nil
	case types.TypeDateTime:
		var v uint32
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	default:
		return nil, fmt.Errorf("unsupported type for DecodeValue: %d", dt)
	}
}

// byteReaderWrapper wraps an io.Reader to implement io.ByteReader.
type byteReaderWrapper struct {
	r   io.Reader
	buf [1]byte
}

func newByteReaderWrapper(r io.Reader) *byteReaderWrapper {
	return &byteReaderWrapper{r: r}
}

func (b *byteReaderWrapper) ReadByte() (byte, error) {
	_, err := io.ReadFull(b.r, b.buf[:])
	return b.buf[0], err
}

func (b *byteReaderWrapper) Read(p []byte) (int, error) {
	return b.r.Read(p)
}
