package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WriteElements serializes each of elements in order, dispatching on
// concrete type the way lnwire's writeElements does.
func WriteElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		if err := writeElement(w, element); err != nil {
			return err
		}
	}
	return nil
}

func writeElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case uint8:
		return WriteUint8(w, e)
	case uint32:
		return WriteUint32(w, e)
	case uint64:
		return WriteUint64(w, e)
	case [32]byte:
		_, err := w.Write(e[:])
		return err
	case [33]byte:
		_, err := w.Write(e[:])
		return err
	case []byte:
		return WriteVarBytes(w, e)
	default:
		return fmt.Errorf("protocol: unknown type %T in writeElement", e)
	}
}

// ReadElements deserializes into each of elements in order, which must be
// pointers to the same set of concrete types WriteElements supports.
func ReadElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		if err := readElement(r, element); err != nil {
			return err
		}
	}
	return nil
}

func readElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *uint8:
		v, err := ReadUint8(r)
		if err != nil {
			return err
		}
		*e = v
	case *uint32:
		v, err := ReadUint32(r)
		if err != nil {
			return err
		}
		*e = v
	case *uint64:
		v, err := ReadUint64(r)
		if err != nil {
			return err
		}
		*e = v
	case *[32]byte:
		_, err := io.ReadFull(r, e[:])
		return err
	case *[33]byte:
		_, err := io.ReadFull(r, e[:])
		return err
	case *[]byte:
		v, err := ReadVarBytes(r)
		if err != nil {
			return err
		}
		*e = v
	default:
		return fmt.Errorf("protocol: unknown type %T in readElement", e)
	}
	return nil
}

// WriteUint8 writes a single byte to w.
func WriteUint8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

// ReadUint8 reads a single byte from r.
func ReadUint8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// WriteUint32 writes v to w as 4 big-endian bytes.
func WriteUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint32 reads 4 big-endian bytes from r.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// WriteUint64 writes v to w as 8 big-endian bytes.
func WriteUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint64 reads 8 big-endian bytes from r.
func ReadUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// WriteVarBytes writes b as a 4-byte big-endian length prefix followed by
// its contents, enough to carry pkScripts, range proofs, and surjection
// proofs without a separate framing convention per field.
func WriteVarBytes(w io.Writer, b []byte) error {
	if err := WriteUint32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// ReadVarBytes reads a length-prefixed byte string written by
// WriteVarBytes.
func ReadVarBytes(r io.Reader) ([]byte, error) {
	length, err := ReadUint32(r)
	if err != nil {
		return nil, err
	}
	if length > MaxMessagePayload {
		return nil, fmt.Errorf("protocol: var bytes length %d exceeds maximum message payload", length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
