// Package gen holds the genny template that message/numeric_gen.go is
// generated from. It is never compiled into the qftp binary itself.
package gen

import (
	"encoding/binary"
	"io"

	"github.com/cheekybits/genny/generic"
)

//go:generate genny -in=$GOFILE -out=../numeric_gen.go -pkg message gen "Numeric=uint8,uint16,uint32,uint64,int8,int16,int32,int64"

// Numeric stands in for each fixed-width integer type the wire format uses.
// genny substitutes it for every type listed in the go:generate directive
// above, producing one read/write pair per width in message/numeric_gen.go.
type Numeric generic.Number

func readNumeric(r io.Reader) (Numeric, error) {
	var v Numeric
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, err
	}
	return v, nil
}

func writeNumeric(w io.Writer, v Numeric) error {
	return binary.Write(w, binary.BigEndian, v)
}
