package table

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/BigBirdReturns/axm-genesis/pkg/schema"
)

// ReadResult is a successfully decoded table: the schema as declared on
// disk and its rows.
type ReadResult struct {
	Columns []schema.Column
	Rows    []Row
}

// Read decodes the table file at path and validates it strictly matches
// expected: file size within MaxFileBytes, row count within MaxRows, and an
// exact column-for-column (name, order, type) match against expected.
// There is no null representation in this format, so absence of a null
// encoding is structural, not merely validated.
func Read(path string, expected schema.TableSchema) (*ReadResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("table: stat %s: %w", path, err)
	}
	if info.Size() > MaxFileBytes {
		return nil, fmt.Errorf("table: %s exceeds max file size (%d > %d)", path, info.Size(), MaxFileBytes)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("table: open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	magicBuf := make([]byte, 4)
	if _, err := io.ReadFull(r, magicBuf); err != nil {
		return nil, fmt.Errorf("table: read magic: %w", err)
	}
	if string(magicBuf) != magic {
		return nil, fmt.Errorf("table: bad magic in %s", path)
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("table: read version: %w", err)
	}

	var rowCount uint64
	if err := binary.Read(r, binary.LittleEndian, &rowCount); err != nil {
		return nil, fmt.Errorf("table: read row count: %w", err)
	}
	if rowCount > MaxRows {
		return nil, fmt.Errorf("table: %s declares %d rows, exceeds max %d", path, rowCount, MaxRows)
	}

	var colCount uint32
	if err := binary.Read(r, binary.LittleEndian, &colCount); err != nil {
		return nil, fmt.Errorf("table: read column count: %w", err)
	}

	cols := make([]schema.Column, 0, colCount)
	for i := uint32(0); i < colCount; i++ {
		var nameLen uint32
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, fmt.Errorf("table: read column %d name length: %w", i, err)
		}
		if nameLen > MaxFileBytes {
			return nil, fmt.Errorf("table: column %d name length %d exceeds max file size", i, nameLen)
		}
		nameBuf := make([]byte, nameLen)
		if _, err := io.ReadFull(r, nameBuf); err != nil {
			return nil, fmt.Errorf("table: read column %d name: %w", i, err)
		}
		var colType uint8
		if err := binary.Read(r, binary.LittleEndian, &colType); err != nil {
			return nil, fmt.Errorf("table: read column %d type: %w", i, err)
		}
		cols = append(cols, schema.Column{Name: string(nameBuf), Type: schema.ColumnType(colType)})
	}

	if err := matchSchema(cols, expected); err != nil {
		return nil, err
	}

	rows := make([]Row, 0, rowCount)
	for i := uint64(0); i < rowCount; i++ {
		row, err := readRow(r, expected)
		if err != nil {
			return nil, fmt.Errorf("table: row %d: %w", i, err)
		}
		rows = append(rows, row)
	}

	return &ReadResult{Columns: cols, Rows: rows}, nil
}

func matchSchema(got []schema.Column, expected schema.TableSchema) error {
	if len(got) != len(expected.Columns) {
		return fmt.Errorf("table: column count mismatch: got %d, expected %d", len(got), len(expected.Columns))
	}
	for i, ec := range expected.Columns {
		gc := got[i]
		if gc.Name != ec.Name {
			return fmt.Errorf("table: column %d name mismatch: got %q, expected %q", i, gc.Name, ec.Name)
		}
		if gc.Type != ec.Type {
			return fmt.Errorf("table: column %d (%s) type mismatch: got %d, expected %d", i, ec.Name, gc.Type, ec.Type)
		}
	}
	return nil
}

func readRow(r io.Reader, s schema.TableSchema) (Row, error) {
	row := make(Row, len(s.Columns))
	for i, c := range s.Columns {
		v, err := readValue(r, c)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		row[i] = v
	}
	return row, nil
}

func readValue(r io.Reader, c schema.Column) (any, error) {
	switch c.Type {
	case schema.ColString:
		var length uint32
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return nil, err
		}
		if length > MaxFileBytes {
			return nil, fmt.Errorf("string value length %d exceeds max file size", length)
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		return string(buf), nil
	case schema.ColInt64:
		var v int64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, err
		}
		return v, nil
	case schema.ColInt8:
		var v int8
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown column type %d", c.Type)
	}
}
