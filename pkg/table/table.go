// Package table implements a minimal deterministic columnar container used
// in place of Parquet: no compression, no dictionary encoding, no
// statistics, fixed column layout matching a schema.TableSchema exactly.
// Rows are written sorted by primary key.
//
// Wire format (all integers little-endian):
//
//	magic      [4]byte  "AXMT"
//	version    uint32
//	rowCount   uint64
//	colCount   uint32
//	per column: nameLen uint32, name []byte, colType uint8
//	per row, per column, in schema order:
//	  string:  length uint32, bytes []byte
//	  int64:   8 bytes
//	  int8:    1 byte
package table

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/BigBirdReturns/axm-genesis/pkg/schema"
)

const (
	magic         = "AXMT"
	formatVersion = uint32(1)

	// MaxFileBytes bounds a table file's on-disk size at read time.
	MaxFileBytes = 512 * 1024 * 1024
	// MaxRows bounds the number of rows a table file may declare.
	MaxRows = 1_000_000
)

// Row is a single record: one value per column, in schema order. Values are
// string, int64, or int8 depending on the column's declared type.
type Row []any

// Write encodes rows (already sorted by primary key by the caller) to path
// according to schema s. It does not itself sort; callers own row ordering.
func Write(path string, s schema.TableSchema, rows []Row) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("table: create %s: %w", path, err)
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	if err := writeHeader(w, s, len(rows)); err != nil {
		return err
	}
	for i, row := range rows {
		if err := writeRow(w, s, row); err != nil {
			return fmt.Errorf("table: row %d: %w", i, err)
		}
	}
	return w.Flush()
}

func writeHeader(w io.Writer, s schema.TableSchema, rowCount int) error {
	if _, err := w.Write([]byte(magic)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, formatVersion); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(rowCount)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s.Columns))); err != nil {
		return err
	}
	for _, c := range s.Columns {
		nb := []byte(c.Name)
		if err := binary.Write(w, binary.LittleEndian, uint32(len(nb))); err != nil {
			return err
		}
		if _, err := w.Write(nb); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint8(c.Type)); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(w io.Writer, s schema.TableSchema, row Row) error {
	if len(row) != len(s.Columns) {
		return fmt.Errorf("row has %d values, schema has %d columns", len(row), len(s.Columns))
	}
	for i, c := range s.Columns {
		if err := writeValue(w, c, row[i]); err != nil {
			return fmt.Errorf("column %s: %w", c.Name, err)
		}
	}
	return nil
}

func writeValue(w io.Writer, c schema.Column, v any) error {
	switch c.Type {
	case schema.ColString:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		b := []byte(s)
		if err := binary.Write(w, binary.LittleEndian, uint32(len(b))); err != nil {
			return err
		}
		_, err := w.Write(b)
		return err
	case schema.ColInt64:
		i64, ok := toInt64(v)
		if !ok {
			return fmt.Errorf("expected int64, got %T", v)
		}
		return binary.Write(w, binary.LittleEndian, i64)
	case schema.ColInt8:
		i8, ok := toInt8(v)
		if !ok {
			return fmt.Errorf("expected int8, got %T", v)
		}
		return binary.Write(w, binary.LittleEndian, i8)
	default:
		return fmt.Errorf("unknown column type %d", c.Type)
	}
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

func toInt8(v any) (int8, bool) {
	switch n := v.(type) {
	case int8:
		return n, true
	case int:
		return int8(n), true
	}
	return 0, false
}
