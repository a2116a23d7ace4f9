package connector

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Frame is an in-memory tabular dataset: ordered columns and row-major
// values. It is what connectors return from queries and accept for bulk
// upload.
type Frame struct {
	Columns []string
	Rows    [][]interface{}
}

// NewFrame creates an empty frame with the given columns.
func NewFrame(columns ...string) *Frame {
	return &Frame{Columns: columns}
}

// AppendRow adds one row; the value count must match the column count.
func (f *Frame) AppendRow(values ...interface{}) error {
	if len(values) != len(f.Columns) {
		return fmt.Errorf("row has %d values, frame has %d columns", len(values), len(f.Columns))
	}
	f.Rows = append(f.Rows, values)
	return nil
}

// NumRows returns the row count.
func (f *Frame) NumRows() int {
	return len(f.Rows)
}

// NumCols returns the column count.
func (f *Frame) NumCols() int {
	return len(f.Columns)
}

// Cell returns the value at (row, col) or nil when out of range.
func (f *Frame) Cell(row, col int) interface{} {
	if row < 0 || row >= len(f.Rows) || col < 0 || col >= len(f.Columns) {
		return nil
	}
	return f.Rows[row][col]
}

// cellString renders a value for text encodings; nil becomes empty.
func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// EncodeCSV writes the frame as CSV with a header row.
func (f *Frame) EncodeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Columns); err != nil {
		return err
	}
	record := make([]string, len(f.Columns))
	for _, row := range f.Rows {
		for i, v := range row {
			record[i] = cellString(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeJSON writes the frame as a JSON array of records, one object per
// row keyed by column name.
func (f *Frame) EncodeJSON(w io.Writer) error {
	records := make([]map[string]interface{}, 0, len(f.Rows))
	for _, row := range f.Rows {
		record := make(map[string]interface{}, len(f.Columns))
		for i, col := range f.Columns {
			record[col] = row[i]
		}
		records = append(records, record)
	}
	return json.NewEncoder(w).Encode(records)
}

// DecodeCSV reads a CSV document with a header row into a frame. All
// values decode as strings.
func DecodeCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return NewFrame(), nil
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	frame := NewFrame(header...)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		row := make([]interface{}, len(record))
		for i, v := range record {
			row[i] = v
		}
		if err := frame.AppendRow(row...); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

// DecodeJSON reads a JSON array of records into a frame. Column order
// follows the first record's keys as serialized; rows missing a column
// get nil.
func DecodeJSON(r io.Reader) (*Frame, error) {
	var records []map[string]interface{}
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode JSON records: %w", err)
	}
	if len(records) == 0 {
		return NewFrame(), nil
	}

	columns := make([]string, 0, len(records[0]))
	for col := range records[0] {
		columns = append(columns, col)
	}
	// Map iteration order is random; keep decoded column order stable.
	sort.Strings(columns)

	frame := NewFrame(columns...)
	for _, record := range records {
		row := make([]interface{}, len(columns))
		for i, col := range columns {
			row[i] = record[col]
		}
		if err := frame.AppendRow(row...); err != nil {
			return nil, err
		}
	}
	return frame, nil
}
