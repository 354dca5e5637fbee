package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// TalkRow is one row of the TED talks CSV.
type TalkRow struct {
	TalkID     string
	Title      string
	Speaker    string
	Topics     string
	URL        string
	Transcript string
}

// ReadTalks reads the talks CSV. The header row names the columns; rows
// with fewer fields than the header are skipped by the reader.
func ReadTalks(path string) ([]TalkRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("CSV not found at %s: %w", path, err)
	}
	defer f.Close()

	return parseTalks(f)
}

func parseTalks(r io.Reader) ([]TalkRow, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	field := func(record []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	var rows []TalkRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		rows = append(rows, TalkRow{
			TalkID:     field(record, "talk_id"),
			Title:      field(record, "title"),
			Speaker:    field(record, "speaker_1"),
			Topics:     field(record, "topics"),
			URL:        field(record, "url"),
			Transcript: field(record, "transcript"),
		})
	}

	return rows, nil
}
