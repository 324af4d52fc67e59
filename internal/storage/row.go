package storage

import (
	"strconv"
	"strings"

	"replay-collector/internal/showdown"
)

// Row is one CSV line of replay metadata, flattened from a search
// index entry. Players are joined with "|" so the column stays a
// single CSV field regardless of player names.
type Row struct {
	ID         string
	Format     string
	UploadTime int64
	Players    []string
	Rating     int
	Private    int
}

// FromReplay projects an index entry into a row
func FromReplay(r showdown.ReplayRef) Row {
	return Row{
		ID:         r.ID,
		Format:     r.Format,
		UploadTime: r.UploadTime,
		Players:    r.Players,
		Rating:     r.Rating,
		Private:    r.Private,
	}
}

// Header names the output columns, in row order
func Header() []string {
	return []string{"id", "format", "uploadtime", "players", "rating", "private"}
}

// AsRow renders the row as CSV fields
func (r Row) AsRow() []string {
	return []string{
		r.ID,
		r.Format,
		strconv.FormatInt(r.UploadTime, 10),
		strings.Join(r.Players, "|"),
		strconv.Itoa(r.Rating),
		strconv.Itoa(r.Private),
	}
}
