package refstats

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingColumns is matched by *MissingColumnsError
	ErrMissingColumns = errors.New("missing required columns")
	// ErrAmbiguousTeamSide is matched by *AmbiguousTeamSideError
	ErrAmbiguousTeamSide = errors.New("tracked team is on neither side")
	// ErrInvalidRecord is matched by *InvalidRecordError
	ErrInvalidRecord = errors.New("invalid match record")
)

// MissingColumnsError lists every canonical column absent from a source
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumns.Error(), strings.Join(e.Missing, ", "))
}

func (e *MissingColumnsError) Is(target error) bool {
	return target == ErrMissingColumns
}

// AmbiguousTeamSideError is returned when a record is classified for a team that did not play in it
type AmbiguousTeamSideError struct {
	Team  string
	Match Match
}

func (e *AmbiguousTeamSideError) Error() string {
	return fmt.Sprintf("%s: %q not in %s", ErrAmbiguousTeamSide.Error(), e.Team, e.Match.String())
}

func (e *AmbiguousTeamSideError) Is(target error) bool {
	return target == ErrAmbiguousTeamSide
}

// InvalidRecordError reports a bad value in a source row. Row is 1-based and excludes the header.
type InvalidRecordError struct {
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("%s: row %d column %s value %q: %s", ErrInvalidRecord.Error(), e.Row, e.Column, e.Value, e.Reason)
}

func (e *InvalidRecordError) Is(target error) bool {
	return target == ErrInvalidRecord
}
