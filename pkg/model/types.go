package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Position is one (key, call) cell of a sparse row.
type Position struct {
	Key  string
	Call string
}

// SparseRow is an ordered list of calls. It serializes as a JSON object whose
// member order is the row order.
type SparseRow []Position

// Get returns the call stored under key.
func (r SparseRow) Get(key string) (string, bool) {
	for _, p := range r {
		if p.Key == key {
			return p.Call, true
		}
	}
	return "", false
}

// Keys returns the row keys in row order.
func (r SparseRow) Keys() []string {
	keys := make([]string, len(r))
	for i, p := range r {
		keys[i] = p.Key
	}
	return keys
}

// Map returns the row as a lookup table.
func (r SparseRow) Map() map[string]string {
	m := make(map[string]string, len(r))
	for _, p := range r {
		m[p.Key] = p.Call
	}
	return m
}

func (r SparseRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.Call)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *SparseRow) UnmarshalJSON(data []byte) error {
	row := SparseRow{}
	err := decodeOrderedObject(data, func(key string, dec *json.Decoder) error {
		var call string
		if err := dec.Decode(&call); err != nil {
			return err
		}
		row = append(row, Position{Key: key, Call: call})
		return nil
	})
	if err != nil {
		return err
	}
	*r = row
	return nil
}

// RawRow is one owner's positions as returned by a single store fetch.
type RawRow struct {
	OwnerID   string
	Positions []Position
}

// Matrix maps variety ids to their sparse rows. IDs fixes the row order.
type Matrix struct {
	IDs  []string
	Rows map[string]SparseRow
}

// Row returns the row of id, or an empty row.
func (m Matrix) Row(id string) SparseRow {
	return m.Rows[id]
}

func (m Matrix) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range m.IDs {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		row, err := m.Row(id).MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(row)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *Matrix) UnmarshalJSON(data []byte) error {
	out := Matrix{Rows: map[string]SparseRow{}}
	err := decodeOrderedObject(data, func(key string, dec *json.Decoder) error {
		var row SparseRow
		if err := dec.Decode(&row); err != nil {
			return err
		}
		out.IDs = append(out.IDs, key)
		out.Rows[key] = row
		return nil
	})
	if err != nil {
		return err
	}
	*m = out
	return nil
}

func decodeOrderedObject(data []byte, member func(key string, dec *json.Decoder) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := member(key, dec); err != nil {
			return fmt.Errorf("member %q: %w", key, err)
		}
	}
	_, err = dec.Token()
	return err
}

// VarietyRecord is the metadata of one genotyped variety.
type VarietyRecord struct {
	ID            string `json:"id" db:"id"`
	Name          string `json:"name" db:"name"`
	IrisID        string `json:"irisId" db:"iris_id"`
	Accession     string `json:"accession" db:"accession"`
	Subpopulation string `json:"subpopulation" db:"subpopulation"`
	Country       string `json:"country" db:"country"`
	SnpSet        string `json:"snpSet" db:"snp_set"`
	VarietySet    string `json:"varietySet" db:"variety_set"`
}

// Locus is a closed window [Start, End] on one contig.
type Locus struct {
	Contig string `json:"contig"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

// VarietyFilter selects the variety id space that is paged when no explicit
// ids are given. Subpopulation "All" disables the subpopulation filter.
type VarietyFilter struct {
	SnpSet        string
	VarietySet    string
	Subpopulation string
}

// AllSubpopulations disables subpopulation filtering.
const AllSubpopulations = "All"

// SearchCriteria is the immutable input of one search or export page.
type SearchCriteria struct {
	ReferenceGenome  string   `json:"referenceGenome"`
	VarietySet       string   `json:"varietySet"`
	SnpSet           string   `json:"snpSet"`
	Subpopulation    string   `json:"subpopulation"`
	VarietyIDs       []string `json:"varietyList,omitempty"`
	SnpKeys          []string `json:"snpList,omitempty"`
	Contig           string   `json:"contig,omitempty"`
	Start            int      `json:"start,omitempty"`
	End              int      `json:"end,omitempty"`
	Loci             []Locus  `json:"loci,omitempty"`
	Page             int      `json:"page"`
	WantTotalPages   bool     `json:"askTotalPages"`
	WantReferenceRow bool     `json:"askReferenceGenome"`
}

// Filter returns the variety filter part of c.
func (c SearchCriteria) Filter() VarietyFilter {
	return VarietyFilter{SnpSet: c.SnpSet, VarietySet: c.VarietySet, Subpopulation: c.Subpopulation}
}

// ForPage returns a copy of c for export page n. Total pages and the
// reference row are only requested on page 0.
func (c SearchCriteria) ForPage(n int) SearchCriteria {
	c.Page = n
	c.WantTotalPages = n == 0
	c.WantReferenceRow = n == 0
	return c
}

// Validate checks that c carries what mode needs.
func (c SearchCriteria) Validate(mode Mode) error {
	if c.Page < 0 {
		return fmt.Errorf("%w: negative page %d", ErrInvalidCriteria, c.Page)
	}
	switch mode {
	case ModeRange:
		if c.Contig == "" {
			return fmt.Errorf("%w: missing contig", ErrInvalidCriteria)
		}
		if c.Start < 0 || c.End < c.Start {
			return fmt.Errorf("%w: bad region %d-%d", ErrInvalidCriteria, c.Start, c.End)
		}
	case ModeSnpList:
		if len(c.SnpKeys) == 0 {
			return fmt.Errorf("%w: empty snp list", ErrInvalidCriteria)
		}
	case ModeLocusList:
		if len(c.Loci) == 0 {
			return fmt.Errorf("%w: empty locus list", ErrInvalidCriteria)
		}
		for i, l := range c.Loci {
			if l.Contig == "" || l.Start < 0 || l.End < l.Start {
				return fmt.Errorf("%w: bad locus #%d %s:%d-%d", ErrInvalidCriteria, i, l.Contig, l.Start, l.End)
			}
		}
	default:
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidCriteria, mode)
	}
	return nil
}

// Mode selects the fetch shape of a search.
type Mode int

const (
	ModeRange Mode = iota
	ModeSnpList
	ModeLocusList
)

func (m Mode) String() string {
	switch m {
	case ModeRange:
		return "range"
	case ModeSnpList:
		return "snp"
	case ModeLocusList:
		return "locus"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "range":
		return ModeRange, nil
	case "snp":
		return ModeSnpList, nil
	case "locus":
		return ModeLocusList, nil
	}
	return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidCriteria, s)
}

// Result is the output of every search mode. ReferenceRow and TotalPages are
// nil when they were not requested.
type Result struct {
	Mode         Mode                     `json:"-"`
	ReferenceRow *SparseRow               `json:"referenceGenomePositions,omitempty"`
	TotalPages   *int                     `json:"totalPages,omitempty"`
	Matrix       Matrix                   `json:"varietyPositions"`
	Varieties    map[string]VarietyRecord `json:"varieties"`
}

func (l Locus) String() string {
	return fmt.Sprintf("%s:%d-%d", l.Contig, l.Start, l.End)
}
