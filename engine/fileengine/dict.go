package fileengine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/arloliu/savio/engine"
	"github.com/arloliu/savio/internal/hash"
)

var errChecksum = errors.New("checksum mismatch")

// dictRecord is the stored dictionary of a file.
type dictRecord struct {
	Encoding   string        `msgpack:"encoding"`
	Variables  []*varRecord  `msgpack:"variables"`
	MultResp   string        `msgpack:"mult_resp,omitempty"`
	VarSets    string        `msgpack:"var_sets,omitempty"`
	Attributes []attrRecord  `msgpack:"attributes,omitempty"`
	CaseWeight string        `msgpack:"case_weight,omitempty"`
	Release    releaseRecord `msgpack:"release"`

	index    map[uint64][]int // NameKey → positions in Variables
	codepage encoding.Encoding
}

type releaseRecord struct {
	Release    int `msgpack:"release"`
	Subrelease int `msgpack:"subrelease"`
	Fixpack    int `msgpack:"fixpack"`
}

type varRecord struct {
	Name        string       `msgpack:"name"`
	Type        int          `msgpack:"type"`
	Print       [3]int       `msgpack:"print"`
	Write       [3]int       `msgpack:"write"`
	Label       string       `msgpack:"label,omitempty"`
	NumLabels   []numLabel   `msgpack:"num_labels,omitempty"`
	StrLabels   []strLabel   `msgpack:"str_labels,omitempty"`
	MissingFmt  int8         `msgpack:"missing_fmt"`
	NumMissing  [3]float64   `msgpack:"num_missing"`
	StrMissing  [3]string    `msgpack:"str_missing"`
	Measure     uint8        `msgpack:"measure"`
	Alignment   uint8        `msgpack:"alignment"`
	ColumnWidth int          `msgpack:"column_width"`
	Role        uint8        `msgpack:"role"`
	Attributes  []attrRecord `msgpack:"attributes,omitempty"`
}

type numLabel struct {
	Value float64 `msgpack:"v"`
	Label string  `msgpack:"l"`
}

type strLabel struct {
	Value string `msgpack:"v"`
	Label string `msgpack:"l"`
}

type attrRecord struct {
	Name string `msgpack:"n"`
	Text string `msgpack:"t"`
}

func newDictRecord(encoding string) *dictRecord {
	return &dictRecord{
		Encoding: encoding,
		Release:  releaseRecord{Release: 1},
		index:    make(map[uint64][]int),
		codepage: codepage(encoding),
	}
}

// codepage returns the encoding of a non-UTF-8 file, or nil.
func codepage(name string) encoding.Encoding {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil
	}

	return enc
}

// storedLen returns the byte length of s in the file encoding. Strings
// the encoding cannot represent are measured in UTF-8.
func (d *dictRecord) storedLen(s string) int {
	if d.codepage == nil {
		return len(s)
	}

	b, err := d.codepage.NewEncoder().String(s)
	if err != nil {
		return len(s)
	}

	return len(b)
}

func (d *dictRecord) lookup(name string) (*varRecord, bool) {
	for _, i := range d.index[hash.NameKey(name)] {
		if strings.EqualFold(d.Variables[i].Name, name) {
			return d.Variables[i], true
		}
	}

	return nil, false
}

func (d *dictRecord) add(v *varRecord) {
	key := hash.NameKey(v.Name)
	d.index[key] = append(d.index[key], len(d.Variables))
	d.Variables = append(d.Variables, v)
}

func (d *dictRecord) reindex() {
	d.index = make(map[uint64][]int, len(d.Variables))
	for i, v := range d.Variables {
		key := hash.NameKey(v.Name)
		d.index[key] = append(d.index[key], i)
	}
}

// caseSize returns the record size of the current variables.
func (d *dictRecord) caseSize() int {
	size := 0
	for _, v := range d.Variables {
		if v.Type == 0 {
			size += 8
		} else {
			size += 8 * ((v.Type + 7) / 8)
		}
	}

	return size
}

// marshal encodes the dictionary and returns it with its checksum.
func (d *dictRecord) marshal() ([]byte, uint64, error) {
	b, err := msgpack.Marshal(d)
	if err != nil {
		return nil, 0, fmt.Errorf("encode dictionary: %w", err)
	}

	return b, hash.Sum64(b), nil
}

func unmarshalDict(b []byte, sum uint64) (*dictRecord, error) {
	if hash.Sum64(b) != sum {
		return nil, errChecksum
	}

	d := &dictRecord{}
	if err := msgpack.Unmarshal(b, d); err != nil {
		return nil, fmt.Errorf("decode dictionary: %w", err)
	}
	d.reindex()
	d.codepage = codepage(d.Encoding)

	return d, nil
}

func attrRecords(attrs []engine.Attribute) []attrRecord {
	out := make([]attrRecord, len(attrs))
	for i, a := range attrs {
		out[i] = attrRecord{Name: a.Name, Text: a.Text}
	}

	return out
}

func attributes(recs []attrRecord) []engine.Attribute {
	out := make([]engine.Attribute, len(recs))
	for i, a := range recs {
		out[i] = engine.Attribute{Name: a.Name, Text: a.Text}
	}

	return out
}
