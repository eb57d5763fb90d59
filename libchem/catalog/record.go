package catalog

import (
	"github.com/fine-structures/chem.SDK/chem"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

const (
	catalogMajorVers = 2023
	catalogMinorVers = 1
)

// catalogState is stored under gCatalogStateKey.
type catalogState struct {
	MajorVers   int32 `protobuf:"varint,1,opt,name=major_vers,json=majorVers,proto3" json:"major_vers,omitempty"`
	MinorVers   int32 `protobuf:"varint,2,opt,name=minor_vers,json=minorVers,proto3" json:"minor_vers,omitempty"`
	NumFormulas int64 `protobuf:"varint,3,opt,name=num_formulas,json=numFormulas,proto3" json:"num_formulas,omitempty"`
}

func (m *catalogState) Reset()         { *m = catalogState{} }
func (m *catalogState) String() string { return proto.CompactTextString(m) }
func (*catalogState) ProtoMessage()    {}

// formulaRecord is the stored form of a named chem.Formula.
type formulaRecord struct {
	Nuclides map[string]uint32 `protobuf:"bytes,1,rep,name=nuclides,proto3" json:"nuclides,omitempty" protobuf_key:"bytes,1,opt,name=key,proto3" protobuf_val:"varint,2,opt,name=value,proto3"`
	Charge   int32             `protobuf:"zigzag32,2,opt,name=charge,proto3" json:"charge,omitempty"`
}

func (m *formulaRecord) Reset()         { *m = formulaRecord{} }
func (m *formulaRecord) String() string { return proto.CompactTextString(m) }
func (*formulaRecord) ProtoMessage()    {}

func marshalFormula(f chem.Formula) ([]byte, error) {
	rec := formulaRecord{
		Nuclides: make(map[string]uint32, f.Len()),
		Charge:   int32(f.Charge()),
	}
	f.Each(func(key chem.IsotopeKey, count int) {
		rec.Nuclides[string(key)] = uint32(count)
	})
	return proto.Marshal(&rec)
}

func unmarshalFormula(buf []byte) (chem.Formula, error) {
	var rec formulaRecord
	if err := proto.Unmarshal(buf, &rec); err != nil {
		return chem.Formula{}, errors.Wrap(ErrUnmarshal, err.Error())
	}
	counts := make(map[chem.IsotopeKey]int, len(rec.Nuclides))
	for key, n := range rec.Nuclides {
		counts[chem.IsotopeKey(key)] = int(n)
	}
	f, err := chem.NewFormula(counts, int(rec.Charge))
	if err != nil {
		return chem.Formula{}, errors.Wrap(ErrUnmarshal, err.Error())
	}
	return f, nil
}
