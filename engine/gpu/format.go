package gpu

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/exp/constraints"
)

/** @brief Available vertex element types. */
type ElementType uint8

const (
	ElementFloat32 ElementType = iota
	ElementFloat32x2
	ElementFloat32x3
	ElementFloat32x4
	ElementFloat16x2
	ElementFloat16x4
	ElementUint8x4
	ElementUint8x4Norm
	ElementInt8x4Norm
	ElementUint16x2
	ElementInt16x2Norm
	ElementUint32
	ElementInt32
	ElementUint32x4
)

type elementInfo struct {
	name       string
	size       uint32
	components int32
}

var elementInfos = map[ElementType]elementInfo{
	ElementFloat32:     {"float32", 4, 1},
	ElementFloat32x2:   {"float32x2", 8, 2},
	ElementFloat32x3:   {"float32x3", 12, 3},
	ElementFloat32x4:   {"float32x4", 16, 4},
	ElementFloat16x2:   {"float16x2", 4, 2},
	ElementFloat16x4:   {"float16x4", 8, 4},
	ElementUint8x4:     {"uint8x4", 4, 4},
	ElementUint8x4Norm: {"unorm8x4", 4, 4},
	ElementInt8x4Norm:  {"snorm8x4", 4, 4},
	ElementUint16x2:    {"uint16x2", 4, 2},
	ElementInt16x2Norm: {"snorm16x2", 4, 2},
	ElementUint32:      {"uint32", 4, 1},
	ElementInt32:       {"int32", 4, 1},
	ElementUint32x4:    {"uint32x4", 16, 4},
}

// Size is the size of the element in bytes.
func (e ElementType) Size() uint32 {
	return elementInfos[e].size
}

func (e ElementType) Components() int32 {
	return elementInfos[e].components
}

func (e ElementType) String() string {
	if info, ok := elementInfos[e]; ok {
		return info.name
	}
	return fmt.Sprintf("element(%d)", uint8(e))
}

func ParseElementType(s string) (ElementType, error) {
	for e, info := range elementInfos {
		if info.name == strings.ToLower(s) {
			return e, nil
		}
	}
	return 0, fmt.Errorf("unknown vertex element type `%s`", s)
}

type Frequency uint8

const (
	PerVertex Frequency = iota
	PerInstance
)

/**
 * @brief A vertex attribute bound to a shader input slot.
 */
type Attribute struct {
	/** @brief The shader input location. Unique within a Format. */
	Slot uint32
	/** @brief The vertex buffer the attribute is read from. */
	Channel uint32
	/** @brief The element type. */
	Element ElementType
	/** @brief Offset in bytes from the start of a vertex in the channel. */
	Offset uint32
	/** @brief Explicit channel stride, or 0 to derive it from the attributes. */
	Stride uint32
	/** @brief Whether the channel advances per vertex or per instance. */
	Frequency Frequency
}

/**
 * @brief The layout of one vertex buffer.
 */
type Channel struct {
	Index     uint32
	Stride    uint32
	Frequency Frequency
}

/**
 * @brief Describes the vertex buffer layout consumed by a pipeline. Immutable.
 */
type Format struct {
	attributes []Attribute
	channels   []Channel
}

// NewFormat validates attributes and derives the channel layouts. Two attributes on
// the same slot, overlapping byte ranges in one channel, or disagreeing channel
// strides/frequencies fail with a FormatConflictError.
func NewFormat(attrs ...Attribute) (*Format, error) {
	f := &Format{
		attributes: append([]Attribute(nil), attrs...),
	}
	sort.SliceStable(f.attributes, func(i, j int) bool { return f.attributes[i].Slot < f.attributes[j].Slot })

	for i := 1; i < len(f.attributes); i++ {
		if f.attributes[i].Slot == f.attributes[i-1].Slot {
			return nil, &FormatConflictError{
				Slot:   f.attributes[i].Slot,
				Other:  f.attributes[i].Slot,
				Reason: "slot bound twice",
			}
		}
	}
	for _, a := range f.attributes {
		if _, ok := elementInfos[a.Element]; !ok {
			return nil, &FormatConflictError{Slot: a.Slot, Other: a.Slot, Reason: fmt.Sprintf("unknown element type %d", a.Element)}
		}
	}

	byChannel := map[uint32][]Attribute{}
	for _, a := range f.attributes {
		byChannel[a.Channel] = append(byChannel[a.Channel], a)
	}
	for index, list := range byChannel {
		ch, err := buildChannel(index, list)
		if err != nil {
			return nil, err
		}
		f.channels = append(f.channels, ch)
	}
	sort.Slice(f.channels, func(i, j int) bool { return f.channels[i].Index < f.channels[j].Index })
	return f, nil
}

func buildChannel(index uint32, list []Attribute) (Channel, error) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Offset < list[j].Offset })

	ch := Channel{Index: index, Frequency: list[0].Frequency}
	// Byte ranges are measured in 64 bits so offset+size cannot wrap.
	var end uint64
	var strideFrom *Attribute
	for i := range list {
		a := &list[i]
		if aEnd := attributeEnd(*a); aEnd > maxVertexSize {
			return ch, &FormatConflictError{
				Slot:   a.Slot,
				Other:  a.Slot,
				Reason: fmt.Sprintf("attribute at offset %d ends past %d bytes in channel %d", a.Offset, uint64(maxVertexSize), index),
			}
		}
		if i > 0 {
			prev := list[i-1]
			if uint64(a.Offset) < attributeEnd(prev) {
				return ch, &FormatConflictError{
					Slot:   prev.Slot,
					Other:  a.Slot,
					Reason: fmt.Sprintf("byte ranges overlap in channel %d", index),
				}
			}
		}
		if a.Frequency != ch.Frequency {
			return ch, &FormatConflictError{
				Slot:   list[0].Slot,
				Other:  a.Slot,
				Reason: fmt.Sprintf("mixed step frequency in channel %d", index),
			}
		}
		if a.Stride != 0 {
			if strideFrom != nil && strideFrom.Stride != a.Stride {
				return ch, &FormatConflictError{
					Slot:   strideFrom.Slot,
					Other:  a.Slot,
					Reason: fmt.Sprintf("stride %d and %d disagree in channel %d", strideFrom.Stride, a.Stride, index),
				}
			}
			strideFrom = a
		}
		end = max(end, attributeEnd(*a))
	}

	if strideFrom != nil {
		if uint64(strideFrom.Stride) < end {
			return ch, &FormatConflictError{
				Slot:   strideFrom.Slot,
				Other:  strideFrom.Slot,
				Reason: fmt.Sprintf("stride %d smaller than vertex size %d in channel %d", strideFrom.Stride, end, index),
			}
		}
		ch.Stride = strideFrom.Stride
	} else {
		ch.Stride = uint32(alignUp(end, 4))
	}
	return ch, nil
}

// maxVertexSize is the largest vertex whose 4 byte aligned stride still fits in 32 bits.
const maxVertexSize = math.MaxUint32 &^ 3

func attributeEnd(a Attribute) uint64 {
	return uint64(a.Offset) + uint64(a.Element.Size())
}

func (f *Format) Attributes() []Attribute {
	return append([]Attribute(nil), f.attributes...)
}

func (f *Format) Channels() []Channel {
	return append([]Channel(nil), f.channels...)
}

func (f *Format) Attribute(slot uint32) (Attribute, bool) {
	i := sort.Search(len(f.attributes), func(i int) bool { return f.attributes[i].Slot >= slot })
	if i < len(f.attributes) && f.attributes[i].Slot == slot {
		return f.attributes[i], true
	}
	return Attribute{}, false
}

func (f *Format) Channel(index uint32) (Channel, bool) {
	for _, ch := range f.channels {
		if ch.Index == index {
			return ch, true
		}
	}
	return Channel{}, false
}

// Stride returns the stride of a channel, 0 if the channel is unused.
func (f *Format) Stride(channel uint32) uint32 {
	ch, _ := f.Channel(channel)
	return ch.Stride
}

func (f *Format) Len() int {
	return len(f.attributes)
}

func alignUp[T constraints.Integer](v, alignment T) T {
	if alignment == 0 {
		return v
	}
	return (v + alignment - 1) / alignment * alignment
}
