// PLY (Polygon File Format) parser for point clouds and triangle meshes.
package formats

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// PLY format errors.
var (
	ErrInvalidPLYMagic      = errors.New("invalid PLY magic: expected 'ply'")
	ErrUnsupportedPLYFormat = errors.New("unsupported PLY format")
	ErrMalformedPLYHeader   = errors.New("malformed PLY header")
	ErrTruncatedPLYData     = errors.New("truncated PLY data")
	ErrInvalidPLYIndex      = errors.New("PLY face index out of range")
	ErrNoPLYVertices        = errors.New("PLY has no vertex positions")
	ErrMalformedPLYData     = errors.New("malformed PLY data")
)

// maxPLYPrealloc caps per-element preallocation taken from header counts.
const maxPLYPrealloc = 1 << 20

// PLYEncoding is the body encoding declared in the header.
type PLYEncoding int

const (
	PLYASCII PLYEncoding = iota
	PLYBinaryLittleEndian
	PLYBinaryBigEndian
)

// String returns the header keyword for the encoding.
func (e PLYEncoding) String() string {
	switch e {
	case PLYASCII:
		return "ascii"
	case PLYBinaryLittleEndian:
		return "binary_little_endian"
	case PLYBinaryBigEndian:
		return "binary_big_endian"
	default:
		return "unknown"
	}
}

// PLYProperty describes one property of an element.
type PLYProperty struct {
	Name      string
	Type      string // scalar type, or item type for lists
	IsList    bool
	CountType string // list length type
}

// PLYElement describes an element block (vertex, face, ...).
type PLYElement struct {
	Name       string
	Count      int
	Properties []PLYProperty
}

// PLYHeader is the parsed header.
type PLYHeader struct {
	Encoding PLYEncoding
	Version  string
	Comments []string
	Elements []PLYElement
}

// Element returns the element with the given name, or nil.
func (h *PLYHeader) Element(name string) *PLYElement {
	for i := range h.Elements {
		if h.Elements[i].Name == name {
			return &h.Elements[i]
		}
	}
	return nil
}

// PLY is a decoded PLY file.
//
// Colors holds a combined per-vertex channel already in [0,1] (float
// r/g/b properties). Red, Green and Blue hold separate 0-255 channels
// (uchar red/green/blue properties) that still need merging.
type PLY struct {
	Header    PLYHeader
	Positions []float32 // xyz per vertex
	Normals   []float32 // nx ny nz per vertex, nil if absent
	Colors    []float32
	Red       []uint8
	Green     []uint8
	Blue      []uint8
	Indices   []uint32 // triangulated faces, nil for point clouds
}

// VertexCount returns the number of vertices.
func (p *PLY) VertexCount() int {
	return len(p.Positions) / 3
}

// HasFaces reports whether the file carried face connectivity.
func (p *PLY) HasFaces() bool {
	return len(p.Indices) > 0
}

// HasSeparateRGB reports whether separate byte color channels are present.
func (p *PLY) HasSeparateRGB() bool {
	return len(p.Red) > 0 && len(p.Green) > 0 && len(p.Blue) > 0
}

// LoadPLY reads and parses a PLY file from disk.
func LoadPLY(path string) (*PLY, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParsePLY(f)
}

// ParsePLY parses a PLY stream in ascii or binary encoding.
func ParsePLY(r io.Reader) (*PLY, error) {
	br := bufio.NewReader(r)

	header, err := readPLYHeader(br)
	if err != nil {
		return nil, err
	}

	ply := &PLY{Header: *header}

	var src plyValueReader
	switch header.Encoding {
	case PLYASCII:
		src = &plyASCIIReader{r: br}
	case PLYBinaryLittleEndian:
		src = &plyBinaryReader{r: br, order: binary.LittleEndian}
	case PLYBinaryBigEndian:
		src = &plyBinaryReader{r: br, order: binary.BigEndian}
	}

	for i := range header.Elements {
		el := &header.Elements[i]
		switch el.Name {
		case "vertex":
			err = ply.readVertices(src, el)
		case "face":
			err = ply.readFaces(src, el)
		default:
			err = skipPLYElement(src, el)
		}
		if err != nil {
			return nil, fmt.Errorf("element %s: %w", el.Name, err)
		}
	}

	if ply.VertexCount() == 0 {
		return nil, ErrNoPLYVertices
	}
	return ply, nil
}

func readPLYHeader(br *bufio.Reader) (*PLYHeader, error) {
	magic, err := br.ReadString('\n')
	if err != nil && magic == "" {
		if err == io.EOF {
			return nil, ErrTruncatedPLYData
		}
		return nil, err
	}
	if strings.TrimSpace(magic) != "ply" {
		return nil, ErrInvalidPLYMagic
	}

	h := &PLYHeader{}
	sawFormat := false
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("%w: missing end_header", ErrMalformedPLYHeader)
			}
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "format":
			if len(fields) < 3 {
				return nil, fmt.Errorf("%w: %q", ErrMalformedPLYHeader, strings.TrimSpace(line))
			}
			switch fields[1] {
			case "ascii":
				h.Encoding = PLYASCII
			case "binary_little_endian":
				h.Encoding = PLYBinaryLittleEndian
			case "binary_big_endian":
				h.Encoding = PLYBinaryBigEndian
			default:
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedPLYFormat, fields[1])
			}
			h.Version = fields[2]
			sawFormat = true
		case "comment", "obj_info":
			h.Comments = append(h.Comments, strings.TrimSpace(strings.TrimPrefix(line, fields[0])))
		case "element":
			if len(fields) != 3 {
				return nil, fmt.Errorf("%w: %q", ErrMalformedPLYHeader, strings.TrimSpace(line))
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: bad element count %q", ErrMalformedPLYHeader, fields[2])
			}
			h.Elements = append(h.Elements, PLYElement{Name: fields[1], Count: count})
		case "property":
			if len(h.Elements) == 0 {
				return nil, fmt.Errorf("%w: property before element", ErrMalformedPLYHeader)
			}
			prop, err := parsePLYProperty(fields)
			if err != nil {
				return nil, err
			}
			el := &h.Elements[len(h.Elements)-1]
			el.Properties = append(el.Properties, prop)
		case "end_header":
			if !sawFormat {
				return nil, fmt.Errorf("%w: missing format line", ErrMalformedPLYHeader)
			}
			return h, nil
		default:
			return nil, fmt.Errorf("%w: unknown keyword %q", ErrMalformedPLYHeader, fields[0])
		}
	}
}

func parsePLYProperty(fields []string) (PLYProperty, error) {
	if len(fields) >= 5 && fields[1] == "list" {
		if plyTypeSize(fields[2]) == 0 || plyTypeSize(fields[3]) == 0 {
			return PLYProperty{}, fmt.Errorf("%w: bad list types %s %s", ErrMalformedPLYHeader, fields[2], fields[3])
		}
		return PLYProperty{Name: fields[4], Type: fields[3], IsList: true, CountType: fields[2]}, nil
	}
	if len(fields) != 3 || plyTypeSize(fields[1]) == 0 {
		return PLYProperty{}, fmt.Errorf("%w: bad property %q", ErrMalformedPLYHeader, strings.Join(fields, " "))
	}
	return PLYProperty{Name: fields[2], Type: fields[1]}, nil
}

// plyTypeSize returns the byte size of a scalar type, 0 if unknown.
func plyTypeSize(typ string) int {
	switch typ {
	case "char", "int8", "uchar", "uint8":
		return 1
	case "short", "int16", "ushort", "uint16":
		return 2
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	default:
		return 0
	}
}

func isPLYFloat(typ string) bool {
	switch typ {
	case "float", "float32", "double", "float64":
		return true
	}
	return false
}

func (p *PLY) readVertices(src plyValueReader, el *PLYElement) error {
	idx := map[string]int{}
	for i, prop := range el.Properties {
		idx[prop.Name] = i
	}
	xi, okx := idx["x"]
	yi, oky := idx["y"]
	zi, okz := idx["z"]
	if !okx || !oky || !okz {
		return ErrNoPLYVertices
	}
	nxi, hasNX := idx["nx"]
	nyi, hasNY := idx["ny"]
	nzi, hasNZ := idx["nz"]
	hasNormals := hasNX && hasNY && hasNZ

	// red/green/blue as bytes are separate channels; float r/g/b (or float
	// red/green/blue) are already a combined [0,1] channel.
	ri, hasR := idx["red"]
	gi, hasG := idx["green"]
	bi, hasB := idx["blue"]
	byteRGB := hasR && hasG && hasB && !isPLYFloat(el.Properties[ri].Type)
	floatRGB := hasR && hasG && hasB && !byteRGB
	if !byteRGB && !floatRGB {
		sri, hasSR := idx["r"]
		sgi, hasSG := idx["g"]
		sbi, hasSB := idx["b"]
		if hasSR && hasSG && hasSB && isPLYFloat(el.Properties[sri].Type) {
			ri, gi, bi = sri, sgi, sbi
			floatRGB = true
		}
	}

	// The header count is untrusted; slices grow past this as data arrives.
	prealloc := min(el.Count, maxPLYPrealloc)
	p.Positions = make([]float32, 0, prealloc*3)
	if hasNormals {
		p.Normals = make([]float32, 0, prealloc*3)
	}
	if byteRGB {
		p.Red = make([]uint8, 0, prealloc)
		p.Green = make([]uint8, 0, prealloc)
		p.Blue = make([]uint8, 0, prealloc)
	}
	if floatRGB {
		p.Colors = make([]float32, 0, prealloc*3)
	}

	values := make([]float64, len(el.Properties))
	for v := 0; v < el.Count; v++ {
		for i, prop := range el.Properties {
			if prop.IsList {
				if _, err := readPLYList(src, prop); err != nil {
					return err
				}
				continue
			}
			val, err := src.scalar(prop.Type)
			if err != nil {
				return err
			}
			values[i] = val
		}

		p.Positions = append(p.Positions, float32(values[xi]), float32(values[yi]), float32(values[zi]))
		if hasNormals {
			p.Normals = append(p.Normals, float32(values[nxi]), float32(values[nyi]), float32(values[nzi]))
		}
		if byteRGB {
			p.Red = append(p.Red, clampByte(values[ri]))
			p.Green = append(p.Green, clampByte(values[gi]))
			p.Blue = append(p.Blue, clampByte(values[bi]))
		}
		if floatRGB {
			p.Colors = append(p.Colors, clampUnit(values[ri]), clampUnit(values[gi]), clampUnit(values[bi]))
		}
	}
	return nil
}

func (p *PLY) readFaces(src plyValueReader, el *PLYElement) error {
	vertexCount := uint32(p.VertexCount())
	for f := 0; f < el.Count; f++ {
		for _, prop := range el.Properties {
			if !prop.IsList {
				if _, err := src.scalar(prop.Type); err != nil {
					return err
				}
				continue
			}
			list, err := readPLYList(src, prop)
			if err != nil {
				return err
			}
			if prop.Name != "vertex_indices" && prop.Name != "vertex_index" {
				continue
			}
			// Fan triangulation; polygons with fewer than 3 corners are dropped.
			for i := 1; i+1 < len(list); i++ {
				a, b, c := uint32(list[0]), uint32(list[i]), uint32(list[i+1])
				if a >= vertexCount || b >= vertexCount || c >= vertexCount {
					return fmt.Errorf("%w: face %d", ErrInvalidPLYIndex, f)
				}
				p.Indices = append(p.Indices, a, b, c)
			}
		}
	}
	return nil
}

func skipPLYElement(src plyValueReader, el *PLYElement) error {
	for n := 0; n < el.Count; n++ {
		for _, prop := range el.Properties {
			var err error
			if prop.IsList {
				_, err = readPLYList(src, prop)
			} else {
				_, err = src.scalar(prop.Type)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func readPLYList(src plyValueReader, prop PLYProperty) ([]float64, error) {
	n, err := src.scalar(prop.CountType)
	if err != nil {
		return nil, err
	}
	if n < 0 || n > 1<<16 {
		return nil, fmt.Errorf("%w: list length %v", ErrMalformedPLYData, n)
	}
	out := make([]float64, int(n))
	for i := range out {
		if out[i], err = src.scalar(prop.Type); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clampUnit(v float64) float32 {
	return float32(math.Max(0, math.Min(1, v)))
}

// plyValueReader yields scalar values from the body regardless of encoding.
type plyValueReader interface {
	scalar(typ string) (float64, error)
}

type plyASCIIReader struct {
	r      *bufio.Reader
	tokens []string
}

func (a *plyASCIIReader) scalar(typ string) (float64, error) {
	for len(a.tokens) == 0 {
		line, err := a.r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, err
		}
		if line == "" && err != nil {
			return 0, ErrTruncatedPLYData
		}
		a.tokens = strings.Fields(line)
	}
	tok := a.tokens[0]
	a.tokens = a.tokens[1:]

	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad %s value %q", ErrMalformedPLYData, typ, tok)
	}
	return v, nil
}

type plyBinaryReader struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *plyBinaryReader) scalar(typ string) (float64, error) {
	size := plyTypeSize(typ)
	if size == 0 {
		return 0, fmt.Errorf("%w: type %s", ErrUnsupportedPLYFormat, typ)
	}
	if _, err := io.ReadFull(b.r, b.buf[:size]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, ErrTruncatedPLYData
		}
		return 0, err
	}
	data := b.buf[:size]

	switch typ {
	case "char", "int8":
		return float64(int8(data[0])), nil
	case "uchar", "uint8":
		return float64(data[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(data))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(data)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(data))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(data)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(data))), nil
	default:
		return math.Float64frombits(b.order.Uint64(data)), nil
	}
}
