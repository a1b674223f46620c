package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/orbiter-mshx/pkg/catalog"
	"github.com/Faultbox/orbiter-mshx/pkg/encoding"
	"github.com/Faultbox/orbiter-mshx/pkg/mesh"
)

const (
	maxLineSize = 1 << 20
	maxPrealloc = 4096
)

// ReadOptions controls mesh file decoding.
type ReadOptions struct {
	// LegacyEncoding decodes the file as Windows-1252 instead of UTF-8.
	LegacyEncoding bool
}

// ImportFile opens and parses the mesh file at path.
func ImportFile(path string, opts ReadOptions) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ResourceError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	return ReadMSHX(f, opts)
}

// ReadMSHX parses a mesh file. Vertex, triangle and material lines are
// tokenised but not converted; see Group.Vertices, Group.Triangles and
// Material.Decode.
func ReadMSHX(r io.Reader, opts ReadOptions) (*File, error) {
	if opts.LegacyEncoding {
		r = encoding.NewLegacyReader(r)
	}
	lr := newLineReader(r)

	if err := lr.readHeader(); err != nil {
		return nil, err
	}
	nGroups, err := lr.readGroupCount()
	if err != nil {
		return nil, err
	}

	file := &File{Groups: make([]Group, 0, sizeHint(nGroups))}
	for i := 0; i < nGroups; i++ {
		g, err := lr.readGroup()
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		file.Groups = append(file.Groups, g)
	}

	if file.Materials, err = lr.readMaterials(); err != nil {
		return nil, err
	}
	if file.Textures, err = lr.readTextures(); err != nil {
		return nil, err
	}
	return file, nil
}

// lineReader yields comment-stripped lines and tracks line numbers.
type lineReader struct {
	sc   *bufio.Scanner
	line int
}

func newLineReader(r io.Reader) *lineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &lineReader{sc: sc}
}

// raw returns the next physical line with any comment removed.
func (lr *lineReader) raw() (string, error) {
	if !lr.sc.Scan() {
		if err := lr.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	lr.line++
	text := lr.sc.Text()
	if lr.line == 1 {
		text = encoding.TrimBOM(text)
	}
	if i := strings.IndexByte(text, ';'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimRight(text, "\r"), nil
}

// text returns the next non-blank line, trimmed.
func (lr *lineReader) text() (string, error) {
	for {
		s, err := lr.raw()
		if err != nil {
			return "", err
		}
		if s = strings.TrimSpace(s); s != "" {
			return s, nil
		}
	}
}

// fields returns the tokens of the next non-blank line.
func (lr *lineReader) fields() (Line, error) {
	s, err := lr.text()
	if err != nil {
		return Line{}, err
	}
	return Line{Number: lr.line, Fields: strings.Fields(s)}, nil
}

func (lr *lineReader) truncated(what string, err error) error {
	if errors.Is(err, io.EOF) {
		return formatErr(lr.line, what, ErrTruncatedMSHX)
	}
	return err
}

func (lr *lineReader) readHeader() error {
	s, err := lr.raw()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return formatErr(0, "", ErrMissingHeader)
		}
		return err
	}
	if !strings.Contains(strings.ToUpper(s), Magic) {
		return formatErr(lr.line, strings.TrimSpace(s), ErrMissingHeader)
	}
	return nil
}

func (lr *lineReader) readGroupCount() (int, error) {
	for {
		line, err := lr.fields()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, formatErr(lr.line, "", ErrMissingGroups)
			}
			return 0, err
		}
		if !strings.HasPrefix(strings.ToUpper(line.Fields[0]), "GROUP") {
			continue
		}
		if len(line.Fields) < 2 {
			return 0, formatErr(line.Number, line.String(), ErrMissingGroups)
		}
		n, err := strconv.Atoi(line.Fields[1])
		if err != nil || n < 0 {
			return 0, formatErr(line.Number, line.String(), ErrMissingGroups)
		}
		return n, nil
	}
}

func (lr *lineReader) readGroup() (Group, error) {
	var g Group
	for {
		line, err := lr.fields()
		if err != nil {
			return g, lr.truncated("GEOM", err)
		}
		bad := formatErr(line.Number, line.String(), ErrInvalidStatement)

		switch strings.ToUpper(line.Fields[0]) {
		case "MATERIAL":
			if g.MaterialIndex, err = intArg(line, 10); err != nil {
				return g, bad
			}
		case "TEXTURE":
			if g.TextureIndex, err = intArg(line, 10); err != nil {
				return g, bad
			}
		case "TEXWRAP":
			if len(line.Fields) < 2 {
				return g, bad
			}
			g.TexWrap = line.Fields[1]
		case "NONORMAL":
			g.NoNormal = true
		case "FLAG":
			if len(line.Fields) < 2 {
				return g, bad
			}
			g.FlagText = line.Fields[1]
			g.Flag = parseFlag(g.FlagText)
		case "LABEL":
			g.Label = strings.Join(line.Fields[1:], "_")
		case "GEOM":
			if len(line.Fields) < 3 {
				return g, bad
			}
			nv, err1 := strconv.Atoi(line.Fields[1])
			nt, err2 := strconv.Atoi(line.Fields[2])
			if err1 != nil || err2 != nil || nv < 0 || nt < 0 {
				return g, bad
			}
			g.NumVertices, g.NumTriangles = nv, nt
			return lr.readGeometry(g)
		}
	}
}

func (lr *lineReader) readGeometry(g Group) (Group, error) {
	g.VertexLines = make([]Line, 0, sizeHint(g.NumVertices))
	for i := 0; i < g.NumVertices; i++ {
		line, err := lr.fields()
		if err != nil {
			return g, lr.truncated(fmt.Sprintf("vertex %d of %d", i, g.NumVertices), err)
		}
		g.VertexLines = append(g.VertexLines, line)
	}
	g.TriangleLines = make([]Line, 0, sizeHint(g.NumTriangles))
	for i := 0; i < g.NumTriangles; i++ {
		line, err := lr.fields()
		if err != nil {
			return g, lr.truncated(fmt.Sprintf("triangle %d of %d", i, g.NumTriangles), err)
		}
		g.TriangleLines = append(g.TriangleLines, line)
	}
	return g, nil
}

// blockCount reads a "<KEYWORD> n" line.
func (lr *lineReader) blockCount(keyword string) (int, error) {
	line, err := lr.fields()
	if err != nil {
		return 0, lr.truncated(keyword, err)
	}
	if !strings.EqualFold(line.Fields[0], keyword) {
		return 0, formatErr(line.Number, line.String(), fmt.Errorf("%w: expected %s", ErrMissingBlock, keyword))
	}
	n, err := intArg(line, 10)
	if err != nil || n < 0 {
		return 0, formatErr(line.Number, line.String(), ErrMissingBlock)
	}
	return n, nil
}

func (lr *lineReader) readMaterials() ([]Material, error) {
	n, err := lr.blockCount("MATERIALS")
	if err != nil {
		return nil, err
	}

	mats := make([]Material, 1, sizeHint(n)+1)
	mats[0] = Material{Name: DefaultMaterialName}
	for i := 0; i < n; i++ {
		name, err := lr.text()
		if err != nil {
			return nil, lr.truncated("material name", err)
		}
		mats = append(mats, Material{Name: name})
	}

	for i := 1; i <= n; i++ {
		header, err := lr.fields()
		if err != nil {
			return nil, lr.truncated("MATERIAL", err)
		}
		if !strings.EqualFold(header.Fields[0], "MATERIAL") {
			return nil, formatErr(header.Number, header.String(), fmt.Errorf("%w: expected MATERIAL", ErrMissingBlock))
		}

		m := &mats[i]
		m.Line = header.Number
		for _, dst := range []*Line{&m.Diffuse, &m.Ambient, &m.Specular, &m.Emissive} {
			line, err := lr.fields()
			if err != nil {
				return nil, lr.truncated("material colour", err)
			}
			*dst = line
		}
	}
	return mats, nil
}

func (lr *lineReader) readTextures() ([]mesh.Texture, error) {
	n, err := lr.blockCount("TEXTURES")
	if err != nil {
		return nil, err
	}

	texs := make([]mesh.Texture, 1, sizeHint(n)+1)
	for i := 0; i < n; i++ {
		name, err := lr.text()
		if err != nil {
			return nil, lr.truncated("texture name", err)
		}
		tex := mesh.Texture{Path: name}
		if trimmed, ok := strings.CutSuffix(name, " D"); ok {
			tex.Path = strings.TrimSpace(trimmed)
			tex.Dynamic = true
		}
		texs = append(texs, tex)
	}
	return texs, nil
}

// sizeHint bounds a count read from the file before it is used as a
// slice capacity. Short files still fail with ErrTruncatedMSHX.
func sizeHint(n int) int {
	return min(n, maxPrealloc)
}

// parseFlag reads a FLAG value as decimal, or hex with a 0x prefix.
// Leading zeros are decimal. An unparsable value reads as 0; the token
// itself is kept in Group.FlagText.
func parseFlag(s string) int {
	base, digits := 10, s
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		base, digits = 16, rest
	}
	n, err := strconv.ParseInt(digits, base, 0)
	if err != nil {
		return 0
	}
	return int(n)
}

func intArg(line Line, base int) (int, error) {
	if len(line.Fields) < 2 {
		return 0, ErrInvalidStatement
	}
	n, err := strconv.ParseInt(line.Fields[1], base, 0)
	return int(n), err
}

// Pairs returns the (material, texture) index pair of every group in order.
func (f *File) Pairs() []catalog.Pair {
	pairs := make([]catalog.Pair, len(f.Groups))
	for i, g := range f.Groups {
		pairs[i] = catalog.Pair{Material: g.MaterialIndex, Texture: g.TextureIndex}
	}
	return pairs
}

// CatalogSource decodes the file's materials for catalog.FanOut.
func (f *File) CatalogSource() (catalog.Source, error) {
	src := catalog.Source{
		Pairs:     f.Pairs(),
		Materials: make([]mesh.Material, len(f.Materials)),
		Textures:  f.Textures,
	}
	for i := range f.Materials {
		m, err := f.Materials[i].Decode()
		if err != nil {
			return src, fmt.Errorf("material %q: %w", f.Materials[i].Name, err)
		}
		src.Materials[i] = m
	}
	return src, nil
}
