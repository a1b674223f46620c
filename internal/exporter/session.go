// Package exporter turns host scenes into Orbiter mesh files and the
// optional C++ include listing.
package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/orbiter-mshx/internal/config"
	"github.com/Faultbox/orbiter-mshx/internal/logger"
	"github.com/Faultbox/orbiter-mshx/internal/scene"
	"github.com/Faultbox/orbiter-mshx/pkg/formats"
	"github.com/Faultbox/orbiter-mshx/pkg/mesh"
)

// Generator names this tool in include file headers.
const Generator = "orbiter-mshx"

// Result reports what was written for one scene.
type Result struct {
	Scene string
	Path  string
	// Groups holds the written groups in file order.
	Groups []*mesh.Group
	Layout *formats.Layout
	// Skipped lists objects left out because their geometry was invalid.
	Skipped []string
}

// Session is one export pass. It owns the include file, which stays open
// across scenes and is finished by Close.
type Session struct {
	cfg      *config.Config
	sortMode mesh.SortMode
	incOpts  formats.IncludeOptions

	include     *os.File
	includePath string
	closed      bool

	// Now stamps the include header; time.Now when nil.
	Now func() time.Time
}

// NewSession prepares an export pass. source names the input the scenes
// came from and provides the default include file name.
func NewSession(cfg *config.Config, source string) (*Session, error) {
	mode, err := mesh.ParseSortMode(cfg.Export.SortMode)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Export.MeshDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create mesh directory %s", cfg.Export.MeshDir)
	}

	s := &Session{
		cfg:      cfg,
		sortMode: mode,
		incOpts: formats.IncludeOptions{
			VertsPattern:    cfg.Include.VertsPattern,
			IDPattern:       cfg.Include.IDPattern,
			LocationPattern: cfg.Include.LocationPattern,
		},
	}
	if cfg.Include.Enabled {
		s.includePath = cfg.Include.Path
		if s.includePath == "" {
			s.includePath = filepath.Join(cfg.Export.MeshDir, sourceName(source)+".h")
		}
	}
	return s, nil
}

func sourceName(source string) string {
	base := filepath.Base(source)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "scene"
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IncludePath returns the include file path, empty when include output is
// disabled.
func (s *Session) IncludePath() string {
	return s.includePath
}

// openInclude creates the include file on first use. A failure is logged
// and turns include output off for the rest of the session.
func (s *Session) openInclude() bool {
	if s.includePath == "" {
		return false
	}
	if s.include != nil {
		return true
	}

	f, err := os.Create(s.includePath)
	if err != nil {
		logger.Warn("include file disabled", zap.String("path", s.includePath), zap.Error(err))
		s.includePath = ""
		return false
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	header := formats.IncludeHeader{
		Generator: Generator,
		Date:      now(),
		Guard:     strings.ToUpper(sourceName(s.includePath)),
		Namespace: s.cfg.Include.OuterNamespace,
	}
	s.include = f
	if err := formats.WriteIncludeHeader(f, header); err != nil {
		s.disableInclude(err)
		return false
	}
	return true
}

// disableInclude drops a broken include file. The mesh files already
// written are kept.
func (s *Session) disableInclude(err error) {
	logger.Warn("include file disabled", zap.String("path", s.includePath), zap.Error(err))
	if s.include != nil {
		s.include.Close()
		s.include = nil
	}
	s.includePath = ""
}

// Close finishes and closes the include file. It is safe to call more
// than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.include == nil {
		return nil
	}

	f := s.include
	s.include = nil
	if err := formats.WriteIncludeFooter(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", s.includePath)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %s", s.includePath)
	}
	logger.Info("include file written", zap.String("path", s.includePath))
	return nil
}

// ExportAll exports every scene, or only the active scene's selection when
// SelectedOnly is set and something is selected.
func (s *Session) ExportAll(scenes []*scene.Scene) ([]*Result, error) {
	if s.cfg.Export.SelectedOnly {
		for _, sc := range scenes {
			if !sc.Active {
				continue
			}
			sel := sc.Selection()
			if len(sel) == 0 {
				logger.Warn("nothing selected, exporting all scenes", zap.String("scene", sc.Name))
				break
			}
			res, err := s.export(sc, sel)
			if err != nil {
				return nil, err
			}
			if res == nil {
				return nil, nil
			}
			return []*Result{res}, nil
		}
	}

	var results []*Result
	for _, sc := range scenes {
		res, err := s.ExportScene(sc)
		if err != nil {
			return results, err
		}
		if res != nil {
			results = append(results, res)
		}
	}
	return results, nil
}

// ExportScene writes <mesh_dir>/<scene>.msh from every exportable object of
// sc and appends the scene's include block. It returns nil for scenes that
// do not create a mesh file.
func (s *Session) ExportScene(sc *scene.Scene) (*Result, error) {
	return s.export(sc, sc.Objects)
}

func (s *Session) export(sc *scene.Scene, objects []*scene.Object) (*Result, error) {
	if s.closed {
		return nil, errors.New("export session closed")
	}
	if !sc.CreateMeshFile {
		logger.Info("scene skipped, no mesh file requested", zap.String("scene", sc.Name))
		return nil, nil
	}

	b := newBuilder(sc, s.cfg.Export.SwapYZ)
	res := &Result{
		Scene: sc.Name,
		Path:  filepath.Join(s.cfg.Export.MeshDir, sc.Name+".msh"),
	}

	logger.Info("start scene",
		zap.String("scene", sc.Name),
		zap.String("path", res.Path),
		zap.Stringer("transform", b.tf))

	var exported []*scene.Object
	for _, o := range objects {
		if o.HiddenFromRender && s.cfg.Export.ExcludeHiddenRender {
			logger.Debug("object hidden from render", zap.String("object", o.Name))
			continue
		}
		g, err := b.group(o)
		if err != nil {
			logger.Warn("object skipped", zap.String("object", o.Name), zap.Error(err))
			res.Skipped = append(res.Skipped, o.Name)
			continue
		}
		res.Groups = append(res.Groups, g)
		exported = append(exported, o)
	}
	mesh.SortGroups(res.Groups, s.sortMode)

	layout, err := formats.ExportFile(res.Path, res.Groups, b.catalog(), formats.WriteOptions{
		ParseMaterialName: s.cfg.Export.ParseMaterialName,
		LegacyEncoding:    s.cfg.Export.LegacyEncoding,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scene %q", sc.Name)
	}
	res.Layout = layout

	for i, gl := range layout.Groups {
		g := res.Groups[i]
		logger.Debug("group written",
			zap.String("group", gl.Name),
			zap.Int("material", gl.Material),
			zap.Int("texture", gl.Texture),
			zap.Int("vertices", len(g.Vertices)),
			zap.Int("triangles", len(g.Triangles)),
			zap.Bool("dynamic_texture", g.DynamicTexture))
	}
	for _, name := range layout.Unresolved {
		logger.Warn("material not found, default colours written",
			zap.String("scene", sc.Name), zap.String("material", name))
	}

	if s.openInclude() {
		scope := formats.IncludeScope{
			Scene:     sc.Name,
			Namespace: sc.ScopeName(),
			Objects:   b.includeObjects(exported),
		}
		if err := formats.EmitInclude(s.include, scope, res.Groups, layout.Textures, s.incOpts); err != nil {
			s.disableInclude(err)
		}
	}

	logger.Info("scene exported",
		zap.String("scene", sc.Name),
		zap.Int("groups", len(res.Groups)),
		zap.Int("materials", len(layout.Materials)),
		zap.Int("textures", len(layout.Textures)),
		zap.Int("skipped", len(res.Skipped)))
	return res, nil
}
