package grid

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/lixenwraith/phosphor/core"
)

// Face rasterizes single glyphs into a cell
type Face interface {
	Metrics() FontMetrics
	// DrawGlyph draws r with its cell's top-left corner at (x, y)
	DrawGlyph(dst *image.RGBA, x, y int, r rune, fg core.RGB)
}

// FontFace adapts an x/image font.Face to fixed cells
type FontFace struct {
	face    font.Face
	metrics FontMetrics
}

// NewFontFace measures f once; the advance of 'M' defines the cell width
func NewFontFace(f font.Face) *FontFace {
	m := f.Metrics()
	adv, ok := f.GlyphAdvance('M')
	if !ok {
		adv = m.Height / 2
	}
	return &FontFace{
		face: f,
		metrics: FontMetrics{
			CellWidth:  adv.Ceil(),
			CellHeight: m.Height.Ceil(),
			Ascent:     m.Ascent.Ceil(),
		},
	}
}

// FallbackFace is the built-in bitmap face used until the real font loads
func FallbackFace() *FontFace {
	return NewFontFace(basicfont.Face7x13)
}

// LoadMonoFace parses the embedded Go Mono TTF at the given size
func LoadMonoFace(size float64) (*FontFace, error) {
	f, err := LoadFace(gomono.TTF, size)
	if err != nil {
		return nil, fmt.Errorf("go mono: %w", err)
	}
	return f, nil
}

// LoadFace parses a TTF or OTF font. Proportional fonts are forced into
// cells of the 'M' advance.
func LoadFace(data []byte, size float64) (*FontFace, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}
	return NewFontFace(face), nil
}

func (f *FontFace) Metrics() FontMetrics { return f.metrics }

func (f *FontFace) DrawGlyph(dst *image.RGBA, x, y int, r rune, fg core.RGB) {
	if r == 0 || r == ' ' {
		return
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(fg),
		Face: f.face,
		Dot:  fixed.P(x, y+f.metrics.Ascent),
	}
	d.DrawString(string(r))
}

// BlockFace treats each cell as one pixel lit by any visible glyph.
// Used where the display draws real glyphs itself and only needs coverage.
type BlockFace struct{}

func (BlockFace) Metrics() FontMetrics { return FontMetrics{CellWidth: 1, CellHeight: 1} }

func (BlockFace) DrawGlyph(dst *image.RGBA, x, y int, r rune, fg core.RGB) {
	if r == 0 || r == ' ' {
		return
	}
	i := dst.PixOffset(x, y)
	if i < 0 || i+3 >= len(dst.Pix) || !(image.Point{x, y}.In(dst.Rect)) {
		return
	}
	dst.Pix[i+0] = fg.R
	dst.Pix[i+1] = fg.G
	dst.Pix[i+2] = fg.B
	dst.Pix[i+3] = 0xff
}
