package gif

import (
	"fmt"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"

	"github.com/zjrosen/magicmove/internal/token"
)

// faces holds one Go Mono face per bold/italic combination, indexed by
// faceIndex.
type faces [4]font.Face

func faceIndex(st token.Style) int {
	i := 0
	if st.Bold {
		i |= 1
	}
	if st.Italic {
		i |= 2
	}
	return i
}

func loadFaces(size float64) (faces, error) {
	var out faces
	for i, ttf := range [][]byte{gomono.TTF, gomonobold.TTF, gomonoitalic.TTF, gomonobolditalic.TTF} {
		f, err := truetype.Parse(ttf)
		if err != nil {
			return faces{}, fmt.Errorf("parsing font: %w", err)
		}
		out[i] = truetype.NewFace(f, &truetype.Options{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}
	return out, nil
}

// metrics derives the pixel grid from the regular face.
type metrics struct {
	cellWidth  float64
	lineHeight float64
	// baseline is the distance from the top of a line to the text baseline.
	baseline float64
}

func measure(face font.Face, lineSpacing float64) metrics {
	adv, _ := face.GlyphAdvance('M')
	m := face.Metrics()
	ascent := float64(m.Ascent) / 64
	descent := float64(m.Descent) / 64
	lineHeight := (ascent + descent) * lineSpacing
	return metrics{
		cellWidth:  float64(adv) / 64,
		lineHeight: lineHeight,
		baseline:   (lineHeight-(ascent+descent))/2 + ascent,
	}
}
