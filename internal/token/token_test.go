package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Color
		wantErr bool
	}{
		{name: "short hex", input: "#f80", want: RGB(0xff, 0x88, 0x00)},
		{name: "long hex", input: "#10B981", want: RGB(0x10, 0xb9, 0x81)},
		{name: "with alpha", input: "#00000080", want: Color{A: 0x80}},
		{name: "no hash", input: "ffffff", want: RGB(0xff, 0xff, 0xff)},
		{name: "bad length", input: "#12345", wantErr: true},
		{name: "bad digits", input: "#zzzzzz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColor(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestColorString(t *testing.T) {
	require.Equal(t, "", Color{}.String())
	require.Equal(t, "#ff8800", RGB(0xff, 0x88, 0).String())
	require.Equal(t, "#ff880080", Color{R: 0xff, G: 0x88, A: 0x80}.String())
}

func TestColorText_RoundTrip(t *testing.T) {
	c := RGB(1, 2, 3)
	b, err := c.MarshalText()
	require.NoError(t, err)

	var back Color
	require.NoError(t, back.UnmarshalText(b))
	require.Equal(t, c, back)

	require.NoError(t, back.UnmarshalText(nil))
	require.False(t, back.IsSet())
}

func TestStyleSpecResolve_InheritsUnsetAttributes(t *testing.T) {
	parent := Style{Foreground: RGB(1, 1, 1), Background: RGB(9, 9, 9), Bold: true}
	spec := StyleSpec{Foreground: RGB(2, 2, 2), Italic: Yes}

	got := spec.Resolve(parent)
	require.Equal(t, RGB(2, 2, 2), got.Foreground, "innermost foreground wins")
	require.Equal(t, RGB(9, 9, 9), got.Background, "background inherited")
	require.True(t, got.Bold, "bold inherited")
	require.True(t, got.Italic)

	got = StyleSpec{Bold: No}.Resolve(parent)
	require.False(t, got.Bold, "explicit No overrides parent")
}

func TestRectUnion(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 1}
	b := Rect{X: 5, Y: 3, Width: 10, Height: 1}
	require.Equal(t, Rect{X: 0, Y: 0, Width: 15, Height: 4}, a.Union(b))
	require.Equal(t, a, Rect{}.Union(a))
	require.Equal(t, a, a.Union(Rect{}))
}

func TestRectSamePosition(t *testing.T) {
	a := Rect{X: 1, Y: 2, Width: 3, Height: 1}
	require.True(t, a.SamePosition(Rect{X: 1, Y: 2, Width: 8, Height: 8}))
	require.False(t, a.SamePosition(a.Translate(0, 1)))
}

func TestDeriveID_Deterministic(t *testing.T) {
	a := DeriveID("x", "Name", 0)
	require.Equal(t, a, DeriveID("x", "Name", 0))
	require.NotEqual(t, a, DeriveID("x", "Name", 1), "occurrence separates duplicates")
	require.NotEqual(t, a, DeriveID("x", "Keyword", 0), "path separates scopes")
	require.NotEqual(t, a, DeriveID("y", "Name", 0))
}

func TestSequenceString(t *testing.T) {
	seq := Sequence{
		{Text: "const", Line: 0, Column: 0},
		{Text: "x", Line: 0, Column: 6},
		{Text: "}", Line: 2, Column: 0},
	}
	require.Equal(t, "const x\n\n}", seq.String())
	require.Equal(t, 3, seq.Lines())
	require.Equal(t, []string{"const", "x", "}"}, seq.Texts())
}
