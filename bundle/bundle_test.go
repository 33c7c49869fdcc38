package bundle

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/unkn0wn-root/wardrobe/codec"
	"github.com/unkn0wn-root/wardrobe/fetch"
)

var (
	red  = color.NRGBA{0xff, 0, 0, 0xff}
	blue = color.NRGBA{0, 0, 0xff, 0xff}
)

// atlasPNG is 8x4: left half red, right half blue.
func atlasPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			if x < 4 {
				img.SetNRGBA(x, y, red)
			} else {
				img.SetNRGBA(x, y, blue)
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func testDoc(t *testing.T) Document {
	t.Helper()
	return Document{
		Name:  "hh_human_hair",
		Atlas: atlasPNG(t),
		Frames: map[string]Frame{
			"hh_human_hair_h_std_hr_10_2_0.png": {X: 0, Y: 0, W: 4, H: 4},
			"hh_human_hair_h_std_hr_10_1_0.png": {X: 4, Y: 1, W: 4, H: 3},
		},
		Assets: map[string]Asset{
			"h_std_hr_10_2_0": {Offset: "-2,3"},
		},
	}
}

func TestDecodeSlicesFrames(t *testing.T) {
	lib, err := Decode(testDoc(t))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if lib.ID != "hh_human_hair" || !lib.HasAsset("h_std_hr_10_2_0") {
		t.Fatalf("lib=%+v", lib)
	}
	a := lib.Textures["hh_human_hair_h_std_hr_10_2_0.png"]
	b := lib.Textures["hh_human_hair_h_std_hr_10_1_0.png"]
	if a == nil || b == nil {
		t.Fatalf("missing textures: %v", lib.Textures)
	}
	if a.Bounds().Dx() != 4 || b.Bounds().Dy() != 3 {
		t.Fatalf("bounds a=%v b=%v", a.Bounds(), b.Bounds())
	}
	if got := color.NRGBAModel.Convert(b.At(b.Bounds().Min.X, b.Bounds().Min.Y)); got != blue {
		t.Fatalf("frame b pixel=%v want blue", got)
	}
	if lib.HasTexture("hh_human_hair_h_std_hr_99_2_0.png") {
		t.Fatalf("unexpected texture")
	}
}

func TestDecodeFrameOutOfBounds(t *testing.T) {
	doc := testDoc(t)
	doc.Frames["bad.png"] = Frame{X: 6, Y: 0, W: 4, H: 4}
	if _, err := Decode(doc); !errors.Is(err, ErrFrameOutOfBounds) {
		t.Fatalf("err=%v want ErrFrameOutOfBounds", err)
	}
}

func TestDecodeNoAtlas(t *testing.T) {
	doc := testDoc(t)
	doc.Atlas = nil
	if _, err := Decode(doc); !errors.Is(err, ErrNoAtlas) {
		t.Fatalf("err=%v want ErrNoAtlas", err)
	}

	// metadata-only bundles are fine
	lib, err := Decode(Document{Name: "meta", Assets: map[string]Asset{"x": {}}})
	if err != nil || !lib.HasAsset("x") {
		t.Fatalf("lib=%+v err=%v", lib, err)
	}
}

func TestUnmarshalLZ4(t *testing.T) {
	c := codec.Msgpack[Document]{}
	raw, err := c.Encode(testDoc(t))
	if err != nil {
		t.Fatal(err)
	}
	packed, err := Compress(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(packed, lz4Magic) {
		t.Fatalf("Compress did not write an lz4 frame")
	}

	for name, in := range map[string][]byte{"plain": raw, "lz4": packed} {
		lib, err := Unmarshal(in, c)
		if err != nil {
			t.Fatalf("%s: Unmarshal: %v", name, err)
		}
		if len(lib.Textures) != 2 {
			t.Fatalf("%s: textures=%d", name, len(lib.Textures))
		}
	}
}

func TestUnmarshalLZ4StopsAtDecodeLimit(t *testing.T) {
	inner := codec.JSON[Document]{}
	doc := testDoc(t)
	doc.Assets = map[string]Asset{"pad": {Offset: string(bytes.Repeat([]byte("0"), 64<<10))}}
	raw, err := inner.Encode(doc)
	if err != nil {
		t.Fatal(err)
	}
	packed, err := Compress(raw)
	if err != nil {
		t.Fatal(err)
	}
	// highly compressible: the frame itself is far below the limit
	limited := codec.LimitCodec[Document]{Inner: inner, MaxDecode: 4 << 10}
	if len(packed) > limited.MaxDecode {
		t.Fatalf("test bundle compressed to %d bytes, want under %d", len(packed), limited.MaxDecode)
	}

	_, err = Unmarshal(packed, limited)
	var tl *codec.TooLargeError
	if !errors.As(err, &tl) || tl.Max != limited.MaxDecode || tl.Size != limited.MaxDecode+1 {
		t.Fatalf("err=%v want TooLargeError at %d", err, limited.MaxDecode)
	}

	limited.MaxDecode = len(raw)
	if _, err := Unmarshal(packed, limited); err != nil {
		t.Fatalf("bundle at the limit: %v", err)
	}
}

func TestFetcherDefaultsIDToName(t *testing.T) {
	doc := testDoc(t)
	doc.Name = ""
	raw, err := codec.JSON[Document]{}.Encode(doc)
	if err != nil {
		t.Fatal(err)
	}

	var asked string
	src := fetch.SourceFunc(func(_ context.Context, name string) ([]byte, error) {
		asked = name
		return raw, nil
	})
	lib, err := Fetcher(src, nil)(context.Background(), "hh_human_hair")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if asked != "hh_human_hair" || lib.ID != "hh_human_hair" {
		t.Fatalf("asked=%q id=%q", asked, lib.ID)
	}
}

func TestFetcherPropagatesSourceError(t *testing.T) {
	boom := errors.New("boom")
	src := fetch.SourceFunc(func(context.Context, string) ([]byte, error) { return nil, boom })
	if _, err := Fetcher(src, nil)(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("err=%v want boom", err)
	}
}
