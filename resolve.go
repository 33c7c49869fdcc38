package wardrobe

import (
	"image"
	"math"
	"strconv"
	"strings"

	"github.com/unkn0wn-root/wardrobe/bundle"
	"github.com/unkn0wn-root/wardrobe/catalog"
)

// textureTypeAlias maps a part type to the type its sprites are indexed under.
// Only the texture library lookup uses it; hiding, z-order, tint and the
// candidate asset ids keep the part's own type.
var textureTypeAlias = map[string]string{
	"hrb": "hr",
}

// untintedTypes are never tinted, colorable or not.
var untintedTypes = map[string]struct{}{
	"ey": {},
}

func textureType(partType string) string {
	if t, ok := textureTypeAlias[partType]; ok {
		return t
	}
	return partType
}

// candidateFormats are the asset id layouts a part sprite may be exported
// under, most preferred first: action, type, id, direction, frame.
var candidateFormats = [...]struct {
	action    string
	direction string
	frame     string
}{
	{"std", "2", "0"},
	{"std", "1", "0"},
	{"std", "0", "0"},
	{"std", "3", "0"},
	{"sml", "2", "0"},
	{"spk", "2", "0"},
	{"spk", "1", "0"},
	{"spk", "0", "0"},
	{"lay", "2", "0"},
	{"std", "7", "0"},
}

// assetCandidates returns the ten candidate asset ids of a part, in order.
func assetCandidates(partType, partID string) [len(candidateFormats)]string {
	var out [len(candidateFormats)]string
	for i, f := range candidateFormats {
		out[i] = "h_" + f.action + "_" + partType + "_" + partID + "_" + f.direction + "_" + f.frame
	}
	return out
}

// textureName is the key of an asset's frame in the library texture map.
func textureName(lib, assetID string) string { return lib + "_" + assetID + ".png" }

type resolved struct {
	texture string // texture name
	img     image.Image
	asset   string // metadata candidate; "" when none matched
}

// resolveTexture runs the two first-match searches over the same candidates:
// one against the texture names, one against the asset metadata. They may
// pick different candidates.
func resolveTexture(lib *bundle.Library, libID string, p catalog.Part) (resolved, bool) {
	var r resolved
	found := false
	for _, id := range assetCandidates(p.Type, p.ID) {
		if !found {
			name := textureName(libID, id)
			if img, ok := lib.Textures[name]; ok {
				r.texture, r.img, found = name, img, true
			}
		}
		if r.asset == "" && lib.HasAsset(id) {
			r.asset = id
		}
		if found && r.asset != "" {
			break
		}
	}
	return r, found
}

// parseOffset reads an "x,y" pixel offset. Anything unparseable is (0,0).
func parseOffset(s string) image.Point {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return image.Point{}
	}
	x, errX := parseCoord(xs)
	y, errY := parseCoord(ys)
	if errX != nil || errY != nil {
		return image.Point{}
	}
	return image.Pt(x, y)
}

func parseCoord(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrSyntax
	}
	return int(math.Round(f)), nil
}

// colorChoice returns the color id chosen for a 1-based slot, "" when the
// slot was not chosen.
func colorChoice(colors []string, slot int) string {
	if slot < 1 || slot > len(colors) {
		return ""
	}
	return colors[slot-1]
}

// hiddenSet unions hidden layer lists.
func hiddenSet(lists ...[]string) map[string]struct{} {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	out := make(map[string]struct{}, n)
	for _, l := range lists {
		for _, t := range l {
			out[t] = struct{}{}
		}
	}
	return out
}
