// Package wardrobe composes figure-part thumbnails for a wardrobe picker.
//
// For every selectable entry of a set type, a Compositor requests the sprite
// libraries the entry's parts live in, resolves each part's texture, pivot,
// tint and stacking order once those libraries are ready, and bakes the
// layers into one texture on a render.Surface.
//
// Components:
//   - catalog.Catalog: immutable figure metadata (sets, part index, palettes, geometry).
//   - loader.Loader: deduplicating library loader; each bundle is fetched once.
//   - render.Surface: sprite groups and bake (render/gg rasterizes with gogpu/gg).
//
// Entries are composed concurrently and complete in any order, but each is
// bound to its grid cell (catalog order) before any library is requested:
//
//	pass, _ := comp.Generate(ctx, wardrobe.Request{SetType: "hr", Gender: "F", Colors: []string{"45"}})
//	for r := range pass.Results() { ... }   // completion order
//	all, _ := pass.Wait(ctx)                 // catalog order
package wardrobe
