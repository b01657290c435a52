package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/DoyleJ11/toppan-client/internal/tile"
)

// Renderer builds nodes for tile labels. The variant is chosen once at
// startup and kept for the session.
type Renderer interface {
	Tile(label string, o Options) Node
	Name() string
}

type AssetRenderer struct {
	base string
}

func NewAssetRenderer(base string) *AssetRenderer {
	return &AssetRenderer{base: NormalizeBase(base)}
}

func (r *AssetRenderer) Name() string { return "asset" }

func (r *AssetRenderer) Tile(label string, o Options) Node {
	back := o.FaceDown || tile.IsBack(label)
	asset := tile.BackAsset
	alt := "tile-back"
	if !back {
		asset = tile.AssetName(tile.Parse(label))
		alt = label
	}
	cands := Candidates(r.base, asset)
	return Node{
		Kind:       KindImage,
		Label:      label,
		Alt:        alt,
		Asset:      asset,
		Src:        cands[0],
		Candidates: cands,
		Small:      o.Small,
		Back:       back,
		Height:     heightFor(o),
		State:      LoadPending,
	}
}

// TextRenderer shows the raw label.
type TextRenderer struct{}

func (TextRenderer) Name() string { return "text" }

func (TextRenderer) Tile(label string, o Options) Node {
	back := o.FaceDown || tile.IsBack(label)
	text := label
	if back {
		text = tile.BackSymbol
	}
	return Node{
		Kind:   KindText,
		Label:  label,
		Text:   text,
		Small:  o.Small,
		Back:   back,
		Height: heightFor(o),
	}
}

var ErrCapabilityAbsent = errors.New("asset renderer unavailable")

// Resolve picks the renderer for the session. Assets are used only when
// the back image can be loaded from one of the candidate locations; any
// other outcome returns the text renderer together with the reason.
func Resolve(ctx context.Context, base string, enabled bool, loader Loader) (Renderer, error) {
	if !enabled {
		return TextRenderer{}, fmt.Errorf("%w: disabled by config", ErrCapabilityAbsent)
	}
	if loader == nil {
		return TextRenderer{}, fmt.Errorf("%w: no loader", ErrCapabilityAbsent)
	}
	var errs []error
	for _, src := range Candidates(base, tile.BackAsset) {
		if _, err := loader.Load(ctx, src); err != nil {
			errs = append(errs, err)
			continue
		}
		return NewAssetRenderer(base), nil
	}
	return TextRenderer{}, fmt.Errorf("%w: %w", ErrCapabilityAbsent, errors.Join(errs...))
}
