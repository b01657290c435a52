// Package render turns tile labels into drawable nodes. Two capabilities
// exist: image nodes backed by tile assets, and plain text nodes used when
// assets are unavailable for the whole session.
package render

type Kind string

const (
	KindImage Kind = "image"
	KindText  Kind = "text"
)

type LoadState string

const (
	LoadNone    LoadState = ""
	LoadPending LoadState = "pending"
	LoadDone    LoadState = "loaded"
	LoadBroken  LoadState = "broken"
)

// Tile heights in px.
const (
	HeightNormal = 60
	HeightSmall  = 42
)

type Options struct {
	Small    bool
	FaceDown bool
}

// Node is one drawn tile. Image nodes carry their candidate locations and
// the one currently tried; Width stays 0 ("auto") until the natural size is
// known.
type Node struct {
	ID         int       `json:"id"`
	Kind       Kind      `json:"kind"`
	Label      string    `json:"label"`
	Text       string    `json:"text,omitempty"`
	Alt        string    `json:"alt,omitempty"`
	Asset      string    `json:"asset,omitempty"`
	Src        string    `json:"src,omitempty"`
	Candidates []string  `json:"-"`
	Small      bool      `json:"small,omitempty"`
	Back       bool      `json:"back,omitempty"`
	Height     int       `json:"height"`
	Width      int       `json:"width,omitempty"`
	NaturalW   int       `json:"natural_w,omitempty"`
	NaturalH   int       `json:"natural_h,omitempty"`
	State      LoadState `json:"state,omitempty"`
}

func heightFor(o Options) int {
	if o.Small {
		return HeightSmall
	}
	return HeightNormal
}

// ForceHeight sets the drawn height and derives the width from the natural
// aspect ratio when it is known, otherwise from fallbackWidth.
func (n *Node) ForceHeight(h, fallbackWidth int) {
	n.Height = h
	if n.NaturalW > 0 && n.NaturalH > 0 {
		n.Width = (n.NaturalW*h + n.NaturalH/2) / n.NaturalH
		return
	}
	n.Width = fallbackWidth
}
