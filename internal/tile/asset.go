package tile

import "strconv"

// BackAsset is the reverse-side image, also used for unparsed labels.
const BackAsset = "ura.gif"

var honorAssets = [...]string{
	East:  "ji1-ton.gif",
	South: "ji2-nan.gif",
	West:  "ji3-sha.gif",
	North: "ji4-pei.gif",
	White: "ji5-haku.gif",
	Green: "ji6-hatsu.gif",
	Red:   "ji7-chun.gif",
}

// AssetName returns the image file for t. Unparsed tiles map to BackAsset.
func AssetName(t Tile) string {
	switch t.Kind {
	case KindHonor:
		if t.Honor >= East && t.Honor <= Red {
			return honorAssets[t.Honor]
		}
	case KindNumber:
		prefix := suitAssetPrefix(t.Suit)
		if prefix == "" || t.Rank < 1 || t.Rank > 9 {
			break
		}
		if t.Red && t.Rank == 5 {
			return prefix + "-aka5.gif"
		}
		return prefix + strconv.Itoa(t.Rank) + ".gif"
	}
	return BackAsset
}

// LabelAsset resolves a raw label, honoring the face-down markers first.
func LabelAsset(label string) string {
	if IsBack(label) {
		return BackAsset
	}
	return AssetName(Parse(label))
}

func suitAssetPrefix(s Suit) string {
	switch s {
	case Manzu:
		return "man"
	case Pinzu:
		return "pin"
	case Souzu:
		return "sou"
	}
	return ""
}
