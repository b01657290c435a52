package render

import "strings"

const DefaultAssetBase = "/assets/tiles/"

// AltBases are tried, in order, after the configured base fails.
var AltBases = []string{"/static/assets/tiles/", "assets/tiles/"}

// NormalizeBase makes sure base ends with a slash.
func NormalizeBase(base string) string {
	if base == "" {
		return DefaultAssetBase
	}
	if strings.HasSuffix(base, "/") {
		return base
	}
	return base + "/"
}

// Candidates lists every location to try for file, configured base first.
func Candidates(base, file string) []string {
	out := make([]string, 0, 1+len(AltBases))
	out = append(out, NormalizeBase(base)+file)
	for _, b := range AltBases {
		out = append(out, NormalizeBase(b)+file)
	}
	return out
}

// NextCandidate returns the location to try after failures failed loads,
// or false once every candidate has failed.
func NextCandidate(failures int, candidates []string) (string, bool) {
	if failures < 0 || failures >= len(candidates) {
		return "", false
	}
	return candidates[failures], true
}

// Retry is the load progress of one image node.
type Retry struct {
	Candidates []string
	Failures   int
}

func (r *Retry) Current() (string, bool) {
	return NextCandidate(r.Failures, r.Candidates)
}

// Fail records a failed load and returns the next location, if any.
func (r *Retry) Fail() (string, bool) {
	r.Failures++
	return r.Current()
}

func (r *Retry) Exhausted() bool {
	_, ok := r.Current()
	return !ok
}
