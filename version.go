package computegraph

import "strconv"

// GraphVersion identifies one definition of a graph under a given
// (namespace, name). Zero means no version has been assigned yet.
type GraphVersion uint64

// FirstVersion is the version given to the first definition of a graph.
const FirstVersion GraphVersion = 1

// NextVersion returns the version that follows prev. Stores call it while
// holding whatever lock serializes writes to one (namespace, name).
func NextVersion(prev GraphVersion) GraphVersion {
	if prev == 0 {
		return FirstVersion
	}
	return prev + 1
}

func (v GraphVersion) String() string {
	return strconv.FormatUint(uint64(v), 10)
}

// ParseGraphVersion parses the decimal form produced by String.
func ParseGraphVersion(s string) (GraphVersion, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, ClientErrorf("invalid graph version %q", s)
	}
	return GraphVersion(n), nil
}
