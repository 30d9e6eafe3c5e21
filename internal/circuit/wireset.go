package circuit

// PairKey returns the canonical key for an unordered endpoint pair.
// PairKey(a, b) == PairKey(b, a) for all a, b.
func PairKey(a, b Endpoint) string {
	as, bs := a.String(), b.String()
	if bs < as {
		as, bs = bs, as
	}
	return as + "|" + bs
}

// WireSet indexes wires by unordered endpoint pair and by endpoint.
type WireSet struct {
	pairs     map[string]string
	endpoints map[Endpoint]int
}

// NewWireSet builds an index over wires.
func NewWireSet(wires []Wire) *WireSet {
	s := &WireSet{
		pairs:     make(map[string]string, len(wires)),
		endpoints: make(map[Endpoint]int, len(wires)*2),
	}
	for _, w := range wires {
		s.Add(w)
	}
	return s
}

// Add indexes a wire.
func (s *WireSet) Add(w Wire) {
	s.pairs[PairKey(w.From(), w.To())] = w.ID
	s.endpoints[w.From()]++
	s.endpoints[w.To()]++
}

// Lookup returns the id of the wire joining a and b in either direction.
func (s *WireSet) Lookup(a, b Endpoint) (string, bool) {
	id, ok := s.pairs[PairKey(a, b)]
	return id, ok
}

// Has reports whether a wire joins a and b in either direction.
func (s *WireSet) Has(a, b Endpoint) bool {
	_, ok := s.pairs[PairKey(a, b)]
	return ok
}

// Connected reports whether any wire touches ep.
func (s *WireSet) Connected(ep Endpoint) bool {
	return s.endpoints[ep] > 0
}

// Len returns the number of distinct endpoint pairs.
func (s *WireSet) Len() int {
	return len(s.pairs)
}
