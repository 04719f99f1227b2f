package types

// Section restricts a scan to a window of the layer's address space.
type Section struct {
	Start  uint64 // absolute offset of the first byte in the window
	Length uint64 // number of bytes in the window
}

// End returns the first offset past the section.
func (s Section) End() uint64 {
	return s.Start + s.Length
}

// Contains reports whether offset falls inside the section.
func (s Section) Contains(offset uint64) bool {
	return offset >= s.Start && offset < s.End()
}
