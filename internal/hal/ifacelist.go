package hal

import (
	"fmt"
	"strings"
)

const (
	// MaxIfaceNameLen is the longest interface name the kernel accepts
	// (IFNAMSIZ less the terminating NUL).
	MaxIfaceNameLen = 15

	// MaxIfaceListLen bounds the rendered form of a single member list
	// (a 256 byte buffer less the terminating NUL).
	MaxIfaceListLen = 255

	// MaxTotalIfaceListLen bounds the rendered form of an aggregated list,
	// such as the vendor interface list (1024 bytes less the NUL).
	MaxTotalIfaceListLen = 1023
)

// ValidateIfaceName checks name against the kernel's interface naming rules.
func ValidateIfaceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if len(name) > MaxIfaceNameLen {
		return fmt.Errorf("%w: %q longer than %d bytes", ErrInvalidName, name, MaxIfaceNameLen)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for _, c := range name {
		if c == '/' || c == ':' || c == '\x00' || c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			return fmt.Errorf("%w: %q contains prohibited character", ErrInvalidName, name)
		}
	}
	return nil
}

// IfaceList is an ordered, duplicate-free list of interface names. Order is
// kept for display and logging only.
type IfaceList struct {
	names []string
}

// NewIfaceList builds a list from names, validating each and rejecting duplicates.
func NewIfaceList(names ...string) (IfaceList, error) {
	var l IfaceList
	for _, n := range names {
		if err := ValidateIfaceName(n); err != nil {
			return IfaceList{}, err
		}
		if l.Contains(n) {
			return IfaceList{}, fmt.Errorf("%w: %q", ErrDuplicateIface, n)
		}
		l.names = append(l.names, n)
	}
	return l, nil
}

// MustIfaceList is NewIfaceList for literals known to be valid.
func MustIfaceList(names ...string) IfaceList {
	l, err := NewIfaceList(names...)
	if err != nil {
		panic(err)
	}
	return l
}

// ParseIfaceList parses a whitespace-delimited list such as "eth0 eth1".
func ParseIfaceList(s string) (IfaceList, error) {
	return NewIfaceList(strings.Fields(s)...)
}

// Len returns the number of names in the list.
func (l IfaceList) Len() int { return len(l.names) }

// Names returns a copy of the names in order.
func (l IfaceList) Names() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Contains reports whether name is in the list.
func (l IfaceList) Contains(name string) bool {
	for _, n := range l.names {
		if n == name {
			return true
		}
	}
	return false
}

// Add appends name if it is not already present.
func (l *IfaceList) Add(name string) error {
	if err := ValidateIfaceName(name); err != nil {
		return err
	}
	if l.Contains(name) {
		return nil
	}
	l.names = append(l.names, name)
	return nil
}

// Remove deletes name from the list. It reports whether anything was removed;
// a miss leaves the list unchanged and is not an error.
func (l *IfaceList) Remove(name string) bool {
	for i, n := range l.names {
		if n == name {
			l.names = append(l.names[:i:i], l.names[i+1:]...)
			return true
		}
	}
	return false
}

// String renders the list space-delimited.
func (l IfaceList) String() string {
	return strings.Join(l.names, " ")
}

// Validate checks that the rendered list fits within limit bytes.
func (l IfaceList) Validate(limit int) error {
	if n := len(l.String()); n > limit {
		return fmt.Errorf("%w: interface list is %d bytes, limit %d", ErrCapacity, n, limit)
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (l IfaceList) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *IfaceList) UnmarshalText(b []byte) error {
	v, err := ParseIfaceList(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// RemoveIfaceFromList removes every whole-token occurrence of iface from a
// space-delimited list. The remaining tokens keep their relative order. When
// iface is absent the list is returned unchanged.
func RemoveIfaceFromList(list, iface string) string {
	fields := strings.Fields(list)
	kept := fields[:0]
	removed := false
	for _, f := range fields {
		if f == iface {
			removed = true
			continue
		}
		kept = append(kept, f)
	}
	if !removed {
		return list
	}
	return strings.Join(kept, " ")
}
