package pintype

// Type is the tag carried by a pin. The catalog below is closed; any other
// non-empty string is treated as an opaque custom type.
type Type string

const (
	Execution Type = "execution"
	String    Type = "string"
	Number    Type = "number"
	Boolean   Type = "boolean"
	Object    Type = "object"
	Array     Type = "array"
	Image     Type = "image"
	Video     Type = "video"
	Audio     Type = "audio"
	JSON      Type = "json"
	URL       Type = "url"
	Date      Type = "date"
	Filepath  Type = "filepath"
	Any       Type = "any"
)

// Catalog lists every built-in pin type in display order.
var Catalog = []Type{
	Execution, String, Number, Boolean, Object, Array,
	Image, Video, Audio, JSON, URL, Date, Filepath, Any,
}

var known = func() map[Type]bool {
	m := make(map[Type]bool, len(Catalog))
	for _, t := range Catalog {
		m[t] = true
	}
	return m
}()

// IsCatalog reports whether t is one of the built-in pin types.
func (t Type) IsCatalog() bool {
	return known[t]
}

// IsCustom reports whether t is a user tagged type outside the catalog.
func (t Type) IsCustom() bool {
	return t != "" && !known[t]
}

// IsMedia reports whether t is one of the strict media types.
func (t Type) IsMedia() bool {
	return t == Image || t == Video || t == Audio
}

// IsStructured reports whether t carries structured data.
func (t Type) IsStructured() bool {
	return t == JSON || t == Object || t == Array
}

// CarriesData is false only for execution pins.
func (t Type) CarriesData() bool {
	return t != Execution
}

func (t Type) String() string {
	return string(t)
}

type typeSet map[Type]struct{}

func setOf(types ...Type) typeSet {
	s := make(typeSet, len(types))
	for _, t := range types {
		s[t] = struct{}{}
	}
	return s
}

func (s typeSet) has(t Type) bool {
	_, ok := s[t]
	return ok
}

// sorted returns the members of s in catalog order.
func (s typeSet) sorted() []Type {
	out := make([]Type, 0, len(s))
	for _, t := range Catalog {
		if s.has(t) {
			out = append(out, t)
		}
	}
	return out
}
