package pintype

import "fmt"

// Adapter node type ids suggested when a connection needs an explicit converter.
const (
	AdapterMediaConverter  = "media-converter"
	AdapterDataTransformer = "data-transformer"
	AdapterTypeConverter   = "type-converter"
)

// Kind distinguishes control-flow connections from data connections.
type Kind string

const (
	KindExecution Kind = "execution"
	KindData      Kind = "data"
)

// ErrExecutionOnly is the message returned when an execution connection
// touches a non-execution pin.
const ErrExecutionOnly = "Execution pins can only connect to execution pins"

// Result is the verdict for a candidate connection between two pin types.
type Result struct {
	Valid            bool   `json:"valid"`
	RequiresAdapter  bool   `json:"requiresAdapter"`
	CanAutoConvert   bool   `json:"canAutoConvert"`
	ErrorMessage     string `json:"errorMessage,omitempty"`
	SuggestedAdapter string `json:"suggestedAdapter,omitempty"`
}

// Verdict classifies a result for display.
type Verdict string

const (
	VerdictValid           Verdict = "valid"
	VerdictRequiresAdapter Verdict = "requires-adapter"
	VerdictInvalid         Verdict = "invalid"
)

func (r Result) Verdict() Verdict {
	switch {
	case r.Valid:
		return VerdictValid
	case r.RequiresAdapter:
		return VerdictRequiresAdapter
	default:
		return VerdictInvalid
	}
}

// compatibility is directional: from -> set of accepted targets.
var compatibility = map[Type]typeSet{
	Execution: setOf(Execution),
	String:    setOf(String, JSON, URL, Date, Filepath, Any),
	Number:    setOf(Number, String, Boolean, Any),
	Boolean:   setOf(Boolean, String, Number, Any),
	Object:    setOf(Object, JSON, String, Any),
	Array:     setOf(Array, String, JSON, Object, Any),
	Image:     setOf(Image, Any),
	Video:     setOf(Video, Any),
	Audio:     setOf(Audio, Any),
	JSON:      setOf(JSON, String, Object, Array, Any),
	URL:       setOf(URL, String, Any),
	Date:      setOf(Date, String, Number, Any),
	Filepath:  setOf(Filepath, String, URL, Any),
	Any:       setOf(Catalog...),
}

// autoConvert lists compatible pairs whose data is converted implicitly.
var autoConvert = map[Type]typeSet{
	Number:   setOf(String),
	Boolean:  setOf(String, Number),
	Object:   setOf(JSON, String),
	Array:    setOf(String, JSON),
	JSON:     setOf(Object, Array, String),
	URL:      setOf(String),
	Date:     setOf(String, Number),
	Filepath: setOf(String, URL),
}

// adapterRequired lists incompatible pairs for which an adapter node exists.
var adapterRequired = map[Type]typeSet{
	Image:    setOf(Video, Audio, String),
	Video:    setOf(Image, Audio, String),
	Audio:    setOf(Image, Video, String),
	JSON:     setOf(URL),
	Object:   setOf(URL),
	Array:    setOf(URL),
	String:   setOf(Image, Video, Audio),
	URL:      setOf(Image, Video, Audio),
	Filepath: setOf(Image, Video, Audio),
}

// CanConnect decides whether an output pin of type from may feed an input
// pin of type to.
func CanConnect(from, to Type) Result {
	if from == to {
		return Result{Valid: true}
	}

	if from == Any || to == Any {
		return Result{Valid: true}
	}

	if from.IsCustom() || to.IsCustom() {
		custom := from
		if !from.IsCustom() {
			custom = to
		}
		return Result{
			RequiresAdapter:  true,
			ErrorMessage:     fmt.Sprintf("Custom type %q can only connect to the same type or \"any\"", custom),
			SuggestedAdapter: AdapterTypeConverter,
		}
	}

	targets, ok := compatibility[from]
	if !ok {
		return Result{ErrorMessage: fmt.Sprintf("Unknown pin type %q", from)}
	}

	if !targets.has(to) {
		if adapterRequired[from].has(to) {
			return Result{
				RequiresAdapter:  true,
				ErrorMessage:     fmt.Sprintf("Cannot connect %q to %q: requires an adapter node", from, to),
				SuggestedAdapter: suggestAdapter(from, to),
			}
		}
		return Result{ErrorMessage: fmt.Sprintf("Cannot connect %q to %q", from, to)}
	}

	return Result{Valid: true, CanAutoConvert: autoConvert[from].has(to)}
}

// ValidateConnection applies the connection kind policy before the type check.
func ValidateConnection(from, to Type, kind Kind) Result {
	if kind == KindExecution {
		if from == Execution && to == Execution {
			return Result{Valid: true}
		}
		return Result{ErrorMessage: ErrExecutionOnly}
	}
	return CanConnect(from, to)
}

// KindOf returns the connection kind implied by the source pin type.
func KindOf(from Type) Kind {
	if from == Execution {
		return KindExecution
	}
	return KindData
}

// KindFor picks the policy for a pin pair: touching an execution pin on
// either side makes it an execution connection.
func KindFor(from, to Type) Kind {
	if from == Execution || to == Execution {
		return KindExecution
	}
	return KindData
}

// CompatibleTypes returns every type from can connect to, itself included.
func CompatibleTypes(from Type) []Type {
	if from == Any {
		return append([]Type(nil), Catalog...)
	}
	targets, ok := compatibility[from]
	if !ok {
		if from.IsCustom() {
			return []Type{from, Any}
		}
		return nil
	}
	return targets.sorted()
}

func suggestAdapter(from, to Type) string {
	switch {
	case from.IsMedia() && to.IsMedia():
		return AdapterMediaConverter
	case from.IsStructured() && (to == String || to == URL):
		return AdapterDataTransformer
	default:
		return AdapterTypeConverter
	}
}
