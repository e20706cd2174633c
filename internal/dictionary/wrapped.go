package dictionary

// Wrapped forwards every call to the dictionary it holds. Decorators embed it
// and override the methods they change.
type Wrapped struct {
	Dictionary
}

func Wrap(d Dictionary) Wrapped { return Wrapped{Dictionary: d} }
