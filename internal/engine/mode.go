package engine

type Mode int

const (
	ModeNormal Mode = iota
	ModeAddTranslation
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeAddTranslation:
		return "add_translation"
	default:
		return "unknown"
	}
}

func assert(cond bool, msg string) {
	if !cond {
		panic("engine: " + msg)
	}
}
