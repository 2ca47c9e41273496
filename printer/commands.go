package printer

import "fmt"

// Command is one of the fixed ESC/POS control sequences documents are
// composed from.
type Command int

const (
	Init Command = iota
	AlignLeft
	AlignCenter
	AlignRight
	BoldOn
	BoldOff
	Cut
)

var commandBytes = [...][]byte{
	Init:        {0x1b, 0x40},       // ESC @
	AlignLeft:   {0x1b, 0x61, 0x00}, // ESC a 0
	AlignCenter: {0x1b, 0x61, 0x01}, // ESC a 1
	AlignRight:  {0x1b, 0x61, 0x02}, // ESC a 2
	BoldOn:      {0x1b, 0x45, 0x01}, // ESC E 1
	BoldOff:     {0x1b, 0x45, 0x00}, // ESC E 0
	Cut:         {0x1d, 0x56, 0x00}, // GS V 0, full cut
}

var commandNames = [...]string{
	Init:        "INIT",
	AlignLeft:   "ALIGN_LEFT",
	AlignCenter: "ALIGN_CENTER",
	AlignRight:  "ALIGN_RIGHT",
	BoldOn:      "BOLD_ON",
	BoldOff:     "BOLD_OFF",
	Cut:         "CUT",
}

// Bytes returns a copy of the command's byte sequence.
func (c Command) Bytes() []byte {
	if c < 0 || int(c) >= len(commandBytes) {
		return nil
	}
	return append([]byte(nil), commandBytes[c]...)
}

func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return fmt.Sprintf("Command(%d)", int(c))
	}
	return commandNames[c]
}

// Align returns the alignment command for "left", "center" or "right".
func Align(align string) (Command, error) {
	switch align {
	case "left":
		return AlignLeft, nil
	case "center":
		return AlignCenter, nil
	case "right":
		return AlignRight, nil
	}
	return 0, fmt.Errorf("invalid alignment: %s", align)
}
