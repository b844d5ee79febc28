package bot

type (
	// UserID identifies the user (chat) that owns a group and a conversation.
	UserID int64

	// EventKind ...
	EventKind int

	// Event is an inbound user action delivered by a transport.
	Event struct {
		UserID  UserID
		Kind    EventKind
		Payload string
	}

	// InstructionKind ...
	InstructionKind int

	// Button is a selectable option of an instruction. Wide buttons take a
	// whole row, the others are laid out two per row.
	Button struct {
		Label string
		Data  string
		Wide  bool
	}

	// Instruction tells a transport what to render for a user. EditMessage
	// targets the message whose button produced the event being handled.
	Instruction struct {
		UserID  UserID
		Kind    InstructionKind
		Text    string
		Options []Button
	}
)

const (
	EventText EventKind = iota
	EventButtonClick
)

const (
	NewMessage InstructionKind = iota
	EditMessage
	Alert
)

func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventButtonClick:
		return "button_click"
	}
	return "unknown"
}

func (k InstructionKind) String() string {
	switch k {
	case NewMessage:
		return "new_message"
	case EditMessage:
		return "edit_message"
	case Alert:
		return "alert"
	}
	return "unknown"
}

func newMessage(format string, args ...interface{}) Instruction {
	return Instruction{Kind: NewMessage, Text: sprintf(format, args...)}
}

func editMessage(text string, options []Button) Instruction {
	return Instruction{Kind: EditMessage, Text: text, Options: options}
}

func alert(text string) Instruction {
	return Instruction{Kind: Alert, Text: text}
}
