package types

// Theme is a 20-slot terminal color palette: the 8 base and 8 bright
// ANSI colors plus background, foreground, cursor and selection.
type Theme struct {
	Name string `json:"name"`

	Black   string `json:"black"`
	Red     string `json:"red"`
	Green   string `json:"green"`
	Yellow  string `json:"yellow"`
	Blue    string `json:"blue"`
	Magenta string `json:"magenta"`
	Cyan    string `json:"cyan"`
	White   string `json:"white"`

	BrightBlack   string `json:"bright_black"`
	BrightRed     string `json:"bright_red"`
	BrightGreen   string `json:"bright_green"`
	BrightYellow  string `json:"bright_yellow"`
	BrightBlue    string `json:"bright_blue"`
	BrightMagenta string `json:"bright_magenta"`
	BrightCyan    string `json:"bright_cyan"`
	BrightWhite   string `json:"bright_white"`

	Background string `json:"background"`
	Foreground string `json:"foreground"`
	Cursor     string `json:"cursor"`
	Selection  string `json:"selection"`
}

// CustomTheme is a user-authored palette. Custom themes live in their
// own namespace so built-ins are never shadowed or lost.
type CustomTheme struct {
	Theme

	ID          string `json:"id"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`
}
