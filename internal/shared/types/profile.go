package types

// Profile is a named shell-launch template. Registered profiles are
// immutable; edits go through explicit add/remove on the registry.
type Profile struct {
	Name        string            `json:"name"`
	Command     string            `json:"command"`
	Args        []string          `json:"args,omitempty"`
	Env         map[string]string `json:"env,omitempty"`
	WorkingDir  string            `json:"working_dir,omitempty"`
	FontFamily  string            `json:"font_family,omitempty"`
	FontSize    int               `json:"font_size,omitempty"`
	CursorStyle string            `json:"cursor_style,omitempty"`
	Scrollback  int               `json:"scrollback,omitempty"`
	AudibleBell bool              `json:"audible_bell,omitempty"`
}
