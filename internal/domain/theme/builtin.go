package theme

import "github.com/glyphide/termcore/internal/shared/types"

// builtinThemes returns the palettes every installation ships with.
func builtinThemes() []types.Theme {
	return []types.Theme{
		{
			Name: DefaultName,

			Black:   "#1a1a1a",
			Red:     "#e06c75",
			Green:   "#98c379",
			Yellow:  "#e5c07b",
			Blue:    "#61afef",
			Magenta: "#c678dd",
			Cyan:    "#56b6c2",
			White:   "#abb2bf",

			BrightBlack:   "#5c6370",
			BrightRed:     "#ef7a85",
			BrightGreen:   "#a9d48a",
			BrightYellow:  "#f0cf8e",
			BrightBlue:    "#74bdf4",
			BrightMagenta: "#d48ae6",
			BrightCyan:    "#6ac4d0",
			BrightWhite:   "#ffffff",

			Background: "#1e222a",
			Foreground: "#abb2bf",
			Cursor:     "#61afef",
			Selection:  "#3e4452",
		},
		{
			Name: "light",

			Black:   "#000000",
			Red:     "#c91b00",
			Green:   "#00a600",
			Yellow:  "#996f00",
			Blue:    "#0225c7",
			Magenta: "#c930c7",
			Cyan:    "#0098a3",
			White:   "#bfbfbf",

			BrightBlack:   "#676767",
			BrightRed:     "#ff6d67",
			BrightGreen:   "#5ff967",
			BrightYellow:  "#fefb67",
			BrightBlue:    "#6871ff",
			BrightMagenta: "#ff76ff",
			BrightCyan:    "#5ffdff",
			BrightWhite:   "#ffffff",

			Background: "#ffffff",
			Foreground: "#1a1a1a",
			Cursor:     "#0225c7",
			Selection:  "#d7d7db",
		},
		{
			Name: "high-contrast",

			Black:   "#000000",
			Red:     "#ff5555",
			Green:   "#00ff00",
			Yellow:  "#ffff00",
			Blue:    "#4d94ff",
			Magenta: "#ff00ff",
			Cyan:    "#00ffff",
			White:   "#ffffff",

			BrightBlack:   "#808080",
			BrightRed:     "#ff8080",
			BrightGreen:   "#80ff80",
			BrightYellow:  "#ffff80",
			BrightBlue:    "#80b3ff",
			BrightMagenta: "#ff80ff",
			BrightCyan:    "#80ffff",
			BrightWhite:   "#ffffff",

			Background: "#000000",
			Foreground: "#ffffff",
			Cursor:     "#00ffff",
			Selection:  "#4d4d4d",
		},
	}
}
