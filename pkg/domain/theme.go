package domain

type Theme string

const (
	ThemeLight Theme = "light_mode"
	ThemeDark  Theme = "dark_mode"
)

func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}
