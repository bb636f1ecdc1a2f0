package models

// Theme names understood by the desktop shell.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// UserSettings holds per-user UI preferences.
type UserSettings struct {
	Username string `db:"username" json:"username"`
	Theme    string `db:"theme" json:"theme"`
}
