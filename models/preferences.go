package models

// Preferences are per-user settings stored under their preferences key.
type Preferences struct {
	Theme             string `json:"theme"`
	FocusMinutes      int    `json:"focus_minutes"`
	ShortBreakMinutes int    `json:"short_break_minutes"`
	LongBreakMinutes  int    `json:"long_break_minutes"`
}

// DefaultPreferences returns the preferences seeded for a new user.
func DefaultPreferences(focus, shortBreak, longBreak int) Preferences {
	return Preferences{
		Theme:             "light",
		FocusMinutes:      focus,
		ShortBreakMinutes: shortBreak,
		LongBreakMinutes:  longBreak,
	}
}
