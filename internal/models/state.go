package models

// SessionState is the session namespace written in full on every
// session-store mutation and read once at startup.
type SessionState struct {
	User          *User `json:"user"`
	Authenticated bool  `json:"authenticated"`
}

// AppSettings is the preferences namespace. It shares the persistence
// mechanism with the session namespace but is independent of it.
type AppSettings struct {
	Language string `json:"language"`
	Theme    string `json:"theme"`
}

// DefaultSettings returns the settings used before a user changes anything.
func DefaultSettings() AppSettings {
	return AppSettings{Language: "english", Theme: "light"}
}
