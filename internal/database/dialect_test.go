package database

import "testing"

func TestDialectDrivers(t *testing.T) {
	tests := []struct {
		name             string
		dialect          Dialect
		wantDriver       string
		wantLastInsertId bool
		wantSubdir       string
	}{
		{name: "sqlite", dialect: NewSQLiteDialect(), wantDriver: "sqlite3", wantLastInsertId: true, wantSubdir: "sqlite"},
		{name: "postgres", dialect: NewPostgresDialect(), wantDriver: "postgres", wantLastInsertId: false, wantSubdir: "postgres"},
		{name: "mysql", dialect: NewMySQLDialect(), wantDriver: "mysql", wantLastInsertId: true, wantSubdir: "mysql"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.DriverName(); got != tt.wantDriver {
				t.Errorf("DriverName() = %v, want %v", got, tt.wantDriver)
			}
			if got := tt.dialect.SupportsLastInsertId(); got != tt.wantLastInsertId {
				t.Errorf("SupportsLastInsertId() = %v, want %v", got, tt.wantLastInsertId)
			}
			if got := tt.dialect.MigrationsSubdir(); got != tt.wantSubdir {
				t.Errorf("MigrationsSubdir() = %v, want %v", got, tt.wantSubdir)
			}
		})
	}
}

func TestMySQLDSNMultiStatements(t *testing.T) {
	d := NewMySQLDialect()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "bare dsn",
			url:  "user:pass@tcp(localhost:3306)/rocketlearn",
			want: "user:pass@tcp(localhost:3306)/rocketlearn?multiStatements=true",
		},
		{
			name: "dsn with existing params",
			url:  "user:pass@tcp(localhost:3306)/rocketlearn?parseTime=true",
			want: "user:pass@tcp(localhost:3306)/rocketlearn?parseTime=true&multiStatements=true",
		},
		{
			name: "dsn already sets it",
			url:  "user:pass@tcp(localhost:3306)/rocketlearn?multiStatements=true",
			want: "user:pass@tcp(localhost:3306)/rocketlearn?multiStatements=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.DSN(DialectConfig{URL: tt.url}); got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		query   string
		want    string
	}{
		{
			name:    "sqlite passes through",
			dialect: NewSQLiteDialect(),
			query:   "SELECT * FROM session_state WHERE id = ?",
			want:    "SELECT * FROM session_state WHERE id = ?",
		},
		{
			name:    "mysql passes through",
			dialect: NewMySQLDialect(),
			query:   "UPDATE app_settings SET language = ?, theme = ?",
			want:    "UPDATE app_settings SET language = ?, theme = ?",
		},
		{
			name:    "postgres numbers placeholders",
			dialect: NewPostgresDialect(),
			query:   "INSERT INTO completions (id, user_id, xp) VALUES (?, ?, ?)",
			want:    "INSERT INTO completions (id, user_id, xp) VALUES ($1, $2, $3)",
		},
		{
			name:    "postgres with no placeholders",
			dialect: NewPostgresDialect(),
			query:   "SELECT COUNT(*) FROM completions",
			want:    "SELECT COUNT(*) FROM completions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.RewriteQuery(tt.query); got != tt.want {
				t.Errorf("RewriteQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}
