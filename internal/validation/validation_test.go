package validation

import "testing"

func TestValidateRegistration(t *testing.T) {
	valid := RegisterForm{
		Email:           "parent@example.com",
		Password:        "rocket123",
		ConfirmPassword: "rocket123",
		Name:            "Pat Parent",
		Role:            "parent",
	}

	tests := []struct {
		name      string
		mutate    func(f *RegisterForm)
		wantField string
	}{
		{name: "valid parent", mutate: func(f *RegisterForm) {}},
		{
			name: "valid child",
			mutate: func(f *RegisterForm) {
				f.Role = "child"
				f.Email = ""
				f.Age = 7
				f.ParentID = "user_1"
			},
		},
		{
			name:      "short password",
			mutate:    func(f *RegisterForm) { f.Password = "abc"; f.ConfirmPassword = "abc" },
			wantField: "Password",
		},
		{
			name:      "mismatched passwords",
			mutate:    func(f *RegisterForm) { f.ConfirmPassword = "different" },
			wantField: "confirmPassword",
		},
		{
			name:      "missing name",
			mutate:    func(f *RegisterForm) { f.Name = "" },
			wantField: "Name",
		},
		{
			name:      "bad email format",
			mutate:    func(f *RegisterForm) { f.Email = "not-an-email" },
			wantField: "Email",
		},
		{
			name:      "unknown role",
			mutate:    func(f *RegisterForm) { f.Role = "teacher" },
			wantField: "Role",
		},
		{
			name:      "parent without email",
			mutate:    func(f *RegisterForm) { f.Email = "" },
			wantField: "email",
		},
		{
			name: "child too young",
			mutate: func(f *RegisterForm) {
				f.Role = "child"
				f.Email = ""
				f.Age = 2
			},
			wantField: "age",
		},
		{
			name: "child too old",
			mutate: func(f *RegisterForm) {
				f.Role = "child"
				f.Email = ""
				f.Age = 16
			},
			wantField: "age",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.mutate(&form)

			err := ValidateRegistration(form)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("ValidateRegistration() error = %v, want nil", err)
				}
				return
			}

			ve, ok := err.(ValidationError)
			if !ok {
				t.Fatalf("ValidateRegistration() error = %v, want ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("failed field = %s, want %s", ve.Field, tt.wantField)
			}
		})
	}
}
