package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/habitloop/internal/constants"
)

func TestSetAndGetConnectionString(t *testing.T) {
	gokeyring.MockInit()
	creds := New("")

	testConnStr := "postgres://testuser@localhost:5432/habits?sslmode=disable"
	if err := creds.SetConnectionString(testConnStr); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}
	retrieved, err := creds.ConnectionString()
	if err != nil {
		t.Fatalf("ConnectionString() failed: %v", err)
	}
	if retrieved != testConnStr {
		t.Errorf("ConnectionString() = %q, want %q", retrieved, testConnStr)
	}
	if creds.User() != constants.DefaultKeyringUser {
		t.Errorf("User() = %q", creds.User())
	}
}

func TestUsersAreSeparate(t *testing.T) {
	gokeyring.MockInit()
	if err := New("alice").SetConnectionString("postgres://alice@db/habits"); err != nil {
		t.Fatal(err)
	}
	if _, err := New("bob").ConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("bob ConnectionString() error = %v, want ErrNotFound", err)
	}
}

func TestSetConnectionStringEmpty(t *testing.T) {
	gokeyring.MockInit()
	for _, s := range []string{"", "   "} {
		if err := New("").SetConnectionString(s); err == nil {
			t.Errorf("SetConnectionString(%q) should return an error", s)
		}
	}
}

func TestDelete(t *testing.T) {
	gokeyring.MockInit()
	creds := New("")

	if err := creds.Delete(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() on empty keyring error = %v, want ErrNotFound", err)
	}
	if err := creds.SetConnectionString("postgres://testuser@localhost:5432/habits"); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}
	if err := creds.Delete(); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := creds.ConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("after Delete(), ConnectionString() error = %v, want ErrNotFound", err)
	}
}

func TestResolve(t *testing.T) {
	gokeyring.MockInit()
	oldGetenv := getenv
	defer func() { getenv = oldGetenv }()

	creds := New("")
	tests := []struct {
		name       string
		env        string
		stored     string
		want       string
		wantSource Source
		wantErr    error
	}{
		{name: "nothing configured", wantErr: ErrNotFound},
		{name: "keyring", stored: "postgres://k@db/habits", want: "postgres://k@db/habits", wantSource: SourceKeyring},
		{name: "environment wins", env: "postgres://e@db/habits", stored: "postgres://k@db/habits", want: "postgres://e@db/habits", wantSource: SourceEnv},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_ = creds.Delete()
			if tt.stored != "" {
				if err := creds.SetConnectionString(tt.stored); err != nil {
					t.Fatal(err)
				}
			}
			getenv = func(key string) string {
				if key == constants.DBConnectionEnvVar {
					return tt.env
				}
				return ""
			}
			got, source, err := creds.Resolve()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil || got != tt.want || source != tt.wantSource {
				t.Errorf("Resolve() = %q, %q, %v", got, source, err)
			}
		})
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()
	if !IsAvailable() {
		t.Error("IsAvailable() = false, want true in mock mode")
	}
}
