package service

import (
	"errors"
	"fmt"
	"testing"
)

func TestGermanMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil",
			err:  nil,
			want: "",
		},
		{
			name: "exact auth message",
			err:  errors.New(MsgInvalidCredentials),
			want: "Ungültige E-Mail oder Passwort.",
		},
		{
			name: "wrapped storage message",
			err:  fmt.Errorf("failed to write object: %w", errors.New(MsgStorageFailure)),
			want: "Fehler beim Hochladen. Überprüfe die Storage-Konfiguration.",
		},
		{
			name: "joined errors",
			err:  fmt.Errorf("%w: %w", ErrUnauthorized, errors.New(MsgSessionExpired)),
			want: "Sitzung abgelaufen. Bitte melde dich erneut an.",
		},
		{
			name: "german message passes through wrapping",
			err:  fmt.Errorf("%w: %w", ErrUnauthorized, errors.New(MsgInvalidUserID)),
			want: MsgInvalidUserID,
		},
		{
			name: "validation error shows its message",
			err:  fmt.Errorf("submit: %w", &ValidationError{Field: "text", Message: "Bitte schreibe mindestens 50 Zeichen!"}),
			want: "Bitte schreibe mindestens 50 Zeichen!",
		},
		{
			name: "validation error with backend message is translated",
			err:  &ValidationError{Field: "password", Message: MsgPasswordTooShort},
			want: "Das Passwort muss mindestens 6 Zeichen haben.",
		},
		{
			name: "unknown message unchanged",
			err:  errors.New("disk full"),
			want: "disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GermanMessage(tt.err); got != tt.want {
				t.Errorf("GermanMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTranslate(t *testing.T) {
	if _, ok := Translate(errors.New("disk full")); ok {
		t.Error("Translate() of unknown message should report false")
	}
	got, ok := Translate(fmt.Errorf("upload: %w", errors.New(MsgPermissionDenied)))
	if !ok || got != "Keine Berechtigung für diese Aktion." {
		t.Errorf("Translate() = %q, %v", got, ok)
	}
}
