package service

import "errors"

// Backend messages with a German counterpart shown to the learner.
const (
	MsgPermissionDenied     = "new row violates row-level security policy"
	MsgStorageFailure       = "StorageApiError"
	MsgSessionExpired       = "JWT expired"
	MsgInvalidCredentials   = "Invalid login credentials"
	MsgEmailNotConfirmed    = "Email not confirmed"
	MsgAlreadyRegistered    = "User already registered"
	MsgPasswordTooShort     = "Password should be at least 6 characters"
	MsgInvalidEmail         = "Unable to validate email address: invalid format"
	MsgPasswordRequired     = "Signup requires a valid password"
	MsgNotSignedIn          = "Nicht angemeldet. Bitte melde dich erneut an."
	MsgInvalidUserID        = "Ungültige Benutzer-ID. Bitte melde dich erneut an."
	MsgSignedURLUnavailable = "Signed URL konnte nicht erstellt werden."
	MsgPDFOnly              = "Nur PDF-Dateien (.pdf) sind erlaubt."
)

var germanMessages = map[string]string{
	MsgPermissionDenied:   "Keine Berechtigung für diese Aktion.",
	MsgStorageFailure:     "Fehler beim Hochladen. Überprüfe die Storage-Konfiguration.",
	MsgSessionExpired:     "Sitzung abgelaufen. Bitte melde dich erneut an.",
	MsgInvalidCredentials: "Ungültige E-Mail oder Passwort.",
	MsgEmailNotConfirmed:  "Bitte bestätige zuerst deine E-Mail-Adresse.",
	MsgAlreadyRegistered:  "Diese E-Mail-Adresse ist bereits registriert.",
	MsgPasswordTooShort:   "Das Passwort muss mindestens 6 Zeichen haben.",
	MsgInvalidEmail:       "Bitte gib eine gültige E-Mail-Adresse ein.",
	MsgPasswordRequired:   "Bitte wähle ein gültiges Passwort.",

	MsgNotSignedIn:          MsgNotSignedIn,
	MsgInvalidUserID:        MsgInvalidUserID,
	MsgSignedURLUnavailable: MsgSignedURLUnavailable,
	MsgPDFOnly:              MsgPDFOnly,
}

// GermanMessage returns the learner-facing text for err.
// The error chain is searched for a message with a known translation; the
// outermost message is returned unchanged when none matches.
func GermanMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg, ok := lookupGerman(err); ok {
		return msg
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		if msg, ok := germanMessages[ve.Message]; ok {
			return msg
		}
		return ve.Message
	}
	return err.Error()
}

// Translate returns the German text of the first known backend message in
// the error chain.
func Translate(err error) (string, bool) {
	return lookupGerman(err)
}

func lookupGerman(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	if msg, ok := germanMessages[err.Error()]; ok {
		return msg, true
	}
	switch x := err.(type) {
	case interface{ Unwrap() error }:
		return lookupGerman(x.Unwrap())
	case interface{ Unwrap() []error }:
		for _, e := range x.Unwrap() {
			if msg, ok := lookupGerman(e); ok {
				return msg, true
			}
		}
	}
	return "", false
}
