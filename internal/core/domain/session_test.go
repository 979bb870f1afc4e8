package domain

import (
	"errors"
	"testing"
)

func TestParseSessionBlob_Valid(t *testing.T) {
	raw := `{"accessToken":"at","refreshToken":"rt","user":{"id":"u1","username":"alice","role":"ADMIN"}}`
	blob, err := ParseSessionBlob(raw)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if blob.User.ID != "u1" || blob.User.Username != "alice" {
		t.Fatalf("unexpected user: %+v", blob.User)
	}
	if blob.User.Role != RoleAdmin {
		t.Fatalf("expected ADMIN, got %s", blob.User.Role)
	}
	if blob.AccessToken != "at" || blob.RefreshToken != "rt" {
		t.Fatalf("tokens not carried through")
	}
}

func TestParseSessionBlob_UnknownRoleDegradesToNone(t *testing.T) {
	blob, err := ParseSessionBlob(`{"user":{"id":"u1","role":"owner"}}`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if blob.User.Role != RoleNone {
		t.Fatalf("expected NONE, got %s", blob.User.Role)
	}
}

func TestParseSessionBlob_MissingUserID(t *testing.T) {
	if _, err := ParseSessionBlob(`{"user":{"username":"alice"}}`); !errors.Is(err, ErrSessionCorrupt) {
		t.Fatalf("expected ErrSessionCorrupt, got %v", err)
	}
}

func TestParseSessionBlob_Garbage(t *testing.T) {
	if _, err := ParseSessionBlob(`{not json`); err == nil {
		t.Fatalf("expected error for malformed json")
	}
}

func TestSessionBlob_EncodeRoundTrip(t *testing.T) {
	blob := SessionBlob{AccessToken: "at", User: UserData{ID: "u1", Role: RoleClient}}
	raw, err := blob.Encode()
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	parsed, err := ParseSessionBlob(raw)
	if err != nil {
		t.Fatalf("re-parse error: %v", err)
	}
	if parsed.User.ID != "u1" || parsed.User.Role != RoleClient {
		t.Fatalf("round trip lost data: %+v", parsed.User)
	}
}

func TestSessionState_Derivations(t *testing.T) {
	auth := Authenticated(UserData{ID: "u1"})
	if !auth.IsAuthenticated() || auth.IsLoading() {
		t.Fatalf("authenticated state misreports: %v", auth)
	}
	if auth.User == nil || auth.User.ID != "u1" {
		t.Fatalf("authenticated state lost user")
	}

	if NotAuthenticated().IsAuthenticated() || NotAuthenticated().IsLoading() {
		t.Fatalf("not-authenticated state misreports")
	}
	if !Loading().IsLoading() {
		t.Fatalf("loading state misreports")
	}
	if !Authenticating().IsLoading() {
		t.Fatalf("authenticating should report as loading")
	}
}
