package session

import (
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFreshStoreIsSignedOut(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	in, err := s.LoggedIn()
	if err != nil {
		t.Fatalf("LoggedIn: %v", err)
	}
	if in {
		t.Error("fresh store reports logged in")
	}
	c, err := s.Credential()
	if err != nil {
		t.Fatalf("Credential: %v", err)
	}
	if c != (Credential{}) {
		t.Errorf("fresh store holds a credential: %+v", c)
	}
}

func TestSaveCredentialRoundTrip(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	want := Credential{
		AccessToken: "at-1",
		UserID:      "u1",
		Email:       "a@b.c",
		DisplayName: "A B",
		PictureURL:  "https://example.com/p.png",
	}
	if err := s.SaveCredential(want); err != nil {
		t.Fatalf("SaveCredential: %v", err)
	}

	got, err := s.Credential()
	if err != nil {
		t.Fatalf("Credential: %v", err)
	}
	if got != want {
		t.Errorf("credential = %+v, want %+v", got, want)
	}
	if in, _ := s.LoggedIn(); !in {
		t.Error("not logged in after save")
	}
	if tok, _ := s.AccessToken(); tok != "at-1" {
		t.Errorf("AccessToken = %q", tok)
	}
}

func TestCredentialSurvivesReopen(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SaveCredential(Credential{AccessToken: "at-1", UserID: "u1"}); err != nil {
		t.Fatalf("SaveCredential: %v", err)
	}
	if err := s.SetActiveConversation("c1"); err != nil {
		t.Fatalf("SetActiveConversation: %v", err)
	}
	s.Close()

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	if in, _ := s.LoggedIn(); !in {
		t.Error("session did not survive reopen")
	}
	if id, _ := s.ActiveConversation(); id != "c1" {
		t.Errorf("ActiveConversation = %q, want c1", id)
	}
}

func TestDeviceIDIsStable(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	first, err := s.DeviceID()
	if err != nil {
		t.Fatalf("DeviceID: %v", err)
	}
	if first == "" {
		t.Fatal("DeviceID returned empty id")
	}
	second, err := s.DeviceID()
	if err != nil {
		t.Fatalf("DeviceID: %v", err)
	}
	if second != first {
		t.Errorf("device id changed: %q != %q", second, first)
	}
}

func TestClearWipesSessionButKeepsDeviceID(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	dev, err := s.DeviceID()
	if err != nil {
		t.Fatalf("DeviceID: %v", err)
	}
	if err := s.SaveCredential(Credential{AccessToken: "at-1", UserID: "u1", Email: "a@b.c"}); err != nil {
		t.Fatalf("SaveCredential: %v", err)
	}
	if err := s.SetActiveConversation("c1"); err != nil {
		t.Fatalf("SetActiveConversation: %v", err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if in, _ := s.LoggedIn(); in {
		t.Error("still logged in after Clear")
	}
	if c, _ := s.Credential(); c != (Credential{}) {
		t.Errorf("credential survived Clear: %+v", c)
	}
	if id, _ := s.ActiveConversation(); id != "" {
		t.Errorf("active conversation survived Clear: %q", id)
	}
	if got, _ := s.DeviceID(); got != dev {
		t.Errorf("device id did not survive Clear: %q != %q", got, dev)
	}
}
