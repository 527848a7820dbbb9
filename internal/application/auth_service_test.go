package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

// testHashParams keeps hashing cheap in tests while exercising the real codec.
var testHashParams = Argon2idParams{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func newAuthFixtureService(now time.Time, people *personStoreStub, sessions *sessionStoreStub) *AuthService {
	return NewAuthService(people, sessions, sequentialIDs("sess"), sequentialIDs("tok"), func() time.Time { return now }, time.Hour, nil)
}

func seedAccount(t *testing.T, people *personStoreStub, person Person, password string) {
	t.Helper()
	hash, err := CreatePasswordHash(password, testHashParams)
	if err != nil {
		t.Fatalf("CreatePasswordHash failed: %v", err)
	}
	people.seed(person, hash)
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

	t.Run("issues a session for valid credentials", func(t *testing.T) {
		t.Parallel()

		people := newPersonStoreStub()
		seedAccount(t, people, Person{ID: "alice", Email: "alice@example.com"}, "correct horse")
		sessions := newSessionStoreStub()
		svc := newAuthFixtureService(now, people, sessions)

		result, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "  Alice@Example.COM ",
			Password: "correct horse",
		})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if result.Person.ID != "alice" {
			t.Fatalf("expected alice, got %q", result.Person.ID)
		}
		if result.Session.Token == "" {
			t.Fatal("expected a session token")
		}
		if got, want := result.Session.ExpiresAt, now.Add(time.Hour); !got.Equal(want) {
			t.Fatalf("expected expiry %v, got %v", want, got)
		}
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		t.Parallel()

		people := newPersonStoreStub()
		seedAccount(t, people, Person{ID: "alice", Email: "alice@example.com"}, "correct horse")
		svc := newAuthFixtureService(now, people, newSessionStoreStub())

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "alice@example.com",
			Password: "wrong",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("hides unknown emails behind the same error", func(t *testing.T) {
		t.Parallel()

		svc := newAuthFixtureService(now, newPersonStoreStub(), newSessionStoreStub())

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "ghost@example.com",
			Password: "whatever",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("never logs in guests", func(t *testing.T) {
		t.Parallel()

		people := newPersonStoreStub()
		people.seed(Person{ID: "guest-1", Email: "guest-abc@guests.test", Guest: true}, "")
		svc := newAuthFixtureService(now, people, newSessionStoreStub())

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "guest-abc@guests.test",
			Password: "anything",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

	t.Run("resolves a live session", func(t *testing.T) {
		t.Parallel()

		people := newPersonStoreStub()
		people.seed(Person{ID: "alice"}, "hash")
		sessions := newSessionStoreStub(Session{ID: "sess-1", PersonID: "alice", Token: "tok-1", ExpiresAt: now.Add(time.Hour)})
		svc := newAuthFixtureService(now, people, sessions)

		person, session, err := svc.ValidateSession(context.Background(), "tok-1")
		if err != nil {
			t.Fatalf("ValidateSession failed: %v", err)
		}
		if person.ID != "alice" || session.ID != "sess-1" {
			t.Fatalf("unexpected resolution: person %q session %q", person.ID, session.ID)
		}
	})

	t.Run("rejects expired sessions", func(t *testing.T) {
		t.Parallel()

		people := newPersonStoreStub()
		people.seed(Person{ID: "alice"}, "hash")
		sessions := newSessionStoreStub(Session{ID: "sess-1", PersonID: "alice", Token: "tok-1", ExpiresAt: now})
		svc := newAuthFixtureService(now, people, sessions)

		_, _, err := svc.ValidateSession(context.Background(), "tok-1")
		if !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("rejects revoked sessions", func(t *testing.T) {
		t.Parallel()

		revoked := now.Add(-time.Minute)
		people := newPersonStoreStub()
		people.seed(Person{ID: "alice"}, "hash")
		sessions := newSessionStoreStub(Session{ID: "sess-1", PersonID: "alice", Token: "tok-1", ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked})
		svc := newAuthFixtureService(now, people, sessions)

		_, _, err := svc.ValidateSession(context.Background(), "tok-1")
		if !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked, got %v", err)
		}
	})

	t.Run("rejects unknown tokens", func(t *testing.T) {
		t.Parallel()

		svc := newAuthFixtureService(now, newPersonStoreStub(), newSessionStoreStub())

		_, _, err := svc.ValidateSession(context.Background(), "tok-ghost")
		if !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("rejects sessions for deleted people", func(t *testing.T) {
		t.Parallel()

		sessions := newSessionStoreStub(Session{ID: "sess-1", PersonID: "gone", Token: "tok-1", ExpiresAt: now.Add(time.Hour)})
		svc := newAuthFixtureService(now, newPersonStoreStub(), sessions)

		_, _, err := svc.ValidateSession(context.Background(), "tok-1")
		if !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
	})
}

func TestAuthService_Logout(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

	t.Run("revokes the session", func(t *testing.T) {
		t.Parallel()

		people := newPersonStoreStub()
		people.seed(Person{ID: "alice"}, "hash")
		sessions := newSessionStoreStub(Session{ID: "sess-1", PersonID: "alice", Token: "tok-1", ExpiresAt: now.Add(time.Hour)})
		svc := newAuthFixtureService(now, people, sessions)

		if err := svc.Logout(context.Background(), "tok-1"); err != nil {
			t.Fatalf("Logout failed: %v", err)
		}
		if _, _, err := svc.ValidateSession(context.Background(), "tok-1"); !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected session revoked after logout, got %v", err)
		}
	})

	t.Run("treats unknown tokens as a no-op", func(t *testing.T) {
		t.Parallel()

		svc := newAuthFixtureService(now, newPersonStoreStub(), newSessionStoreStub())

		if err := svc.Logout(context.Background(), "tok-ghost"); err != nil {
			t.Fatalf("expected nil, got %v", err)
		}
	})
}

func TestAuthService_PurgeExpiredSessions(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	sessions := newSessionStoreStub(
		Session{ID: "sess-1", PersonID: "alice", Token: "tok-live", ExpiresAt: now.Add(time.Hour)},
		Session{ID: "sess-2", PersonID: "alice", Token: "tok-old", ExpiresAt: now.Add(-time.Hour)},
	)
	svc := newAuthFixtureService(now, newPersonStoreStub(), sessions)

	if err := svc.PurgeExpiredSessions(context.Background()); err != nil {
		t.Fatalf("PurgeExpiredSessions failed: %v", err)
	}
	if _, err := sessions.GetSessionByToken(context.Background(), "tok-old"); err == nil {
		t.Fatal("expected expired session to be deleted")
	}
	if _, err := sessions.GetSessionByToken(context.Background(), "tok-live"); err != nil {
		t.Fatalf("live session must survive: %v", err)
	}
}
