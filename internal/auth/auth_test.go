package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))

	_, err = HashPassword("short")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestAuthenticator_RegisterAndLogin(t *testing.T) {
	a := NewAuthenticator(NewMemoryUserStore())
	ctx := context.Background()

	u, err := a.Register(ctx, "  Ana@Example.com ", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)

	_, err = a.Register(ctx, "ana@example.com", "another-pass")
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = a.Register(ctx, "not-an-email", "another-pass")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid credentials", "ANA@example.com", "s3cret-pass", nil},
		{"wrong password", "ana@example.com", "nope-nope", ErrInvalidCredentials},
		{"unknown user", "bob@example.com", "s3cret-pass", ErrInvalidCredentials},
		{"empty password", "ana@example.com", "", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Login(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, u.ID, got.ID)
		})
	}
}

func TestSessions_IssueAndParse(t *testing.T) {
	s := NewSessions(testSecret, time.Hour, false)

	token, expires, err := s.Issue("ana@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", claims.Email)

	other := NewSessions("ffffffffffffffffffffffffffffffff", time.Hour, false)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession, "token signed with another secret")

	_, err = s.Parse("")
	assert.ErrorIs(t, err, ErrInvalidSession)
	_, err = s.Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessions_Expired(t *testing.T) {
	s := NewSessions(testSecret, time.Minute, false)
	s.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := s.Issue("ana@example.com")
	require.NoError(t, err)

	_, err = s.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessions_RejectsUnsignedToken(t *testing.T) {
	s := NewSessions(testSecret, time.Hour, false)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Email: "ana@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = s.Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessions_Cookie(t *testing.T) {
	s := NewSessions(testSecret, time.Hour, true)

	rec := httptest.NewRecorder()
	require.NoError(t, s.SetCookie(rec, "ana@example.com"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	claims, err := s.FromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", claims.Email)

	_, err = s.FromRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrInvalidSession)

	rec = httptest.NewRecorder()
	s.ClearCookie(rec)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)
}
