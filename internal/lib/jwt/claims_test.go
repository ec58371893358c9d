package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return token
}

func TestInspect(t *testing.T) {
	exp := time.Date(2026, 10, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		claims      jwt.MapClaims
		wantSubject string
		wantExp     time.Time
	}{
		{
			name:        "subject and exp",
			claims:      jwt.MapClaims{"sub": "42", "exp": exp.Unix()},
			wantSubject: "42",
			wantExp:     exp,
		},
		{
			name:        "numeric id claim",
			claims:      jwt.MapClaims{"id": 17, "exp": exp.Unix()},
			wantSubject: "17",
			wantExp:     exp,
		},
		{
			name:        "userId claim without exp",
			claims:      jwt.MapClaims{"userId": "abc"},
			wantSubject: "abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := Inspect(sign(t, tt.claims))
			require.NoError(t, err)
			assert.Equal(t, tt.wantSubject, claims.Subject)
			assert.True(t, tt.wantExp.Equal(claims.ExpiresAt))
		})
	}
}

func TestInspect_Malformed(t *testing.T) {
	_, err := Inspect("not-a-token")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestClaims_Expired(t *testing.T) {
	now := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	assert.False(t, (&Claims{}).Expired(now))
	assert.False(t, (&Claims{ExpiresAt: now.Add(time.Minute)}).Expired(now))
	assert.True(t, (&Claims{ExpiresAt: now}).Expired(now))
}
