package authn

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vantagecrm.io/internal/authz"
)

func setSecret(t *testing.T) {
	t.Helper()
	t.Setenv(secretEnvVariable, "test-secret")
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)
}

func TestTokenRoundtrip(t *testing.T) {
	setSecret(t)

	p := authz.Principal{
		UserID:   "u1",
		Role:     authz.RoleSalesManager,
		TenantID: "acme",
		TeamID:   "west",
	}
	token, err := GenerateToken(p, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	got, err := ResolvePrincipal(token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != p {
		t.Fatalf("principal = %+v, want %+v", got, p)
	}
}

func TestGenerateTokenValidation(t *testing.T) {
	setSecret(t)

	valid := authz.Principal{UserID: "u1", Role: authz.RoleSalesRep}
	if _, err := GenerateToken(authz.Principal{Role: authz.RoleSalesRep}, time.Hour); err == nil {
		t.Fatal("empty user id accepted")
	}
	if _, err := GenerateToken(authz.Principal{UserID: "u1", Role: "owner"}, time.Hour); err == nil {
		t.Fatal("unknown role accepted")
	}
	if _, err := GenerateToken(valid, 0); err == nil {
		t.Fatal("zero ttl accepted")
	}
}

func TestResolvePrincipalRejectsTampering(t *testing.T) {
	setSecret(t)

	token, err := GenerateToken(authz.Principal{UserID: "u1", Role: authz.RoleSalesRep}, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ResolvePrincipal(token + "x"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("tampered token: %v", err)
	}
	if _, err := ResolvePrincipal(""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("empty token: %v", err)
	}

	// A token signed with a different secret is worthless.
	t.Setenv(secretEnvVariable, "other-secret")
	ResetSecretForTests()
	if _, err := ResolvePrincipal(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign-secret token: %v", err)
	}
}

// signRaw mints a token outside GenerateToken so invalid claims can be tested.
func signRaw(t *testing.T, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func TestResolvePrincipalFailsClosedOnClaims(t *testing.T) {
	setSecret(t)
	now := time.Now().UTC()

	base := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "u1",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}

	unknownRole := Claims{Role: "owner", RegisteredClaims: base}
	if _, err := ResolvePrincipal(signRaw(t, unknownRole)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("unknown role claim: %v", err)
	}

	expired := Claims{Role: "sales_rep", RegisteredClaims: base}
	expired.IssuedAt = jwt.NewNumericDate(now.Add(-2 * time.Hour))
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour))
	if _, err := ResolvePrincipal(signRaw(t, expired)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token: %v", err)
	}

	wrongIssuer := Claims{Role: "sales_rep", RegisteredClaims: base}
	wrongIssuer.Issuer = "someone-else"
	if _, err := ResolvePrincipal(signRaw(t, wrongIssuer)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong issuer: %v", err)
	}
}

func TestMissingSecret(t *testing.T) {
	t.Setenv(secretEnvVariable, "")
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)

	if _, err := GenerateToken(authz.Principal{UserID: "u1", Role: authz.RoleSalesRep}, time.Hour); !errors.Is(err, errMissingSecret) {
		t.Fatalf("generate without secret: %v", err)
	}
}
