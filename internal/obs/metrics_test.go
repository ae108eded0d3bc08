package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                            "/",
		"/metrics":                    "/metrics",
		"/healthz":                    "/healthz",
		"/v1/contacts":                "/v1/contacts",
		"/v1/contacts/01J0ABC":        "/v1/contacts/:id",
		"/v1/workflows/01J0ABC":       "/v1/workflows/:id",
		"/v1/contacts/01J0ABC/extra":  "/v1/contacts/01J0ABC/extra",
		"/v1/auth/token":              "/v1/auth/token",
		"/v1/contacts?limit=10":       "/v1/contacts",
		"/v1/deals/01J0DEF?fields=id": "/v1/deals/:id",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q) = %q, want %q", input, got, expected)
		}
	}
}
