package auth_test

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/jonwraymond/gamenetauth/auth"
)

func ExampleLoginCredentials_Sanitized() {
	creds := auth.LoginCredentials{
		Email:    "  Admin@Example.com<script>alert(1)</script>",
		Password: "<p@ss>",
	}.Sanitized()

	fmt.Println(creds.Email)
	fmt.Println(creds.Password)
	fmt.Println(creds.Validate())
	// Output:
	// admin@example.com
	// <p@ss>
	// <nil>
}

func ExampleTokenLifecycle_IsExpiringSoon() {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	tokens := auth.NewTokenLifecycle(auth.TokenConfig{
		Now: func() time.Time { return now },
	})

	seg := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }
	token := seg(`{"alg":"none"}`) + "." +
		seg(fmt.Sprintf(`{"exp":%d}`, now.Add(4*time.Minute).Unix())) + ".sig"

	fmt.Println("valid format:", tokens.IsValidFormat(token))
	fmt.Println("expired:", tokens.IsExpired(token))
	fmt.Println("expiring soon:", tokens.IsExpiringSoon(token, 0))
	fmt.Println("remaining:", tokens.Remaining(token))
	// Output:
	// valid format: true
	// expired: false
	// expiring soon: true
	// remaining: 4m0s
}

func ExampleParseUserType() {
	for _, s := range []string{"Admin", "gamenet", "guest"} {
		t, err := auth.ParseUserType(s)
		fmt.Printf("%q %v\n", t, err)
	}
	// Output:
	// "admin" <nil>
	// "gamenet" <nil>
	// "" auth: unknown user type "guest"
}
