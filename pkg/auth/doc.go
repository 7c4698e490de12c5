// Package auth is the console's identity provider.
//
// A Provider signs users in with email and password, issues short-lived
// identity tokens, verifies them on every page load and notifies observers
// when the current identity changes. The password implementation stores bcrypt
// hashes in a CredentialStorage (memory or MongoDB), signs HS256 tokens with
// github.com/golang-jwt/jwt/v5 and throttles repeated sign-in attempts per
// email address.
//
//	provider := auth.NewPasswordProvider(storage, cfg.TokenSecret,
//	    auth.WithTokenTTL(8*time.Hour),
//	    auth.WithLogger(log),
//	)
//
//	id, err := provider.SignIn(ctx, "dho@district.go.tz", "secret-pass")
//	if errors.Is(err, auth.ErrInvalidCredentials) {
//	    // re-render the login form with an inline message
//	}
//
// The provider knows nothing about roles. Joining an identity with its user
// record is the job of the session package.
package auth
