/*
Package authsdk provides a client SDK for the portal authentication service and
the error values the service writes.

# SDKClient vs Session

SDKClient talks to the public endpoints and keeps the session cookie the
service sets at login in its cookie jar, the way a browser would:

	client := authsdk.NewSDKClient("https://portal.example.com")

	login, err := client.Login(ctx, "director@institute.edu", password)
	me, err := client.Me(ctx) // sent with the session cookie

A Session carries the token explicitly as an Authorization: Bearer header,
which takes precedence over the cookie on the server:

	session := client.NewSession(login.Token)
	divisions, err := session.MyDivisions(ctx)

# Errors

Every non-2xx response is returned as an *APIError. Compare against the
predefined values with errors.Is:

	_, err := client.Login(ctx, email, password)
	if errors.Is(err, authsdk.ErrAccountDeactivated) {
		// tell the user to contact an administrator
	}

The service itself uses the same values to write responses (WriteError), so the
wire format only lives in one place.

# Redirects

The SDK never follows redirects. Page routes answer with 302 to /login or
/unauthorized; GetPage returns that response as is so callers can inspect the
Location header.
*/
package authsdk
