// Package adminsdk is the Go client for the godview super admin API.
//
// A Client keeps the session cookie in its own jar, so signing in once
// authenticates every later call made through the same Client:
//
//	c, _ := adminsdk.NewClient("https://admin.example.com")
//	if _, err := c.SignIn(ctx, adminsdk.SignInRequest{Email: email, Password: pw}); err != nil {
//		return err
//	}
//	orgs, err := c.ListOrganizations(ctx, adminsdk.OrganizationFilter{Status: "ACTIVE"})
//
// Failed calls return *APIError carrying the server's error code.
package adminsdk
