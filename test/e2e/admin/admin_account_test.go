package admin_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/godview/pkg/adminsdk"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

// TestBootstrapOnce verifies the first super admin can only be created once.
func TestBootstrapOnce(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := newClient(t, baseURL)

	_, err := client.Bootstrap(t.Context(), "wrong-token", adminsdk.BootstrapRequest{
		Email: rootEmail, Name: rootName, Password: rootPassword,
	})
	assertCode(t, err, adminsdk.CodeUnauthorized)

	root := bootstrapRoot(t, baseURL)
	me, err := root.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, rootEmail, me.Email)
	require.Equal(t, "SUPER_ADMIN", me.Role)

	_, err = client.Bootstrap(t.Context(), bootstrapToken, adminsdk.BootstrapRequest{
		Email: "second@godview.test", Name: "Second", Password: rootPassword,
	})
	assertCode(t, err, adminsdk.CodeUnauthorized)
}

// TestSignInAndSignOut verifies the session cookie lifecycle.
func TestSignInAndSignOut(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	root := bootstrapRoot(t, baseURL)

	_, err := newClient(t, baseURL).SignIn(t.Context(), adminsdk.SignInRequest{
		Email: rootEmail, Password: "not the password",
	})
	assertCode(t, err, adminsdk.CodeInvalidCredential)

	require.NoError(t, root.SignOut(t.Context()))
	_, err = root.Me(t.Context())
	assertCode(t, err, adminsdk.CodeUnauthenticated)
}

// TestTOTPSignIn verifies an enrolled account needs a valid code to sign in.
func TestTOTPSignIn(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	root := bootstrapRoot(t, baseURL)

	enrollment, err := root.EnrollTOTP(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, enrollment.Secret)
	require.Contains(t, enrollment.URL, "otpauth://totp/")

	err = root.VerifyTOTP(t.Context(), "000000")
	assertCode(t, err, adminsdk.CodeInvalidTOTPCode)

	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, root.VerifyTOTP(t.Context(), code))

	me, err := root.Me(t.Context())
	require.NoError(t, err)
	require.True(t, me.MFAEnabled)

	fresh := newClient(t, baseURL)
	_, err = fresh.SignIn(t.Context(), adminsdk.SignInRequest{Email: rootEmail, Password: rootPassword})
	assertCode(t, err, adminsdk.CodeMFARequired)

	code, err = totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)
	_, err = fresh.SignIn(t.Context(), adminsdk.SignInRequest{
		Email:    rootEmail,
		Password: rootPassword,
		TOTPCode: code,
	})
	require.NoError(t, err)
}
