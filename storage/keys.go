package storage

// Keys of the persisted session layout.
const (
	KeyToken         = "auth_token"
	KeyUser          = "user_data"
	KeyUserType      = "user_type"
	KeyPermissions   = "user_permissions"
	KeyRememberMe    = "remember_me"
	KeyLoginAttempts = "login_attempts"
)

// CredentialKeys are cleared together on logout. Login attempts are not
// part of the credential and survive a logout.
var CredentialKeys = []string{
	KeyToken,
	KeyUser,
	KeyUserType,
	KeyPermissions,
	KeyRememberMe,
}
