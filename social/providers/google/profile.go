package google

import (
	"strings"

	"github.com/openbook/go-auth/social"
)

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

func mapProfile(info *googleUserInfo) *social.SocialProfile {
	if info == nil {
		return nil
	}

	return &social.SocialProfile{
		ProviderUserID: info.Sub,
		Provider:       "google",
		Email:          info.Email,
		EmailVerified:  info.EmailVerified,
		Name:           info.Name,
		Username:       usernameFromProfile(info),
	}
}

// Google has no login handle, so the local part of the email stands in,
// falling back to the subject id when the email scope was not granted.
func usernameFromProfile(info *googleUserInfo) string {
	if info.Email != "" {
		if at := strings.IndexByte(info.Email, '@'); at > 0 {
			return info.Email[:at]
		}
	}
	return info.Sub
}
