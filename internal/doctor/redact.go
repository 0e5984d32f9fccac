package doctor

import (
	"net/url"
	"strings"
)

// secretKeyMarkers are substrings (matched case-insensitively) that mark
// a key as credential-bearing.
var secretKeyMarkers = []string{
	"TOKEN", "KEY", "SECRET", "PASSWORD", "AUTH", "CREDENTIAL", "PRIVATE",
}

// tokenPrefixes are the token formats of the two forges the shim fronts.
// A value starting with one is a credential no matter what its key says.
var tokenPrefixes = []string{
	"ghp_",        // GitHub personal access token
	"gho_",        // GitHub OAuth token
	"ghu_",        // GitHub user-to-server token
	"ghs_",        // GitHub server-to-server token
	"ghr_",        // GitHub refresh token
	"github_pat_", // GitHub fine-grained personal access token
	"glpat-",      // GitLab personal access token
	"glptt-",      // GitLab pipeline trigger token
	"gldt-",       // GitLab deploy token
	"glrt-",       // GitLab runner token
}

// ShouldMask reports whether the key name marks its value as sensitive.
func ShouldMask(key string) bool {
	upper := strings.ToUpper(key)
	for _, marker := range secretKeyMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// ContainsTokenPrefix reports whether value starts with a known forge
// token prefix. This catches tokens travelling under innocuous keys,
// like an argv element holding "glpat-...".
func ContainsTokenPrefix(value string) bool {
	for _, p := range tokenPrefixes {
		if strings.HasPrefix(value, p) {
			return true
		}
	}
	return false
}

// MaskValue hides a sensitive string. Values of 4 bytes or fewer mask
// completely; longer ones keep the last 4 for recognizability.
func MaskValue(value string) string {
	if len(value) <= 4 {
		return "********"
	}
	return "****" + value[len(value)-4:]
}

// MaskSecrets returns a copy of env with sensitive values masked, judged
// by key name or token-shaped value. The input map is never modified.
func MaskSecrets(env map[string]string) map[string]string {
	if env == nil {
		return nil
	}
	masked := make(map[string]string, len(env))
	for k, v := range env {
		if ShouldMask(k) || ContainsTokenPrefix(v) {
			masked[k] = MaskValue(v)
		} else {
			masked[k] = v
		}
	}
	return masked
}

// MaskURL hides the password of URLs carrying userinfo credentials.
// Unparseable URLs come back unchanged.
func MaskURL(rawURL string) string {
	if rawURL == "" {
		return rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.User == nil {
		return rawURL
	}
	password, ok := parsed.User.Password()
	if !ok || password == "" {
		return rawURL
	}
	parsed.User = url.UserPassword(parsed.User.Username(), MaskValue(password))
	return parsed.String()
}
