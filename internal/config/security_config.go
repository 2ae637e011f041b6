package config

import "strings"

type SecurityLevel int

const (
	SecurityPublic  SecurityLevel = iota // No authentication
	SecuritySession                      // Admin session cookie required
)

// EndpointSecurityConfig maps "METHOD /path" (or "/path" for every method) to
// the required security level. Paths ending in "/" match as a prefix.
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Front desk operations - Public
	"POST /api/rentals":    SecurityPublic,
	"GET /api/rentals":     SecurityPublic,
	"PUT /api/rentals":     SecurityPublic,
	"/api/checkin":         SecurityPublic,
	"/api/move-to-active":  SecurityPublic,
	"/api/return":          SecurityPublic,
	"/api/report-trouble":  SecurityPublic,
	"/api/resolve-trouble": SecurityPublic,
	"GET /api/staff":       SecurityPublic,
	"/health":              SecurityPublic,
	"/health/ready":        SecurityPublic,
	"/metrics":             SecurityPublic,
	"/auth/session":        SecurityPublic,
	"/auth/logout":         SecurityPublic,
	"/auth-error":          SecurityPublic,
	"/uploads/":            SecurityPublic,

	// Administrative - Session Protected
	"DELETE /api/rentals":  SecuritySession,
	"/api/rentals/history": SecuritySession,
	"/api/export/":         SecuritySession,
	"POST /api/staff":      SecuritySession,
	"PUT /api/staff":       SecuritySession,
	"PATCH /api/staff":     SecuritySession,
	"DELETE /api/staff":    SecuritySession,
	"/admin/":              SecuritySession,
}

// GetSecurityLevel returns the security level for a request
func GetSecurityLevel(method, path string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method+" "+path]; exists {
		return level
	}
	if level, exists := EndpointSecurityConfig[path]; exists {
		return level
	}
	best, level := "", SecuritySession
	for pattern, l := range EndpointSecurityConfig {
		if !strings.HasSuffix(pattern, "/") || strings.Contains(pattern, " ") {
			continue
		}
		if strings.HasPrefix(path, pattern) && len(pattern) > len(best) {
			best, level = pattern, l
		}
	}
	// Default to highest security for unknown endpoints
	return level
}
