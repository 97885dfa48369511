package handlers

import (
	"regexp"
	"strings"
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	namePattern    = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	upperPattern   = regexp.MustCompile(`[A-Z]`)
	digitPattern   = regexp.MustCompile(`\d`)
	specialPattern = regexp.MustCompile(`[@$!%*?&]`)
)

func validateName(name string) string {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return "Name is required"
	case len(trimmed) < 2:
		return "Name must be at least 2 characters"
	case len(trimmed) > 50:
		return "Name must be less than 50 characters"
	case !namePattern.MatchString(trimmed):
		return "Name can only contain letters and spaces"
	}
	return ""
}

func validateEmail(email string) string {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	switch {
	case trimmed == "":
		return "Email is required"
	case !emailPattern.MatchString(trimmed):
		return "Please enter a valid email address"
	}
	return ""
}

func validatePassword(password string) string {
	switch {
	case password == "":
		return "Password is required"
	case len(password) < 8:
		return "Password must be at least 8 characters"
	case len(password) > 100:
		return "Password must be less than 100 characters"
	case !lowerPattern.MatchString(password):
		return "Password must contain at least one lowercase letter"
	case !upperPattern.MatchString(password):
		return "Password must contain at least one uppercase letter"
	case !digitPattern.MatchString(password):
		return "Password must contain at least one number"
	case !specialPattern.MatchString(password):
		return "Password must contain at least one special character"
	}
	return ""
}
