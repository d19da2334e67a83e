package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	// CieTypePattern backs the "cietype" binding rule.
	CieTypePattern = regexp.MustCompile(`^CIE[1-5]$`)
	// RegNoPattern matches register numbers such as 1RV21CS001. iactl checks its arguments with it.
	RegNoPattern = regexp.MustCompile(`^[0-9A-Z]{4,20}$`)
)

// PasswordMinLength is the minimum length accepted for new passwords.
const PasswordMinLength = 6

// IsCieType reports whether s is an exact CIE1..CIE5 label, ignoring case and surrounding space.
func IsCieType(s string) bool {
	return CieTypePattern.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// IsRegNo reports whether s looks like a register number.
func IsRegNo(s string) bool {
	return RegNoPattern.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// ValidatePassword checks a new password against the length rule.
func ValidatePassword(p string) error {
	if len(p) < PasswordMinLength {
		return fmt.Errorf("password must be at least %d characters", PasswordMinLength)
	}
	return nil
}

func cieTypeRule(fl validator.FieldLevel) bool {
	return IsCieType(fl.Field().String())
}

// Register adds the custom rules to v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("cietype", cieTypeRule); err != nil {
		return fmt.Errorf("register cietype rule: %w", err)
	}
	return nil
}

// RegisterWithGin installs the custom rules on gin's binding validator.
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}
