package utils

import (
	"regexp"

	"github.com/LOCKbusiness/transaction-checker-sub000/logger"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate

	// Base58 and bech32 characters; DeFiChain addresses are 26 to 90 characters long
	addressPattern = regexp.MustCompile(`^[a-zA-Z0-9]{26,90}$`)
	symbolPattern  = regexp.MustCompile(`^[A-Za-z0-9./\-]{1,64}$`)
)

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("chain-address", ValidateAddress); err != nil {
		logger.Fatal("Cannot register validator: %v", err)
	}
	if err := validate.RegisterValidation("token-symbol", ValidateTokenSymbol); err != nil {
		logger.Fatal("Cannot register validator: %v", err)
	}
}

func ValidateAddress(fl validator.FieldLevel) bool {
	return addressPattern.MatchString(fl.Field().String())
}

func ValidateTokenSymbol(fl validator.FieldLevel) bool {
	return symbolPattern.MatchString(fl.Field().String())
}

// Validate a single value against a tag, used for path parameters
func ValidateVar(value string, tag string) error {
	return validate.Var(value, tag)
}
