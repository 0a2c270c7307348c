package user

import (
	"net/mail"
	"strings"

	"mingle/internal/common"
)

var minLenPwd = 8

func validateUser(u User) error {
	if err := validateName(u.Name); err != nil {
		return err
	}
	if err := validateEmail(u.Email); err != nil {
		return err
	}
	if err := validatePwd(u.Password); err != nil {
		return err
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return common.InvalidArgumentError(nil, "name is empty")
	}
	return nil
}

func validateEmail(email string) error {
	_, err := mail.ParseAddress(email)
	if err != nil {
		return common.InvalidArgumentError(nil, "email format is invalid")
	}
	return nil
}

func validatePwd(pwd string) error {
	if pwd == "" {
		return common.InvalidArgumentError(nil, "password cannot be empty")
	}
	if len(pwd) < minLenPwd {
		return common.InvalidArgumentError(nil, "password is too short")
	}
	return nil
}
