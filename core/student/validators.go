package student

import (
	"unicode/utf8"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/flavorsense/flavorsense/core"
)

var (
	fillAllTag  = "fillall"
	fillAllText = "Please fill in all fields."

	// password policy
	pwdMinLen     = 6
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = "Password must be at least 6 characters."

	pwdMaxBytes     = 72 // bcrypt input limit
	pwdMaxBytesTag  = "pwdmaxbytes"
	pwdMaxBytesText = "Password must be at most 72 bytes."

	credentialsTag  = "credentials"
	credentialsText = "Please enter your email and password."

	emailExistsText       = "This email is already registered. Please login."
	noAccountText         = "No account found with that email. Please register."
	incorrectPasswordText = "Incorrect password. Please try again."
)

// InitValidators registers the student validators on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(studentStructValidation, NewStudent{}, Credentials{})
	core.RegisterCustomTranslation(validate, translator, fillAllTag, fillAllText)
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, translator, pwdMaxBytesTag, pwdMaxBytesText)
	core.RegisterCustomTranslation(validate, translator, credentialsTag, credentialsText)
}

// studentStructValidation does struct level validation on NewStudent and Credentials.
// At most one error is reported, so the first failing rule decides the message.
func studentStructValidation(sl validator.StructLevel) {
	switch st := sl.Current().Interface().(type) {
	case NewStudent:
		switch {
		case st.Name == "":
			sl.ReportError(st.Name, "name", "Name", fillAllTag, "")
		case st.Email == "":
			sl.ReportError(st.Email, "email", "Email", fillAllTag, "")
		case st.Password == "":
			sl.ReportError(st.Password, "password", "Password", fillAllTag, "")
		default:
			validatePassword(st.Password, sl)
		}
	case Credentials:
		switch {
		case st.Email == "":
			sl.ReportError(st.Email, "email", "Email", credentialsTag, "")
		case st.Password == "":
			sl.ReportError(st.Password, "password", "Password", credentialsTag, "")
		}
	}
}

// validatePassword applies the password policy:
// - at least 6 characters
// - at most 72 bytes
func validatePassword(pwd string, sl validator.StructLevel) {
	if utf8.RuneCountInString(pwd) < pwdMinLen {
		sl.ReportError(pwd, "password", "Password", pwdMinLenTag, "")
	} else if len(pwd) > pwdMaxBytes {
		sl.ReportError(pwd, "password", "Password", pwdMaxBytesTag, "")
	}
}
