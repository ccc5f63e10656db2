// Package gate collects credentials, delegates to the identity provider and
// turns its failures into messages the customer can act on.
package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"barber-queue/internal/identity"
	"barber-queue/internal/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	msgSignUpFailed  = "Failed to create account. Please try again."
	msgSignInFailed  = "Failed to sign in. Please try again."
	msgEmailInUse    = "This email is already registered. Please sign in instead."
	msgWeakPassword  = "Password should be at least 6 characters."
	msgInvalidEmail  = "Invalid email address."
	msgBadCredential = "Invalid email or password."
)

var errProfileNotFound = errors.New("user profile not found")

// PhoneCache keeps the phone number entered on the phone-only path for the
// rest of the browser session.
type PhoneCache interface {
	SavePhone(ctx context.Context, sessionID, phone string) error
}

type SignUpInput struct {
	Name     string `json:"name" form:"name"`
	Surname  string `json:"surname" form:"surname"`
	Address  string `json:"address" form:"address"`
	Phone    string `json:"phone" form:"phone"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type SignInInput struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type PhoneInput struct {
	Phone string `json:"phone" form:"phone"`
}

type Gate struct {
	provider identity.Provider
	phones   PhoneCache
}

func New(provider identity.Provider, phones PhoneCache) *Gate {
	return &Gate{provider: provider, phones: phones}
}

func (g *Gate) SignUp(ctx context.Context, in SignUpInput) (models.Profile, models.Identity, error) {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.By(notBlank)),
		validation.Field(&in.Surname, validation.By(notBlank)),
		validation.Field(&in.Address, validation.By(notBlank)),
		validation.Field(&in.Phone, validation.By(notBlank)),
		validation.Field(&in.Email, validation.By(notBlank)),
		validation.Field(&in.Password, validation.By(notBlank)),
	)
	if err != nil {
		return models.Profile{}, models.Identity{}, missing(err, "Missing information", "Please fill in all fields.")
	}

	id, err := g.provider.CreateAccount(ctx, in.Email, in.Password)
	if err != nil {
		return models.Profile{}, models.Identity{}, signUpError(err)
	}

	profile := models.Profile{
		Name:    in.Name,
		Surname: in.Surname,
		Address: in.Address,
		Phone:   in.Phone,
		Email:   in.Email,
	}
	if err := g.provider.WriteProfile(ctx, id, profile); err != nil {
		return models.Profile{}, models.Identity{}, signUpError(err)
	}

	return profile, id, nil
}

func (g *Gate) SignIn(ctx context.Context, in SignInInput) (models.Profile, models.Identity, error) {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.By(notBlank)),
		validation.Field(&in.Password, validation.By(notBlank)),
	)
	if err != nil {
		return models.Profile{}, models.Identity{}, missing(err, "Missing information", "Please enter your email and password.")
	}

	id, err := g.provider.SignIn(ctx, in.Email, in.Password)
	if err != nil {
		return models.Profile{}, models.Identity{}, signInError(err)
	}

	profile, ok, err := g.provider.ReadProfile(ctx, id)
	if err != nil {
		return models.Profile{}, models.Identity{}, signInError(err)
	}
	if !ok {
		return models.Profile{}, models.Identity{}, signInError(errProfileNotFound)
	}

	return profile, id, nil
}

// EnterWithPhone joins anonymously; the resulting profile carries only the
// phone number.
func (g *Gate) EnterWithPhone(ctx context.Context, sessionID string, in PhoneInput) (models.Profile, models.Identity, error) {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Phone, validation.By(notBlank)),
	)
	if err != nil {
		return models.Profile{}, models.Identity{}, missing(err, "Phone number required", "Please enter your phone number to continue.")
	}

	id, err := g.provider.SignInAnonymous(ctx)
	if err != nil {
		return models.Profile{}, models.Identity{}, &AuthError{Title: "Error", Message: msgSignInFailed, Cause: err}
	}

	phone := strings.TrimSpace(in.Phone)
	if err := g.phones.SavePhone(ctx, sessionID, phone); err != nil {
		return models.Profile{}, models.Identity{}, &AuthError{Title: "Error", Message: msgSignInFailed, Cause: err}
	}

	return models.Profile{Phone: phone}, id, nil
}

func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.ErrRequired
	}
	return nil
}

func missing(err error, title, message string) *ValidationError {
	verr := &ValidationError{Title: title, Message: message}

	var errs validation.Errors
	if errors.As(err, &errs) {
		for _, field := range fieldOrder {
			if _, ok := errs[field]; ok {
				verr.Fields = append(verr.Fields, field)
			}
		}
	}
	return verr
}

// fieldOrder is the form order, used to report missing fields stably.
var fieldOrder = []string{"name", "surname", "address", "phone", "email", "password"}

func signUpError(err error) *AuthError {
	msg := msgSignUpFailed
	switch {
	case errors.Is(err, identity.ErrEmailInUse):
		msg = msgEmailInUse
	case errors.Is(err, identity.ErrWeakPassword):
		msg = msgWeakPassword
	case errors.Is(err, identity.ErrInvalidEmail):
		msg = msgInvalidEmail
	}
	return &AuthError{Title: "Error", Message: msg, Cause: err}
}

func signInError(err error) *AuthError {
	msg := msgSignInFailed
	switch {
	case errors.Is(err, identity.ErrUserNotFound), errors.Is(err, identity.ErrWrongPassword):
		msg = msgBadCredential
	case errors.Is(err, identity.ErrInvalidEmail):
		msg = msgInvalidEmail
	}
	return &AuthError{Title: "Error", Message: msg, Cause: err}
}

// SuccessNotice is the greeting shown after a successful sign-up or sign-in.
func SuccessNotice(mode string, profile models.Profile) models.Notice {
	switch mode {
	case "signup":
		return models.Notice{Title: "Account created!", Message: "Welcome to the barber shop.", Variant: models.NoticeDefault}
	case "signin":
		return models.Notice{Title: "Welcome back!", Message: fmt.Sprintf("Hello %s", profile.Name), Variant: models.NoticeDefault}
	default:
		return models.Notice{Title: "You're in!", Message: "Welcome to the queue.", Variant: models.NoticeDefault}
	}
}
