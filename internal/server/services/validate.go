package services

import "github.com/go-playground/validator/v10"

var validate = validator.New(validator.WithRequiredStructEnabled())

type createEventInput struct {
	Name string `validate:"required"`
}

type closeEventInput struct {
	EventID string `validate:"required"`
}

type uploadInput struct {
	GuestName string `validate:"required"`
}
