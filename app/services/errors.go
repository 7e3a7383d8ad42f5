package services

import (
	"errors"

	"github.com/shashiranjanraj/duka/app/repositories"
)

var (
	// ErrInvalidPhone wraps the phone package error for the contact number.
	ErrInvalidPhone = errors.New("invalid phone number format")
	// ErrInvalidMpesaPhone is the same failure for the optional M-Pesa number.
	ErrInvalidMpesaPhone = errors.New("invalid M-Pesa phone number format")
	// ErrEmptyCart rejects checkout of a cart with no lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrPersistence is returned in strict mode when the order log write fails.
	ErrPersistence = errors.New("order could not be saved")
	// ErrProductNotFound is returned for unknown product ids.
	ErrProductNotFound = repositories.ErrProductNotFound
	// ErrInvalidImage rejects uploads that are not png, jpg or gif images.
	ErrInvalidImage = errors.New("image must be a png, jpg or gif file")
)
