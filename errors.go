package formlist

import "errors"

var (
	// ErrBuilderRequired is returned by NewList when no builder is supplied.
	ErrBuilderRequired = errors.New("formlist: builder is required")
	// ErrBuilder wraps failures returned by a Builder.
	ErrBuilder = errors.New("formlist: builder failed")
	// ErrNilNode is returned when a Builder produces no node.
	ErrNilNode = errors.New("formlist: builder returned nil node")
	// ErrUnknownIdentity is returned when an identity was never minted by the list.
	ErrUnknownIdentity = errors.New("formlist: identity does not belong to this list")
	// ErrInvalidForm is returned by Form.Submit when validation fails.
	ErrInvalidForm = errors.New("formlist: form is invalid")
)
