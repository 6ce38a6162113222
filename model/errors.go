package model

import "errors"

var (
	ErrUnknownRole       = errors.New("unknown role")
	ErrMissingField      = errors.New("missing required field")
	ErrImageTooLarge     = errors.New("profile image exceeds 2MB")
	ErrUnknownSlot       = errors.New("slot is not offered")
	ErrInvalidLoginReply = errors.New("login response has no user id")
)

// User facing notification texts.
const (
	MsgImageTooLarge      = "Image size should be less than 2MB"
	MsgInvalidUserData    = "Login failed: Invalid user data"
	MsgLoginFailed        = "Login failed. Please check your credentials."
	MsgLoginSuccess       = "Logged in successfully!"
	MsgLogoutSuccess      = "Logged out successfully!"
	MsgRegisterFailed     = "Registration failed. Please try again."
	MsgResetLinkSent      = "Password reset link sent."
	MsgResetLinkFailed    = "Failed to send reset link."
	MsgBookingSuccess     = "Appointment booked successfully!"
	MsgBookingFailed      = "Booking failed"
	MsgDoctorNotFound     = "Doctor not found"
	MsgStatusUpdateFailed = "Failed to update status"
	MsgEditFailed         = "Failed to update appointment"
	MsgUploadFailed       = "Upload failed"
	MsgDoctorDataFailed   = "Failed to fetch doctor data"
	MsgOTDataFailed       = "Failed to fetch OT data"
	MsgProfileFailed      = "API returned unsuccessful status"
	MsgDoctorsFailed      = "Failed to fetch doctors"
	MsgSessionMissing     = "User not found in session. Please log in and try again."
)
