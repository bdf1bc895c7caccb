package notificationerrors

import (
	"net/http"

	"github.com/premidisfinal/premidis-fin/internal/shared/apperror"
)

var (
	ErrInvalidNotificationID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid notification id",
		http.StatusBadRequest,
	)
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrNotificationNotFound = apperror.New(
		apperror.CodeNotFound,
		"notification not found",
		http.StatusNotFound,
	)
	ErrEmptyNotification = apperror.New(
		apperror.CodeInvalidInput,
		"title and message are required",
		http.StatusBadRequest,
	)
)
