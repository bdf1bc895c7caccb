package rbacerrors

import (
	"net/http"

	"github.com/premidisfinal/premidis-fin/internal/shared/apperror"
)

var (
	ErrUnknownRole = apperror.New(
		apperror.CodeNotFound,
		"Role not found",
		http.StatusNotFound,
	)
	ErrUnknownPermission = apperror.New(
		apperror.CodeInvalidInput,
		"Unknown permission key",
		http.StatusBadRequest,
	)
	ErrRoleLocked = apperror.New(
		apperror.CodeInvalidState,
		"Permissions of this role cannot be changed",
		http.StatusConflict,
	)
)
