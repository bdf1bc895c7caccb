package leaveruleerrors

import (
	"net/http"

	"github.com/premidisfinal/premidis-fin/internal/shared/apperror"
)

var (
	ErrEmptyRules = apperror.New(
		apperror.CodeInvalidInput,
		"At least one leave type is required",
		http.StatusBadRequest,
	)
	ErrInvalidRuleKey = apperror.New(
		apperror.CodeInvalidInput,
		"Leave type keys must be lowercase letters and underscores",
		http.StatusBadRequest,
	)
	ErrNegativeDays = apperror.New(
		apperror.CodeInvalidInput,
		"Leave days cannot be negative",
		http.StatusBadRequest,
	)
)
