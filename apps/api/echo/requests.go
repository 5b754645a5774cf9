package echoapi

import (
	"github.com/go-playground/validator/v10"
)

type (
	// AdminCoursePasswordRequest sets a course password without knowing the current one.
	AdminCoursePasswordRequest struct {
		Password string `json:"password" validate:"required,max=72"`
	}

	// CoursePasswordRequest changes a course password from its current value.
	CoursePasswordRequest struct {
		Password    string `json:"password" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,max=72"`
	}

	SelfInscriptionRequest struct {
		CourseID int    `json:"course_id" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	StatusResponse struct {
		StatusCode int    `json:"status_code"`
		Detail     string `json:"detail"`
	}
)

func (r AdminCoursePasswordRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func (r CoursePasswordRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func (r SelfInscriptionRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}
