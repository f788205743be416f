package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/coursehive/course-auction/internal/certificate"
	"github.com/coursehive/course-auction/internal/model"
	"github.com/coursehive/course-auction/internal/service"
)

const courseParamKey string = "courseId"

type CourseHandler struct {
	svc service.CourseServicer
}

func NewCourseHandler(svc service.CourseServicer) (*CourseHandler, error) {
	return &CourseHandler{
		svc: svc,
	}, nil
}

// CreateCourse godoc
//
//	@Summary		Register a Course
//	@Description	Register a course in the certificate registry so it can be auctioned
//	@Tags			Courses
//	@Accept			json
//	@Produce		json
//	@Param			course	body		CreateCourseRequest	true	"Course details"
//	@Success		201		{object}	map[string]any
//	@Failure		400		{object}	map[string]any
//	@Failure		409		{object}	map[string]any
//	@Router			/courses [post]
func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrInvalidJson.Error(), "Invalid JSON format", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrInvalidRequest.Error(), "Input validation failed", validationDetails(err))
		return
	}

	if err := h.svc.CreateCourse(r.Context(), req.CourseID); err != nil {
		if errors.Is(err, certificate.ErrCourseExists) {
			RespondErrorJSON(w, r, http.StatusConflict, ErrCourseExists.Error(), "course already registered", nil)
			return
		}
		RespondErrorJSON(w, r, http.StatusInternalServerError, ErrInternalServer.Error(), "Something went wrong", nil)
		return
	}

	resp := map[string]any{
		"course_id": req.CourseID,
	}
	RespondSuccessJSON(w, r, http.StatusCreated, "Course registered successfully", resp)
}

// CourseOwner godoc
//
//	@Summary		Get Course Certificate Owner
//	@Description	Retrieve the current certificate holder of a course, if any
//	@Tags			Courses
//	@Produce		json
//	@Param			courseId	path		int	true	"Course ID"
//	@Success		200			{object}	map[string]any
//	@Failure		404			{object}	map[string]any
//	@Router			/courses/{courseId}/owner [get]
func (h *CourseHandler) CourseOwner(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, courseParamKey)
	var courseID int64
	if _, err := fmt.Sscanf(raw, "%d", &courseID); err != nil || courseID <= 0 {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrMissingParam.Error(), "A valid course ID is required", nil)
		return
	}

	owner, err := h.svc.CourseOwner(r.Context(), courseID)
	if err != nil {
		if errors.Is(err, certificate.ErrCourseNotFound) {
			RespondErrorJSON(w, r, http.StatusNotFound, ErrCourseNotFound.Error(), "Course not found", nil)
			return
		}
		RespondErrorJSON(w, r, http.StatusInternalServerError, ErrInternalServer.Error(), "Something went wrong", nil)
		return
	}

	resp := map[string]any{
		"course_id": courseID,
		"owner":     "",
	}
	if owner != uuid.Nil {
		resp["owner"] = owner.String()
	}
	RespondSuccessJSON(w, r, http.StatusOK, "Course owner fetched successfully", resp)
}
