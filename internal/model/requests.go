package model

import "time"

type CreateAccountRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginAccountRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateCourseRequest struct {
	CourseID int64 `json:"course_id" validate:"required,gt=0"`
}

type CreateAuctionRequest struct {
	CourseID     int64      `json:"course_id" validate:"required,gt=0"`
	ReservePrice int64      `json:"reserve_price" validate:"required,gt=0"`
	MinIncrement int64      `json:"min_increment" validate:"required,gt=0"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      time.Time  `json:"end_time" validate:"required"`
}

type PlaceBidRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type ApproveRequest struct {
	Amount int64 `json:"amount" validate:"gte=0"`
}

type FaucetRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}
