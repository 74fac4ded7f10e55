package models

import "time"

type PantunPost struct {
	ID        int       `json:"id"`
	Sampiran1 string    `json:"sampiran_1"`
	Sampiran2 *string   `json:"sampiran_2"`
	Content1  string    `json:"content_1"`
	Content2  *string   `json:"content_2"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Required fields are pointers so that an absent or null value fails
// validation while an empty string is still accepted.
type CreatePantunReq struct {
	Sampiran1 *string `json:"sampiran_1" binding:"required"`
	Sampiran2 *string `json:"sampiran_2"`
	Content1  *string `json:"content_1" binding:"required"`
	Content2  *string `json:"content_2"`
}

// UpdatePantunReq overwrites all four text fields; an omitted optional
// field is stored as NULL.
type UpdatePantunReq struct {
	ID        *int    `json:"id" binding:"required"`
	Sampiran1 *string `json:"sampiran_1" binding:"required"`
	Sampiran2 *string `json:"sampiran_2"`
	Content1  *string `json:"content_1" binding:"required"`
	Content2  *string `json:"content_2"`
}

type SampiranEndingReq struct {
	JumlahSampiran string  `json:"jumlahSampiran" binding:"required,oneof=1 2"`
	Ending         *string `json:"ending" binding:"required"`
}

type SearchReq struct {
	Q string `json:"q" binding:"required"`
}

type DeleteResult struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
}
