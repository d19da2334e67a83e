package models

// Student is a row of the students table.
type Student struct {
	ID          int64  `json:"id" db:"id"`
	RegNo       string `json:"regNo" db:"reg_no"`
	Name        string `json:"name" db:"name"`
	Department  string `json:"department" db:"department"`
	Semester    int    `json:"semester" db:"semester"`
	Section     string `json:"section,omitempty" db:"section"`
	Email       string `json:"email,omitempty" db:"email"`
	Phone       string `json:"phone,omitempty" db:"phone"`
	ParentPhone string `json:"parentPhone,omitempty" db:"parent_phone"`
	UserID      *int64 `json:"userId,omitempty" db:"user_id"`
}
