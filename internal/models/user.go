package models

// User is a registered account. Rows are created on registration and never
// updated or deleted.
type User struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"size:15;not null;uniqueIndex"`
	Password string `json:"-" gorm:"size:128;not null"` // bcrypt hash
}

func (User) TableName() string {
	return "user"
}

// CredentialsForm is the body of the register, login and token endpoints.
type CredentialsForm struct {
	Username  string `form:"username" json:"username" validate:"required,max=15,nomarkup,alphanum"`
	Password  string `form:"password" json:"password" validate:"required,max=72"`
	CSRFToken string `form:"csrf_token" json:"-"`
}

// UserCompact is the public view of a user.
type UserCompact struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Username: u.Username}
}

func ToCompactList(users []User) []UserCompact {
	out := make([]UserCompact, len(users))
	for i := range users {
		out[i] = users[i].ToCompact()
	}
	return out
}
