package models

// Relationship states that FmUser follows ToUser. A pair appears at most once.
type Relationship struct {
	ID       uint  `json:"id" gorm:"primaryKey"`
	FmUserID uint  `json:"fm_user_id" gorm:"not null;uniqueIndex:idx_relationship_fm_to"`
	ToUserID uint  `json:"to_user_id" gorm:"not null;uniqueIndex:idx_relationship_fm_to;index"`
	FmUser   *User `json:"-" gorm:"foreignKey:FmUserID"`
	ToUser   *User `json:"-" gorm:"foreignKey:ToUserID"`
}

func (Relationship) TableName() string {
	return "relationship"
}

// How the viewer relates to a profile.
const (
	RelationSelf         = "self"
	RelationFollowing    = "following"
	RelationNotFollowing = "not_following"
)

// Profile is a user together with follow counts and the viewer's relation.
type Profile struct {
	UserCompact
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
	Relationship   string `json:"relationship"`
}
