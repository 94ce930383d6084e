package models

// CounterID is the primary key of the single counter row.
const CounterID = 1

type Counter struct {
	ID   uint  `json:"id" gorm:"primaryKey;autoIncrement:false" bson:"_id"`
	Hits int64 `json:"hits" gorm:"not null;default:0" bson:"hits"`
}

func (Counter) TableName() string {
	return "counter"
}
