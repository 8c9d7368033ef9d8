package model

import "time"

type SubscriberStatus string

const (
	SubscriberStatusSubscribed   SubscriberStatus = "Subscribed"
	SubscriberStatusUnsubscribed SubscriberStatus = "Unsubscribed"
)

type Subscriber struct {
	ID           uint             `json:"id" gorm:"primaryKey"`
	Name         string           `json:"name" gorm:"size:255"`
	Email        string           `json:"email" gorm:"uniqueIndex;not null"`
	SubscribedAt time.Time        `json:"subscribed_at" gorm:"autoCreateTime"`
	Status       SubscriberStatus `json:"status" gorm:"size:20;default:'Subscribed'"`
}

func (Subscriber) TableName() string {
	return "subscribers"
}
