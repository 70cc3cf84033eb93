package models

import "time"

// User is an identity record. The password hash never leaves the process.
type User struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	HashedPassword string `json:"-"`
}

// Todo is a single task owned by exactly one user.
type Todo struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Done    bool   `json:"done"`
	OwnerID int64  `json:"-"`
}

// TodoEvent is the message payload published to Kafka after a successful
// write, so other replicas can drop the owner's cached list.
type TodoEvent struct {
	Action  string    `json:"action"` // create, update, delete
	TodoID  int64     `json:"todo_id"`
	OwnerID int64     `json:"owner_id"`
	At      time.Time `json:"at"`
}
