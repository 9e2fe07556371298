package models

// User is a pool participant. Authentication and sessions live outside this
// service; only the identity and reminder address are kept here.
type User struct {
	ID    int    `bson:"id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
}
