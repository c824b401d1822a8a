package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group roles accepted by the membership endpoints.
const (
	GroupRoleLeader  = "leader"
	GroupRoleStudent = "student"
)

// Group is an organization (company) whose members get access to a set of
// courses. Groups are created lazily on first group enrollment under a name
// and looked up by exact name afterwards.
type Group struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Leaders   []string           `bson:"leaders" json:"leaders"`
	Students  []string           `bson:"students" json:"students"`
	Courses   []string           `bson:"courses" json:"courses"`
	Version   int64              `bson:"version" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsLeader reports whether the user id is in the leaders set.
func (g *Group) IsLeader(userID string) bool {
	for _, id := range g.Leaders {
		if id == userID {
			return true
		}
	}
	return false
}

// IsMember reports whether the user id is a leader or student of the group.
func (g *Group) IsMember(userID string) bool {
	if g.IsLeader(userID) {
		return true
	}
	for _, id := range g.Students {
		if id == userID {
			return true
		}
	}
	return false
}
