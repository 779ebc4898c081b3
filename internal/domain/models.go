// Package domain defines the persistence models for users, profiles, direct
// chats, participants, and messages. These types are mapped with GORM and
// form the core data layer of the chat backend.
package domain

import (
	"strconv"
	"time"
)

// ChatTypeDirect tags a chat restricted to exactly two participants.
const ChatTypeDirect = "direct"

// DefaultAboutMe is stored when a user registers without an about-me text.
const DefaultAboutMe = "A short description about you."

// User is a registered account. The username is unique, matched
// case-sensitively, and never changes after registration.
//
// Fields:
//   - ID: numeric primary key.
//   - Username: 3–30 chars, unique.
//   - PasswordHash: bcrypt modular-crypt string; never serialized.
//   - Profile: one-to-one, created in the same transaction as the user.
type User struct {
	ID           uint      `json:"id"       gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(30);not null;uniqueIndex:ux_users_username"`
	PasswordHash string    `json:"-"        gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`

	Profile *Profile `json:"profile,omitempty" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Profile holds the public, mutable part of a user.
type Profile struct {
	ID        uint      `json:"id"       gorm:"primaryKey"`
	UserID    uint      `json:"userId"   gorm:"not null;uniqueIndex:ux_profiles_user"`
	FullName  string    `json:"fullName" gorm:"type:varchar(34);not null"`
	AboutMe   string    `json:"aboutMe"  gorm:"type:varchar(255);not null"`
	Avatar    string    `json:"avatar"   gorm:"type:varchar(512);not null;default:''"`
	IsOnline  bool      `json:"isOnline" gorm:"not null;default:false"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the database table name for Profile.
func (Profile) TableName() string { return "profiles" }

// Chat is a conversation between participants. Only direct chats exist.
//
// DirectKey is the sorted user pair ("direct:<min>:<max>") and carries a
// unique index, so at most one direct chat exists per unordered pair.
// LastMessage is not a column; listings fill it in.
type Chat struct {
	ID        uint      `json:"id"        gorm:"primaryKey"`
	Type      string    `json:"type"      gorm:"type:varchar(16);not null;default:'direct';check:type IN ('direct')"`
	CreatedBy uint      `json:"createdBy" gorm:"not null;index"`
	DirectKey *string   `json:"-"         gorm:"type:varchar(64);uniqueIndex:ux_chats_direct_key"`
	CreatedAt time.Time `json:"createdAt"`

	Creator      *User         `json:"creator,omitempty"      gorm:"foreignKey:CreatedBy;references:ID"`
	Participants []Participant `json:"participants,omitempty" gorm:"foreignKey:ChatID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Messages     []Message     `json:"messages,omitempty"     gorm:"foreignKey:ChatID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	LastMessage  *Message      `json:"lastMessage,omitempty"  gorm:"-"`
}

// TableName returns the database table name for Chat.
func (Chat) TableName() string { return "chats" }

// HasParticipant reports whether userID is a member of the chat. It requires
// Participants to be loaded.
func (c *Chat) HasParticipant(userID uint) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// Participant links a user to a chat. A user appears at most once per chat.
type Participant struct {
	ID     uint `json:"id"     gorm:"primaryKey"`
	ChatID uint `json:"chatId" gorm:"not null;uniqueIndex:ux_participants_chat_user,priority:1"`
	UserID uint `json:"userId" gorm:"not null;index;uniqueIndex:ux_participants_chat_user,priority:2"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
}

// TableName returns the database table name for Participant.
func (Participant) TableName() string { return "participants" }

// Message is a single immutable utterance in a chat. Ordering within a chat
// is (SentAt, ID) ascending.
type Message struct {
	ID       uint      `json:"id"       gorm:"primaryKey"`
	ChatID   uint      `json:"chatId"   gorm:"not null;index:idx_chat_msgs,priority:1"`
	SenderID uint      `json:"senderId" gorm:"not null;index"`
	Text     string    `json:"text"     gorm:"type:text;not null"`
	SentAt   time.Time `json:"sentAt"   gorm:"not null;index:idx_chat_msgs,priority:2"`

	Sender *User `json:"sender,omitempty" gorm:"foreignKey:SenderID;references:ID"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// DirectKey returns the canonical key for the unordered pair {a, b}.
func DirectKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return "direct:" + strconv.FormatUint(uint64(a), 10) + ":" + strconv.FormatUint(uint64(b), 10)
}
