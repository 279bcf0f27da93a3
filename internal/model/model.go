package model

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is a locally stored account. Password is kept and compared in plaintext.
type User struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Patronymic string    `json:"patronymic,omitempty"`
	Password   string    `json:"password"`
	Role       Role      `json:"role"`
	Avatar     string    `json:"avatar,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	BoardIDs   []string  `json:"boardIds"`
}

func (u User) FullName() string {
	if u.Patronymic == "" {
		return u.FirstName + " " + u.LastName
	}
	return u.FirstName + " " + u.LastName + " " + u.Patronymic
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

type TaskStatus string

const (
	StatusCreated    TaskStatus = "created"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

// Statuses lists the board columns in display order.
var Statuses = []TaskStatus{StatusCreated, StatusInProgress, StatusCompleted}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities for sorting: high=3, medium=2, low=1. Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	AssigneeIDs []string   `json:"assigneeIds"`
	CreatorID   string     `json:"creatorId"`
	BoardID     string     `json:"boardId"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	IsPinned    bool       `json:"isPinned"`

	Attachments   []Attachment   `json:"attachments"`
	Comments      []Comment      `json:"comments"`
	VoiceMessages []VoiceMessage `json:"voiceMessages"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t Task) HasAssignee(userID string) bool {
	for _, id := range t.AssigneeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Attachment is an opaque captured blob. URL is usually a data URI.
type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

type VoiceMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	URL       string    `json:"url"`
	Duration  float64   `json:"duration"`
	CreatedAt time.Time `json:"createdAt"`
}

type Board struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Code        string    `json:"code"`
	CreatedBy   string    `json:"createdBy"`
	MemberIDs   []string  `json:"memberIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (b Board) HasMember(userID string) bool {
	for _, id := range b.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type NotificationType string

const (
	NotificationBoardAdded    NotificationType = "board_added"
	NotificationAdminAssigned NotificationType = "admin_assigned"
	NotificationTaskAssigned  NotificationType = "task_assigned"
	NotificationTaskDeadline  NotificationType = "task_deadline"
	NotificationTaskCompleted NotificationType = "task_completed"
)

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
	RelatedID string           `json:"relatedId,omitempty"`
}

// Credentials are remembered after a successful login for auto-fill.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// DateTime is a date with an optional wall-clock time.
// If Time is nil, the value is date-only.
type DateTime struct {
	Date string  `json:"date"`           // YYYY-MM-DD
	Time *string `json:"time,omitempty"` // HH:MM
}

type MonthlyStats struct {
	Month           string `json:"month"`
	Year            int    `json:"year"`
	TotalTasks      int    `json:"totalTasks"`
	CompletedTasks  int    `json:"completedTasks"`
	InProgressTasks int    `json:"inProgressTasks"`
	CreatedTasks    int    `json:"createdTasks"`
}
