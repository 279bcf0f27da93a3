package session

import (
	"time"

	"planify/internal/model"
)

// Demo accounts seeded into an empty workspace. Both use DemoPassword.
const (
	DemoAdminUsername = "admin123"
	DemoUserUsername  = "user1234"
	DemoPassword      = "password123"
	DemoBoardCode     = "DEMO2024"

	demoAdminID = "user-1"
	demoUserID  = "user-2"
	demoBoardID = "board-1"
)

func demoUsers(now time.Time) []model.User {
	return []model.User{
		{
			ID:        demoAdminID,
			Username:  DemoAdminUsername,
			Email:     "admin@planify.com",
			FirstName: "SYSTEM",
			LastName:  "ADMINISTRATOR",
			Password:  DemoPassword,
			Role:      model.RoleAdmin,
			CreatedAt: now,
			BoardIDs:  []string{demoBoardID},
		},
		{
			ID:        demoUserID,
			Username:  DemoUserUsername,
			Email:     "user@planify.com",
			FirstName: "REGULAR",
			LastName:  "USER",
			Password:  DemoPassword,
			Role:      model.RoleUser,
			CreatedAt: now,
			BoardIDs:  []string{demoBoardID},
		},
	}
}

func demoBoards(now time.Time) []model.Board {
	return []model.Board{{
		ID:          demoBoardID,
		Name:        "MAIN BOARD",
		Description: "THE MAIN BOARD FOR MANAGING TASKS",
		Code:        DemoBoardCode,
		CreatedBy:   demoAdminID,
		MemberIDs:   []string{demoAdminID, demoUserID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}}
}

func demoTasks(now time.Time) []model.Task {
	due := now.Add(7 * 24 * time.Hour)
	return []model.Task{
		{
			ID:            "task-1",
			Title:         "USER INTERFACE DESIGN",
			Description:   "CREATE MOCKUPS AND PROTOTYPES FOR THE NEW FEATURE",
			Status:        model.StatusInProgress,
			Priority:      model.PriorityHigh,
			AssigneeIDs:   []string{demoUserID},
			CreatorID:     demoAdminID,
			BoardID:       demoBoardID,
			Deadline:      &due,
			IsPinned:      true,
			Attachments:   []model.Attachment{},
			Comments:      []model.Comment{},
			VoiceMessages: []model.VoiceMessage{},
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            "task-2",
			Title:         "AUTHENTICATION",
			Description:   "SET UP SIGN-IN AND USER REGISTRATION",
			Status:        model.StatusCreated,
			Priority:      model.PriorityHigh,
			AssigneeIDs:   []string{demoAdminID},
			CreatorID:     demoAdminID,
			BoardID:       demoBoardID,
			Attachments:   []model.Attachment{},
			Comments:      []model.Comment{},
			VoiceMessages: []model.VoiceMessage{},
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}
}
